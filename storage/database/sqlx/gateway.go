// Package sqlxrepos is the Postgres record store, for deployments that talk to the database directly.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edumedsolutions/edumed/core/gateway"
)

// universities columns that can be ordered on
var universityOrderings = map[string]bool{
	"name": true, "location_state": true, "ranking": true, "acceptance_rate": true,
	"tuition_min": true, "tuition_max": true,
}

type (
	profileRow struct {
		ID        string    `db:"id"`
		FirstName string    `db:"first_name"`
		LastName  string    `db:"last_name"`
		Email     string    `db:"email"`
		CreatedAt time.Time `db:"created_at"`
	}

	applicationRow struct {
		ID             string      `db:"id"`
		StudentID      string      `db:"student_id"`
		UniversityID   null.String `db:"university_id"`
		UniversityName null.String `db:"university_name"`
		CourseID       null.String `db:"course_id"`
		CourseName     null.String `db:"course_name"`
		Status         string      `db:"status"`
		CreatedAt      time.Time   `db:"created_at"`
	}

	documentRow struct {
		ID            string `db:"id"`
		ApplicationID string `db:"application_id"`
		Name          string `db:"name"`
		Status        string `db:"status"`
	}

	courseRow struct {
		ID           string `db:"id"`
		UniversityID string `db:"university_id"`
		Name         string `db:"name"`
	}
)

type store struct {
	db *sqlx.DB
}

func NewGateway(db *sqlx.DB) gateway.Gateway {
	return &store{db: db}
}

func (s *store) GetProfile(ctx context.Context, id string) (gateway.Profile, error) {
	var row profileRow
	q := "SELECT id, first_name, last_name, email, created_at FROM profiles WHERE id = $1"
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return gateway.Profile{}, gateway.ErrNotFound
		}
		return gateway.Profile{}, remoteError(err)
	}
	return gateway.Profile{
		ID:        row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}

func (s *store) CreateProfileIfAbsent(ctx context.Context, p gateway.Profile) (bool, error) {
	q := `INSERT INTO profiles (id, first_name, last_name, email, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`
	res, err := s.db.ExecContext(ctx, q, p.ID, p.FirstName, p.LastName, p.Email, p.CreatedAt)
	if err != nil {
		return false, remoteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "reading affected rows")
	}
	return n == 1, nil
}

func (s *store) QueryApplications(ctx context.Context, studentID string) ([]gateway.Application, error) {
	q := `SELECT a.id, a.student_id, a.university_id, u.name AS university_name,
       a.course_id, c.name AS course_name, a.status, a.created_at
FROM applications a
LEFT JOIN universities u ON u.id = a.university_id
LEFT JOIN courses c ON c.id = a.course_id
WHERE a.student_id = $1
ORDER BY a.created_at, a.id`
	var rows []applicationRow
	if err := s.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, remoteError(err)
	}

	apps := make([]gateway.Application, 0, len(rows))
	if len(rows) == 0 {
		return apps, nil
	}
	ids := make([]string, 0, len(rows))
	idx := make(map[string]int, len(rows))
	for i, row := range rows {
		status := gateway.ApplicationStatus(row.Status)
		if !status.Valid() {
			return nil, errors.Errorf("application %s: invalid status %q", row.ID, row.Status)
		}
		apps = append(apps, gateway.Application{
			ID:             row.ID,
			StudentID:      row.StudentID,
			UniversityID:   row.UniversityID.String,
			UniversityName: row.UniversityName.String,
			CourseID:       row.CourseID.String,
			CourseName:     row.CourseName.String,
			Status:         status,
			CreatedAt:      row.CreatedAt.UTC(),
			Documents:      []gateway.Document{},
		})
		ids = append(ids, row.ID)
		idx[row.ID] = i
	}

	q = `SELECT id, application_id, name, status FROM documents
WHERE application_id = ANY($1)
ORDER BY created_at, id`
	var docs []documentRow
	if err := s.db.SelectContext(ctx, &docs, q, pq.Array(ids)); err != nil {
		return nil, remoteError(err)
	}
	for _, doc := range docs {
		status := gateway.DocumentStatus(doc.Status)
		if !status.Valid() {
			return nil, errors.Errorf("document %s: invalid status %q", doc.ID, doc.Status)
		}
		i := idx[doc.ApplicationID]
		apps[i].Documents = append(apps[i].Documents, gateway.Document{
			ID:            doc.ID,
			ApplicationID: doc.ApplicationID,
			Name:          doc.Name,
			Status:        status,
		})
	}
	return apps, nil
}

func (s *store) CreateApplication(ctx context.Context, na gateway.NewApplication) (gateway.Application, error) {
	if !na.Status.Valid() {
		return gateway.Application{}, errors.Errorf("invalid application status %q", na.Status)
	}
	q := `INSERT INTO applications (student_id, university_id, course_id, status, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	var id string
	err := s.db.QueryRowxContext(ctx, q,
		na.StudentID,
		null.NewString(na.UniversityID, na.UniversityID != ""),
		null.NewString(na.CourseID, na.CourseID != ""),
		string(na.Status),
		na.CreatedAt,
	).Scan(&id)
	if err != nil {
		return gateway.Application{}, remoteError(err)
	}
	return gateway.Application{
		ID:           id,
		StudentID:    na.StudentID,
		UniversityID: na.UniversityID,
		CourseID:     na.CourseID,
		Status:       na.Status,
		CreatedAt:    na.CreatedAt.UTC(),
		Documents:    []gateway.Document{},
	}, nil
}

func (s *store) QueryUniversities(ctx context.Context, orderings ...gateway.Ordering) ([]gateway.University, error) {
	q := `SELECT id, name, location_state, location_lat, location_lng, ranking, acceptance_rate,
       tuition_min, tuition_max, description
FROM universities`
	if order := orderBy(orderings); order != "" {
		q += " ORDER BY " + order
	}
	univs := make([]gateway.University, 0)
	if err := s.db.SelectContext(ctx, &univs, q); err != nil {
		return nil, remoteError(err)
	}
	return univs, nil
}

func (s *store) CreateUniversities(ctx context.Context, univs ...gateway.University) ([]gateway.University, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, remoteError(err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO universities (name, location_state, location_lat, location_lng, ranking,
    acceptance_rate, tuition_min, tuition_max, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	created := make([]gateway.University, 0, len(univs))
	for _, u := range univs {
		err = tx.QueryRowxContext(ctx, q,
			u.Name, u.State, u.Lat, u.Lng, u.Ranking, u.AcceptanceRate, u.TuitionMin, u.TuitionMax, u.Description,
		).Scan(&u.ID)
		if err != nil {
			return nil, remoteError(err)
		}
		created = append(created, u)
	}
	if err = tx.Commit(); err != nil {
		return nil, remoteError(err)
	}
	return created, nil
}

func (s *store) QueryCourses(ctx context.Context, universityID string) ([]gateway.Course, error) {
	var rows []courseRow
	q := "SELECT id, university_id, name FROM courses WHERE university_id = $1 ORDER BY name"
	if err := s.db.SelectContext(ctx, &rows, q, universityID); err != nil {
		return nil, remoteError(err)
	}
	courses := make([]gateway.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, gateway.Course(row))
	}
	return courses, nil
}

func (s *store) CreateMessages(ctx context.Context, msgs ...gateway.Message) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return remoteError(err)
	}
	defer func() { _ = tx.Rollback() }()

	q := "INSERT INTO messages (content, is_from_student, created_at) VALUES ($1, $2, COALESCE($3, now()))"
	for _, m := range msgs {
		if _, err = tx.ExecContext(ctx, q, m.Content, m.IsFromStudent, null.NewTime(m.CreatedAt, !m.CreatedAt.IsZero())); err != nil {
			return remoteError(err)
		}
	}
	if err = tx.Commit(); err != nil {
		return remoteError(err)
	}
	return nil
}

func orderBy(orderings []gateway.Ordering) string {
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if universityOrderings[ord.Field] {
			parts = append(parts, ord.String())
		}
	}
	return strings.Join(parts, ", ")
}

// remoteError surfaces Postgres failures the same way the hosted store reports them.
func remoteError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		return &gateway.RemoteError{
			Code:    string(pqErr.Code),
			Message: pqErr.Message,
			Details: pqErr.Detail,
			Hint:    pqErr.Hint,
		}
	}
	return errors.WithStack(err)
}
