package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/rest"

	"github.com/edumedsolutions/edumed/core/gateway"
)

const (
	preferRepresentation = "return=representation"
	applicationsSelect   = "*,university:universities(name),course:courses(name),documents(*)"
)

type (
	nameRef struct {
		Name string `json:"name"`
	}

	applicationRow struct {
		ID           string                    `json:"id"`
		StudentID    string                    `json:"student_id"`
		UniversityID *string                   `json:"university_id"`
		CourseID     *string                   `json:"course_id"`
		Status       gateway.ApplicationStatus `json:"status"`
		CreatedAt    time.Time                 `json:"created_at"`
		University   *nameRef                  `json:"university"`
		Course       *nameRef                  `json:"course"`
		Documents    []gateway.Document        `json:"documents"`
	}

	newApplicationRow struct {
		StudentID    string                    `json:"student_id"`
		UniversityID *string                   `json:"university_id"`
		CourseID     *string                   `json:"course_id"`
		Status       gateway.ApplicationStatus `json:"status"`
		CreatedAt    time.Time                 `json:"created_at"`
	}

	newUniversityRow struct {
		Name           string  `json:"name"`
		State          string  `json:"location_state"`
		Lat            float64 `json:"location_lat"`
		Lng            float64 `json:"location_lng"`
		Ranking        int     `json:"ranking"`
		AcceptanceRate float64 `json:"acceptance_rate"`
		TuitionMin     int     `json:"tuition_min"`
		TuitionMax     int     `json:"tuition_max"`
		Description    string  `json:"description"`
	}

	newMessageRow struct {
		Content       string     `json:"content"`
		IsFromStudent bool       `json:"is_from_student"`
		CreatedAt     *time.Time `json:"created_at,omitempty"`
	}
)

func (row applicationRow) toApplication() gateway.Application {
	app := gateway.Application{
		ID:        row.ID,
		StudentID: row.StudentID,
		Status:    row.Status,
		CreatedAt: row.CreatedAt.UTC(),
		Documents: row.Documents,
	}
	if row.UniversityID != nil {
		app.UniversityID = *row.UniversityID
	}
	if row.CourseID != nil {
		app.CourseID = *row.CourseID
	}
	if row.University != nil {
		app.UniversityName = row.University.Name
	}
	if row.Course != nil {
		app.CourseName = row.Course.Name
	}
	if app.Documents == nil {
		app.Documents = []gateway.Document{}
	}
	return app
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Records is the hosted record store.
type Records struct {
	client *Client
}

var _ gateway.Gateway = (*Records)(nil)

func NewRecords(client *Client) *Records {
	return &Records{client: client}
}

func eq(v string) string { return "eq." + v }

func (r *Records) GetProfile(ctx context.Context, id string) (gateway.Profile, error) {
	var profiles []gateway.Profile
	err := r.client.do(ctx, request{
		method: rest.Get,
		path:   restPath + "/profiles",
		query:  map[string]string{"select": "*", "id": eq(id)},
		token:  gateway.AccessToken(ctx),
	}, &profiles)
	if err != nil {
		return gateway.Profile{}, err
	}
	if len(profiles) == 0 {
		return gateway.Profile{}, gateway.ErrNotFound
	}
	profiles[0].CreatedAt = profiles[0].CreatedAt.UTC()
	return profiles[0], nil
}

func (r *Records) CreateProfileIfAbsent(ctx context.Context, p gateway.Profile) (bool, error) {
	var created []gateway.Profile
	err := r.client.do(ctx, request{
		method:  rest.Post,
		path:    restPath + "/profiles",
		query:   map[string]string{"on_conflict": "id"},
		headers: map[string]string{"Prefer": "resolution=ignore-duplicates," + preferRepresentation},
		token:   gateway.AccessToken(ctx),
		body:    []gateway.Profile{p},
	}, &created)
	if err != nil {
		return false, err
	}
	return len(created) > 0, nil
}

func (r *Records) QueryApplications(ctx context.Context, studentID string) ([]gateway.Application, error) {
	var rows []applicationRow
	err := r.client.do(ctx, request{
		method: rest.Get,
		path:   restPath + "/applications",
		query:  map[string]string{"select": applicationsSelect, "student_id": eq(studentID)},
		token:  gateway.AccessToken(ctx),
	}, &rows)
	if err != nil {
		return nil, err
	}
	apps := make([]gateway.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.toApplication())
	}
	return apps, nil
}

func (r *Records) CreateApplication(ctx context.Context, na gateway.NewApplication) (gateway.Application, error) {
	var rows []applicationRow
	err := r.client.do(ctx, request{
		method:  rest.Post,
		path:    restPath + "/applications",
		headers: map[string]string{"Prefer": preferRepresentation},
		token:   gateway.AccessToken(ctx),
		body: newApplicationRow{
			StudentID:    na.StudentID,
			UniversityID: optional(na.UniversityID),
			CourseID:     optional(na.CourseID),
			Status:       na.Status,
			CreatedAt:    na.CreatedAt.UTC(),
		},
	}, &rows)
	if err != nil {
		return gateway.Application{}, err
	}
	if len(rows) == 0 {
		return gateway.Application{}, &gateway.RemoteError{Message: "application insert returned no row"}
	}
	return rows[0].toApplication(), nil
}

func (r *Records) QueryUniversities(ctx context.Context, orderings ...gateway.Ordering) ([]gateway.University, error) {
	query := map[string]string{"select": "*"}
	if len(orderings) > 0 {
		parts := make([]string, 0, len(orderings))
		for _, ord := range orderings {
			dir := "desc"
			if ord.Ascending {
				dir = "asc"
			}
			parts = append(parts, fmt.Sprintf("%s.%s", ord.Field, dir))
		}
		query["order"] = strings.Join(parts, ",")
	}

	univs := make([]gateway.University, 0)
	err := r.client.do(ctx, request{
		method: rest.Get,
		path:   restPath + "/universities",
		query:  query,
		token:  gateway.AccessToken(ctx),
	}, &univs)
	if err != nil {
		return nil, err
	}
	return univs, nil
}

func (r *Records) CreateUniversities(ctx context.Context, univs ...gateway.University) ([]gateway.University, error) {
	rows := make([]newUniversityRow, 0, len(univs))
	for _, u := range univs {
		rows = append(rows, newUniversityRow{
			Name:           u.Name,
			State:          u.State,
			Lat:            u.Lat,
			Lng:            u.Lng,
			Ranking:        u.Ranking,
			AcceptanceRate: u.AcceptanceRate,
			TuitionMin:     u.TuitionMin,
			TuitionMax:     u.TuitionMax,
			Description:    u.Description,
		})
	}
	created := make([]gateway.University, 0, len(univs))
	err := r.client.do(ctx, request{
		method:  rest.Post,
		path:    restPath + "/universities",
		headers: map[string]string{"Prefer": preferRepresentation},
		token:   gateway.AccessToken(ctx),
		body:    rows,
	}, &created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Records) QueryCourses(ctx context.Context, universityID string) ([]gateway.Course, error) {
	courses := make([]gateway.Course, 0)
	err := r.client.do(ctx, request{
		method: rest.Get,
		path:   restPath + "/courses",
		query:  map[string]string{"select": "*", "university_id": eq(universityID), "order": "name.asc"},
		token:  gateway.AccessToken(ctx),
	}, &courses)
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *Records) CreateMessages(ctx context.Context, msgs ...gateway.Message) error {
	rows := make([]newMessageRow, 0, len(msgs))
	for _, m := range msgs {
		row := newMessageRow{Content: m.Content, IsFromStudent: m.IsFromStudent}
		if !m.CreatedAt.IsZero() {
			at := m.CreatedAt.UTC()
			row.CreatedAt = &at
		}
		rows = append(rows, row)
	}
	return r.client.do(ctx, request{
		method:  rest.Post,
		path:    restPath + "/messages",
		headers: map[string]string{"Prefer": "return=minimal"},
		token:   gateway.AccessToken(ctx),
		body:    rows,
	}, nil)
}
