package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core/gateway"
)

func newID() string {
	return uuid.New().String()
}

type store struct {
	db *DB
}

func NewGateway(db *DB) gateway.Gateway {
	return &store{db: db}
}

func (s *store) GetProfile(ctx context.Context, id string) (gateway.Profile, error) {
	if err := ctx.Err(); err != nil {
		return gateway.Profile{}, err
	}
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	if p, ok := s.db.profiles[id]; ok {
		return *p, nil
	}
	return gateway.Profile{}, gateway.ErrNotFound
}

func (s *store) CreateProfileIfAbsent(ctx context.Context, p gateway.Profile) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	if _, ok := s.db.profiles[p.ID]; ok {
		return false, nil
	}
	s.db.profiles[p.ID] = &p
	return true, nil
}

func (s *store) QueryApplications(ctx context.Context, studentID string) ([]gateway.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	apps := make([]gateway.Application, 0)
	for _, a := range s.db.applications {
		if a.StudentID != studentID {
			continue
		}
		app := *a
		app.UniversityName, app.CourseName = "", ""
		for _, u := range s.db.universities {
			if u.ID == app.UniversityID {
				app.UniversityName = u.Name
			}
		}
		for _, c := range s.db.courses {
			if c.ID == app.CourseID {
				app.CourseName = c.Name
			}
		}
		app.Documents = make([]gateway.Document, 0)
		for _, d := range s.db.documents {
			if d.ApplicationID == app.ID {
				app.Documents = append(app.Documents, *d)
			}
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (s *store) CreateApplication(ctx context.Context, na gateway.NewApplication) (gateway.Application, error) {
	if err := ctx.Err(); err != nil {
		return gateway.Application{}, err
	}
	if !na.Status.Valid() {
		return gateway.Application{}, errors.Errorf("invalid application status %q", na.Status)
	}
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	if _, ok := s.db.profiles[na.StudentID]; !ok {
		return gateway.Application{}, &gateway.RemoteError{
			Code:    "23503",
			Message: `insert or update on table "applications" violates foreign key constraint "applications_student_id_fkey"`,
		}
	}
	app := gateway.Application{
		ID:           newID(),
		StudentID:    na.StudentID,
		UniversityID: na.UniversityID,
		CourseID:     na.CourseID,
		Status:       na.Status,
		CreatedAt:    na.CreatedAt.UTC(),
		Documents:    []gateway.Document{},
	}
	stored := app
	s.db.applications = append(s.db.applications, &stored)
	return app, nil
}

func (s *store) QueryUniversities(ctx context.Context, orderings ...gateway.Ordering) ([]gateway.University, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mutex.RLock()
	univs := make([]gateway.University, 0, len(s.db.universities))
	for _, u := range s.db.universities {
		univs = append(univs, *u)
	}
	s.db.mutex.RUnlock()

	if len(orderings) > 0 {
		sort.SliceStable(univs, func(i, j int) bool {
			for _, ord := range orderings {
				c := compareUniversities(univs[i], univs[j], ord.Field)
				if c == 0 {
					continue
				}
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
			return false
		})
	}
	return univs, nil
}

func compareUniversities(a, b gateway.University, field string) int {
	cmpFloat := func(x, y float64) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "location_state":
		return strings.Compare(a.State, b.State)
	case "ranking":
		return cmpFloat(float64(a.Ranking), float64(b.Ranking))
	case "acceptance_rate":
		return cmpFloat(a.AcceptanceRate, b.AcceptanceRate)
	case "tuition_min":
		return cmpFloat(float64(a.TuitionMin), float64(b.TuitionMin))
	case "tuition_max":
		return cmpFloat(float64(a.TuitionMax), float64(b.TuitionMax))
	}
	return 0
}

func (s *store) CreateUniversities(ctx context.Context, univs ...gateway.University) ([]gateway.University, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	created := make([]gateway.University, 0, len(univs))
	for _, u := range univs {
		u.ID = newID()
		stored := u
		s.db.universities = append(s.db.universities, &stored)
		created = append(created, u)
	}
	return created, nil
}

// CreateCourse adds a course to a university's catalog.
func (db *DB) CreateCourse(c gateway.Course) gateway.Course {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	c.ID = newID()
	stored := c
	db.courses = append(db.courses, &stored)
	return c
}

func (s *store) QueryCourses(ctx context.Context, universityID string) ([]gateway.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	courses := make([]gateway.Course, 0)
	for _, c := range s.db.courses {
		if c.UniversityID == universityID {
			courses = append(courses, *c)
		}
	}
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (s *store) CreateMessages(ctx context.Context, msgs ...gateway.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	for _, m := range msgs {
		m.ID = newID()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = NowFunc().UTC()
		}
		stored := m
		s.db.messages = append(s.db.messages, &stored)
	}
	return nil
}
