package gateway

import (
	"encoding/json"
	"fmt"
	"time"
)

// ApplicationStatus is the lifecycle of an Application.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationSubmitted   ApplicationStatus = "submitted"
	ApplicationUnderReview ApplicationStatus = "under-review"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

var ApplicationStatuses = []ApplicationStatus{
	ApplicationPending, ApplicationSubmitted, ApplicationUnderReview, ApplicationAccepted, ApplicationRejected,
}

func (s ApplicationStatus) Valid() bool {
	for _, status := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid application status %q", string(s))
	}
	return json.Marshal(string(s))
}

func (s *ApplicationStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status := ApplicationStatus(str)
	if !status.Valid() {
		return fmt.Errorf("invalid application status %q", str)
	}
	*s = status
	return nil
}

// DocumentStatus is the approval lifecycle of a Document.
type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentSubmitted DocumentStatus = "submitted"
	DocumentApproved  DocumentStatus = "approved"
	DocumentRejected  DocumentStatus = "rejected"
)

var DocumentStatuses = []DocumentStatus{DocumentPending, DocumentSubmitted, DocumentApproved, DocumentRejected}

func (s DocumentStatus) Valid() bool {
	for _, status := range DocumentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s DocumentStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid document status %q", string(s))
	}
	return json.Marshal(string(s))
}

func (s *DocumentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status := DocumentStatus(str)
	if !status.Valid() {
		return fmt.Errorf("invalid document status %q", str)
	}
	*s = status
	return nil
}

// Profile is a student's profile; at most one per auth identity.
type Profile struct {
	ID        string    `json:"id"` // auth subject
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Document struct {
	ID            string         `json:"id"`
	ApplicationID string         `json:"application_id"`
	Name          string         `json:"name"`
	Status        DocumentStatus `json:"status"`
}

// Application is a student's candidacy to a university/course.
// UniversityID & CourseID are empty until chosen.
type Application struct {
	ID             string            `json:"id"`
	StudentID      string            `json:"student_id"`
	UniversityID   string            `json:"university_id,omitempty"`
	UniversityName string            `json:"university,omitempty"`
	CourseID       string            `json:"course_id,omitempty"`
	CourseName     string            `json:"course,omitempty"`
	Status         ApplicationStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"` // UTC
	Documents      []Document        `json:"documents"`
}

// NewApplication contains information needed to create a new Application.
type NewApplication struct {
	StudentID    string
	UniversityID string
	CourseID     string
	Status       ApplicationStatus
	CreatedAt    time.Time
}

type Course struct {
	ID           string `json:"id"`
	UniversityID string `json:"university_id"`
	Name         string `json:"name"`
}

// University is read-only reference data.
type University struct {
	ID             string  `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	State          string  `json:"location_state" db:"location_state"`
	Lat            float64 `json:"location_lat" db:"location_lat"`
	Lng            float64 `json:"location_lng" db:"location_lng"`
	Ranking        int     `json:"ranking" db:"ranking"`
	AcceptanceRate float64 `json:"acceptance_rate" db:"acceptance_rate"`
	TuitionMin     int     `json:"tuition_min" db:"tuition_min"`
	TuitionMax     int     `json:"tuition_max" db:"tuition_max"`
	Description    string  `json:"description" db:"description"`
}

// Message is a contact message; IsFromStudent distinguishes student-authored from consultant-side messages.
type Message struct {
	ID            string    `json:"id,omitempty"`
	Content       string    `json:"content"`
	IsFromStudent bool      `json:"is_from_student"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}
