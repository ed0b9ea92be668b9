package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound also covers records that exist but belong to another owner.
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: already exists")
)

type Owner struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Template is one generated invitation. It is never updated.
type Template struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"-"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Source          string    `json:"source"`
	MeetingTopic    string    `json:"meetingTopic"`
	SpeakerName     string    `json:"speakerName"`
	MeetingDate     string    `json:"meetingDate"`
	MeetingTime     string    `json:"meetingTime"`
	Duration        string    `json:"duration,omitempty"`
	MeetingLink     string    `json:"meetingLink,omitempty"`
	Location        string    `json:"location,omitempty"`
	Attendees       []string  `json:"attendees,omitempty"`
	AdditionalNotes string    `json:"additionalNotes,omitempty"`
	Agenda          string    `json:"agenda,omitempty"`
	MeetingType     string    `json:"meetingType,omitempty"`
	Priority        string    `json:"priority,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Method string

const (
	MethodEmail     Method = "email"
	MethodMessaging Method = "messaging"
	MethodCalendar  Method = "calendar"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Recipient identifies one addressee; which field is set depends on the method.
type Recipient struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Distribution records one dispatch attempt. It is never updated.
type Distribution struct {
	ID         string      `json:"id"`
	OwnerID    string      `json:"-"`
	TemplateID string      `json:"templateId"`
	Method     Method      `json:"method"`
	Recipients []Recipient `json:"recipients"`
	Status     Status      `json:"status"`
	SentAt     *time.Time  `json:"sentAt,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type Stats struct {
	TemplatesGenerated int `json:"templatesGenerated"`
	InvitationsSent    int `json:"invitationsSent"`
	TotalRecipients    int `json:"totalRecipients"`
	CalendarEvents     int `json:"calendarEvents"`
	TotalDistributions int `json:"totalDistributions"`
}

// Activity is a distribution joined with its template title for the dashboard.
type Activity struct {
	DistributionID string    `json:"id"`
	TemplateTitle  string    `json:"templateTitle"`
	Method         Method    `json:"method"`
	Status         Status    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
}

// Store persists owners, templates and distributions. Every template and
// distribution read is scoped to an owner.
type Store interface {
	CreateOwner(ctx context.Context, o *Owner) error
	GetOwner(ctx context.Context, id string) (*Owner, error)
	GetOwnerByEmail(ctx context.Context, email string) (*Owner, error)
	// DeleteOwner removes the owner with all of their templates and distributions.
	DeleteOwner(ctx context.Context, id string) error

	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, ownerID, id string) (*Template, error)
	ListTemplates(ctx context.Context, ownerID string) ([]Template, error)

	// CreateDistribution fails with ErrNotFound when the template is not the owner's.
	CreateDistribution(ctx context.Context, d *Distribution) error
	ListDistributions(ctx context.Context, ownerID string, limit int) ([]Distribution, error)
	RecentActivity(ctx context.Context, ownerID string, limit int) ([]Activity, error)
	Stats(ctx context.Context, ownerID string) (Stats, error)

	Ping(ctx context.Context) error
	Close() error
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
