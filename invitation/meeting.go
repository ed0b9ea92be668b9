package invitation

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultPriority = "medium"
)

// Request is the meeting description submitted by a client.
type Request struct {
	MeetingTopic    string   `json:"meetingTopic" validate:"required,max=200"`
	SpeakerName     string   `json:"speakerName" validate:"required,max=120"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string   `json:"time" validate:"required,datetime=15:04"`
	Duration        string   `json:"duration,omitempty" validate:"max=60"`
	MeetingLink     string   `json:"meetingLink,omitempty" validate:"omitempty,http_url,max=2048"`
	Location        string   `json:"location,omitempty" validate:"max=300"`
	MeetingType     string   `json:"meetingType,omitempty" validate:"max=60"`
	Priority        string   `json:"priority,omitempty" validate:"max=30"`
	Agenda          string   `json:"agenda,omitempty" validate:"max=5000"`
	Attendees       []string `json:"attendees,omitempty" validate:"max=200,dive,max=200"`
	AdditionalNotes string   `json:"additionalNotes,omitempty" validate:"max=5000"`
}

// Meeting is a validated, normalized Request.
type Meeting struct {
	Topic       string
	Speaker     string
	Start       time.Time
	Duration    string
	MeetingType string
	Priority    string
	Optional
}

// DateText returns the meeting date as YYYY-MM-DD.
func (m Meeting) DateText() string { return m.Start.Format(DateLayout) }

// TimeText returns the start time as HH:MM.
func (m Meeting) TimeText() string { return m.Start.Format(TimeLayout) }

// FieldError reports a single invalid request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// Normalize checks the required fields and produces a Meeting. Date and time
// are combined into a wall-clock Start without a time zone.
func (r Request) Normalize() (Meeting, error) {
	required := []struct{ name, value string }{
		{"meetingTopic", r.MeetingTopic},
		{"speakerName", r.SpeakerName},
		{"date", r.Date},
		{"time", r.Time},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return Meeting{}, &FieldError{Field: f.name, Message: "Missing required field: " + f.name}
		}
	}

	day, err := time.Parse(DateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return Meeting{}, &FieldError{Field: "date", Message: "Invalid date format. Use YYYY-MM-DD"}
	}
	clock, err := time.Parse(TimeLayout, strings.TrimSpace(r.Time))
	if err != nil {
		return Meeting{}, &FieldError{Field: "time", Message: "Invalid time format. Use HH:MM"}
	}

	priority := strings.TrimSpace(r.Priority)
	if priority == "" {
		priority = DefaultPriority
	}

	return Meeting{
		Topic:       strings.TrimSpace(r.MeetingTopic),
		Speaker:     strings.TrimSpace(r.SpeakerName),
		Start:       time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC),
		Duration:    strings.TrimSpace(r.Duration),
		MeetingType: strings.TrimSpace(r.MeetingType),
		Priority:    priority,
		Optional:    Sanitize(r),
	}, nil
}

// ParseDuration reads free-form durations such as "1h", "90m", "1 hour",
// "45 minutes" or "1.5 hours". ok is false when nothing sensible was found.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(strings.ReplaceAll(s, " ", "")); err == nil && d > 0 {
		return d, true
	}

	var n float64
	var unit string
	if _, err := fmt.Sscanf(s, "%g %s", &n, &unit); err != nil || n <= 0 {
		return 0, false
	}
	switch {
	case strings.HasPrefix(unit, "h"):
		return time.Duration(n * float64(time.Hour)), true
	case strings.HasPrefix(unit, "m"):
		return time.Duration(n * float64(time.Minute)), true
	}
	return 0, false
}
