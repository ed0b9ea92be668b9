package invitation

import "strings"

// Optional holds the optional meeting fields. An empty string or nil slice
// means the field is absent and its section is not rendered.
type Optional struct {
	Location  string
	Link      string
	Agenda    string
	Attendees []string
	Notes     string
}

// Sanitize trims the optional fields of r and drops the ones that end up empty.
// Escaping happens at render time.
func Sanitize(r Request) Optional {
	var attendees []string
	for _, a := range r.Attendees {
		if a = strings.TrimSpace(a); a != "" {
			attendees = append(attendees, a)
		}
	}
	return Optional{
		Location:  strings.TrimSpace(r.Location),
		Link:      strings.TrimSpace(r.MeetingLink),
		Agenda:    strings.TrimSpace(r.Agenda),
		Attendees: attendees,
		Notes:     strings.TrimSpace(r.AdditionalNotes),
	}
}

// AttendeeLine joins the attendees for display.
func (o Optional) AttendeeLine() string {
	return strings.Join(o.Attendees, ", ")
}
