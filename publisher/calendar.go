package publisher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"smartmeeting/invitation"
	"smartmeeting/store"
)

const (
	CalendarFilename    = "invite.ics"
	CalendarContentType = "text/calendar; method=REQUEST; charset=UTF-8"

	defaultEventLength = time.Hour
	floatingLayout     = "20060102T150405"
)

// Invite is a single calendar event request.
type Invite struct {
	UID         string
	Summary     string
	Description string
	Location    string
	URL         string
	Start       time.Time
	Duration    time.Duration
	Organizer   string
	Attendees   []string
}

// InviteFromTemplate builds an event from a stored invitation. Start is a
// floating wall-clock time; unparseable durations fall back to one hour.
func InviteFromTemplate(t *store.Template, organizer string, attendees []string) (Invite, error) {
	start, err := time.Parse(invitation.DateLayout+" "+invitation.TimeLayout, t.MeetingDate+" "+t.MeetingTime)
	if err != nil {
		return Invite{}, fmt.Errorf("template %s has no usable start time: %w", t.ID, err)
	}
	d, ok := invitation.ParseDuration(t.Duration)
	if !ok {
		d = defaultEventLength
	}
	return Invite{
		UID:         t.ID + "@smartmeeting",
		Summary:     t.MeetingTopic,
		Description: InvitationText(t),
		Location:    t.Location,
		URL:         t.MeetingLink,
		Start:       start,
		Duration:    d,
		Organizer:   organizer,
		Attendees:   attendees,
	}, nil
}

// Encode renders the invite as an iCalendar REQUEST.
func (inv Invite) Encode(now time.Time) ([]byte, error) {
	if inv.UID == "" || inv.Start.IsZero() {
		return nil, errors.New("invite requires a uid and a start time")
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//SmartMeetingAI//Invitations//EN")
	cal.Props.SetText("METHOD", "REQUEST")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, inv.UID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	setFloating(event.Props, ical.PropDateTimeStart, inv.Start)
	setFloating(event.Props, ical.PropDateTimeEnd, inv.Start.Add(inv.Duration))
	event.Props.SetText(ical.PropSummary, inv.Summary)
	event.Props.SetText(ical.PropStatus, "CONFIRMED")
	if inv.Description != "" {
		event.Props.SetText(ical.PropDescription, inv.Description)
	}
	if inv.Location != "" {
		event.Props.SetText(ical.PropLocation, inv.Location)
	}
	if inv.URL != "" {
		event.Props.SetText(ical.PropURL, inv.URL)
	}
	if inv.Organizer != "" {
		org := ical.NewProp(ical.PropOrganizer)
		org.Value = "mailto:" + inv.Organizer
		event.Props.Set(org)
	}
	for _, a := range inv.Attendees {
		att := ical.NewProp(ical.PropAttendee)
		att.Value = "mailto:" + strings.TrimSpace(a)
		att.Params.Set("ROLE", "REQ-PARTICIPANT")
		att.Params.Set("PARTSTAT", "NEEDS-ACTION")
		att.Params.Set("RSVP", "TRUE")
		event.Props.Add(att)
	}
	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func setFloating(props ical.Props, name string, t time.Time) {
	p := ical.NewProp(name)
	p.Value = t.Format(floatingLayout)
	props.Set(p)
}

// CalendarChannel emails the invitation with an iCalendar attachment so mail
// clients offer to add the event. A nil Mailer runs in demo mode.
type CalendarChannel struct {
	mailer Mailer
	from   string
	now    func() time.Time
}

func NewCalendarChannel(mailer Mailer, from string) *CalendarChannel {
	return &CalendarChannel{mailer: mailer, from: from, now: time.Now}
}

func (c *CalendarChannel) Method() store.Method { return store.MethodCalendar }

func (c *CalendarChannel) Send(ctx context.Context, recipient string, msg Message) (string, error) {
	if !ValidEmail(recipient) {
		return "", fmt.Errorf("invalid email address %q", recipient)
	}
	if len(msg.Calendar) == 0 {
		return "", errors.New("calendar invite is empty")
	}
	if c.mailer == nil {
		return "Calendar invite sent successfully (demo mode)", nil
	}
	err := c.mailer.Send(ctx, Email{
		From:    c.from,
		To:      []string{recipient},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		Date:    c.now(),
		Attachments: []Attachment{{
			Filename:    CalendarFilename,
			ContentType: CalendarContentType,
			Data:        msg.Calendar,
		}},
	})
	if err != nil {
		return "", err
	}
	return "Calendar invite sent successfully", nil
}
