package publisher

import (
	"fmt"
	"strings"

	"smartmeeting/store"
)

// InvitationText is the plain-text digest of a stored invitation, used for
// the text part of emails, messaging bodies and calendar descriptions.
func InvitationText(t *store.Template) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You're invited: %s\n", t.MeetingTopic)
	fmt.Fprintf(&b, "Speaker: %s\n", t.SpeakerName)
	fmt.Fprintf(&b, "When: %s at %s", t.MeetingDate, t.MeetingTime)
	if t.Duration != "" {
		fmt.Fprintf(&b, " (%s)", t.Duration)
	}
	b.WriteString("\n")
	if t.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", t.Location)
	}
	if t.MeetingLink != "" {
		fmt.Fprintf(&b, "Join: %s\n", t.MeetingLink)
	}
	if t.Agenda != "" {
		fmt.Fprintf(&b, "\nAgenda:\n%s\n", strings.TrimSpace(t.Agenda))
	}
	if t.AdditionalNotes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", strings.TrimSpace(t.AdditionalNotes))
	}
	return b.String()
}

// NewMessage builds the dispatch content for a stored invitation.
func NewMessage(t *store.Template, subject string) Message {
	return Message{
		Subject: Subject(subject, t.MeetingTopic),
		HTML:    t.Content,
		Text:    InvitationText(t),
	}
}

// digest compacts whitespace and cuts s to at most limit runes.
func digest(s string, limit int) string {
	joined := strings.Join(strings.Fields(s), " ")
	r := []rune(joined)
	if len(r) <= limit {
		return joined
	}
	return string(r[:limit-1]) + "…"
}
