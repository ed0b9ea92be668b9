package generator

import (
	"fmt"
	"strings"

	"smartmeeting/invitation"
)

// Prompt is the message pair sent to the LLM.
type Prompt struct {
	System string
	User   string
}

const systemPrompt = "You are an expert email designer and meeting coordinator. " +
	"Create beautiful, professional HTML email templates for meeting invitations. " +
	"Return only the complete HTML content with embedded CSS styling, no explanations."

// BuildInvitationPrompt describes the meeting to the model. Missing values
// are spelled out so the model does not invent them.
func BuildInvitationPrompt(m invitation.Meeting) Prompt {
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	attendees := "TBD"
	if len(m.Attendees) > 0 {
		attendees = m.AttendeeLine()
	}

	var sb strings.Builder
	sb.WriteString("Create a professional, visually appealing HTML meeting invitation with the following details:\n\n")
	sb.WriteString(fmt.Sprintf("Meeting Topic: %s\n", orDefault(m.Topic, "Meeting")))
	sb.WriteString(fmt.Sprintf("Speaker: %s\n", orDefault(m.Speaker, "TBD")))
	sb.WriteString(fmt.Sprintf("Date: %s\n", m.DateText()))
	sb.WriteString(fmt.Sprintf("Time: %s\n", m.TimeText()))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", orDefault(m.Duration, "TBD")))
	sb.WriteString(fmt.Sprintf("Location: %s\n", orDefault(m.Location, "TBD")))
	sb.WriteString(fmt.Sprintf("Meeting Link: %s\n", orDefault(m.Link, "TBD")))
	sb.WriteString(fmt.Sprintf("Meeting Type: %s\n", orDefault(m.MeetingType, "General Meeting")))
	sb.WriteString(fmt.Sprintf("Priority: %s\n", invitation.Classify(m.Priority).Label))
	sb.WriteString(fmt.Sprintf("Agenda: %s\n", orDefault(m.Agenda, "To be discussed")))
	sb.WriteString(fmt.Sprintf("Attendees: %s\n", attendees))
	sb.WriteString(fmt.Sprintf("Additional Notes: %s\n\n", orDefault(m.Notes, "None")))
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Use inline CSS only, suitable for email clients.\n")
	sb.WriteString("- Use a clean layout with a clear hierarchy for the meeting details.\n")
	sb.WriteString("- Highlight the date, time and meeting link.\n")
	sb.WriteString("- Include a polite call to action asking recipients to confirm attendance.\n")
	sb.WriteString("- Output HTML only, starting with an HTML tag.\n")

	return Prompt{
		System: systemPrompt,
		User:   sb.String(),
	}
}
