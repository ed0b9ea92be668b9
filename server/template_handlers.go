package server

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"smartmeeting/apperrors"
	"smartmeeting/generator"
	"smartmeeting/invitation"
	"smartmeeting/publisher"
	"smartmeeting/store"
)

type generateResponse struct {
	Success    bool             `json:"success"`
	Template   string           `json:"template"`
	TemplateID string           `json:"templateId"`
	Source     generator.Source `json:"source"`
	Message    string           `json:"message"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req invitation.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.errors.Handle(w, r, err)
		return
	}

	// Normalize first so missing fields get their field-named message.
	meeting, err := req.Normalize()
	if err != nil {
		var fe *invitation.FieldError
		if errors.As(err, &fe) {
			s.errors.Handle(w, r, apperrors.NewValidationError(fe.Message).
				WithDetails(map[string]any{"field": fe.Field}))
			return
		}
		s.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}
	req.Date, req.Time, req.MeetingLink = meeting.DateText(), meeting.TimeText(), meeting.Link
	if err := s.validate.Struct(req); err != nil {
		s.errors.Handle(w, r, validationError(err))
		return
	}

	result := s.gateway.Generate(r.Context(), meeting)

	tpl := &store.Template{
		OwnerID:         ownerID(r),
		Title:           meeting.Topic,
		Content:         result.HTML,
		Source:          string(result.Source),
		MeetingTopic:    meeting.Topic,
		SpeakerName:     meeting.Speaker,
		MeetingDate:     meeting.DateText(),
		MeetingTime:     meeting.TimeText(),
		Duration:        meeting.Duration,
		MeetingLink:     meeting.Link,
		Location:        meeting.Location,
		Attendees:       meeting.Attendees,
		AdditionalNotes: meeting.Notes,
		Agenda:          meeting.Agenda,
		MeetingType:     meeting.MeetingType,
		Priority:        meeting.Priority,
	}
	if err := s.store.CreateTemplate(r.Context(), tpl); err != nil {
		s.errors.Handle(w, r, storeError(err, "Template"))
		return
	}
	if s.metrics != nil {
		s.metrics.InvitationGenerated(string(result.Source))
	}
	s.logger.Info("invitation generated",
		zap.String("template_id", tpl.ID),
		zap.String("source", string(result.Source)),
	)

	msg := "Template generated successfully using AI"
	if result.Source == generator.SourceFallback {
		msg = "Template generated using the standard layout"
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Success:    true,
		Template:   result.HTML,
		TemplateID: tpl.ID,
		Source:     result.Source,
		Message:    msg,
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.ListTemplates(r.Context(), ownerID(r))
	if err != nil {
		s.errors.Handle(w, r, storeError(err, "Template"))
		return
	}
	if templates == nil {
		templates = []store.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "templates": templates})
}

// ownedTemplate loads the {id} template of the caller; other owners' templates are not found.
func (s *Server) ownedTemplate(r *http.Request, id string) (*store.Template, error) {
	tpl, err := s.store.GetTemplate(r.Context(), ownerID(r), id)
	if err != nil {
		return nil, storeError(err, "Template")
	}
	return tpl, nil
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.ownedTemplate(r, chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "template": tpl})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.ownedTemplate(r, chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Handle(w, r, err)
		return
	}
	doc := s.renderer.DownloadDocument(tpl.Title, tpl.Content)
	writeAttachment(w, invitation.DownloadFilename(tpl.Title), "text/html; charset=utf-8", []byte(doc))
}

func (s *Server) handleCalendarFile(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.ownedTemplate(r, chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Handle(w, r, err)
		return
	}

	var attendees []string
	for _, a := range tpl.Attendees {
		if publisher.ValidEmail(a) {
			attendees = append(attendees, strings.TrimSpace(a))
		}
	}
	data, err := s.encodeInvite(tpl, attendees)
	if err != nil {
		s.errors.Handle(w, r, err)
		return
	}
	name := strings.TrimSuffix(invitation.DownloadFilename(tpl.Title), ".html") + ".ics"
	writeAttachment(w, name, publisher.CalendarContentType, data)
}

func (s *Server) encodeInvite(tpl *store.Template, attendees []string) ([]byte, error) {
	inv, err := publisher.InviteFromTemplate(tpl, s.mailFrom, attendees)
	if err != nil {
		return nil, apperrors.NewValidationError("Template has no usable meeting start time").WithCause(err)
	}
	data, err := inv.Encode(s.now())
	if err != nil {
		return nil, apperrors.NewInternalError("could not build calendar invite", err)
	}
	return data, nil
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
