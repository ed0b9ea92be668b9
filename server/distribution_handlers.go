package server

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartmeeting/apperrors"
	"smartmeeting/publisher"
	"smartmeeting/store"
)

type emailDispatchRequest struct {
	RecipientEmails []string `json:"recipientEmails" validate:"max=200"`
	RecipientEmail  string   `json:"recipientEmail"`
	TemplateID      string   `json:"templateId"`
	Subject         string   `json:"subject" validate:"max=200"`
}

func (req emailDispatchRequest) recipients() []string {
	return mergeRecipients(req.RecipientEmails, req.RecipientEmail)
}

type messagingDispatchRequest struct {
	PhoneNumbers []string `json:"phoneNumbers" validate:"max=200"`
	PhoneNumber  string   `json:"phoneNumber"`
	TemplateID   string   `json:"templateId"`
}

type dispatchResponse struct {
	Success        bool                        `json:"success"`
	Partial        bool                        `json:"partial"`
	Message        string                      `json:"message"`
	Status         store.Status                `json:"status"`
	Sent           int                         `json:"sent"`
	Total          int                         `json:"total"`
	DistributionID string                      `json:"distributionId"`
	Details        []publisher.RecipientResult `json:"details"`
}

// mergeRecipients accepts the list form, falling back to the single-value form.
func mergeRecipients(list []string, single string) []string {
	var out []string
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		if single = strings.TrimSpace(single); single != "" {
			out = append(out, single)
		}
	}
	return out
}

func invalidEmails(addrs []string) []string {
	var bad []string
	for _, a := range addrs {
		if !publisher.ValidEmail(a) {
			bad = append(bad, a)
		}
	}
	return bad
}

func (s *Server) handleDispatchEmail(w http.ResponseWriter, r *http.Request) {
	s.dispatchByEmail(w, r, store.MethodEmail)
}

func (s *Server) handleDispatchCalendar(w http.ResponseWriter, r *http.Request) {
	s.dispatchByEmail(w, r, store.MethodCalendar)
}

func (s *Server) dispatchByEmail(w http.ResponseWriter, r *http.Request, method store.Method) {
	var req emailDispatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errors.Handle(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errors.Handle(w, r, validationError(err))
		return
	}
	recipients := req.recipients()
	if len(recipients) == 0 || strings.TrimSpace(req.TemplateID) == "" {
		s.errors.Handle(w, r, apperrors.NewValidationError("Recipient email(s) and template ID are required"))
		return
	}
	if bad := invalidEmails(recipients); len(bad) > 0 {
		s.errors.Handle(w, r, apperrors.NewValidationError("Invalid email format(s): "+strings.Join(bad, ", ")).
			WithDetails(map[string]any{"invalid": bad}))
		return
	}

	tpl, err := s.ownedTemplate(r, strings.TrimSpace(req.TemplateID))
	if err != nil {
		s.errors.Handle(w, r, err)
		return
	}

	msg := publisher.NewMessage(tpl, req.Subject)
	if method == store.MethodCalendar {
		if msg.Calendar, err = s.encodeInvite(tpl, recipients); err != nil {
			s.errors.Handle(w, r, err)
			return
		}
	}

	descriptors := make([]store.Recipient, len(recipients))
	for i, e := range recipients {
		descriptors[i] = store.Recipient{Email: e}
	}
	s.dispatch(w, r, tpl, method, recipients, descriptors, msg)
}

func (s *Server) handleDispatchMessaging(w http.ResponseWriter, r *http.Request) {
	var req messagingDispatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errors.Handle(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errors.Handle(w, r, validationError(err))
		return
	}
	phones := mergeRecipients(req.PhoneNumbers, req.PhoneNumber)
	if len(phones) == 0 || strings.TrimSpace(req.TemplateID) == "" {
		s.errors.Handle(w, r, apperrors.NewValidationError("Phone number and template ID are required"))
		return
	}
	descriptors := make([]store.Recipient, len(phones))
	for i, p := range phones {
		if err := s.validate.Var(p, "phone"); err != nil {
			s.errors.Handle(w, r, apperrors.NewValidationError("Invalid phone number format").
				WithDetails(map[string]any{"invalid": p}))
			return
		}
		normalized, _ := publisher.NormalizePhone(p)
		descriptors[i] = store.Recipient{Phone: normalized}
	}

	tpl, err := s.ownedTemplate(r, strings.TrimSpace(req.TemplateID))
	if err != nil {
		s.errors.Handle(w, r, err)
		return
	}
	s.dispatch(w, r, tpl, store.MethodMessaging, phones, descriptors, publisher.NewMessage(tpl, ""))
}

// dispatch sends to every recipient, records one Distribution and reports
// per-recipient outcomes.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, tpl *store.Template, method store.Method,
	recipients []string, descriptors []store.Recipient, msg publisher.Message) {
	report, err := s.publisher.Publish(r.Context(), method, recipients, msg)
	if err != nil {
		s.errors.Handle(w, r, apperrors.NewUnavailableError(string(method)+" channel", err))
		return
	}

	sentAt := s.now().UTC()
	dist := &store.Distribution{
		OwnerID:    tpl.OwnerID,
		TemplateID: tpl.ID,
		Method:     method,
		Recipients: descriptors,
		Status:     report.Status(),
		SentAt:     &sentAt,
	}
	// The sends already happened; record them even if the client went away.
	// ErrNotFound here means the template vanished after lookup.
	if err := s.store.CreateDistribution(context.WithoutCancel(r.Context()), dist); err != nil {
		s.errors.Handle(w, r, storeError(err, "Template"))
		return
	}
	if s.metrics != nil {
		s.metrics.DispatchRecorded(string(method), string(dist.Status), report.Sent, report.Total()-report.Sent)
	}

	writeJSON(w, http.StatusOK, dispatchResponse{
		Success:        report.Sent > 0,
		Partial:        report.Partial(),
		Message:        report.Summary(),
		Status:         dist.Status,
		Sent:           report.Sent,
		Total:          report.Total(),
		DistributionID: dist.ID,
		Details:        report.Results,
	})
}

func (s *Server) handleListDistributions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errors.Handle(w, r, apperrors.NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	dists, err := s.store.ListDistributions(r.Context(), ownerID(r), limit)
	if err != nil {
		s.errors.Handle(w, r, storeError(err, "Distribution"))
		return
	}
	if dists == nil {
		dists = []store.Distribution{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "distributions": dists})
}

type activityView struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Timestamp   string       `json:"timestamp"`
	Status      store.Status `json:"status"`
}

type dashboardResponse struct {
	TemplatesGenerated int            `json:"templatesGenerated"`
	InvitationsSent    int            `json:"invitationsSent"`
	TotalRecipients    int            `json:"totalRecipients"`
	CalendarEvents     int            `json:"calendarEvents"`
	SuccessRate        float64        `json:"successRate"`
	RecentActivity     []activityView `json:"recentActivity"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := ownerID(r)
	stats, err := s.store.Stats(r.Context(), id)
	if err != nil {
		s.errors.Handle(w, r, storeError(err, "Owner"))
		return
	}
	recent, err := s.store.RecentActivity(r.Context(), id, recentActivityLimit)
	if err != nil {
		s.errors.Handle(w, r, storeError(err, "Owner"))
		return
	}

	resp := dashboardResponse{
		TemplatesGenerated: stats.TemplatesGenerated,
		InvitationsSent:    stats.InvitationsSent,
		TotalRecipients:    stats.TotalRecipients,
		CalendarEvents:     stats.CalendarEvents,
		SuccessRate:        successRate(stats.InvitationsSent, stats.TotalDistributions),
		RecentActivity:     make([]activityView, 0, len(recent)),
	}
	for _, a := range recent {
		title := a.TemplateTitle
		if title == "" {
			title = "Unknown Template"
		}
		resp.RecentActivity = append(resp.RecentActivity, activityView{
			ID:          a.DistributionID,
			Type:        "invitation_sent",
			Title:       title,
			Description: fmt.Sprintf("Sent via %s", a.Method),
			Timestamp:   a.Timestamp.UTC().Format(time.RFC3339),
			Status:      a.Status,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// successRate is the share of distributions that reached at least one
// recipient, as a percentage with one decimal.
func successRate(sent, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(sent)/float64(total)*1000) / 10
}
