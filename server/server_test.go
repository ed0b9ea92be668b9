package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartmeeting/apperrors"
	"smartmeeting/auth"
	"smartmeeting/generator"
	"smartmeeting/invitation"
	"smartmeeting/observability"
	"smartmeeting/publisher"
	"smartmeeting/store"
)

type captureMailer struct {
	sent []publisher.Email
}

func (m *captureMailer) Send(_ context.Context, e publisher.Email) error {
	if strings.HasPrefix(e.To[0], "bounce") {
		return errors.New("550 mailbox unavailable")
	}
	m.sent = append(m.sent, e)
	return nil
}

type testEnv struct {
	router  *chi.Mux
	store   *store.Memory
	mailer  *captureMailer
	metrics *observability.Collector
}

func newTestEnv(t *testing.T, llm generator.LLMClient) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	st := store.NewMemory()
	mailer := &captureMailer{}
	renderer := invitation.NewRenderer()

	gw, err := generator.NewGateway(llm, renderer, generator.WithLogger(logger))
	require.NoError(t, err)
	sessions, err := auth.NewSessions(auth.SessionConfig{Secret: "server-test-secret-server-test-secret", Issuer: "smartmeeting", TTL: time.Hour})
	require.NoError(t, err)
	metrics := observability.NewCollector("smartmeeting")

	srv, err := New(Deps{
		Store:    st,
		Gateway:  gw,
		Renderer: renderer,
		Publisher: publisher.New(logger,
			publisher.NewEmailChannel(mailer, "noreply@smartmeeting.ai"),
			publisher.NewMessagingChannel("", "", "", nil),
			publisher.NewCalendarChannel(mailer, "noreply@smartmeeting.ai"),
		),
		Sessions: sessions,
		Metrics:  metrics,
		Logger:   logger,
		Errors:   apperrors.NewHandler(logger, false),
		MailFrom: "noreply@smartmeeting.ai",
	})
	require.NoError(t, err)
	return &testEnv{router: srv.Routes(), store: st, mailer: mailer, metrics: metrics}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) register(t *testing.T, username, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "username": username, "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["token"].(string)
}

func meetingBody() map[string]any {
	return map[string]any{
		"meetingTopic":    "Q3 Planning",
		"speakerName":     "Dana Lee",
		"date":            "2026-10-15",
		"time":            "14:00",
		"duration":        "1 hour",
		"location":        "Room 4B",
		"priority":        "high",
		"attendees":       []string{"a@example.com", "Sam"},
		"additionalNotes": "<script>alert(1)</script>",
	}
}

func (e *testEnv) generate(t *testing.T, token string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/templates/generate", meetingBody(), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["templateId"].(string)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, Version, body["version"])
	assert.NotEmpty(t, body["timestamp"])

	rec = env.do(t, http.MethodGet, "/api/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "smartmeeting_http_requests_total")
}

func TestRequiresSession(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/api/dashboard", "/api/templates", "/api/auth/me", "/api/distributions"} {
		rec := env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := env.do(t, http.MethodGet, "/api/dashboard", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "Dana@Example.com", "username": "dana", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "dana@example.com", "username": "dana2", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "x@example.com", "username": "xy", "password": "123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "dana@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec)["token"].(string)

	rec = env.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "dana@example.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
}

func TestRegisterRejectsPasswordBeyondBcryptLimit(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "dana@example.com", "username": "dana", "password": strings.Repeat("a", 100),
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Contains(t, body["message"], "Invalid password")

	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "dana@example.com", "username": "dana", "password": strings.Repeat("a", auth.MaxPasswordBytes),
	}, "")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestLoginRejectsWrongPasswordWithoutCreatingAccounts(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "dana", "dana@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "dana@example.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ghost@example.com", "password": "whatever",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode(t, rec)["message"])

	_, err := env.store.GetOwnerByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGenerate_Fallback(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")

	rec := env.do(t, http.MethodPost, "/api/templates/generate", meetingBody(), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "fallback", body["source"])

	html := body["template"].(string)
	assert.Contains(t, html, "Q3 Planning")
	assert.Contains(t, html, "Dana Lee")
	assert.Contains(t, html, `data-priority`)
	assert.NotContains(t, html, "<script>alert(1)</script>")

	id := body["templateId"].(string)
	rec = env.do(t, http.MethodGet, "/api/templates/"+id, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	tpl := decode(t, rec)["template"].(map[string]any)
	assert.Equal(t, "Q3 Planning", tpl["title"])
	assert.Equal(t, "2026-10-15", tpl["meetingDate"])
	assert.Equal(t, "high", tpl["priority"])

	rec = env.do(t, http.MethodGet, "/api/templates", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["templates"], 1)
}

func TestGenerate_AI(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})
	token := env.register(t, "dana", "dana@example.com")

	rec := env.do(t, http.MethodPost, "/api/templates/generate", meetingBody(), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "ai", body["source"])
	assert.Equal(t, "Template generated successfully using AI", body["message"])
	assert.Contains(t, body["template"], "mock-invitation")
}

func TestGenerate_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")

	missing := meetingBody()
	delete(missing, "speakerName")
	rec := env.do(t, http.MethodPost, "/api/templates/generate", missing, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required field: speakerName", decode(t, rec)["message"])

	badDate := meetingBody()
	badDate["date"] = "15/10/2026"
	rec = env.do(t, http.MethodPost, "/api/templates/generate", badDate, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", decode(t, rec)["message"])

	badLink := meetingBody()
	badLink["meetingLink"] = "javascript:alert(1)"
	rec = env.do(t, http.MethodPost, "/api/templates/generate", badLink, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "meetingLink")

	unknown := meetingBody()
	unknown["colour"] = "red"
	rec = env.do(t, http.MethodPost, "/api/templates/generate", unknown, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/templates/generate", "{not json", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	templates, err := env.store.ListTemplates(context.Background(), ownerIDFor(t, env, "dana@example.com"))
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func ownerIDFor(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	o, err := env.store.GetOwnerByEmail(context.Background(), email)
	require.NoError(t, err)
	return o.ID
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")
	id := env.generate(t, token)

	rec := env.do(t, http.MethodGet, "/api/templates/"+id+"/download", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Q3_Planning_meeting_invitation.html")
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "Generated by SmartMeetingAI")

	rec = env.do(t, http.MethodGet, "/api/templates/"+id+"/calendar", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, publisher.CalendarContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Q3_Planning_meeting_invitation.ics")
	cal, err := ical.NewDecoder(rec.Body).Decode()
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
	attendees := cal.Events()[0].Props.Values(ical.PropAttendee)
	require.Len(t, attendees, 1)
	assert.Equal(t, "mailto:a@example.com", attendees[0].Value)
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.register(t, "dana", "dana@example.com")
	other := env.register(t, "sam", "sam@example.com")
	id := env.generate(t, owner)

	for _, path := range []string{"/api/templates/" + id, "/api/templates/" + id + "/download", "/api/templates/" + id + "/calendar"} {
		rec := env.do(t, http.MethodGet, path, nil, other)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	dispatches := map[string]map[string]any{
		"/api/distribution/email":     {"recipientEmail": "a@example.com", "templateId": id},
		"/api/distribution/calendar":  {"recipientEmail": "a@example.com", "templateId": id},
		"/api/distribution/messaging": {"phoneNumber": "+1 555 010 2000", "templateId": id},
	}
	for path, body := range dispatches {
		rec := env.do(t, http.MethodPost, path, body, other)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Template not found", decode(t, rec)["message"], path)
	}
	assert.Empty(t, env.mailer.sent)

	dists, err := env.store.ListDistributions(context.Background(), ownerIDFor(t, env, "dana@example.com"), 0)
	require.NoError(t, err)
	assert.Empty(t, dists)

	rec := env.do(t, http.MethodGet, "/api/templates/not-a-uuid", nil, owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatchEmail_PartialSuccess(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")
	id := env.generate(t, token)

	rec := env.do(t, http.MethodPost, "/api/distribution/email", map[string]any{
		"recipientEmails": []string{"a@example.com", "bounce@example.com", "c@example.com"},
		"templateId":      id,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Partially successful: 2/3 sent", body["message"])
	assert.Equal(t, true, body["partial"])
	assert.Equal(t, "sent", body["status"])
	assert.EqualValues(t, 2, body["sent"])
	assert.EqualValues(t, 3, body["total"])
	details := body["details"].([]any)
	require.Len(t, details, 3)
	assert.Equal(t, false, details[1].(map[string]any)["success"])

	require.Len(t, env.mailer.sent, 2)
	assert.Equal(t, "Meeting Invitation: Q3 Planning", env.mailer.sent[0].Subject)

	dists, err := env.store.ListDistributions(context.Background(), ownerIDFor(t, env, "dana@example.com"), 0)
	require.NoError(t, err)
	require.Len(t, dists, 1)
	assert.Equal(t, store.StatusSent, dists[0].Status)
	assert.Len(t, dists[0].Recipients, 3)
	assert.NotNil(t, dists[0].SentAt)
}

func TestDispatchEmail_AllFail(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")
	id := env.generate(t, token)

	rec := env.do(t, http.MethodPost, "/api/distribution/email", map[string]any{
		"recipientEmail": "bounce@example.com", "templateId": id, "subject": "Reminder",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "Failed to send any invitations", body["message"])
	assert.Equal(t, false, body["partial"])
}

func TestDispatchEmail_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")
	id := env.generate(t, token)

	rec := env.do(t, http.MethodPost, "/api/distribution/email", map[string]any{"templateId": id}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Recipient email(s) and template ID are required", decode(t, rec)["message"])

	rec = env.do(t, http.MethodPost, "/api/distribution/email", map[string]any{
		"recipientEmails": []string{"a@example.com", "nope", "also bad"}, "templateId": id,
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email format(s): nope, also bad", decode(t, rec)["message"])
	assert.Empty(t, env.mailer.sent)

	// validation runs before the template lookup
	rec = env.do(t, http.MethodPost, "/api/distribution/email", map[string]any{
		"recipientEmail": "nope", "templateId": "00000000-0000-0000-0000-000000000000",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchMessaging(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")
	id := env.generate(t, token)

	rec := env.do(t, http.MethodPost, "/api/distribution/messaging", map[string]any{
		"phoneNumber": "+1 (555) 123-4567", "templateId": id,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["details"].([]any)[0].(map[string]any)["message"], "demo mode")

	dists, err := env.store.ListDistributions(context.Background(), ownerIDFor(t, env, "dana@example.com"), 0)
	require.NoError(t, err)
	require.Len(t, dists, 1)
	assert.Equal(t, store.MethodMessaging, dists[0].Method)
	assert.Equal(t, "+15551234567", dists[0].Recipients[0].Phone)

	rec = env.do(t, http.MethodPost, "/api/distribution/messaging", map[string]any{
		"phoneNumber": "12-34", "templateId": id,
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid phone number format", decode(t, rec)["message"])

	rec = env.do(t, http.MethodPost, "/api/distribution/messaging", map[string]any{"templateId": id}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchCalendar(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")
	id := env.generate(t, token)

	rec := env.do(t, http.MethodPost, "/api/distribution/calendar", map[string]any{
		"recipientEmails": []string{"a@example.com", "b@example.com"}, "templateId": id,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Successfully sent 2 invitation(s)", decode(t, rec)["message"])

	require.Len(t, env.mailer.sent, 2)
	att := env.mailer.sent[0].Attachments
	require.Len(t, att, 1)
	assert.Equal(t, publisher.CalendarFilename, att[0].Filename)
	assert.Contains(t, string(att[0].Data), "DTSTART:20261015T140000")
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")

	rec := env.do(t, http.MethodGet, "/api/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 0, body["successRate"])
	assert.Empty(t, body["recentActivity"])

	id := env.generate(t, token)
	env.do(t, http.MethodPost, "/api/distribution/email", map[string]any{
		"recipientEmails": []string{"a@example.com", "c@example.com"}, "templateId": id,
	}, token)
	env.do(t, http.MethodPost, "/api/distribution/email", map[string]any{
		"recipientEmail": "bounce@example.com", "templateId": id,
	}, token)
	env.do(t, http.MethodPost, "/api/distribution/calendar", map[string]any{
		"recipientEmail": "a@example.com", "templateId": id,
	}, token)

	rec = env.do(t, http.MethodGet, "/api/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.EqualValues(t, 1, body["templatesGenerated"])
	assert.EqualValues(t, 2, body["invitationsSent"])
	assert.EqualValues(t, 4, body["totalRecipients"])
	assert.EqualValues(t, 1, body["calendarEvents"])
	assert.EqualValues(t, 66.7, body["successRate"])

	activity := body["recentActivity"].([]any)
	require.Len(t, activity, 3)
	first := activity[0].(map[string]any)
	assert.Equal(t, "Q3 Planning", first["title"])
	assert.Contains(t, first["description"], "Sent via ")

	rec = env.do(t, http.MethodGet, "/api/distributions?limit=2", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["distributions"], 2)

	rec = env.do(t, http.MethodGet, "/api/distributions?limit=-1", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAccountCascades(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")
	owner := ownerIDFor(t, env, "dana@example.com")
	id := env.generate(t, token)
	env.do(t, http.MethodPost, "/api/distribution/email", map[string]any{"recipientEmail": "a@example.com", "templateId": id}, token)

	rec := env.do(t, http.MethodDelete, "/api/account", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	templates, err := env.store.ListTemplates(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, templates)
	dists, err := env.store.ListDistributions(context.Background(), owner, 0)
	require.NoError(t, err)
	assert.Empty(t, dists)

	rec = env.do(t, http.MethodGet, "/api/dashboard", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "dana", "dana@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, successRate(0, 0))
	assert.Equal(t, 100.0, successRate(3, 3))
	assert.Equal(t, 66.7, successRate(2, 3))
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, true, decode(t, rec)["error"])
}
