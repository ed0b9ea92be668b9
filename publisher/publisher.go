package publisher

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"smartmeeting/store"
)

// DefaultSubject is used when the caller gives none.
const DefaultSubject = "Meeting Invitation"

// Channel delivers a message to one recipient. The returned note is shown
// to the caller on success.
type Channel interface {
	Method() store.Method
	Send(ctx context.Context, recipient string, msg Message) (string, error)
}

// Message is the content of one dispatch.
type Message struct {
	Subject string
	HTML    string
	Text    string
	// Calendar is an encoded iCalendar invite, required by the calendar channel.
	Calendar []byte
}

// RecipientResult is the outcome for a single recipient.
type RecipientResult struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
}

// Report aggregates one dispatch.
type Report struct {
	Method  store.Method
	Results []RecipientResult
	Sent    int
}

func (r Report) Total() int { return len(r.Results) }

// Status is sent when at least one recipient succeeded.
func (r Report) Status() store.Status {
	if r.Sent > 0 {
		return store.StatusSent
	}
	return store.StatusFailed
}

func (r Report) Partial() bool {
	return r.Sent > 0 && r.Sent < r.Total()
}

func (r Report) Summary() string {
	switch {
	case r.Total() > 0 && r.Sent == r.Total():
		return fmt.Sprintf("Successfully sent %d invitation(s)", r.Sent)
	case r.Sent > 0:
		return fmt.Sprintf("Partially successful: %d/%d sent", r.Sent, r.Total())
	default:
		return "Failed to send any invitations"
	}
}

// Publisher routes dispatches to the channel registered for each method.
type Publisher struct {
	channels map[store.Method]Channel
	logger   *zap.Logger
	tracer   trace.Tracer
}

func New(logger *zap.Logger, channels ...Channel) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{
		channels: make(map[store.Method]Channel, len(channels)),
		logger:   logger,
		tracer:   otel.Tracer("smartmeeting/publisher"),
	}
	for _, ch := range channels {
		p.channels[ch.Method()] = ch
	}
	return p
}

// Publish sends msg to every recipient in order, one attempt each. A failed
// recipient does not stop the others.
func (p *Publisher) Publish(ctx context.Context, method store.Method, recipients []string, msg Message) (Report, error) {
	ch, ok := p.channels[method]
	if !ok {
		return Report{}, fmt.Errorf("no channel registered for method %q", method)
	}

	ctx, span := p.tracer.Start(ctx, "publisher.Publish", trace.WithAttributes(
		attribute.String("dispatch.method", string(method)),
		attribute.Int("dispatch.recipients", len(recipients)),
	))
	defer span.End()

	report := Report{Method: method, Results: make([]RecipientResult, 0, len(recipients))}
	for _, rcpt := range recipients {
		rcpt = strings.TrimSpace(rcpt)
		note, err := ch.Send(ctx, rcpt, msg)
		if err != nil {
			p.logger.Warn("dispatch failed",
				zap.String("method", string(method)),
				zap.String("recipient", rcpt),
				zap.Error(err),
			)
			report.Results = append(report.Results, RecipientResult{Recipient: rcpt, Message: err.Error()})
			continue
		}
		report.Sent++
		report.Results = append(report.Results, RecipientResult{Recipient: rcpt, Success: true, Message: note})
	}

	span.SetAttributes(attribute.Int("dispatch.sent", report.Sent))
	p.logger.Info("dispatch finished",
		zap.String("method", string(method)),
		zap.Int("sent", report.Sent),
		zap.Int("total", report.Total()),
	)
	return report, nil
}

// Subject builds the email subject, appending the meeting topic when known.
func Subject(base, topic string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultSubject
	}
	if topic = strings.TrimSpace(topic); topic != "" {
		return base + ": " + topic
	}
	return base
}
