package generator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"smartmeeting/invitation"
)

// DefaultTimeout bounds a single LLM call.
const DefaultTimeout = 30 * time.Second

var errNoLLM = errors.New("no llm client configured")

// Gateway produces invitation documents, preferring the LLM and falling back
// to deterministic rendering. Generate never fails.
type Gateway struct {
	llm      LLMClient
	renderer *invitation.Renderer
	timeout  time.Duration
	logger   *zap.Logger
	tracer   trace.Tracer
}

type GatewayOption func(*Gateway)

// WithTimeout sets the per-call LLM timeout. Zero leaves only the caller's deadline.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

func WithLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = logger }
}

// NewGateway builds a Gateway. llm may be nil, in which case every
// invitation is rendered by the fallback path.
func NewGateway(llm LLMClient, renderer *invitation.Renderer, opts ...GatewayOption) (*Gateway, error) {
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}
	g := &Gateway{
		llm:      llm,
		renderer: renderer,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("smartmeeting/generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate returns a complete invitation document for m.
func (g *Gateway) Generate(ctx context.Context, m invitation.Meeting) Result {
	ctx, span := g.tracer.Start(ctx, "generator.Generate")
	defer span.End()

	body, err := g.complete(ctx, m)
	if err != nil {
		g.logger.Warn("llm generation failed, using fallback renderer",
			zap.String("topic", m.Topic),
			zap.Error(err),
		)
		span.SetAttributes(attribute.String("invitation.source", string(SourceFallback)))
		span.RecordError(err)
		return Result{HTML: g.renderer.RenderFallback(m), Source: SourceFallback, Cause: err}
	}

	span.SetAttributes(attribute.String("invitation.source", string(SourceAI)))
	return Result{HTML: g.renderer.Wrap(body, m), Source: SourceAI}
}

func (g *Gateway) complete(ctx context.Context, m invitation.Meeting) (string, error) {
	if g.llm == nil {
		return "", errNoLLM
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	raw, err := g.llm.Complete(ctx, BuildInvitationPrompt(m))
	if err != nil {
		return "", err
	}
	return PostProcess(raw)
}
