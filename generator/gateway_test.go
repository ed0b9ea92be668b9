package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartmeeting/invitation"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// blockingLLM waits for the context to end, like a hung upstream.
type blockingLLM struct{}

func (blockingLLM) Complete(ctx context.Context, _ Prompt) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

var fixedNow = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func testMeeting(t *testing.T) invitation.Meeting {
	t.Helper()
	m, err := invitation.Request{
		MeetingTopic: "Q3 Planning",
		SpeakerName:  "Dana",
		Date:         "2025-03-10",
		Time:         "14:00",
		Duration:     "1h",
		Priority:     "high",
	}.Normalize()
	require.NoError(t, err)
	return m
}

func newTestGateway(t *testing.T, llm LLMClient, opts ...GatewayOption) (*Gateway, *invitation.Renderer) {
	t.Helper()
	r := invitation.NewRenderer(invitation.WithClock(func() time.Time { return fixedNow }))
	opts = append([]GatewayOption{WithLogger(zap.NewNop())}, opts...)
	g, err := NewGateway(llm, r, opts...)
	require.NoError(t, err)
	return g, r
}

func TestNewGateway_RequiresRenderer(t *testing.T) {
	_, err := NewGateway(MockLLM{}, nil)
	assert.Error(t, err)
}

func TestGenerate_AISuccess(t *testing.T) {
	llm := new(mockLLM)
	llm.On("Complete", mock.Anything, mock.AnythingOfType("generator.Prompt")).
		Return("<div>AI body for Dana</div>", nil).Once()

	g, r := newTestGateway(t, llm)
	m := testMeeting(t)
	res := g.Generate(context.Background(), m)

	assert.Equal(t, SourceAI, res.Source)
	assert.NoError(t, res.Cause)
	assert.Equal(t, r.Wrap("<div>AI body for Dana</div>", m), res.HTML)
	assert.True(t, strings.HasPrefix(res.HTML, "<!DOCTYPE html>"))
	llm.AssertExpectations(t)
}

func TestGenerate_CodeFencedOutput(t *testing.T) {
	llm := new(mockLLM)
	llm.On("Complete", mock.Anything, mock.Anything).
		Return("```html\n<section>Hi</section>\n```", nil)

	g, r := newTestGateway(t, llm)
	m := testMeeting(t)
	res := g.Generate(context.Background(), m)

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, r.Wrap("<section>Hi</section>", m), res.HTML)
}

func TestGenerate_FailuresFallBack(t *testing.T) {
	tests := []struct {
		name string
		llm  func() LLMClient
		opts []GatewayOption
	}{
		{"upstream error", func() LLMClient {
			l := new(mockLLM)
			l.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("502 bad gateway"))
			return l
		}, nil},
		{"empty response", func() LLMClient {
			l := new(mockLLM)
			l.On("Complete", mock.Anything, mock.Anything).Return("   \n", nil)
			return l
		}, nil},
		{"non-html response", func() LLMClient {
			l := new(mockLLM)
			l.On("Complete", mock.Anything, mock.Anything).Return("Sure! Here is your invitation.", nil)
			return l
		}, nil},
		{"timeout", func() LLMClient { return blockingLLM{} }, []GatewayOption{WithTimeout(20 * time.Millisecond)}},
		{"no client", func() LLMClient { return nil }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, r := newTestGateway(t, tt.llm(), tt.opts...)
			m := testMeeting(t)

			res := g.Generate(context.Background(), m)

			assert.Equal(t, SourceFallback, res.Source)
			assert.Error(t, res.Cause)
			assert.Equal(t, r.RenderFallback(m), res.HTML)
		})
	}
}

func TestGenerate_CallerCancellation(t *testing.T) {
	g, r := newTestGateway(t, blockingLLM{}, WithTimeout(0))
	m := testMeeting(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := g.Generate(ctx, m)

	assert.Equal(t, SourceFallback, res.Source)
	assert.ErrorIs(t, res.Cause, context.Canceled)
	assert.Equal(t, r.RenderFallback(m), res.HTML)
}

func TestGenerate_MockLLM(t *testing.T) {
	g, _ := newTestGateway(t, MockLLM{})
	res := g.Generate(context.Background(), testMeeting(t))

	assert.Equal(t, SourceAI, res.Source)
	assert.Contains(t, res.HTML, "mock-invitation")
}
