package generator

import (
	"context"
	"html"
	"strings"
)

// MockLLM is a local stand-in that never calls a remote model.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString(`<div class="mock-invitation">`)
	sb.WriteString("<h2>You're invited</h2>")
	sb.WriteString("<p>This invitation was produced by the mock generator from the following request:</p>")
	sb.WriteString("<pre>")
	sb.WriteString(html.EscapeString(prompt.User))
	sb.WriteString("</pre>")
	sb.WriteString("</div>")
	return sb.String(), nil
}
