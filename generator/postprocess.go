package generator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyOutput   = errors.New("model returned empty output")
	ErrNotHTMLOutput = errors.New("model output is not html")
)

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n(.*?)\n?```$")

// PostProcess validates raw model output and returns the markup to embed.
// A single surrounding Markdown code fence is removed; the result must start
// with a tag.
func PostProcess(raw string) (string, error) {
	out := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(out); m != nil {
		out = strings.TrimSpace(m[1])
	}
	if out == "" {
		return "", ErrEmptyOutput
	}
	if !strings.HasPrefix(out, "<") {
		return "", ErrNotHTMLOutput
	}
	return out, nil
}
