package generator

// Source says where an invitation body came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Result is the outcome of one generation. HTML is always a complete document.
type Result struct {
	HTML   string
	Source Source
	// Cause is why the fallback was used; nil for AI output.
	Cause error
}
