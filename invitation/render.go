package invitation

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// FooterDateLayout is how generation dates are printed.
const FooterDateLayout = "January 02, 2006"

var (
	pages    = template.Must(template.New("invitation").Parse(invitationTemplates))
	download = template.Must(template.New("download").Parse(downloadTemplate))
)

// Renderer builds invitation documents. The zero value is not usable; use NewRenderer.
type Renderer struct {
	now func() time.Time
	md  goldmark.Markdown
}

type Option func(*Renderer)

// WithClock replaces time.Now for the footer date.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		now: time.Now,
		// The default goldmark renderer drops raw HTML, so agenda and notes
		// cannot inject markup.
		md: goldmark.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type pageData struct {
	Meeting      Meeting
	Style        template.CSS
	TypeBadge    string
	Priority     PriorityStyle
	BadgeStyle   template.CSS
	DetailsStyle template.CSS
	DurationText string
	LinkAttr     template.HTMLAttr
	AgendaHTML   template.HTML
	AttendeeLine string
	NotesHTML    template.HTML
	Body         template.HTML
	GeneratedOn  string
}

func (r *Renderer) pageData(m Meeting) pageData {
	p := Classify(m.Priority)
	badge := m.MeetingType
	if badge == "" {
		badge = "Meeting"
	}
	duration := m.Duration
	if duration == "" {
		duration = "TBD"
	}
	return pageData{
		Meeting:      m,
		Style:        template.CSS(baseStyle),
		TypeBadge:    badge,
		Priority:     p,
		BadgeStyle:   template.CSS("background-color: " + p.Accent + ";"),
		DetailsStyle: template.CSS("background-color: " + p.Background + "; border-left: 4px solid " + p.Accent + ";"),
		DurationText: duration,
		LinkAttr:     linkAttr(m.Link),
		GeneratedOn:  r.now().Format(FooterDateLayout),
	}
}

// linkAttr writes an absolute http(s) link into href as-is, so the anchor
// target reads exactly like its label. Other links get an inert href.
func linkAttr(link string) template.HTMLAttr {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return `href="#"`
	}
	return template.HTMLAttr(`href="` + html.EscapeString(link) + `"`)
}

// RenderFallback builds the complete field-by-field invitation for m.
// Optional sections appear in a fixed order and only when present.
func (r *Renderer) RenderFallback(m Meeting) string {
	data := r.pageData(m)
	data.AgendaHTML = r.markdown(m.Agenda)
	data.AttendeeLine = m.AttendeeLine()
	data.NotesHTML = r.markdown(m.Notes)
	return execute(pages, "fallback", data)
}

// Wrap places externally generated markup, unmodified, inside the branded
// header and footer.
func (r *Renderer) Wrap(raw string, m Meeting) string {
	data := r.pageData(m)
	data.Body = template.HTML(raw)
	return execute(pages, "wrap", data)
}

// DownloadDocument puts stored invitation content into a printable page.
func (r *Renderer) DownloadDocument(title, content string) string {
	return execute(download, "download", struct {
		Title   string
		Content template.HTML
		Date    string
	}{
		Title:   title,
		Content: template.HTML(content),
		Date:    r.now().Format(FooterDateLayout),
	})
}

// DownloadFilename returns the attachment name for a template title.
func DownloadFilename(title string) string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c == ' ':
			return '_'
		case c == '/' || c == '\\' || c == '"' || c < 0x20:
			return -1
		}
		return c
	}, strings.TrimSpace(title))
	if name == "" {
		name = "invitation"
	}
	return name + "_meeting_invitation.html"
}

func (r *Renderer) markdown(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(buf.String())
}

// execute runs a parsed template into a string. The templates are fixed at
// init and the data carries no user-controlled template types, so a failure
// here is a programming error.
func execute(t *template.Template, name string, data any) string {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		panic(fmt.Sprintf("invitation: render %s: %v", name, err))
	}
	return buf.String()
}
