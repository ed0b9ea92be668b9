package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartmeeting/store"
)

// Email is a fully addressed message ready for a Mailer.
type Email struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
	Date        time.Time
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Mailer hands an Email to a transport.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// Bytes encodes e as an RFC 5322 message: a multipart/mixed envelope with a
// text/HTML alternative part followed by any attachments.
func (e Email) Bytes() ([]byte, error) {
	if e.From == "" || len(e.To) == 0 {
		return nil, errors.New("email requires a sender and at least one recipient")
	}
	date := e.Date
	if date.IsZero() {
		date = time.Now()
	}

	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	hdr := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	hdr("From", e.From)
	hdr("To", strings.Join(e.To, ", "))
	hdr("Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	hdr("Date", date.Format(time.RFC1123Z))
	hdr("Message-ID", fmt.Sprintf("<%s@smartmeeting>", uuid.NewString()))
	hdr("MIME-Version", "1.0")
	hdr("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mixed.Boundary()))
	buf.WriteString("\r\n")

	var altBody bytes.Buffer
	alt := multipart.NewWriter(&altBody)
	if err := writeQuotedPart(alt, "text/plain; charset=utf-8", e.Text); err != nil {
		return nil, err
	}
	if err := writeQuotedPart(alt, "text/html; charset=utf-8", e.HTML); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}

	altPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(altBody.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range e.Attachments {
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {a.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, err
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeQuotedPart(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

// writeBase64 wraps encoded data at 76 columns.
func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", enc[:76]); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", enc)
	return err
}

// EmailChannel sends the invitation as an HTML email. With a nil Mailer it
// runs in demo mode and reports success without sending.
type EmailChannel struct {
	mailer Mailer
	from   string
	now    func() time.Time
}

func NewEmailChannel(mailer Mailer, from string) *EmailChannel {
	return &EmailChannel{mailer: mailer, from: from, now: time.Now}
}

func (c *EmailChannel) Method() store.Method { return store.MethodEmail }

func (c *EmailChannel) Send(ctx context.Context, recipient string, msg Message) (string, error) {
	if !ValidEmail(recipient) {
		return "", fmt.Errorf("invalid email address %q", recipient)
	}
	if c.mailer == nil {
		return "Email sent successfully (demo mode)", nil
	}
	err := c.mailer.Send(ctx, Email{
		From:    c.from,
		To:      []string{recipient},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		Date:    c.now(),
	})
	if err != nil {
		return "", err
	}
	return "Email sent successfully", nil
}
