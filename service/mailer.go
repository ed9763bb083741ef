package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Attachment is a file sent with an email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailMessage is an HTML email with optional attachments
type EmailMessage struct {
	To          []string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// BuildMIME encodes msg as a multipart/mixed RFC 822 message
func BuildMIME(from string, msg EmailMessage) ([]byte, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("email has no recipients")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	headers := []string{
		"From: " + from,
		"To: " + strings.Join(msg.To, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=" + writer.Boundary(),
	}
	if msg.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+msg.ReplyTo)
	}
	var out bytes.Buffer
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")

	body, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=utf-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := body.Write(wrapBase64([]byte(msg.HTMLBody))); err != nil {
		return nil, fmt.Errorf("failed to write body: %w", err)
	}

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, a.Filename)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", a.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := part.Write(wrapBase64(a.Data)); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", a.Filename, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

// wrapBase64 encodes data in 76-character lines
func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b bytes.Buffer
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	return b.Bytes()
}

// GmailMailer sends mail through the Gmail API as sender, using a service account
// with domain-wide delegation
type GmailMailer struct {
	client *gmail.Service
	sender string
}

// NewGmailMailer creates a Gmail client impersonating sender
// credentialsPath should be the path to the Service Account JSON file
func NewGmailMailer(ctx context.Context, credentialsPath, sender string) (*GmailMailer, error) {
	credentials, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(credentials, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	cfg.Subject = sender

	client, err := gmail.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &GmailMailer{client: client, sender: sender}, nil
}

// Send delivers msg
func (m *GmailMailer) Send(ctx context.Context, msg EmailMessage) error {
	raw, err := BuildMIME(m.sender, msg)
	if err != nil {
		return err
	}

	sent, err := m.client.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		log.Printf("❌ GmailMailer: Failed to send %q to %v: %v", msg.Subject, msg.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("✅ GmailMailer: Sent %q to %v (message id=%s)", msg.Subject, msg.To, sent.Id)
	return nil
}
