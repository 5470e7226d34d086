package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	htmltemplate "html/template"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"school-job-scout/internal/config"
	"school-job-scout/internal/scraper"
)

var emailText = texttemplate.Must(texttemplate.New("text").Parse(
	`{{.Intro}}
{{range .Jobs}}
• {{.Title}}
  District: {{.District}}
  URL: {{.URL}}
{{end}}`))

var emailHTML = htmltemplate.Must(htmltemplate.New("html").Parse(`<html>
<body>
  <h2>{{.Heading}}</h2>
  <p>{{.Intro}}</p>
  {{if .Jobs}}<ul>
  {{range .Jobs}}<li>
    <strong>{{.Title}}</strong><br>
    District: {{.District}}<br>
    <a href="{{.URL}}">View Posting</a>
  </li><br>
  {{end}}</ul>{{end}}
  <p><em>Sent by school-job-scout</em></p>
</body>
</html>`))

type emailData struct {
	Heading string
	Intro   string
	Jobs    []scraper.Job
}

type deliverFunc func(ctx context.Context, msg []byte) error

// Email sends through an SMTP server that speaks implicit TLS (Gmail on 465).
type Email struct {
	from string
	to   []string
	host string
	port int

	deliver deliverFunc
	now     func() time.Time
}

func NewEmail(cfg config.EmailConfig) *Email {
	e := &Email{
		from: cfg.From,
		to:   splitAddresses(cfg.To),
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		now:  time.Now,
	}
	if e.host == "" {
		e.host = "smtp.gmail.com"
	}
	if e.port == 0 {
		e.port = 465
	}
	e.deliver = func(ctx context.Context, msg []byte) error {
		return sendTLS(ctx, e.host, e.port, e.from, cfg.Password, e.to, msg)
	}
	return e
}

func (e *Email) Name() string { return ChannelEmail }

func (e *Email) Notify(ctx context.Context, jobs []scraper.Job, _ int) error {
	if len(jobs) == 0 {
		return nil
	}
	subject := fmt.Sprintf("🎓 %d Social Studies Teaching Position%s Found!", len(jobs), plural(len(jobs)))
	return e.send(ctx, subject, emailData{
		Heading: subject,
		Intro:   fmt.Sprintf("Found %d new social studies teaching position%s:", len(jobs), plural(len(jobs))),
		Jobs:    jobs,
	})
}

// SendStatus reports a finished run even when nothing new turned up.
func (e *Email) SendStatus(ctx context.Context, total int, newJobs []scraper.Job) error {
	subject := fmt.Sprintf("Job Scout: %d new of %d social studies position%s", len(newJobs), total, plural(total))
	if len(newJobs) > 0 {
		subject = "🎓 " + subject
	}
	intro := fmt.Sprintf("Run finished at %s. %d matching position%s are listed, none of them new.",
		e.now().Format("2006-01-02 15:04"), total, plural(total))
	if len(newJobs) > 0 {
		intro = fmt.Sprintf("Run finished at %s. %d matching position%s are listed, %d new:",
			e.now().Format("2006-01-02 15:04"), total, plural(total), len(newJobs))
	}
	return e.send(ctx, subject, emailData{Heading: subject, Intro: intro, Jobs: newJobs})
}

func (e *Email) send(ctx context.Context, subject string, data emailData) error {
	msg, err := e.compose(subject, data)
	if err != nil {
		return err
	}
	if err := e.deliver(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// compose builds a multipart/alternative message with text and HTML parts.
func (e *Email) compose(subject string, data emailData) ([]byte, error) {
	var text, html bytes.Buffer
	if err := emailText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render email text: %w", err)
	}
	if err := emailHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render email html: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct {
		contentType string
		content     []byte
	}{
		{"text/plain; charset=utf-8", text.Bytes()},
		{"text/html; charset=utf-8", html.Bytes()},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(part.content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", e.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func sendTLS(ctx context.Context, host string, port int, from, password string, to []string, msg []byte) error {
	d := tls.Dialer{Config: &tls.Config{ServerName: host}}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", from, password, host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func splitAddresses(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
