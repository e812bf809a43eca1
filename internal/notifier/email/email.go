// Package email implements an SMTP-based email notifier
package email

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/newthinker/finsight/internal/notifier"
)

// Email implements the Notifier interface for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a new Email notifier
func New(host string, port int, username, password, from string, to []string) *Email {
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		sendMail: smtp.SendMail,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Init(cfg notifier.Config) error {
	if host := cfg.String("host"); host != "" {
		e.host = host
	}
	if port := cfg.Int("port"); port != 0 {
		e.port = port
	}
	if username := cfg.String("username"); username != "" {
		e.username = username
	}
	if password := cfg.String("password"); password != "" {
		e.password = password
	}
	if from := cfg.String("from"); from != "" {
		e.from = from
	}
	if to := cfg.Strings("to"); len(to) > 0 {
		e.to = to
	}

	if e.host == "" || e.from == "" || len(e.to) == 0 {
		return fmt.Errorf("email: host, from, and to are required")
	}
	if e.port == 0 {
		e.port = 587
	}
	if e.sendMail == nil {
		e.sendMail = smtp.SendMail
	}
	return nil
}

// Send mails the notice. net/smtp has no context support, so ctx is only
// checked before dialing.
func (e *Email) Send(ctx context.Context, n notifier.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.sendEmail(n.Title(), formatHTML(n))
}

func formatHTML(n notifier.Notice) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(n.Title())))
	sb.WriteString(fmt.Sprintf("<p>Generated at: %s</p>", n.CreatedAt.Format("2006-01-02 15:04:05")))

	sb.WriteString("<table><tr><th>Ticker</th><th>Name</th><th>Summary</th></tr>")
	rows := append([]notifier.CompanyLine{}, n.Companies...)
	if n.Benchmark.Ticker != "" {
		rows = append(rows, n.Benchmark)
	}
	for _, c := range rows {
		color := "#28a745" // green for gains
		if c.Return.Valid && c.Return.Float64 < 0 {
			color = "#dc3545"
		}
		sb.WriteString(fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td style="color: %s;">%s</td></tr>`,
			html.EscapeString(c.Ticker), html.EscapeString(c.Name), color, html.EscapeString(c.Line())))
	}
	sb.WriteString("</table>")

	if len(n.Diagnostics) > 0 {
		sb.WriteString("<ul>")
		for _, d := range n.Diagnostics {
			sb.WriteString("<li>" + html.EscapeString(d) + "</li>")
		}
		sb.WriteString("</ul>")
	}
	if n.Commentary != "" {
		sb.WriteString("<p>" + html.EscapeString(n.Commentary) + "</p>")
	}
	sb.WriteString(fmt.Sprintf("<p><small>Report %s</small></p>", html.EscapeString(n.ReportID)))
	sb.WriteString("</body></html>")
	return sb.String()
}

func (e *Email) sendEmail(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s",
		e.from,
		strings.Join(e.to, ","),
		subject,
		body,
	)

	if err := e.sendMail(addr, auth, e.from, e.to, []byte(msg)); err != nil {
		return fmt.Errorf("email: send failed: %w", err)
	}
	return nil
}
