package notify

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/raysh454/kanshi/internal/config"
	"github.com/raysh454/kanshi/internal/monitor"
)

// maxEmailDiffLines caps the diff included in a notification email.
const maxEmailDiffLines = 100

// EmailNotifier sends change notifications as multipart plain+HTML mail over
// SMTP with STARTTLS.
type EmailNotifier struct {
	cfg config.EmailConfig

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) Notify(_ context.Context, change *monitor.ChangeRecord) error {
	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPServer, e.cfg.SMTPPort)
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.SMTPServer)

	msg := e.buildMessage(change)
	if err := e.send(addr, auth, e.cfg.FromAddr, []string{e.cfg.ToAddr}, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func (e *EmailNotifier) buildMessage(change *monitor.ChangeRecord) []byte {
	boundary := "kanshi-" + change.ID

	diff := change.Diff
	if len(diff) > maxEmailDiffLines {
		diff = diff[:maxEmailDiffLines]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.cfg.FromAddr)
	fmt.Fprintf(&b, "To: %s\r\n", e.cfg.ToAddr)
	fmt.Fprintf(&b, "Subject: [kanshi] Change detected on %s\r\n", change.TargetName)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	// Plain text part
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString("Website Change Detected!\r\n\r\n")
	fmt.Fprintf(&b, "Target: %s\r\n", change.TargetName)
	fmt.Fprintf(&b, "URL: %s\r\n", change.URL)
	fmt.Fprintf(&b, "Time: %s\r\n\r\n", change.Timestamp)
	fmt.Fprintf(&b, "Old Hash: %s\r\n", change.OldHash)
	fmt.Fprintf(&b, "New Hash: %s\r\n\r\n", change.NewHash)
	b.WriteString("Diff:\r\n")
	for _, line := range diff {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")

	// HTML part
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString("<html><body>\r\n")
	b.WriteString(`<h2 style="color: #FF6B6B;">Website Change Detected!</h2>` + "\r\n")
	b.WriteString("<table>\r\n")
	fmt.Fprintf(&b, "<tr><td><strong>Target:</strong></td><td>%s</td></tr>\r\n", html.EscapeString(change.TargetName))
	fmt.Fprintf(&b, `<tr><td><strong>URL:</strong></td><td><a href=%q>%s</a></td></tr>`+"\r\n",
		change.URL, html.EscapeString(change.URL))
	fmt.Fprintf(&b, "<tr><td><strong>Time:</strong></td><td>%s</td></tr>\r\n", change.Timestamp)
	b.WriteString("</table>\r\n<h3>Changes:</h3>\r\n")
	b.WriteString(`<pre style="background: #f4f4f4; padding: 10px; font-family: monospace;">` + "\r\n")
	for _, line := range diff {
		escaped := html.EscapeString(line)
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			fmt.Fprintf(&b, `<span style="color: green;">%s</span><br>`+"\r\n", escaped)
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			fmt.Fprintf(&b, `<span style="color: red;">%s</span><br>`+"\r\n", escaped)
		default:
			fmt.Fprintf(&b, "%s<br>\r\n", escaped)
		}
	}
	b.WriteString("</pre>\r\n")
	b.WriteString("<p><small>Sent by kanshi</small></p>\r\n")
	b.WriteString("</body></html>\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
