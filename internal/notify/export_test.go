package notify

import (
	"net/smtp"

	"github.com/raysh454/kanshi/internal/config"
)

// NewEmailNotifierForTest builds an EmailNotifier whose SMTP send is replaced
// by the given function, so tests can inspect the generated message.
func NewEmailNotifierForTest(send func(addr string, from string, to []string, msg []byte) error) *EmailNotifier {
	n := NewEmailNotifier(config.EmailConfig{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		Username:   "user",
		Password:   "pass",
		FromAddr:   "from@example.com",
		ToAddr:     "to@example.com",
	})
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		return send(addr, from, to, msg)
	}
	return n
}
