package notification

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
)

// sendMailFunc matches smtp.SendMail
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier submits messages to an SMTP server
type SMTPNotifier struct {
	addr     string
	host     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

// NewSMTPNotifier creates a notifier for host:port. Credentials are optional.
func NewSMTPNotifier(host string, port int, from, username, password string) *SMTPNotifier {
	n := &SMTPNotifier{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		host:     host,
		from:     from,
		sendMail: smtp.SendMail,
	}
	if username != "" {
		n.auth = smtp.PlainAuth("", username, password, host)
	}
	return n
}

// Send delivers the notification
func (n *SMTPNotifier) Send(notification Notification) error {
	if notification.To == "" {
		return fmt.Errorf("no recipient")
	}
	msg := Compose(n.from, notification)
	if err := n.sendMail(n.addr, n.auth, n.from, []string{notification.To}, msg); err != nil {
		return fmt.Errorf("smtp submission to %s failed: %w", n.addr, err)
	}
	return nil
}
