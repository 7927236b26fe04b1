package notification

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// SendmailNotifier pipes messages to a local sendmail binary
type SendmailNotifier struct {
	path string
	from string
	run  func(path string, args []string, msg []byte) error
}

// NewSendmailNotifier creates a notifier that runs path -t -i
func NewSendmailNotifier(path, from string) *SendmailNotifier {
	return &SendmailNotifier{
		path: path,
		from: from,
		run:  runSendmail,
	}
}

// Send delivers the notification
func (n *SendmailNotifier) Send(notification Notification) error {
	if notification.To == "" {
		return fmt.Errorf("no recipient")
	}
	args := []string{"-t", "-i"}
	if n.from != "" {
		args = append(args, "-f", n.from)
	}
	return n.run(n.path, args, Compose(n.from, notification))
}

func runSendmail(path string, args []string, msg []byte) error {
	// #nosec G204 - sendmail path comes from operator configuration
	cmd := exec.Command(path, args...)
	cmd.Stdin = bytes.NewReader(msg)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return fmt.Errorf("%s: %w: %s", path, err, s)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
