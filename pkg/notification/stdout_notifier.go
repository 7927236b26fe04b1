package notification

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// StdoutNotifier prints messages instead of delivering them (dry run)
type StdoutNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdoutNotifier creates a new stdout notifier. A nil writer means os.Stdout.
func NewStdoutNotifier(w io.Writer) *StdoutNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutNotifier{w: w}
}

// Send prints the notification
func (n *StdoutNotifier) Send(notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.w, "[MAIL] To: %s Subject: %s\n%s\n",
		notification.To,
		notification.Subject,
		notification.Message)
	return err
}
