package notification

import (
	"os"
	"time"
)

// ContextNotifier wraps another notifier and tags subjects with the host the
// run happens on
type ContextNotifier struct {
	underlying Notifier
	host       string
	now        func() time.Time
}

// NewContextNotifier creates a new context notifier. An empty host is looked
// up from the system.
func NewContextNotifier(underlying Notifier, host string) *ContextNotifier {
	if host == "" {
		host, _ = os.Hostname()
	}
	return &ContextNotifier{
		underlying: underlying,
		host:       host,
		now:        time.Now,
	}
}

// Send implements the Notifier interface
func (cn *ContextNotifier) Send(notification Notification) error {
	if notification.Time.IsZero() {
		notification.Time = cn.now()
	}
	if cn.host != "" {
		notification.Subject = "[linewatch@" + cn.host + "] " + notification.Subject
	}
	return cn.underlying.Send(notification)
}
