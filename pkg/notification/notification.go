// Package notification provides mail composition and delivery.
package notification

import "time"

// Notification represents a mail message to be sent.
type Notification struct {
	To      string
	Subject string
	Message string
	Time    time.Time
	Pattern string
}

// Notifier sends notifications.
type Notifier interface {
	Send(notification Notification) error
}
