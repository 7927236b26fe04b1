package notification

import (
	"errors"
	"log/slog"

	"github.com/Veraticus/linewatch/pkg/interfaces"
)

// ErrRateLimited is returned when a notification was dropped by the rate limiter
var ErrRateLimited = errors.New("notification dropped by rate limit")

// Manager sends notifications through rate limiting and status reporting
type Manager struct {
	notifier    Notifier
	rateLimiter interfaces.RateLimiter
	reporter    interfaces.StatusReporter
	logger      *slog.Logger
}

// NewManager creates a new notification manager. rateLimiter may be nil.
func NewManager(notifier Notifier, rateLimiter interfaces.RateLimiter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		notifier:    notifier,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// SetStatusReporter sets the status reporter for delivery outcomes
func (m *Manager) SetStatusReporter(reporter interfaces.StatusReporter) {
	m.reporter = reporter
}

// Send sends a notification unless the rate limit is exhausted
func (m *Manager) Send(notification Notification) error {
	if m.rateLimiter != nil && !m.rateLimiter.Allow() {
		m.logger.Debug("mail dropped by rate limit", "to", notification.To, "subject", notification.Subject)
		return ErrRateLimited
	}

	if m.reporter != nil {
		m.reporter.ReportSending()
	}

	if err := m.notifier.Send(notification); err != nil {
		if m.reporter != nil {
			m.reporter.ReportFailure()
		}
		return err
	}

	if m.reporter != nil {
		m.reporter.ReportSuccess()
	}
	m.logger.Debug("mail sent", "to", notification.To, "subject", notification.Subject)
	return nil
}
