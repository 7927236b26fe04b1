package status

import "github.com/Veraticus/linewatch/pkg/interfaces"

// Reporter adapts a Summary to implement interfaces.StatusReporter
type Reporter struct {
	summary *Summary
}

// NewReporter creates a new status reporter
func NewReporter(summary *Summary) *Reporter {
	return &Reporter{
		summary: summary,
	}
}

// Ensure Reporter implements StatusReporter
var _ interfaces.StatusReporter = (*Reporter)(nil)

// ReportSending reports that a mail is being sent
func (r *Reporter) ReportSending() {
	if r.summary == nil {
		return
	}
	r.summary.mu.Lock()
	r.summary.mailSending++
	r.summary.mu.Unlock()
}

// ReportSuccess reports that a mail was sent successfully
func (r *Reporter) ReportSuccess() {
	if r.summary == nil {
		return
	}
	r.summary.mu.Lock()
	r.summary.mailSending--
	r.summary.mailSent++
	r.summary.mu.Unlock()
}

// ReportFailure reports that a mail failed to send
func (r *Reporter) ReportFailure() {
	if r.summary == nil {
		return
	}
	r.summary.mu.Lock()
	r.summary.mailSending--
	r.summary.mailFailed++
	r.summary.mu.Unlock()
}
