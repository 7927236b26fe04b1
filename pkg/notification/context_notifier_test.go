package notification

import (
	"testing"
	"time"
)

func TestContextNotifier(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name         string
		host         string
		notification Notification
		wantSubject  string
		wantTime     time.Time
	}{
		{
			name:         "prefixes subject with host",
			host:         "web01",
			notification: Notification{Subject: "ERROR matched", Time: time.Unix(10, 0)},
			wantSubject:  "[linewatch@web01] ERROR matched",
			wantTime:     time.Unix(10, 0),
		},
		{
			name:         "fills in missing time",
			host:         "web01",
			notification: Notification{Subject: "summary"},
			wantSubject:  "[linewatch@web01] summary",
			wantTime:     fixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockNotifier{}
			cn := NewContextNotifier(mock, tt.host)
			cn.now = func() time.Time { return fixed }

			if err := cn.Send(tt.notification); err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			sent := mock.GetNotifications()
			if len(sent) != 1 {
				t.Fatalf("expected 1 notification, got %d", len(sent))
			}
			if sent[0].Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", sent[0].Subject, tt.wantSubject)
			}
			if !sent[0].Time.Equal(tt.wantTime) {
				t.Errorf("Time = %v, want %v", sent[0].Time, tt.wantTime)
			}
		})
	}
}
