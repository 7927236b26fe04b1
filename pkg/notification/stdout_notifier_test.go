package notification

import (
	"bytes"
	"testing"
)

func TestStdoutNotifier_Send(t *testing.T) {
	tests := []struct {
		name         string
		notification Notification
		want         string
	}{
		{
			name: "basic notification",
			notification: Notification{
				To:      "ops@example.com",
				Subject: "ERROR",
				Message: "ERROR disk full",
			},
			want: "[MAIL] To: ops@example.com Subject: ERROR\nERROR disk full\n",
		},
		{
			name:         "empty notification",
			notification: Notification{},
			want:         "[MAIL] To:  Subject: \n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n := NewStdoutNotifier(&buf)
			if err := n.Send(tt.notification); err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewStdoutNotifierDefaultsToStdout(t *testing.T) {
	if n := NewStdoutNotifier(nil); n.w == nil {
		t.Error("expected a default writer")
	}
}
