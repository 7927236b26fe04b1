package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/notification"
	"github.com/Veraticus/linewatch/pkg/types"
)

// emailHandler mails matched lines. When following it sends one message per
// match, since a following run may never reach close. Otherwise lines are
// batched per (recipient, pattern) and sent by the close hook.
type emailHandler struct {
	recipients map[int]string
	patterns   PatternLookup
	sender     Sender
	runtime    *Runtime
	batcher    *notification.Batcher
}

func newEmailHandler(env *Env) (interfaces.Handler, error) {
	if env.Mail == nil {
		return nil, errors.New("no mail transport configured")
	}
	if env.Patterns == nil {
		return nil, errors.New("no pattern table configured")
	}
	recipients := env.Registry.Args(types.KindEmail)
	for index, to := range recipients {
		if to == "" {
			return nil, fmt.Errorf("email%d needs a recipient", index)
		}
	}
	return &emailHandler{
		recipients: recipients,
		patterns:   env.Patterns,
		sender:     env.Mail,
		runtime:    env.Runtime,
		batcher:    notification.NewBatcher(),
	}, nil
}

func (h *emailHandler) Invoke(index int, line string) error {
	to, ok := h.recipients[index]
	if !ok {
		return nil
	}
	expr := h.patterns.Expr(index)

	if !h.runtime.Follow {
		h.batcher.Add(to, expr, line)
		return nil
	}

	now := h.runtime.Now()
	return h.sender.Send(notification.Notification{
		To:      to,
		Subject: fmt.Sprintf("/%s/ matched at %s", expr, now.Format(time.RFC3339)),
		Message: fmt.Sprintf("Pattern: %s\nTime: %s\n\n%s\n", expr, now.Format(time.RFC1123Z), line),
		Time:    now,
		Pattern: expr,
	})
}

func (h *emailHandler) Events() []types.Event {
	if h.runtime.Follow {
		return nil
	}
	return []types.Event{types.EventClose}
}

func (h *emailHandler) OnHook(event types.Event) error {
	if event != types.EventClose || h.batcher.Len() == 0 {
		return nil
	}

	var errs []error
	now := h.runtime.Now()
	h.batcher.Flush(func(b notification.Batch) {
		err := h.sender.Send(notification.Notification{
			To:      b.To,
			Subject: fmt.Sprintf("%d lines matched /%s/", len(b.Lines), b.Pattern),
			Message: fmt.Sprintf("Run started: %s\nPattern: %s\n\n%s",
				h.runtime.StartTime.Format(time.RFC1123Z), b.Pattern, b.Text()),
			Time:    now,
			Pattern: b.Pattern,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("mail to %s: %w", b.To, err))
		}
	})
	return errors.Join(errs...)
}
