// Package tasks runs side effects (emails, notifications, audit records)
// outside the request path with retries and a dead letter table.
package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Task kinds handled by the marketplace workers.
const (
	KindAuditLog     = "audit_log"
	KindOfferEmail   = "offer_email"
	KindNotification = "notification"
	KindAdminReview  = "admin_review"
	KindProofCleanup = "proof_cleanup"
)

type Task struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

func NewTask(kind string, payload interface{}) (Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Task{}, errors.Wrapf(err, "marshal %s payload", kind)
	}
	return Task{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (t Task) Decode(v interface{}) error {
	return errors.Wrapf(json.Unmarshal(t.Payload, v), "decode %s payload", t.Kind)
}

// Queue carries tasks between the request handlers and the workers.
type Queue interface {
	Push(ctx context.Context, t Task) error
	// Pop blocks until a task is available or ctx is done.
	Pop(ctx context.Context) (Task, error)
}

// Enqueuer is the producer side used by services.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind string, payload interface{}) error
}
