package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	ActionOrderCreated   = "order_created"
	ActionPOSSale        = "pos_sale"
	ActionStatusChanged  = "order_status_changed"
	ActionPaymentApplied = "order_payment_confirmed"
)

// Entry is one audit record of a change made to an entity.
type Entry struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	Service   string    `bson:"service" json:"service"`
	Action    string    `bson:"action" json:"action"`
	EntityID  string    `bson:"entity_id" json:"entity_id"`
	Data      bson.M    `bson:"data" json:"data"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
	History(ctx context.Context, entityID string, limit int64) ([]*Entry, error)
}

// Nop discards entries. It is used when no audit store is configured.
type Nop struct{}

func (Nop) Record(context.Context, *Entry) error { return nil }

func (Nop) History(context.Context, string, int64) ([]*Entry, error) { return []*Entry{}, nil }
