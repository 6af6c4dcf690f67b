package eventbus

import (
	"context"
	"encoding/json"
	"time"
)

// Event is a structured message on the mesh event bus. DetailType is the
// routing key: domains subscribe by exact match on it.
type Event struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	DetailType string          `json:"detail_type"`
	Detail     json.RawMessage `json:"detail"`
	Time       time.Time       `json:"time"`
}

// Publisher delivers events to whichever endpoints are bound to the event's
// detail type. Delivery is a single attempt; callers decide what a failure
// means.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Router installs and removes the routing rules that bind a detail type to
// a domain's inbound endpoint. Binding the same pair twice must not create
// a duplicate rule.
type Router interface {
	Bind(ctx context.Context, detailType, endpoint string) error
	Unbind(ctx context.Context, detailType, endpoint string) error
}

// Bus is a Publisher with routing rule management.
type Bus interface {
	Publisher
	Router
}
