package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meshfoundry/datamesh/internal/eventbus"
	"github.com/meshfoundry/datamesh/internal/metrics"
	"github.com/meshfoundry/datamesh/internal/model"
	"github.com/meshfoundry/datamesh/internal/platform"
)

// Notify contains activities for publishing workflow notifications to the
// mesh event bus.
type Notify struct {
	bus eventbus.Publisher
}

// NewNotify creates a new Notify activity struct.
func NewNotify(bus eventbus.Publisher) *Notify {
	return &Notify{bus: bus}
}

// PublishNotification emits the registration-complete event addressed to
// the producer's domain. Single attempt: the workflow runs this with
// retries disabled, so a delivery failure surfaces as a workflow failure.
func (a *Notify) PublishNotification(ctx context.Context, params PublishNotificationParams) error {
	detail, err := json.Marshal(model.NotificationDetail{
		CentralDatabaseName: params.CentralDatabaseName,
		ProducerAccountID:   params.ProducerAccountID,
		DatabaseName:        params.DatabaseName,
		TableNames:          params.TableNames,
	})
	if err != nil {
		return fmt.Errorf("marshal notification detail: %w", err)
	}

	event := eventbus.Event{
		ID:         platform.NewID(),
		Source:     model.EventSource,
		DetailType: model.DetailTypeFor(params.ProducerAccountID),
		Detail:     detail,
		Time:       time.Now(),
	}

	if err := a.bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish notification for account %s: %w", params.ProducerAccountID, err)
	}

	metrics.NotificationsPublished.Inc()
	return nil
}
