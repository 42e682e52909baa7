package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/pkg/logger"
	pkgEvents "github.com/Wollie333/vilo-sub013/pkg/events"
	pktNats "github.com/Wollie333/vilo-sub013/pkg/nats"
)

// Publisher emits refund lifecycle events for the notification and audit
// subsystems. Publishing is best-effort: a bus failure is logged and never
// fails the workflow transition that triggered it.
type Publisher interface {
	PublishRefundRequested(ctx context.Context, refund *entity.Refund)
	PublishRefundStatusChanged(ctx context.Context, refund *entity.Refund, previous entity.RefundStatus, actorName string)
}

// NatsPublisher implements Publisher over the NATS bus.
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) PublishRefundRequested(ctx context.Context, refund *entity.Refund) {
	p.emit(ctx, "REFUND_REQUESTED", refund, map[string]interface{}{
		"eligible_amount":   refund.EligibleAmount,
		"refund_percentage": refund.RefundPercentage,
		"policy_label":      refund.PolicyApplied.Label,
	})
}

func (p *NatsPublisher) PublishRefundStatusChanged(ctx context.Context, refund *entity.Refund, previous entity.RefundStatus, actorName string) {
	eventType := fmt.Sprintf("REFUND_%s", strings.ToUpper(string(refund.Status)))
	p.emit(ctx, eventType, refund, map[string]interface{}{
		"previous_status":  string(previous),
		"actor_name":       actorName,
		"approved_amount":  refund.ApprovedAmount,
		"processed_amount": refund.ProcessedAmount,
		"failure_reason":   refund.FailureReason,
	})
}

func (p *NatsPublisher) emit(ctx context.Context, eventType string, refund *entity.Refund, extra map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	now := time.Now()
	data := map[string]interface{}{
		"refund_id":   refund.ID,
		"tenant_id":   refund.TenantID,
		"booking_id":  refund.BookingID,
		"status":      string(refund.Status),
		"currency":    refund.Currency,
		"entity_type": "refund",
		"entity_id":   refund.ID.String(),
		"occurred_at": now,
	}
	for k, v := range extra {
		data[k] = v
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("REFUND", "Failed to publish "+eventType+" event", map[string]interface{}{
			"refundId": refund.ID.String(),
			"error":    err.Error(),
		})
	}
}

// NoopPublisher drops everything. Used when the bus is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRefundRequested(context.Context, *entity.Refund) {}

func (NoopPublisher) PublishRefundStatusChanged(context.Context, *entity.Refund, entity.RefundStatus, string) {
}
