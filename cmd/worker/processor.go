package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/tabledine/tabledine/internal/aws"
	"github.com/tabledine/tabledine/internal/orders"
)

const metricNamespace = "TableDine/Kitchen"

// Processor consumes order-placed events and moves each order onto the
// kitchen queue: Pending -> In Progress. Completion and cancellation happen
// through staff edits, not here.
type Processor struct {
	orderStore *orders.Store
	cloudwatch aws.CloudWatchAPI
	log        *slog.Logger
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, ordersTable string, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		orderStore: orders.NewStore(clients.DynamoDB, ordersTable),
		cloudwatch: clients.CloudWatch,
		log:        log,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			p.log.Error("worker error", "error", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg OrderPlacedMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	p.log.Info("order placed event received",
		"order_id", msg.OrderID, "restaurant", msg.RestaurantID,
		"table_number", msg.TableNumber, "correlation_id", msg.CorrelationID)

	order, err := p.orderStore.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if order == nil {
		// Should never happen; DLQ if it does
		return fmt.Errorf("order not found: %s", msg.OrderID)
	}

	err = p.orderStore.UpdateStatus(ctx, msg.OrderID, orders.StatusPending, orders.StatusInProgress)
	if errors.Is(err, orders.ErrStatusMismatch) {
		// Duplicate delivery or a competing worker. Anything past Pending
		// means the kitchen already has the order; swallow unless it was
		// cancelled, in which case there is nothing to cook either.
		o2, err2 := p.orderStore.Get(ctx, msg.OrderID)
		if err2 != nil || o2 == nil {
			return fmt.Errorf("re-fetch order %s after status mismatch: %v", msg.OrderID, err2)
		}
		p.log.Info("duplicate order event", "order_id", msg.OrderID, "status", o2.Status)
		return nil
	}
	if err != nil {
		return fmt.Errorf("move order %s to In Progress: %w", msg.OrderID, err)
	}

	p.publishReceivedMetric(ctx, msg.RestaurantID)

	p.log.Info("order handed to kitchen", "order_id", msg.OrderID)
	return nil
}

// publishReceivedMetric counts accepted orders per restaurant. Metrics are
// best effort; a CloudWatch hiccup never retries the whole message.
func (p *Processor) publishReceivedMetric(ctx context.Context, restaurantID string) {
	if p.cloudwatch == nil {
		return
	}
	one := 1.0
	_, err := p.cloudwatch.PutMetricData(ctx, &cw.PutMetricDataInput{
		Namespace: awsString(metricNamespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("OrdersReceived"),
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Restaurant"), Value: awsString(restaurantID)},
				},
			},
		},
	})
	if err != nil {
		p.log.Warn("metric publish failed", "restaurant", restaurantID, "error", err)
	}
}

func awsString(s string) *string { return &s }
