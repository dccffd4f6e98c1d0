// README: RabbitMQ publisher for ride status-change notifications.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"medicar/internal/modules/ride"
)

const exchangeName = "ride.status"

// Publisher pushes status-change events onto a topic exchange for the
// driver and dispatcher frontends. Delivery is best effort: failures are
// logged here and never reach the caller.
type Publisher struct {
	ch  *amqp.Channel
	log *zap.Logger
}

func New(conn *amqp.Connection, log *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, log: log}, nil
}

type statusChangeMessage struct {
	RideID     string    `json:"ride_id"`
	PatientID  string    `json:"patient_id"`
	DriverID   string    `json:"driver_id,omitempty"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	PickupAt   time.Time `json:"pickup_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (p *Publisher) StatusChanged(ctx context.Context, r *ride.Ride, from, to ride.Status) {
	msg := statusChangeMessage{
		RideID:     string(r.ID),
		PatientID:  string(r.PatientID),
		FromStatus: string(from),
		ToStatus:   string(to),
		PickupAt:   r.PickupAt,
		OccurredAt: time.Now(),
	}
	if r.DriverID != nil {
		msg.DriverID = string(*r.DriverID)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		p.log.Warn("marshal status change", zap.Error(err))
		return
	}
	err = p.ch.PublishWithContext(ctx, exchangeName, "ride.status."+string(to), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		p.log.Warn("publish status change",
			zap.Error(err),
			zap.String("ride_id", string(r.ID)),
			zap.String("to_status", string(to)),
		)
	}
}
