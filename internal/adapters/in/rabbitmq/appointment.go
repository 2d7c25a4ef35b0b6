package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

type CacheAppointmentMessage struct {
	TutorID uuid.UUID       `json:"tutor_id"`
	Date    json_types.Date `json:"date"`
}

func (l *CacheHitListener) startAppointmentQueue(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMq.QueueConfig.AppointmentQueueName,
		true,  // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}
	err = l.channel.QueueBind(
		queue.Name,
		l.cfg.RabbitMq.QueueConfig.AppointmentQueueBind,
		l.cfg.RabbitMq.QueueConfig.AppointmentQueueExchange,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go l.consumeLoop(ctx, msgs, l.processAppointmentMessage)

	return nil
}

func (l *CacheHitListener) processAppointmentMessage(ctx context.Context, msg amqp.Delivery) error {
	cacheMessageRoutingKey, err := l.parseCacheMessageRoutingKey(ctx, msg)
	if err != nil {
		return err
	}

	if cacheMessageRoutingKey.ResourceType != CacheHitResourceTypeAppointment {
		return nil
	}

	var msgJson CacheAppointmentMessage
	if err := json.Unmarshal(msg.Body, &msgJson); err != nil {
		return err
	}

	l.logger.Info("appointment.message.received", out.LogFields{
		"msg":       msgJson,
		"msgString": string(msg.Body),
	})

	// Запись создана, изменена или отменена - пересчитываем только этот день.
	// store и invalidate для резолвера равнозначны, окна всё равно вычисляются заново
	go l.useCase.InvalidateDaySlotsCache(ctx, msgJson.TutorID, msgJson.Date)

	l.logger.Info("appointment.message.invalidated", out.LogFields{
		"tutor_id": msgJson.TutorID,
		"date":     msgJson.Date.String(),
	})

	return nil
}
