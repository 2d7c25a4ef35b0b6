package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

type CacheScheduleMessage struct {
	TutorID uuid.UUID `json:"tutor_id"`
}

func (l *CacheHitListener) startScheduleQueue(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMq.QueueConfig.ScheduleQueueName,
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
		l.cfg.RabbitMq.QueueConfig.ScheduleQueueBind,
		l.cfg.RabbitMq.QueueConfig.ScheduleQueueExchange,
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

	go l.consumeLoop(ctx, msgs, l.processScheduleMessage)

	return nil
}

func isScheduleResourceType(resourceType CacheHitResourceType) bool {
	return resourceType == CacheHitResourceTypeWeeklySlot ||
		resourceType == CacheHitResourceTypeDateOverride ||
		resourceType == CacheHitResourceTypeAvailabilitySettings
}

func (l *CacheHitListener) processScheduleMessage(ctx context.Context, msg amqp.Delivery) error {
	cacheMessageRoutingKey, err := l.parseCacheMessageRoutingKey(ctx, msg)
	if err != nil {
		return err
	}

	// Очередь привязана широким паттерном, чужие ресурсы просто подтверждаем
	if !isScheduleResourceType(cacheMessageRoutingKey.ResourceType) {
		return nil
	}

	var msgJson CacheScheduleMessage
	if err := json.Unmarshal(msg.Body, &msgJson); err != nil {
		return err
	}

	l.logger.Info("schedule.message.received", out.LogFields{
		"resource":  cacheMessageRoutingKey.ResourceType,
		"msg":       msgJson,
		"msgString": string(msg.Body),
	})

	// Изменение еженедельного расписания, оверрайдов или настроек
	// затрагивает все даты тьютора
	go l.useCase.InvalidateTutorCache(ctx, msgJson.TutorID)

	l.logger.Info("schedule.message.invalidated", out.LogFields{
		"tutor_id": msgJson.TutorID,
	})

	return nil
}
