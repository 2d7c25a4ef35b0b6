package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/in"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

type CacheHitListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.SlotResolverUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

type (
	CacheHitType         string
	CacheHitResourceType string
)

type CacheMessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType CacheHitResourceType
	CacheHitType CacheHitType
}

const (
	CacheHitResourceTypeAll                  CacheHitResourceType = "_all_"
	CacheHitResourceTypeAppointment          CacheHitResourceType = "appointment"
	CacheHitResourceTypeWeeklySlot           CacheHitResourceType = "weeklyslot"
	CacheHitResourceTypeDateOverride         CacheHitResourceType = "dateoverride"
	CacheHitResourceTypeAvailabilitySettings CacheHitResourceType = "availabilitysettings"
)

const (
	CacheHitTypeStore      CacheHitType = "store"
	CacheHitTypeInvalidate CacheHitType = "invalidate"
)

func NewCacheHitListener(useCase in.SlotResolverUseCase, cfg *config.Config, logger out.LoggerPort) (*CacheHitListener, error) {
	if !cfg.RabbitMq.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMq.AmqpUri)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMq.AmqpUri,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &CacheHitListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *CacheHitListener) Start(ctx context.Context) error {
	var err error
	err = l.startAppointmentQueue(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("appointment.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.AppointmentQueueName,
	})
	err = l.startScheduleQueue(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("schedule.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.ScheduleQueueName,
	})
	err = l.startAllQueue(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("_all_.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.AllQueueName,
	})

	return nil
}

// consumeLoop обрабатывает доставки одной очереди до отмены контекста.
// Закрытие канала доставок (обрыв соединения) завершает цикл,
// иначе закрытый канал отдавал бы пустые доставки без остановки
func (l *CacheHitListener) consumeLoop(ctx context.Context, msgs <-chan amqp.Delivery, process func(context.Context, amqp.Delivery) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := process(ctx, msg); err != nil {
				msg.Nack(false, true) // requeue message
				continue
			}
			msg.Ack(false)
		}
	}
}

func (l *CacheHitListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

// Пример routingKey:
// supabase.slots-resolver.appointment.<id>.invalidate
// supabase.slots-resolver.weeklyslot.<id>.invalidate
// supabase.slots-resolver.availabilitysettings.<id>.invalidate
// supabase.slots-resolver._all_._all_.invalidate
func (l *CacheHitListener) parseCacheMessageRoutingKey(ctx context.Context, msg amqp.Delivery) (CacheMessageRoutingKey, error) {
	routingKey := msg.RoutingKey
	parts := strings.Split(routingKey, ".")

	if len(parts) < 5 {
		return CacheMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return CacheMessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: CacheHitResourceType(parts[2]),
		CacheHitType: CacheHitType(parts[4]),
	}, nil
}
