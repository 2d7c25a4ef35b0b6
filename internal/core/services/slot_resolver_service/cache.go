package slot_resolver_service

import (
	"context"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

// Инвалидация кэша по сообщениям об изменениях из RabbitMQ

func (s *SlotResolverService) InvalidateDaySlotsCache(ctx context.Context, tutorID uuid.UUID, date json_types.Date) error {
	if s.cachePort == nil {
		return nil
	}

	s.cachePort.InvalidateDaySlots(ctx, tutorID, date)

	s.logger.Debug("cache.day_slots.invalidated", out.LogFields{
		"tutorId": tutorID,
		"date":    date.String(),
	})

	return nil
}

func (s *SlotResolverService) InvalidateTutorCache(ctx context.Context, tutorID uuid.UUID) error {
	if s.cachePort == nil {
		return nil
	}

	// Изменение расписания или настроек затрагивает все даты тьютора
	s.cachePort.InvalidateTutorSlots(ctx, tutorID)
	s.cachePort.InvalidateSettings(ctx, tutorID)

	s.logger.Debug("cache.tutor.invalidated", out.LogFields{
		"tutorId": tutorID,
	})

	return nil
}

func (s *SlotResolverService) InvalidateAllCache(ctx context.Context) error {
	if s.cachePort == nil {
		return nil
	}

	s.cachePort.InvalidateAllSlots(ctx)

	s.logger.Info("cache.all.invalidated", out.LogFields{})

	return nil
}
