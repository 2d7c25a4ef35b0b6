package in

import (
	"context"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

type SlotResolverUseCase interface {
	// Вычисление бронируемых окон на одну дату.
	// durationMinutes <= 0 означает минимальную длительность сессии тьютора
	ResolveAvailableSlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date, durationMinutes int) ([]domain.AvailableSlot, []domain.DebugInfo, error)

	// Вычисление окон на несколько дат, для отрисовки календаря
	ResolveBatchSlots(ctx context.Context, tutorID uuid.UUID, dates []json_types.Date, durationMinutes int) (map[string][]domain.AvailableSlot, error)

	// Инвалидация кэша при изменении записей на прием
	InvalidateDaySlotsCache(ctx context.Context, tutorID uuid.UUID, date json_types.Date) error

	// Инвалидация кэша при изменении расписания, оверрайдов или настроек тьютора
	InvalidateTutorCache(ctx context.Context, tutorID uuid.UUID) error

	// Полная инвалидация кэша
	InvalidateAllCache(ctx context.Context) error
}
