package out

import (
	"context"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

type CachePort interface {
	// Кэширование вычисленных слотов дня
	GetDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date, durationMinutes int) ([]domain.AvailableSlot, bool)
	StoreDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date, durationMinutes int, slots []domain.AvailableSlot)
	InvalidateDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date)
	InvalidateTutorSlots(ctx context.Context, tutorID uuid.UUID)
	InvalidateAllSlots(ctx context.Context)

	// Кэширование настроек доступности
	GetSettings(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilitySettings, bool)
	StoreSettings(ctx context.Context, tutorID uuid.UUID, settings domain.AvailabilitySettings)
	InvalidateSettings(ctx context.Context, tutorID uuid.UUID)
}
