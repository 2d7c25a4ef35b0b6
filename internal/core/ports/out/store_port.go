package out

import (
	"context"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

type StorePort interface {
	// Настройки доступности тьютора, nil если тьютор не настроен
	GetAvailabilitySettings(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilitySettings, error)

	// Все оверрайды тьютора, фильтрация по дате выполняется на стороне резолвера
	GetDateOverrides(ctx context.Context, tutorID uuid.UUID) ([]domain.DateOverride, error)

	// Недельное расписание, по одной записи на настроенный день недели
	GetWeeklySchedule(ctx context.Context, tutorID uuid.UUID) ([]domain.WeeklySlot, error)

	// Привилегированное чтение занятых интервалов без деталей записей,
	// работает и для неавторизованной публичной страницы бронирования
	GetPublicBusySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]domain.BusySlot, error)

	// Резервное чтение записей на дату, отмененные записи не возвращаются
	GetAppointmentsByDate(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]domain.Appointment, error)
}
