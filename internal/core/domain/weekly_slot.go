package domain

import (
	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

// WeeklySlot - базовая доступность тьютора на один день недели.
// Не больше одной записи на (тьютор, день недели); отсутствие записи
// означает, что день недоступен.
type WeeklySlot struct {
	TutorID     uuid.UUID       `json:"tutor_id"`
	DayOfWeek   int             `json:"day_of_week"` // 0 - воскресенье, 6 - суббота
	IsAvailable bool            `json:"is_available"`
	StartTime   json_types.Time `json:"start_time"`
	EndTime     json_types.Time `json:"end_time"`
}
