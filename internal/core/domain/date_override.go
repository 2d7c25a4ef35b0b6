package domain

import (
	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

// DateOverride - блокировка времени тьютора.
// Либо на конкретную дату (Date задан, DaysOfWeek пуст), либо повторяющаяся
// по дням недели (Date не задан, DaysOfWeek непуст, EndDate опционально
// ограничивает повторение). Оверрайд всегда вычитает время из доступности,
// открывать закрытый день он не умеет.
type DateOverride struct {
	ID         uuid.UUID        `json:"id"`
	TutorID    uuid.UUID        `json:"tutor_id"`
	Date       *json_types.Date `json:"date"`
	DaysOfWeek []int            `json:"days_of_week"`
	EndDate    *json_types.Date `json:"end_date"`
	StartTime  json_types.Time  `json:"start_time"`
	EndTime    json_types.Time  `json:"end_time"`
	Reason     string           `json:"reason"`
}
