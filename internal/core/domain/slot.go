package domain

import (
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

// AvailableSlot - одно бронируемое окно запрошенной длительности.
// Вычисляется, не хранится. Результат всегда совещательный: финальная
// проверка пересечений выполняется транзакцией создания брони.
type AvailableSlot struct {
	StartTime json_types.Time `json:"startTime"`
	EndTime   json_types.Time `json:"endTime"`
}
