package slot_resolver_service

import (
	"slices"

	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

// Границы полной блокировки дня: интервал, который начинается не позже 00:30
// и заканчивается не раньше 23:00, закрывает день целиком
const (
	fullDayStartMinutes = 30
	fullDayEndMinutes   = 23 * 60
)

// interval - полуоткрытый интервал [start, end) в минутах с начала суток
type interval struct {
	start int
	end   int
}

// Функция для проверки, действует ли оверрайд на запрошенную дату
func overrideApplies(override domain.DateOverride, date json_types.Date) bool {
	// Оверрайд на конкретную дату
	if override.Date != nil {
		return override.Date.Equal(date)
	}

	// Повторяющийся оверрайд по дням недели
	if len(override.DaysOfWeek) == 0 {
		return false
	}
	if !slices.Contains(override.DaysOfWeek, date.Weekday()) {
		return false
	}

	// EndDate ограничивает повторение, дата после него уже не блокируется
	if override.EndDate != nil && date.After(*override.EndDate) {
		return false
	}

	return true
}

// Функция для проверки полной блокировки дня
func isFullDayBlock(override domain.DateOverride) bool {
	return override.StartTime.Minutes <= fullDayStartMinutes &&
		override.EndTime.Minutes >= fullDayEndMinutes
}

// Функция для проверки пересечения кандидата с занятыми интервалами.
// Полуоткрытые интервалы: [a, b) пересекается с [c, d) если a < d и c < b
func overlapsAny(candidate interval, intervals []interval) bool {
	for _, iv := range intervals {
		if candidate.start < iv.end && iv.start < candidate.end {
			return true
		}
	}
	return false
}

func findWeeklySlot(weeklySlots []domain.WeeklySlot, dayOfWeek int) *domain.WeeklySlot {
	for i := range weeklySlots {
		if weeklySlots[i].DayOfWeek == dayOfWeek {
			return &weeklySlots[i]
		}
	}
	return nil
}
