package domain

import (
	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

// AvailabilitySettings - настройки доступности тьютора.
// MinSessionDuration также используется как шаг при обходе дня.
type AvailabilitySettings struct {
	TutorID               uuid.UUID       `json:"tutor_id"`
	MinSessionDuration    int             `json:"min_session_duration"`
	BufferBetweenSessions int             `json:"buffer_between_sessions"`
	AdvanceBookingDays    int             `json:"advance_booking_days"`
	DayStart              json_types.Time `json:"day_start"`
	DayEnd                json_types.Time `json:"day_end"`
}
