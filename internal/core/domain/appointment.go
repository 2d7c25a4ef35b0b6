package domain

import (
	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID        uuid.UUID         `json:"id"`
	TutorID   uuid.UUID         `json:"tutor_id"`
	Date      json_types.Date   `json:"date"`
	StartTime json_types.Time   `json:"start_time"`
	EndTime   json_types.Time   `json:"end_time"`
	Status    AppointmentStatus `json:"status"`
}

// Occupies - занимает ли запись слот.
// Любой статус кроме отмененного считается активным.
func (a Appointment) Occupies() bool {
	return a.Status != AppointmentStatusCancelled
}

// BusySlot - занятый интервал без деталей записи.
// Возвращается привилегированным чтением для публичной страницы бронирования,
// чтобы не раскрывать чужие записи.
type BusySlot struct {
	StartTime json_types.Time `json:"start_time"`
	EndTime   json_types.Time `json:"end_time"`
}
