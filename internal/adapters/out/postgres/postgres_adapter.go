package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

// PostgresAdapter - реализация StorePort поверх прямого подключения к базе,
// для self-hosted инсталляций без Supabase. Привилегированное чтение занятых
// интервалов использует ту же SQL-функцию, что и RPC в PostgREST.
type PostgresAdapter struct {
	pool   *pgxpool.Pool
	logger out.LoggerPort
}

func NewPostgresAdapter(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (*PostgresAdapter, error) {
	pool, err := pgxpool.New(ctx, cfg.Postgres.Dsn)
	if err != nil {
		logger.Error("postgres.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("postgres.ping.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return &PostgresAdapter{
		pool:   pool,
		logger: logger,
	}, nil
}

func (a *PostgresAdapter) Close() {
	a.pool.Close()
}

func (a *PostgresAdapter) Pool() *pgxpool.Pool {
	return a.pool
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (a *PostgresAdapter) GetAvailabilitySettings(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilitySettings, error) {
	query := `
		SELECT tutor_id, min_session_duration, buffer_between_sessions, advance_booking_days,
		       to_char(day_start, 'HH24:MI') AS day_start,
		       to_char(day_end, 'HH24:MI') AS day_end
		FROM availability_settings
		WHERE tutor_id = $1
	`

	var settings domain.AvailabilitySettings
	var dayStart, dayEnd string

	err := a.pool.QueryRow(ctx, query, tutorID).Scan(
		&settings.TutorID,
		&settings.MinSessionDuration,
		&settings.BufferBetweenSessions,
		&settings.AdvanceBookingDays,
		&dayStart,
		&dayEnd,
	)
	if err != nil {
		// Нет строки - тьютор не настроен, это не ошибка
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability settings: %w", err)
	}

	if settings.DayStart, err = json_types.ParseTime(dayStart); err != nil {
		return nil, fmt.Errorf("get availability settings: %w", err)
	}
	if settings.DayEnd, err = json_types.ParseTime(dayEnd); err != nil {
		return nil, fmt.Errorf("get availability settings: %w", err)
	}

	return &settings, nil
}

func (a *PostgresAdapter) GetDateOverrides(ctx context.Context, tutorID uuid.UUID) ([]domain.DateOverride, error) {
	query := `
		SELECT id, tutor_id, date, days_of_week, end_date,
		       to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time,
		       COALESCE(reason, '') AS reason
		FROM date_overrides
		WHERE tutor_id = $1
	`

	rows, err := a.pool.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get date overrides: %w", err)
	}
	defer rows.Close()

	overrides := make([]domain.DateOverride, 0)
	for rows.Next() {
		var override domain.DateOverride
		var date, endDate *time.Time
		var daysOfWeek []int32
		var startTime, endTime string

		err := rows.Scan(
			&override.ID,
			&override.TutorID,
			&date,
			&daysOfWeek,
			&endDate,
			&startTime,
			&endTime,
			&override.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("get date overrides: %w", err)
		}

		if date != nil {
			override.Date = &json_types.Date{Date: *date}
		}
		if endDate != nil {
			override.EndDate = &json_types.Date{Date: *endDate}
		}
		for _, day := range daysOfWeek {
			override.DaysOfWeek = append(override.DaysOfWeek, int(day))
		}
		if override.StartTime, err = json_types.ParseTime(startTime); err != nil {
			return nil, fmt.Errorf("get date overrides: %w", err)
		}
		if override.EndTime, err = json_types.ParseTime(endTime); err != nil {
			return nil, fmt.Errorf("get date overrides: %w", err)
		}

		overrides = append(overrides, override)
	}

	return overrides, rows.Err()
}

func (a *PostgresAdapter) GetWeeklySchedule(ctx context.Context, tutorID uuid.UUID) ([]domain.WeeklySlot, error) {
	query := `
		SELECT tutor_id, day_of_week, is_available,
		       to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time
		FROM weekly_slots
		WHERE tutor_id = $1
		ORDER BY day_of_week
	`

	rows, err := a.pool.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get weekly schedule: %w", err)
	}
	defer rows.Close()

	weeklySlots := make([]domain.WeeklySlot, 0)
	for rows.Next() {
		var weeklySlot domain.WeeklySlot
		var startTime, endTime string

		err := rows.Scan(
			&weeklySlot.TutorID,
			&weeklySlot.DayOfWeek,
			&weeklySlot.IsAvailable,
			&startTime,
			&endTime,
		)
		if err != nil {
			return nil, fmt.Errorf("get weekly schedule: %w", err)
		}

		if weeklySlot.StartTime, err = json_types.ParseTime(startTime); err != nil {
			return nil, fmt.Errorf("get weekly schedule: %w", err)
		}
		if weeklySlot.EndTime, err = json_types.ParseTime(endTime); err != nil {
			return nil, fmt.Errorf("get weekly schedule: %w", err)
		}

		weeklySlots = append(weeklySlots, weeklySlot)
	}

	return weeklySlots, rows.Err()
}

func (a *PostgresAdapter) GetPublicBusySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]domain.BusySlot, error) {
	query := `
		SELECT to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time
		FROM get_public_busy_slots($1, $2)
	`

	rows, err := a.pool.Query(ctx, query, tutorID, date.Date)
	if err != nil {
		return nil, fmt.Errorf("get public busy slots: %w", err)
	}
	defer rows.Close()

	busySlots := make([]domain.BusySlot, 0)
	for rows.Next() {
		var busySlot domain.BusySlot
		var startTime, endTime string

		if err := rows.Scan(&startTime, &endTime); err != nil {
			return nil, fmt.Errorf("get public busy slots: %w", err)
		}

		if busySlot.StartTime, err = json_types.ParseTime(startTime); err != nil {
			return nil, fmt.Errorf("get public busy slots: %w", err)
		}
		if busySlot.EndTime, err = json_types.ParseTime(endTime); err != nil {
			return nil, fmt.Errorf("get public busy slots: %w", err)
		}

		busySlots = append(busySlots, busySlot)
	}

	return busySlots, rows.Err()
}

func (a *PostgresAdapter) GetAppointmentsByDate(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]domain.Appointment, error) {
	query := `
		SELECT id, tutor_id, date, status,
		       to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time
		FROM appointments
		WHERE tutor_id = $1 AND date = $2 AND status <> 'cancelled'
	`

	rows, err := a.pool.Query(ctx, query, tutorID, date.Date)
	if err != nil {
		return nil, fmt.Errorf("get appointments by date: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		var appointment domain.Appointment
		var appointmentDate time.Time
		var startTime, endTime string

		err := rows.Scan(
			&appointment.ID,
			&appointment.TutorID,
			&appointmentDate,
			&appointment.Status,
			&startTime,
			&endTime,
		)
		if err != nil {
			return nil, fmt.Errorf("get appointments by date: %w", err)
		}

		appointment.Date = json_types.Date{Date: appointmentDate}
		if appointment.StartTime, err = json_types.ParseTime(startTime); err != nil {
			return nil, fmt.Errorf("get appointments by date: %w", err)
		}
		if appointment.EndTime, err = json_types.ParseTime(endTime); err != nil {
			return nil, fmt.Errorf("get appointments by date: %w", err)
		}

		appointments = append(appointments, appointment)
	}

	return appointments, rows.Err()
}
