package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	nurl "net/url"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

// SupabaseAdapter читает строки доменных таблиц через PostgREST.
// Чтение занятых интервалов для публичной страницы выполняется RPC-функцией
// под анонимным ключом, остальные чтения идут под сервисным ключом.
type SupabaseAdapter struct {
	client         *http.Client
	baseURL        string
	anonKey        string
	serviceRoleKey string
	logger         out.LoggerPort
}

func NewSupabaseAdapter(cfg *config.Config, logger out.LoggerPort) *SupabaseAdapter {
	return &SupabaseAdapter{
		client:         &http.Client{Timeout: 10 * time.Second},
		baseURL:        cfg.Supabase.URL,
		anonKey:        cfg.Supabase.AnonKey,
		serviceRoleKey: cfg.Supabase.ServiceRoleKey,
		logger:         logger,
	}
}

func (a *SupabaseAdapter) GetAvailabilitySettings(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilitySettings, error) {
	a.logger.Info("supabase.availability_settings.fetch", out.LogFields{
		"tutorId": tutorID,
	})

	query := nurl.Values{}
	query.Add("tutor_id", "eq."+tutorID.String())
	query.Add("limit", "1")

	var settings []domain.AvailabilitySettings
	if err := a.restGet(ctx, "availability_settings", query, a.serviceRoleKey, &settings); err != nil {
		a.logger.Error("supabase.availability_settings.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, err
	}

	// Нет строки - тьютор не настроен
	if len(settings) == 0 {
		a.logger.Debug("supabase.availability_settings.no_rows", out.LogFields{
			"tutorId": tutorID,
		})
		return nil, nil
	}

	return &settings[0], nil
}

func (a *SupabaseAdapter) GetDateOverrides(ctx context.Context, tutorID uuid.UUID) ([]domain.DateOverride, error) {
	a.logger.Info("supabase.date_overrides.fetch", out.LogFields{
		"tutorId": tutorID,
	})

	// Отдаем все строки тьютора, фильтрация по дате - задача резолвера
	query := nurl.Values{}
	query.Add("tutor_id", "eq."+tutorID.String())

	var overrides []domain.DateOverride
	if err := a.restGet(ctx, "date_overrides", query, a.serviceRoleKey, &overrides); err != nil {
		a.logger.Error("supabase.date_overrides.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("supabase.date_overrides.fetch_success", out.LogFields{
		"tutorId": tutorID,
		"count":   len(overrides),
	})

	return overrides, nil
}

func (a *SupabaseAdapter) GetWeeklySchedule(ctx context.Context, tutorID uuid.UUID) ([]domain.WeeklySlot, error) {
	a.logger.Info("supabase.weekly_slots.fetch", out.LogFields{
		"tutorId": tutorID,
	})

	query := nurl.Values{}
	query.Add("tutor_id", "eq."+tutorID.String())
	query.Add("order", "day_of_week.asc")

	var weeklySlots []domain.WeeklySlot
	if err := a.restGet(ctx, "weekly_slots", query, a.serviceRoleKey, &weeklySlots); err != nil {
		a.logger.Error("supabase.weekly_slots.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, err
	}

	return weeklySlots, nil
}

// GetPublicBusySlots вызывает RPC-функцию под анонимным ключом.
// Функция возвращает только границы интервалов активных записей,
// поэтому ее можно звать с неавторизованной страницы бронирования
func (a *SupabaseAdapter) GetPublicBusySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]domain.BusySlot, error) {
	a.logger.Info("supabase.busy_slots.fetch", out.LogFields{
		"tutorId": tutorID,
		"date":    date.String(),
	})

	body, err := json.Marshal(map[string]string{
		"p_tutor_id": tutorID.String(),
		"p_date":     date.String(),
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/rest/v1/rpc/get_public_busy_slots", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", a.anonKey)
	req.Header.Set("Authorization", "Bearer "+a.anonKey)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("supabase.busy_slots.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("supabase.busy_slots.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"status":  resp.StatusCode,
		})
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var busySlots []domain.BusySlot
	if err := json.NewDecoder(resp.Body).Decode(&busySlots); err != nil {
		a.logger.Error("supabase.busy_slots.decode_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("supabase.busy_slots.fetch_success", out.LogFields{
		"tutorId": tutorID,
		"count":   len(busySlots),
	})

	return busySlots, nil
}

func (a *SupabaseAdapter) GetAppointmentsByDate(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]domain.Appointment, error) {
	a.logger.Info("supabase.appointments.fetch", out.LogFields{
		"tutorId": tutorID,
		"date":    date.String(),
	})

	query := nurl.Values{}
	query.Add("tutor_id", "eq."+tutorID.String())
	query.Add("date", "eq."+date.String())
	query.Add("status", "neq."+string(domain.AppointmentStatusCancelled))

	var appointments []domain.Appointment
	if err := a.restGet(ctx, "appointments", query, a.serviceRoleKey, &appointments); err != nil {
		a.logger.Error("supabase.appointments.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("supabase.appointments.fetch_success", out.LogFields{
		"tutorId": tutorID,
		"count":   len(appointments),
	})

	return appointments, nil
}

// restGet выполняет GET к таблице PostgREST и декодирует массив строк
func (a *SupabaseAdapter) restGet(ctx context.Context, table string, query nurl.Values, apiKey string, into interface{}) error {
	url := fmt.Sprintf("%s/rest/v1/%s", a.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req.URL.RawQuery = query.Encode()
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(into)
}
