package slot_resolver_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

type SlotResolverService struct {
	storePort out.StorePort
	cachePort out.CachePort
	logger    out.LoggerPort
	cfg       *config.Config
}

func NewSlotResolverService(
	storePort out.StorePort,
	cachePort out.CachePort,
	logger out.LoggerPort,
	cfg *config.Config,
) *SlotResolverService {
	return &SlotResolverService{
		storePort: storePort,
		cachePort: cachePort,
		logger:    logger.WithModule("SlotResolverService"),
		cfg:       cfg,
	}
}

func (s *SlotResolverService) ResolveAvailableSlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date, durationMinutes int) ([]domain.AvailableSlot, []domain.DebugInfo, error) {
	debugInfo := SlotResolverServiceDebug{
		data: make([]domain.DebugInfo, 0),
	}
	s.logger.Info("slots.resolve.started", out.LogFields{
		"tutorId": tutorID,
		"date":    date.String(),
	})

	get_settings_debug := domain.DebugInfo{
		Event: "slots.resolve.settings.fetch",
	}
	get_settings_debug.Start()

	settings, err := s.getSettings(ctx, tutorID)
	if err != nil {
		s.logger.Error("slots.resolve.settings.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, nil, fmt.Errorf("slots.resolve.settings.fetch_failed: %w", err)
	}
	get_settings_debug.Elapse()
	debugInfo.AddDebugInfo(get_settings_debug)

	// Нет настроек - тьютор не бронируется, это не ошибка
	if settings == nil {
		s.logger.Info("slots.resolve.settings.missing", out.LogFields{
			"tutorId": tutorID,
		})
		return []domain.AvailableSlot{}, debugInfo.data, nil
	}

	// Неположительный шаг зациклил бы обход дня, такая конфигурация
	// равносильна отсутствию настроек
	if settings.MinSessionDuration <= 0 {
		s.logger.Warn("slots.resolve.settings.invalid_step", out.LogFields{
			"tutorId":            tutorID,
			"minSessionDuration": settings.MinSessionDuration,
		})
		return []domain.AvailableSlot{}, debugInfo.data, nil
	}

	// Запрошенная длительность по умолчанию равна минимальной длительности сессии
	if durationMinutes <= 0 {
		durationMinutes = settings.MinSessionDuration
	}

	// Проверяем кэш только если он включен
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		if slots, exists := s.cachePort.GetDaySlots(ctx, tutorID, date, durationMinutes); exists {
			s.logger.Debug("slots.resolve.cache.hit", out.LogFields{
				"tutorId":    tutorID,
				"date":       date.String(),
				"slotsCount": len(slots),
			})
			return slots, debugInfo.data, nil
		}
	}

	s.logger.Debug("slots.resolve.cache.miss", out.LogFields{
		"tutorId": tutorID,
		"date":    date.String(),
	})

	slots, err := s.resolveDaySlots(ctx, &debugInfo, tutorID, date, durationMinutes, settings)
	if err != nil {
		return nil, nil, err
	}

	// Сохраняем в кэш только если он включен
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		s.cachePort.StoreDaySlots(ctx, tutorID, date, durationMinutes, slots)
	}

	return slots, debugInfo.data, nil
}

func (s *SlotResolverService) resolveDaySlots(ctx context.Context, debugInfo *SlotResolverServiceDebug, tutorID uuid.UUID, date json_types.Date, durationMinutes int, settings *domain.AvailabilitySettings) ([]domain.AvailableSlot, error) {
	slots := make([]domain.AvailableSlot, 0)

	get_overrides_debug := domain.DebugInfo{
		Event: "slots.resolve.overrides.fetch",
	}
	get_overrides_debug.Start()

	overrides, err := s.storePort.GetDateOverrides(ctx, tutorID)
	if err != nil {
		s.logger.Error("slots.resolve.overrides.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("slots.resolve.overrides.fetch_failed: %w", err)
	}
	get_overrides_debug.Elapse()
	debugInfo.AddDebugInfo(get_overrides_debug)

	// Отбираем оверрайды, действующие на запрошенную дату.
	// Стор отдает все строки тьютора, фильтрация выполняется здесь
	blocked := make([]interval, 0)
	for _, override := range overrides {
		if !overrideApplies(override, date) {
			continue
		}

		// Полная блокировка дня обнуляет день целиком,
		// остальные оверрайды можно не смотреть
		if isFullDayBlock(override) {
			s.logger.Info("slots.resolve.full_day_block", out.LogFields{
				"tutorId": tutorID,
				"date":    date.String(),
				"reason":  override.Reason,
			})
			return slots, nil
		}

		blocked = append(blocked, interval{
			start: override.StartTime.Minutes,
			end:   override.EndTime.Minutes,
		})
	}

	get_weekly_debug := domain.DebugInfo{
		Event: "slots.resolve.weekly_schedule.fetch",
	}
	get_weekly_debug.Start()

	weeklySlots, err := s.storePort.GetWeeklySchedule(ctx, tutorID)
	if err != nil {
		s.logger.Error("slots.resolve.weekly_schedule.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("slots.resolve.weekly_schedule.fetch_failed: %w", err)
	}
	get_weekly_debug.Elapse()
	debugInfo.AddDebugInfo(get_weekly_debug)

	// Недельное расписание - базовая доступность, оверрайды только вычитают.
	// Нет записи на день недели или день выключен - слотов нет
	weeklySlot := findWeeklySlot(weeklySlots, date.Weekday())
	if weeklySlot == nil || !weeklySlot.IsAvailable {
		s.logger.Debug("slots.resolve.weekly_slot.unavailable", out.LogFields{
			"tutorId":   tutorID,
			"dayOfWeek": date.Weekday(),
		})
		return slots, nil
	}

	get_busy_debug := domain.DebugInfo{
		Event: "slots.resolve.busy.fetch",
	}
	get_busy_debug.Start()

	busy, err := s.getBusyIntervals(ctx, tutorID, date)
	if err != nil {
		return nil, err
	}
	get_busy_debug.Elapse()
	debugInfo.AddDebugInfo(get_busy_debug)

	// Обходим недельное окно с шагом минимальной длительности сессии.
	// Шаг не зависит от запрошенной длительности, чтобы слоты оставались
	// выровненными по сетке тьютора
	step := settings.MinSessionDuration
	for t := weeklySlot.StartTime.Minutes; t+durationMinutes <= weeklySlot.EndTime.Minutes; t += step {
		candidate := interval{start: t, end: t + durationMinutes}

		if overlapsAny(candidate, busy) {
			continue
		}
		if overlapsAny(candidate, blocked) {
			continue
		}

		slots = append(slots, domain.AvailableSlot{
			StartTime: json_types.Time{Minutes: candidate.start},
			EndTime:   json_types.Time{Minutes: candidate.end},
		})
	}

	return slots, nil
}

// getBusyIntervals получает занятые интервалы на дату.
// Сначала пробуем привилегированное чтение, которое не раскрывает детали
// записей, при ошибке откатываемся на прямой запрос записей
func (s *SlotResolverService) getBusyIntervals(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]interval, error) {
	busySlots, err := s.storePort.GetPublicBusySlots(ctx, tutorID, date)
	if err == nil {
		intervals := make([]interval, 0, len(busySlots))
		for _, busySlot := range busySlots {
			intervals = append(intervals, interval{
				start: busySlot.StartTime.Minutes,
				end:   busySlot.EndTime.Minutes,
			})
		}
		return intervals, nil
	}

	s.logger.Warn("slots.resolve.busy.public_fetch_failed", out.LogFields{
		"tutorId": tutorID,
		"date":    date.String(),
		"error":   err.Error(),
	})

	appointments, fallbackErr := s.storePort.GetAppointmentsByDate(ctx, tutorID, date)
	if fallbackErr != nil {
		s.logger.Error("slots.resolve.busy.fetch_failed", out.LogFields{
			"tutorId": tutorID,
			"date":    date.String(),
			"error":   fallbackErr.Error(),
		})
		// Оба чтения не удались - это уже ошибка, а не "слотов нет"
		return nil, fmt.Errorf("slots.resolve.busy.fetch_failed: %w", fallbackErr)
	}

	intervals := make([]interval, 0, len(appointments))
	for _, appointment := range appointments {
		// Отмененные записи слот не занимают
		if !appointment.Occupies() {
			continue
		}
		intervals = append(intervals, interval{
			start: appointment.StartTime.Minutes,
			end:   appointment.EndTime.Minutes,
		})
	}
	return intervals, nil
}

func (s *SlotResolverService) getSettings(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilitySettings, error) {
	// Проверяем, инициализирован ли cachePort
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		settings, exists := s.cachePort.GetSettings(ctx, tutorID)
		if exists {
			return settings, nil
		}
	}

	s.logger.Debug("settings.cache.miss", out.LogFields{
		"tutorId": tutorID,
	})

	settings, err := s.storePort.GetAvailabilitySettings(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	if s.cachePort != nil && s.cfg.Cache.Enabled && settings != nil {
		// Сохраняем в кэш
		s.cachePort.StoreSettings(ctx, tutorID, *settings)
	}

	return settings, nil
}
