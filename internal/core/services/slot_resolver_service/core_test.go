package slot_resolver_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

type noopLogger struct{}

func (noopLogger) Debug(event string, fields out.LogFields) {}
func (noopLogger) Info(event string, fields out.LogFields)  {}
func (noopLogger) Warn(event string, fields out.LogFields)  {}
func (noopLogger) Error(event string, fields out.LogFields) {}

func (l noopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l noopLogger) WithModule(module string) out.LoggerPort        { return l }

type stubStore struct {
	settings     *domain.AvailabilitySettings
	settingsErr  error
	overrides    []domain.DateOverride
	weekly       []domain.WeeklySlot
	busy         []domain.BusySlot
	busyErr      error
	appointments []domain.Appointment
	apptErr      error
}

func (s *stubStore) GetAvailabilitySettings(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilitySettings, error) {
	return s.settings, s.settingsErr
}

func (s *stubStore) GetDateOverrides(ctx context.Context, tutorID uuid.UUID) ([]domain.DateOverride, error) {
	return s.overrides, nil
}

func (s *stubStore) GetWeeklySchedule(ctx context.Context, tutorID uuid.UUID) ([]domain.WeeklySlot, error) {
	return s.weekly, nil
}

func (s *stubStore) GetPublicBusySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]domain.BusySlot, error) {
	return s.busy, s.busyErr
}

func (s *stubStore) GetAppointmentsByDate(ctx context.Context, tutorID uuid.UUID, date json_types.Date) ([]domain.Appointment, error) {
	return s.appointments, s.apptErr
}

func newTestService(store *stubStore) *SlotResolverService {
	return NewSlotResolverService(store, nil, noopLogger{}, &config.Config{})
}

func mustDate(t *testing.T, str string) json_types.Date {
	t.Helper()
	date, err := json_types.ParseDate(str)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", str, err)
	}
	return date
}

func defaultSettings(tutorID uuid.UUID) *domain.AvailabilitySettings {
	return &domain.AvailabilitySettings{
		TutorID:            tutorID,
		MinSessionDuration: 60,
		DayStart:           json_types.NewTime(8, 0),
		DayEnd:             json_types.NewTime(22, 0),
	}
}

func assertSlots(t *testing.T, slots []domain.AvailableSlot, want [][2]string) {
	t.Helper()
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %+v", len(slots), len(want), slots)
	}
	for i, w := range want {
		if slots[i].StartTime.String() != w[0] || slots[i].EndTime.String() != w[1] {
			t.Fatalf("slot %d = %s-%s, want %s-%s",
				i, slots[i].StartTime, slots[i].EndTime, w[0], w[1])
		}
	}
}

// Понедельник 09:00-12:00, минимальная сессия 60 минут, брони отсутствуют
func TestResolveAvailableSlots_FreeDay(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, [][2]string{
		{"09:00", "10:00"},
		{"10:00", "11:00"},
		{"11:00", "12:00"},
	})
}

// Бронь 10:00-11:00 выбивает средний слот
func TestResolveAvailableSlots_BookedMiddleSlot(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
		busy: []domain.BusySlot{
			{StartTime: json_types.NewTime(10, 0), EndTime: json_types.NewTime(11, 0)},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, [][2]string{
		{"09:00", "10:00"},
		{"11:00", "12:00"},
	})
}

// Повторяющийся оверрайд на весь понедельник обнуляет день
func TestResolveAvailableSlots_RecurringFullDayBlock(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
		overrides: []domain.DateOverride{
			{
				TutorID:    tutorID,
				DaysOfWeek: []int{1},
				StartTime:  json_types.NewTime(0, 0),
				EndTime:    json_types.NewTime(23, 59),
				Reason:     "day off",
			},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0: %+v", len(slots), slots)
	}
}

// Оверрайд 09:00-23:30 не проходит порог полной блокировки,
// но выбивает все окно дня обычным вычитанием интервалов
func TestResolveAvailableSlots_OverrideCoversWholeWindow(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
		overrides: []domain.DateOverride{
			{
				TutorID:    tutorID,
				DaysOfWeek: []int{1},
				StartTime:  json_types.NewTime(9, 0),
				EndTime:    json_types.NewTime(23, 30),
			},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0: %+v", len(slots), slots)
	}
}

// Длинный день с частичной блокировкой: запрошенная длительность 90 минут,
// шаг обхода остается равным минимальной длительности 30 минут
func TestResolveAvailableSlots_LongerDurationWithPartialBlock(t *testing.T) {
	tutorID := uuid.New()
	settings := defaultSettings(tutorID)
	settings.MinSessionDuration = 30
	store := &stubStore{
		settings: settings,
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(18, 0)},
		},
		overrides: []domain.DateOverride{
			{
				TutorID:   tutorID,
				Date:      datePtr(mustDate(t, "2026-09-07")),
				StartTime: json_types.NewTime(12, 0),
				EndTime:   json_types.NewTime(13, 0),
				Reason:    "lunch",
			},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ни один слот не должен пересекать 12:00-13:00
	for _, slot := range slots {
		candidate := interval{start: slot.StartTime.Minutes, end: slot.EndTime.Minutes}
		if overlapsAny(candidate, []interval{{start: 12 * 60, end: 13 * 60}}) {
			t.Fatalf("slot %s-%s overlaps blocked interval", slot.StartTime, slot.EndTime)
		}
		if slot.EndTime.Minutes-slot.StartTime.Minutes != 90 {
			t.Fatalf("slot %s-%s is not 90 minutes", slot.StartTime, slot.EndTime)
		}
	}

	// 09:00-10:30 начало, последний валидный старт до обеда 10:30,
	// после обеда старты с 13:00 по 16:30
	assertSlots(t, slots, [][2]string{
		{"09:00", "10:30"},
		{"09:30", "11:00"},
		{"10:00", "11:30"},
		{"10:30", "12:00"},
		{"13:00", "14:30"},
		{"13:30", "15:00"},
		{"14:00", "15:30"},
		{"14:30", "16:00"},
		{"15:00", "16:30"},
		{"15:30", "17:00"},
		{"16:00", "17:30"},
		{"16:30", "18:00"},
	})
}

// Повторяющийся оверрайд с истекшим endDate больше не действует
func TestResolveAvailableSlots_ExpiredRecurringOverride(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
		overrides: []domain.DateOverride{
			{
				TutorID:    tutorID,
				DaysOfWeek: []int{1},
				EndDate:    datePtr(mustDate(t, "2026-09-01")),
				StartTime:  json_types.NewTime(0, 0),
				EndTime:    json_types.NewTime(23, 59),
			},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, [][2]string{
		{"09:00", "10:00"},
		{"10:00", "11:00"},
		{"11:00", "12:00"},
	})
}

// Тьютор без настроек доступности - пустой результат, не ошибка
func TestResolveAvailableSlots_MissingSettings(t *testing.T) {
	service := newTestService(&stubStore{})

	slots, _, err := service.ResolveAvailableSlots(context.Background(), uuid.New(), mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Fatalf("got %+v, want empty slice", slots)
	}
}

// Нулевой шаг в настройках не должен зацикливать обход дня,
// такая конфигурация равносильна отсутствию настроек
func TestResolveAvailableSlots_ZeroMinSessionDuration(t *testing.T) {
	tutorID := uuid.New()
	settings := defaultSettings(tutorID)
	settings.MinSessionDuration = 0
	store := &stubStore{
		settings: settings,
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
	}
	service := newTestService(store)

	done := make(chan struct{})
	var slots []domain.AvailableSlot
	var err error
	go func() {
		slots, _, err = service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("resolver did not return for zero min_session_duration")
	}

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0: %+v", len(slots), slots)
	}
}

// Отрицательный шаг обрабатывается так же, как нулевой
func TestResolveAvailableSlots_NegativeMinSessionDuration(t *testing.T) {
	tutorID := uuid.New()
	settings := defaultSettings(tutorID)
	settings.MinSessionDuration = -30
	store := &stubStore{
		settings: settings,
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0: %+v", len(slots), slots)
	}
}

// Нет записи недельного расписания на запрошенный день недели
func TestResolveAvailableSlots_NoWeeklySlotForDay(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			// Только среда, а запрашиваем понедельник
			{TutorID: tutorID, DayOfWeek: 3, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0", len(slots))
	}
}

// День недели выключен флагом is_available
func TestResolveAvailableSlots_DayMarkedUnavailable(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: false, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0", len(slots))
	}
}

// Привилегированное чтение упало, резервное чтение записей отфильтровывает отмененные
func TestResolveAvailableSlots_FallbackToAppointments(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
		busyErr: errors.New("rpc unavailable"),
		appointments: []domain.Appointment{
			{TutorID: tutorID, StartTime: json_types.NewTime(10, 0), EndTime: json_types.NewTime(11, 0), Status: domain.AppointmentStatusConfirmed},
			{TutorID: tutorID, StartTime: json_types.NewTime(11, 0), EndTime: json_types.NewTime(12, 0), Status: domain.AppointmentStatusCancelled},
		},
	}
	service := newTestService(store)

	slots, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Отмененная запись 11:00-12:00 слот не занимает
	assertSlots(t, slots, [][2]string{
		{"09:00", "10:00"},
		{"11:00", "12:00"},
	})
}

// Оба чтения занятости упали - ошибка, а не пустой результат
func TestResolveAvailableSlots_BothBusyReadsFail(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
		busyErr: errors.New("rpc unavailable"),
		apptErr: errors.New("select failed"),
	}
	service := newTestService(store)

	_, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Повторный вызов с теми же входными данными дает тот же результат
func TestResolveAvailableSlots_Deterministic(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(12, 0)},
		},
		busy: []domain.BusySlot{
			{StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(10, 0)},
		},
	}
	service := newTestService(store)

	first, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := service.ResolveAvailableSlots(context.Background(), tutorID, mustDate(t, "2026-09-07"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("results differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// Батч-резолв возвращает окна на каждую дату под ее ключом
func TestResolveBatchSlots(t *testing.T) {
	tutorID := uuid.New()
	store := &stubStore{
		settings: defaultSettings(tutorID),
		weekly: []domain.WeeklySlot{
			{TutorID: tutorID, DayOfWeek: 1, IsAvailable: true, StartTime: json_types.NewTime(9, 0), EndTime: json_types.NewTime(11, 0)},
		},
	}
	service := newTestService(store)

	dates := []json_types.Date{
		mustDate(t, "2026-09-07"),
		mustDate(t, "2026-09-08"),
		mustDate(t, "2026-09-14"),
	}
	result, err := service.ResolveBatchSlots(context.Background(), tutorID, dates, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("got %d entries, want 3", len(result))
	}
	// Понедельники доступны, вторник нет
	assertSlots(t, result["2026-09-07"], [][2]string{{"09:00", "10:00"}, {"10:00", "11:00"}})
	assertSlots(t, result["2026-09-14"], [][2]string{{"09:00", "10:00"}, {"10:00", "11:00"}})
	if len(result["2026-09-08"]) != 0 {
		t.Fatalf("tuesday should be empty, got %+v", result["2026-09-08"])
	}
}

func datePtr(d json_types.Date) *json_types.Date {
	return &d
}
