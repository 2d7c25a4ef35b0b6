package slot_resolver_service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
)

func (s *SlotResolverService) ResolveBatchSlots(ctx context.Context, tutorID uuid.UUID, dates []json_types.Date, durationMinutes int) (map[string][]domain.AvailableSlot, error) {
	result := make(map[string][]domain.AvailableSlot)
	var mu sync.Mutex
	var wg sync.WaitGroup
	errCh := make(chan error, len(dates))

	// Ограничиваем количество одновременных резолвов
	workerPool := make(chan struct{}, 10)

	for _, date := range dates {
		wg.Add(1)

		// Занимаем слот в пуле
		workerPool <- struct{}{}

		go func(date json_types.Date) {
			defer func() {
				// Освобождаем слот в пуле
				<-workerPool
				wg.Done()
			}()

			slots, _, err := s.ResolveAvailableSlots(ctx, tutorID, date, durationMinutes)
			if err != nil {
				errCh <- err
				return
			}

			mu.Lock()
			result[date.String()] = slots
			mu.Unlock()
		}(date)
	}

	wg.Wait()
	close(errCh)

	// Проверяем ошибки
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}
