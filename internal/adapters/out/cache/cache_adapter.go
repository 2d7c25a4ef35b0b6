package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

// daySlotsEntry хранит слоты одного дня по длительностям,
// чтобы инвалидация дня сбрасывала все варианты запрошенной длительности
type daySlotsEntry struct {
	Slots map[int][]domain.AvailableSlot
}

type settingsEntry struct {
	Settings  domain.AvailabilitySettings
	Timestamp time.Time
}

type CacheAdapter struct {
	daySlotsCache *lru.Cache[string, *daySlotsEntry]
	settingsCache *lru.Cache[uuid.UUID, *settingsEntry]
	settingsTtl   time.Duration
	mu            sync.RWMutex
	logger        out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	lruDaySlotsCache, err := lru.New[string, *daySlotsEntry](cfg.Cache.SlotsSize)
	if err != nil {
		logger.Error("cache.slots.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.SlotsSize,
		})
		return nil, err
	}

	lruSettingsCache, err := lru.New[uuid.UUID, *settingsEntry](cfg.Cache.SlotsSize)
	if err != nil {
		logger.Error("cache.settings.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.SlotsSize,
		})
		return nil, err
	}

	return &CacheAdapter{
		daySlotsCache: lruDaySlotsCache,
		settingsCache: lruSettingsCache,
		settingsTtl:   time.Duration(cfg.Cache.SettingsTtlMinutes) * time.Minute,
		logger:        logger.WithModule("CacheAdapter"),
	}, nil
}

func daySlotsKey(tutorID uuid.UUID, date json_types.Date) string {
	return fmt.Sprintf("%s|%s", tutorID, date)
}

// Кэширование слотов дня

func (c *CacheAdapter) GetDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date, durationMinutes int) ([]domain.AvailableSlot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.daySlotsCache.Get(daySlotsKey(tutorID, date))
	if !exists {
		c.logger.Debug("cache.day_slots.get.miss", out.LogFields{
			"tutorId": tutorID,
			"date":    date.String(),
		})
		return nil, false
	}

	slots, exists := entry.Slots[durationMinutes]
	if !exists {
		return nil, false
	}

	c.logger.Debug("cache.day_slots.get.hit", out.LogFields{
		"tutorId":    tutorID,
		"date":       date.String(),
		"slotsCount": len(slots),
	})
	return slots, true
}

func (c *CacheAdapter) StoreDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date, durationMinutes int, slots []domain.AvailableSlot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := daySlotsKey(tutorID, date)

	entry, exists := c.daySlotsCache.Get(key)
	if !exists {
		entry = &daySlotsEntry{
			Slots: make(map[int][]domain.AvailableSlot),
		}
	}
	entry.Slots[durationMinutes] = slots

	c.daySlotsCache.Add(key, entry)

	c.logger.Debug("cache.day_slots.store", out.LogFields{
		"tutorId":    tutorID,
		"date":       date.String(),
		"slotsCount": len(slots),
	})
}

func (c *CacheAdapter) InvalidateDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.daySlotsCache.Remove(daySlotsKey(tutorID, date))
}

func (c *CacheAdapter) InvalidateTutorSlots(ctx context.Context, tutorID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := tutorID.String() + "|"
	for _, key := range c.daySlotsCache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.daySlotsCache.Remove(key)
		}
	}
}

func (c *CacheAdapter) InvalidateAllSlots(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.daySlotsCache.Purge()
	c.settingsCache.Purge()
}

// Кэширование настроек доступности

func (c *CacheAdapter) GetSettings(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilitySettings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.settingsCache.Get(tutorID)
	if !exists || time.Since(entry.Timestamp) > c.settingsTtl {
		return nil, false
	}

	return &entry.Settings, true
}

func (c *CacheAdapter) StoreSettings(ctx context.Context, tutorID uuid.UUID, settings domain.AvailabilitySettings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settingsCache.Add(tutorID, &settingsEntry{
		Settings:  settings,
		Timestamp: time.Now(),
	})
}

func (c *CacheAdapter) InvalidateSettings(ctx context.Context, tutorID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settingsCache.Remove(tutorID)
}
