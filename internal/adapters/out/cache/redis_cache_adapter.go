package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
)

// RedisCacheAdapter - вариант CachePort для нескольких реплик сервиса:
// LRU в памяти у каждой реплики свой, Redis общий
type RedisCacheAdapter struct {
	client      *redis.Client
	slotsTtl    time.Duration
	settingsTtl time.Duration
	logger      out.LoggerPort
}

func NewRedisCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*RedisCacheAdapter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
	})

	// Проверяем соединение
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		logger.Error("cache.redis.connect_failed", out.LogFields{
			"error": err.Error(),
			"addr":  cfg.Cache.RedisAddr,
		})
		return nil, err
	}

	return &RedisCacheAdapter{
		client:      client,
		slotsTtl:    time.Duration(cfg.Cache.RedisTtlMinutes) * time.Minute,
		settingsTtl: time.Duration(cfg.Cache.SettingsTtlMinutes) * time.Minute,
		logger:      logger.WithModule("RedisCacheAdapter"),
	}, nil
}

func redisDaySlotsKey(tutorID uuid.UUID, date json_types.Date) string {
	return fmt.Sprintf("slots:%s:%s", tutorID, date)
}

func redisSettingsKey(tutorID uuid.UUID) string {
	return fmt.Sprintf("settings:%s", tutorID)
}

// Кэширование слотов дня.
// Ключ - день тьютора, поля хэша - запрошенные длительности

func (c *RedisCacheAdapter) GetDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date, durationMinutes int) ([]domain.AvailableSlot, bool) {
	payload, err := c.client.HGet(ctx, redisDaySlotsKey(tutorID, date), strconv.Itoa(durationMinutes)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache.day_slots.get.failed", out.LogFields{
				"tutorId": tutorID,
				"error":   err.Error(),
			})
		}
		return nil, false
	}

	var slots []domain.AvailableSlot
	if err := json.Unmarshal([]byte(payload), &slots); err != nil {
		c.logger.Warn("cache.day_slots.decode_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
		return nil, false
	}

	return slots, true
}

func (c *RedisCacheAdapter) StoreDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date, durationMinutes int, slots []domain.AvailableSlot) {
	payload, err := json.Marshal(slots)
	if err != nil {
		return
	}

	key := redisDaySlotsKey(tutorID, date)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, strconv.Itoa(durationMinutes), payload)
	pipe.Expire(ctx, key, c.slotsTtl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("cache.day_slots.store_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
	}
}

func (c *RedisCacheAdapter) InvalidateDaySlots(ctx context.Context, tutorID uuid.UUID, date json_types.Date) {
	c.client.Del(ctx, redisDaySlotsKey(tutorID, date))
}

func (c *RedisCacheAdapter) InvalidateTutorSlots(ctx context.Context, tutorID uuid.UUID) {
	c.deleteByPattern(ctx, fmt.Sprintf("slots:%s:*", tutorID))
}

func (c *RedisCacheAdapter) InvalidateAllSlots(ctx context.Context) {
	c.deleteByPattern(ctx, "slots:*")
	c.deleteByPattern(ctx, "settings:*")
}

// Кэширование настроек доступности

func (c *RedisCacheAdapter) GetSettings(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilitySettings, bool) {
	payload, err := c.client.Get(ctx, redisSettingsKey(tutorID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache.settings.get.failed", out.LogFields{
				"tutorId": tutorID,
				"error":   err.Error(),
			})
		}
		return nil, false
	}

	var settings domain.AvailabilitySettings
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return nil, false
	}

	return &settings, true
}

func (c *RedisCacheAdapter) StoreSettings(ctx context.Context, tutorID uuid.UUID, settings domain.AvailabilitySettings) {
	payload, err := json.Marshal(settings)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, redisSettingsKey(tutorID), payload, c.settingsTtl).Err(); err != nil {
		c.logger.Warn("cache.settings.store_failed", out.LogFields{
			"tutorId": tutorID,
			"error":   err.Error(),
		})
	}
}

func (c *RedisCacheAdapter) InvalidateSettings(ctx context.Context, tutorID uuid.UUID) {
	c.client.Del(ctx, redisSettingsKey(tutorID))
}

func (c *RedisCacheAdapter) deleteByPattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache.delete_by_pattern.failed", out.LogFields{
			"pattern": pattern,
			"error":   err.Error(),
		})
	}
}
