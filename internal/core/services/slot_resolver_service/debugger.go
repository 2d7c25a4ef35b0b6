package slot_resolver_service

import (
	"sync"

	"github.com/suchimauz/booking-slots-resolver/internal/core/domain"
)

type SlotResolverServiceDebug struct {
	mu   sync.Mutex
	data []domain.DebugInfo
}

func (d *SlotResolverServiceDebug) AddDebugInfo(info domain.DebugInfo) {
	d.mu.Lock()
	d.data = append(d.data, info)
	d.mu.Unlock()
}
