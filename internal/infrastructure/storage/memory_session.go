package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

// MemorySessionRepository sessiyalarni xotirada saqlaydi. Har bir chat o'z
// navbatida qat'iy ketma-ket ishlangani uchun nusxalash sessiyani boshqa
// goroutine bilan bo'lishishdan himoya qiladi.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
	ttl      time.Duration
	log      *zap.Logger
}

// NewMemorySessionRepository TTL bilan repo yaratadi.
func NewMemorySessionRepository(ttl time.Duration, log *zap.Logger) *MemorySessionRepository {
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MemorySessionRepository{
		sessions: make(map[int64]*entity.Session),
		ttl:      ttl,
		log:      log,
	}
}

func (m *MemorySessionRepository) Load(_ context.Context, chatID int64) (*entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (m *MemorySessionRepository) Save(_ context.Context, session *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ChatID] = cloneSession(session)
	return nil
}

func (m *MemorySessionRepository) All(_ context.Context) ([]*entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entity.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, cloneSession(s))
	}
	return out, nil
}

func (m *MemorySessionRepository) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

// StartJanitor eski sessiyalarni davriy tozalaydi (memory leak oldini
// olish). Context bekor bo'lganda to'xtaydi.
func (m *MemorySessionRepository) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep(time.Now())
			}
		}
	}()
}

func (m *MemorySessionRepository) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for chatID, s := range m.sessions {
		if now.Sub(s.LastActivity) > m.ttl {
			delete(m.sessions, chatID)
			removed++
		}
	}
	if removed > 0 {
		m.log.Info("stale sessions removed", zap.Int("count", removed))
	}
}

func cloneSession(s *entity.Session) *entity.Session {
	out := *s
	if s.AskedQuestions != nil {
		out.AskedQuestions = append([]string(nil), s.AskedQuestions...)
	}
	if s.Selected != nil {
		out.Selected = append([]entity.ShownListing(nil), s.Selected...)
	}
	out.Criteria = cloneCriteria(s.Criteria)
	return &out
}

func cloneCriteria(c entity.Criteria) entity.Criteria {
	out := c
	out.DistrictIDs = append([]int(nil), c.DistrictIDs...)
	out.MicroareaIDs = append([]int(nil), c.MicroareaIDs...)
	out.StreetIDs = append([]int(nil), c.StreetIDs...)
	out.RoomsIn = append([]int(nil), c.RoomsIn...)
	out.ConditionIn = append([]int(nil), c.ConditionIn...)
	out.PriceMin = cloneInt(c.PriceMin)
	out.PriceMax = cloneInt(c.PriceMax)
	out.AreaMin = cloneInt(c.AreaMin)
	out.AreaMax = cloneInt(c.AreaMax)
	out.FloorMin = cloneInt(c.FloorMin)
	out.FloorMax = cloneInt(c.FloorMax)
	out.FloorsTotalMin = cloneInt(c.FloorsTotalMin)
	out.FloorsTotalMax = cloneInt(c.FloorsTotalMax)
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
