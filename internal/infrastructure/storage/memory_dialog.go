package storage

import (
	"context"
	"sync"
	"time"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
	"github.com/tira-ua/realtor-bot/internal/domain/repository"
)

type memoryUser struct {
	repository.UserRecord
}

type memoryDialog struct {
	ID            int64
	UserID        int64
	Active        bool
	ContactShared bool
	CreatedAt     time.Time
}

type memoryMessage struct {
	DialogID int64
	Sender   string
	Content  string
}

type memoryFilterRow struct {
	DialogID  int64
	Criteria  entity.Criteria
	Completed bool
}

type memoryViewingRequest struct {
	CreatedAt time.Time
	DialogID  int64
	Listing   entity.ShownListing
}

// MemoryDialogStore repository.DialogStore ning xotiradagi varianti. Lokal
// ishga tushirish va Postgres yo'qligida fallback uchun; qayta ishga
// tushirishda hammasi yo'qoladi.
type MemoryDialogStore struct {
	mu sync.RWMutex

	nextUserID   int64
	nextDialogID int64

	usersByTG map[int64]*memoryUser
	usersByID map[int64]*memoryUser
	dialogs   map[int64]*memoryDialog
	messages  []memoryMessage
	filters   []memoryFilterRow
	views     map[int64][]entity.ShownListing
	requests  []memoryViewingRequest

	now func() time.Time
}

// NewMemoryDialogStore bo'sh store yaratadi.
func NewMemoryDialogStore() *MemoryDialogStore {
	return &MemoryDialogStore{
		usersByTG: make(map[int64]*memoryUser),
		usersByID: make(map[int64]*memoryUser),
		dialogs:   make(map[int64]*memoryDialog),
		views:     make(map[int64][]entity.ShownListing),
		now:       time.Now,
	}
}

func (m *MemoryDialogStore) UpsertUser(_ context.Context, telegramID int64, username, firstName, lastName string) (repository.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.usersByTG[telegramID]
	if !ok {
		m.nextUserID++
		user = &memoryUser{UserRecord: repository.UserRecord{
			ID:         m.nextUserID,
			TelegramID: telegramID,
		}}
		m.usersByTG[telegramID] = user
		m.usersByID[user.ID] = user
	}
	user.Username = username
	user.FirstName = firstName
	user.LastName = lastName
	return user.UserRecord, nil
}

func (m *MemoryDialogStore) ActiveDialog(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *memoryDialog
	for _, d := range m.dialogs {
		if d.UserID != userID || !d.Active {
			continue
		}
		if latest == nil || d.CreatedAt.After(latest.CreatedAt) || (d.CreatedAt.Equal(latest.CreatedAt) && d.ID > latest.ID) {
			latest = d
		}
	}
	if latest != nil {
		return latest.ID, nil
	}

	m.nextDialogID++
	d := &memoryDialog{
		ID:        m.nextDialogID,
		UserID:    userID,
		Active:    true,
		CreatedAt: m.now(),
	}
	m.dialogs[d.ID] = d
	return d.ID, nil
}

func (m *MemoryDialogStore) FinishDialog(_ context.Context, dialogID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dialogs[dialogID]; ok {
		d.Active = false
	}
	return nil
}

func (m *MemoryDialogStore) SetDisplayName(_ context.Context, userID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.usersByID[userID]; ok {
		user.DisplayName = name
	}
	return nil
}

func (m *MemoryDialogStore) SetContact(_ context.Context, userID, dialogID int64, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.usersByID[userID]; ok {
		user.Phone = phone
	}
	if d, ok := m.dialogs[dialogID]; ok {
		d.ContactShared = true
	}
	return nil
}

func (m *MemoryDialogStore) AppendMessage(_ context.Context, dialogID int64, sender, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, memoryMessage{DialogID: dialogID, Sender: sender, Content: content})
	return nil
}

func (m *MemoryDialogStore) SaveCriteria(_ context.Context, dialogID int64, criteria entity.Criteria, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, memoryFilterRow{DialogID: dialogID, Criteria: criteria, Completed: completed})
	return nil
}

func (m *MemoryDialogStore) LatestCriteria(_ context.Context, dialogID int64) (entity.Criteria, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.filters) - 1; i >= 0; i-- {
		if m.filters[i].DialogID == dialogID {
			return m.filters[i].Criteria, true, nil
		}
	}
	return entity.Criteria{}, false, nil
}

func (m *MemoryDialogStore) LogAPIRequest(_ context.Context, _ int64, _ string, _, _ []byte) error {
	return nil
}

func (m *MemoryDialogStore) NextDisplayIndex(_ context.Context, dialogID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := 0
	for _, v := range m.views[dialogID] {
		if v.DisplayIndex > max {
			max = v.DisplayIndex
		}
	}
	return max + 1, nil
}

func (m *MemoryDialogStore) SaveView(_ context.Context, dialogID int64, view entity.ShownListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[dialogID] = append(m.views[dialogID], view)
	return nil
}

func (m *MemoryDialogStore) ViewsByDialog(_ context.Context, dialogID int64) ([]entity.ShownListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	views := m.views[dialogID]
	out := make([]entity.ShownListing, len(views))
	copy(out, views)
	return out, nil
}

func (m *MemoryDialogStore) RequestedListingIDs(_ context.Context, dialogID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[int64]bool)
	var out []int64
	for _, r := range m.requests {
		if r.DialogID != dialogID || seen[r.Listing.ListingID] {
			continue
		}
		seen[r.Listing.ListingID] = true
		out = append(out, r.Listing.ListingID)
	}
	return out, nil
}

func (m *MemoryDialogStore) SaveViewingRequest(_ context.Context, dialogID int64, listing entity.ShownListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, memoryViewingRequest{
		CreatedAt: m.now(),
		DialogID:  dialogID,
		Listing:   listing,
	})
	return nil
}

func (m *MemoryDialogStore) ListViewingRequests(_ context.Context, limit int) ([]repository.ViewingRequestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []repository.ViewingRequestRecord
	for i := len(m.requests) - 1; i >= 0; i-- {
		r := m.requests[i]
		rec := repository.ViewingRequestRecord{
			CreatedAt: r.CreatedAt,
			DialogID:  r.DialogID,
			ListingID: r.Listing.ListingID,
			Title:     r.Listing.Title,
			Address:   r.Listing.Address,
		}
		if d, ok := m.dialogs[r.DialogID]; ok {
			if user, ok := m.usersByID[d.UserID]; ok {
				rec.TelegramID = user.TelegramID
				rec.Name = user.DisplayName
				rec.Phone = user.Phone
			}
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryDialogStore) Stats(_ context.Context) (repository.StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := 0
	for _, d := range m.dialogs {
		if d.Active {
			active++
		}
	}
	return repository.StoreStats{
		Users:           len(m.usersByTG),
		ActiveDialogs:   active,
		Messages:        len(m.messages),
		ViewingRequests: len(m.requests),
	}, nil
}

func (m *MemoryDialogStore) Close() error { return nil }
