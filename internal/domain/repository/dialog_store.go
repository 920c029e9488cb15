package repository

import (
	"context"
	"time"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

// UserRecord users jadvalidagi yozuv.
type UserRecord struct {
	ID          int64
	TelegramID  int64
	Username    string
	FirstName   string
	LastName    string
	DisplayName string
	Phone       string
}

// ViewingRequestRecord eksport uchun ko'rsatuv so'rovi qatori.
type ViewingRequestRecord struct {
	CreatedAt  time.Time
	DialogID   int64
	TelegramID int64
	Name       string
	Phone      string
	ListingID  int64
	Title      string
	Address    string
}

// StoreStats /stats komandasi uchun hisoblagichlar.
type StoreStats struct {
	Users           int
	ActiveDialogs   int
	Messages        int
	ViewingRequests int
}

// DialogStore suhbat tarixi va arizalarning relyatsion ombori. Postgres
// implementatsiyasi asosiy, memory esa test va lokal ishga tushirish uchun.
type DialogStore interface {
	// UpsertUser telegram profil bo'yicha userni topadi yoki yaratadi
	UpsertUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (UserRecord, error)

	// ActiveDialog userning ochiq dialogini qaytaradi, yo'q bo'lsa yangisini ochadi
	ActiveDialog(ctx context.Context, userID int64) (int64, error)

	// FinishDialog dialogni yopiq deb belgilaydi
	FinishDialog(ctx context.Context, dialogID int64) error

	// SetDisplayName suhbatda aytilgan ismni userga yozadi
	SetDisplayName(ctx context.Context, userID int64, name string) error

	// SetContact telefon raqamini userga yozadi va dialogni kontakt
	// ulashilgan deb belgilaydi
	SetContact(ctx context.Context, userID, dialogID int64, phone string) error

	// AppendMessage xabarni dialog tarixiga qo'shadi (sender: user/agent)
	AppendMessage(ctx context.Context, dialogID int64, sender, content string) error

	// SaveCriteria filtr snapshotini qo'shadi (har yangilanishda yangi qator)
	SaveCriteria(ctx context.Context, dialogID int64, criteria entity.Criteria, completed bool) error

	// LatestCriteria dialogning oxirgi filtr snapshotini qaytaradi
	LatestCriteria(ctx context.Context, dialogID int64) (entity.Criteria, bool, error)

	// LogAPIRequest listings API chaqiruvini payload/javob bilan yozadi
	LogAPIRequest(ctx context.Context, dialogID int64, requestID string, payload, response []byte) error

	// NextDisplayIndex dialog uchun navbatdagi ko'rsatish raqami (1 dan)
	NextDisplayIndex(ctx context.Context, dialogID int64) (int, error)

	// SaveView yuborilgan e'lonni qayd qiladi
	SaveView(ctx context.Context, dialogID int64, view entity.ShownListing) error

	// ViewsByDialog dialogda ko'rsatilgan e'lonlar, tartib raqami bo'yicha
	ViewsByDialog(ctx context.Context, dialogID int64) ([]entity.ShownListing, error)

	// RequestedListingIDs dialogda allaqachon so'ralgan e'lon idlari
	RequestedListingIDs(ctx context.Context, dialogID int64) ([]int64, error)

	// SaveViewingRequest ko'rsatuv arizasini yozadi
	SaveViewingRequest(ctx context.Context, dialogID int64, listing entity.ShownListing) error

	// ListViewingRequests oxirgi arizalar eksport uchun (limit <= 0 - hammasi)
	ListViewingRequests(ctx context.Context, limit int) ([]ViewingRequestRecord, error)

	// Stats umumiy hisoblagichlar
	Stats(ctx context.Context) (StoreStats, error)

	// Close resurslarni bo'shatadi
	Close() error
}
