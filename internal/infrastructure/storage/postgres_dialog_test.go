package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

func setupMockStore(t *testing.T) (*PostgresDialogStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newPostgresDialogStore(db, zap.NewNop()), mock
}

func TestPostgresDialog_UpsertUser(t *testing.T) {
	store, mock := setupMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "telegram_id", "username", "first_name", "last_name", "display_name", "phone"}).
		AddRow(7, 1001, "oleh", "Oleh", "", "Олег", "0671234567")
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(int64(1001), "oleh", "Oleh", "").
		WillReturnRows(rows)

	rec, err := store.UpsertUser(context.Background(), 1001, "oleh", "Oleh", "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "Олег", rec.DisplayName)
	assert.Equal(t, "0671234567", rec.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_ActiveDialogFound(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT id FROM dialogs").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(55))

	id, err := store.ActiveDialog(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(55), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_ActiveDialogCreated(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT id FROM dialogs").
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO dialogs").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(56))

	id, err := store.ActiveDialog(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(56), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_SetContactTransaction(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET phone").
		WithArgs(int64(7), "0671234567").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE dialogs SET contact_shared").
		WithArgs(int64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SetContact(context.Background(), 7, 55, "0671234567"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_SaveCriteria(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("INSERT INTO filters").
		WithArgs(int64(55), []byte(`{"rooms_in":[3],"price_max":50000}`), true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	priceMax := 50000
	criteria := entity.Criteria{RoomsIn: []int{3}, PriceMax: &priceMax}
	require.NoError(t, store.SaveCriteria(context.Background(), 55, criteria, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_LatestCriteria(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT data FROM filters").
		WithArgs(int64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"rooms_in":[2],"price_max":40000}`)))

	got, ok, err := store.LatestCriteria(context.Background(), 55)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{2}, got.RoomsIn)
	require.NotNil(t, got.PriceMax)
	assert.Equal(t, 40000, *got.PriceMax)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_LatestCriteriaMissing(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT data FROM filters").
		WithArgs(int64(55)).
		WillReturnError(sql.ErrNoRows)

	_, ok, err := store.LatestCriteria(context.Background(), 55)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_NextDisplayIndex(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(display_index\), 0\) \+ 1 FROM views`).
		WithArgs(int64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(4))

	next, err := store.NextDisplayIndex(context.Background(), 55)
	require.NoError(t, err)
	assert.Equal(t, 4, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_SaveView(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("INSERT INTO views").
		WithArgs(int64(55), int64(101), "2-кімн. квартира", "вул. Сумська, 12", sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(1, 1))

	view := entity.ShownListing{
		ListingID:    101,
		DisplayIndex: 3,
		Title:        "2-кімн. квартира",
		Address:      "вул. Сумська, 12",
		Payload:      map[string]any{"id": 101},
	}
	require.NoError(t, store.SaveView(context.Background(), 55, view))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_ViewsByDialog(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT listing_id, display_index, title, address").
		WithArgs(int64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"listing_id", "display_index", "title", "address"}).
			AddRow(101, 1, "Квартира", "вул. Сумська, 12").
			AddRow(102, 2, "Квартира", "вул. Наукова, 3"))

	views, err := store.ViewsByDialog(context.Background(), 55)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(101), views[0].ListingID)
	assert.Equal(t, 2, views[1].DisplayIndex)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_Stats(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"users", "dialogs", "messages", "requests"}).
			AddRow(12, 3, 240, 5))

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Users)
	assert.Equal(t, 3, stats.ActiveDialogs)
	assert.Equal(t, 240, stats.Messages)
	assert.Equal(t, 5, stats.ViewingRequests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDialog_ListViewingRequestsLimit(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT vr.created_at").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{
			"created_at", "dialog_id", "telegram_id", "display_name", "phone",
			"listing_id", "title", "address",
		}))

	records, err := store.ListViewingRequests(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
