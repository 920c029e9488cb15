package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
	"github.com/tira-ua/realtor-bot/internal/domain/repository"
)

const dialogSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	telegram_id BIGINT UNIQUE NOT NULL,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS dialogs (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	contact_shared BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_dialogs_user_active ON dialogs (user_id, created_at DESC) WHERE is_active;
CREATE TABLE IF NOT EXISTS messages (
	id BIGSERIAL PRIMARY KEY,
	dialog_id BIGINT NOT NULL REFERENCES dialogs(id) ON DELETE CASCADE,
	sender TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_messages_dialog_time ON messages (dialog_id, created_at);
CREATE TABLE IF NOT EXISTS filters (
	id BIGSERIAL PRIMARY KEY,
	dialog_id BIGINT NOT NULL REFERENCES dialogs(id) ON DELETE CASCADE,
	data JSONB NOT NULL DEFAULT '{}'::jsonb,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_filters_dialog_time ON filters (dialog_id, id DESC);
CREATE TABLE IF NOT EXISTS api_requests (
	id BIGSERIAL PRIMARY KEY,
	dialog_id BIGINT NOT NULL REFERENCES dialogs(id) ON DELETE CASCADE,
	request_id TEXT NOT NULL DEFAULT '',
	payload JSONB,
	response TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS views (
	id BIGSERIAL PRIMARY KEY,
	dialog_id BIGINT NOT NULL REFERENCES dialogs(id) ON DELETE CASCADE,
	listing_id BIGINT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	payload JSONB,
	display_index INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_views_dialog ON views (dialog_id, display_index);
CREATE TABLE IF NOT EXISTS viewing_requests (
	id BIGSERIAL PRIMARY KEY,
	dialog_id BIGINT NOT NULL REFERENCES dialogs(id) ON DELETE CASCADE,
	listing_id BIGINT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	payload JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_viewing_requests_time ON viewing_requests (created_at DESC);
`

// PostgresDialogStore repository.DialogStore ning asosiy implementatsiyasi.
// Suhbat tarixi, filtr snapshotlari va arizalar append-only yoziladi.
type PostgresDialogStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewPostgresDialogStore ulanishni ochadi va sxemani tayyorlaydi.
func NewPostgresDialogStore(dsn string, log *zap.Logger) (*PostgresDialogStore, error) {
	db, err := openPostgresWithRetry(dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if _, err := db.Exec(dialogSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dialog store sxemasi yaratilmadi: %w", err)
	}
	return newPostgresDialogStore(db, log), nil
}

func newPostgresDialogStore(db *sql.DB, log *zap.Logger) *PostgresDialogStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresDialogStore{db: db, log: log}
}

// UpsertUser telegram profilini topadi yoki yaratadi; har kelgan xabarda
// username/ism yangilanadi, display_name va phone esa saqlanib qoladi.
func (p *PostgresDialogStore) UpsertUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (repository.UserRecord, error) {
	var rec repository.UserRecord
	err := p.db.QueryRowContext(ctx, `
	INSERT INTO users (telegram_id, username, first_name, last_name)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (telegram_id) DO UPDATE
	SET username = EXCLUDED.username,
	    first_name = EXCLUDED.first_name,
	    last_name = EXCLUDED.last_name,
	    updated_at = NOW()
	RETURNING id, telegram_id, username, first_name, last_name, display_name, phone
	`, telegramID, username, firstName, lastName).Scan(
		&rec.ID, &rec.TelegramID, &rec.Username, &rec.FirstName, &rec.LastName, &rec.DisplayName, &rec.Phone)
	if err != nil {
		return repository.UserRecord{}, fmt.Errorf("upsert user: %w", err)
	}
	return rec, nil
}

// ActiveDialog ochiq dialogni topadi, bo'lmasa yangisini ochadi.
func (p *PostgresDialogStore) ActiveDialog(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
	SELECT id FROM dialogs
	WHERE user_id = $1 AND is_active
	ORDER BY created_at DESC
	LIMIT 1`, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("select active dialog: %w", err)
	}
	err = p.db.QueryRowContext(ctx,
		`INSERT INTO dialogs (user_id) VALUES ($1) RETURNING id`, userID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create dialog: %w", err)
	}
	return id, nil
}

func (p *PostgresDialogStore) FinishDialog(ctx context.Context, dialogID int64) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE dialogs SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, dialogID)
	if err != nil {
		return fmt.Errorf("finish dialog: %w", err)
	}
	return nil
}

func (p *PostgresDialogStore) SetDisplayName(ctx context.Context, userID int64, name string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE users SET display_name = $2, updated_at = NOW() WHERE id = $1`, userID, name)
	if err != nil {
		return fmt.Errorf("set display name: %w", err)
	}
	return nil
}

// SetContact raqamni userga yozadi va dialogni kontakt ulashilgan deb
// belgilaydi; ikkalasi bitta tranzaksiyada.
func (p *PostgresDialogStore) SetContact(ctx context.Context, userID, dialogID int64, phone string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set contact begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET phone = $2, updated_at = NOW() WHERE id = $1`, userID, phone); err != nil {
		return fmt.Errorf("set contact user: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE dialogs SET contact_shared = TRUE, updated_at = NOW() WHERE id = $1`, dialogID); err != nil {
		return fmt.Errorf("set contact dialog: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set contact commit: %w", err)
	}
	return nil
}

func (p *PostgresDialogStore) AppendMessage(ctx context.Context, dialogID int64, sender, content string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO messages (dialog_id, sender, content) VALUES ($1, $2, $3)`,
		dialogID, sender, content)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (p *PostgresDialogStore) SaveCriteria(ctx context.Context, dialogID int64, criteria entity.Criteria, completed bool) error {
	data, err := json.Marshal(criteria)
	if err != nil {
		return fmt.Errorf("marshal criteria: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO filters (dialog_id, data, completed) VALUES ($1, $2, $3)`,
		dialogID, data, completed)
	if err != nil {
		return fmt.Errorf("save criteria: %w", err)
	}
	return nil
}

func (p *PostgresDialogStore) LatestCriteria(ctx context.Context, dialogID int64) (entity.Criteria, bool, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, `
	SELECT data FROM filters
	WHERE dialog_id = $1
	ORDER BY id DESC
	LIMIT 1`, dialogID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Criteria{}, false, nil
	}
	if err != nil {
		return entity.Criteria{}, false, fmt.Errorf("latest criteria: %w", err)
	}
	var c entity.Criteria
	if err := json.Unmarshal(data, &c); err != nil {
		return entity.Criteria{}, false, fmt.Errorf("unmarshal criteria: %w", err)
	}
	return c, true, nil
}

// LogAPIRequest javob tanasi har doim JSON bo'lavermaydi, shuning uchun xom
// matn sifatida saqlanadi.
func (p *PostgresDialogStore) LogAPIRequest(ctx context.Context, dialogID int64, requestID string, payload, response []byte) error {
	_, err := p.db.ExecContext(ctx, `
	INSERT INTO api_requests (dialog_id, request_id, payload, response)
	VALUES ($1, $2, $3, $4)`,
		dialogID, requestID, nullableJSON(payload), nullableText(response))
	if err != nil {
		return fmt.Errorf("log api request: %w", err)
	}
	return nil
}

func (p *PostgresDialogStore) NextDisplayIndex(ctx context.Context, dialogID int64) (int, error) {
	var next int
	err := p.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_index), 0) + 1 FROM views WHERE dialog_id = $1`,
		dialogID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next display index: %w", err)
	}
	return next, nil
}

func (p *PostgresDialogStore) SaveView(ctx context.Context, dialogID int64, view entity.ShownListing) error {
	payload, err := marshalPayload(view.Payload)
	if err != nil {
		return fmt.Errorf("marshal view payload: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
	INSERT INTO views (dialog_id, listing_id, title, address, payload, display_index)
	VALUES ($1, $2, $3, $4, $5, $6)`,
		dialogID, view.ListingID, view.Title, view.Address, payload, view.DisplayIndex)
	if err != nil {
		return fmt.Errorf("save view: %w", err)
	}
	return nil
}

func (p *PostgresDialogStore) ViewsByDialog(ctx context.Context, dialogID int64) ([]entity.ShownListing, error) {
	rows, err := p.db.QueryContext(ctx, `
	SELECT listing_id, display_index, title, address
	FROM views
	WHERE dialog_id = $1
	ORDER BY display_index`, dialogID)
	if err != nil {
		return nil, fmt.Errorf("views by dialog: %w", err)
	}
	defer rows.Close()

	var out []entity.ShownListing
	for rows.Next() {
		var v entity.ShownListing
		if err := rows.Scan(&v.ListingID, &v.DisplayIndex, &v.Title, &v.Address); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (p *PostgresDialogStore) RequestedListingIDs(ctx context.Context, dialogID int64) ([]int64, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT DISTINCT listing_id FROM viewing_requests WHERE dialog_id = $1`, dialogID)
	if err != nil {
		return nil, fmt.Errorf("requested listing ids: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan listing id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (p *PostgresDialogStore) SaveViewingRequest(ctx context.Context, dialogID int64, listing entity.ShownListing) error {
	payload, err := marshalPayload(listing.Payload)
	if err != nil {
		return fmt.Errorf("marshal viewing payload: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
	INSERT INTO viewing_requests (dialog_id, listing_id, title, address, payload)
	VALUES ($1, $2, $3, $4, $5)`,
		dialogID, listing.ListingID, listing.Title, listing.Address, payload)
	if err != nil {
		return fmt.Errorf("save viewing request: %w", err)
	}
	return nil
}

func (p *PostgresDialogStore) ListViewingRequests(ctx context.Context, limit int) ([]repository.ViewingRequestRecord, error) {
	query := `
	SELECT vr.created_at, vr.dialog_id, u.telegram_id, u.display_name, u.phone,
	       vr.listing_id, vr.title, vr.address
	FROM viewing_requests vr
	JOIN dialogs d ON d.id = vr.dialog_id
	JOIN users u ON u.id = d.user_id
	ORDER BY vr.created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list viewing requests: %w", err)
	}
	defer rows.Close()

	var out []repository.ViewingRequestRecord
	for rows.Next() {
		var r repository.ViewingRequestRecord
		if err := rows.Scan(&r.CreatedAt, &r.DialogID, &r.TelegramID, &r.Name, &r.Phone,
			&r.ListingID, &r.Title, &r.Address); err != nil {
			return nil, fmt.Errorf("scan viewing request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresDialogStore) Stats(ctx context.Context) (repository.StoreStats, error) {
	var s repository.StoreStats
	err := p.db.QueryRowContext(ctx, `
	SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM dialogs WHERE is_active),
		(SELECT COUNT(*) FROM messages),
		(SELECT COUNT(*) FROM viewing_requests)`).
		Scan(&s.Users, &s.ActiveDialogs, &s.Messages, &s.ViewingRequests)
	if err != nil {
		return repository.StoreStats{}, fmt.Errorf("store stats: %w", err)
	}
	return s, nil
}

func (p *PostgresDialogStore) Close() error {
	return p.db.Close()
}

func marshalPayload(payload map[string]any) (any, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullableText(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
