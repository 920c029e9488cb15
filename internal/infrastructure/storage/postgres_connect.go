package storage

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	connectAttemptsDefault = 20
	connectDelayDefault    = 2 * time.Second
)

// openPostgresWithRetry ulanishni qayta urinishlar bilan ochadi. Konteyner
// muhitida baza botdan kechroq ko'tarilishi mumkin, shuning uchun ping
// muvaffaqiyatli bo'lguncha kutiladi. Baza topilmasa bir marta yaratishga
// urinadi.
func openPostgresWithRetry(dsn string) (*sql.DB, error) {
	attempts := getenvInt("POSTGRES_CONNECT_MAX_ATTEMPTS", connectAttemptsDefault)
	delaySeconds := getenvInt("POSTGRES_CONNECT_RETRY_SECONDS", int(connectDelayDefault/time.Second))
	delay := time.Duration(delaySeconds) * time.Second
	if attempts <= 0 {
		attempts = connectAttemptsDefault
	}
	if delay <= 0 {
		delay = connectDelayDefault
	}

	var lastErr error
	created := false
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if pingErr := db.Ping(); pingErr == nil {
				return db, nil
			} else {
				err = pingErr
			}
		}
		if db != nil {
			_ = db.Close()
		}
		lastErr = err
		if !created && isDatabaseMissingError(err) {
			if createErr := ensureDatabase(dsn); createErr == nil {
				created = true
				continue
			} else {
				lastErr = createErr
			}
		}
		if attempt < attempts {
			time.Sleep(delay)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("postgres connection failed")
	}
	return nil, lastErr
}

type dsnInfo struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

// ensureDatabase DSN dagi bazani admin ulanish orqali yaratadi. Avval shu
// kredensiallar bilan "postgres" bazasiga kiriladi, bo'lmasa
// POSTGRES_ADMIN_* o'zgaruvchilari ishlatiladi.
func ensureDatabase(dsn string) error {
	info, ok := parseDSNInfo(dsn)
	if !ok || info.DBName == "" || info.Host == "" || info.User == "" {
		return fmt.Errorf("database info not found in dsn")
	}
	baseDSN := info.buildURL("postgres")
	if err := createDatabaseWithDSN(baseDSN, info.DBName); err != nil {
		adminDSN := adminDSNFromEnv(info)
		if adminDSN != "" && adminDSN != baseDSN {
			return createDatabaseWithDSN(adminDSN, info.DBName)
		}
		return err
	}
	return nil
}

func parseDSNInfo(dsn string) (dsnInfo, bool) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return dsnInfo{}, false
	}
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") {
		if info, ok := parseDSNURL(trimmed); ok {
			return info, true
		}
	}
	return parseDSNKeyValue(trimmed)
}

func parseDSNURL(raw string) (dsnInfo, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return dsnInfo{}, false
	}
	info := dsnInfo{
		Host:    u.Hostname(),
		Port:    u.Port(),
		DBName:  strings.TrimPrefix(u.Path, "/"),
		SSLMode: u.Query().Get("sslmode"),
	}
	if u.User != nil {
		info.User = u.User.Username()
		if pass, ok := u.User.Password(); ok {
			info.Password = pass
		}
	}
	if info.Port == "" {
		info.Port = "5432"
	}
	if info.SSLMode == "" {
		info.SSLMode = "disable"
	}
	return info, true
}

func parseDSNKeyValue(raw string) (dsnInfo, bool) {
	info := dsnInfo{}
	for _, part := range strings.Fields(raw) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.Trim(kv[1], `"'`)
		switch key {
		case "user", "username":
			info.User = val
		case "password":
			info.Password = val
		case "host":
			info.Host = val
		case "port":
			info.Port = val
		case "dbname", "database":
			info.DBName = val
		case "sslmode":
			info.SSLMode = val
		}
	}
	if info.Port == "" {
		info.Port = "5432"
	}
	if info.SSLMode == "" {
		info.SSLMode = "disable"
	}
	if info.Host == "" && info.User == "" && info.DBName == "" {
		return dsnInfo{}, false
	}
	return info, true
}

func (p dsnInfo) buildURL(dbName string) string {
	host := p.Host
	port := p.Port
	if port == "" {
		port = "5432"
	}
	if host != "" {
		host = net.JoinHostPort(host, port)
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   host,
		Path:   "/" + dbName,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	q := u.Query()
	if strings.TrimSpace(p.SSLMode) != "" {
		q.Set("sslmode", p.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func adminDSNFromEnv(base dsnInfo) string {
	if dsn := strings.TrimSpace(os.Getenv("POSTGRES_ADMIN_DSN")); dsn != "" {
		return dsn
	}
	adminUser := strings.TrimSpace(os.Getenv("POSTGRES_ADMIN_USER"))
	if adminUser == "" {
		return ""
	}
	info := base
	info.User = adminUser
	info.Password = os.Getenv("POSTGRES_ADMIN_PASSWORD")
	adminDB := strings.TrimSpace(os.Getenv("POSTGRES_ADMIN_DB"))
	if adminDB == "" {
		adminDB = "postgres"
	}
	return info.buildURL(adminDB)
}

func createDatabaseWithDSN(dsn, dbName string) error {
	if strings.TrimSpace(dsn) == "" || strings.TrimSpace(dbName) == "" {
		return fmt.Errorf("admin dsn or db name missing")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return err
	}
	query := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(dbName))
	if _, err := db.Exec(query); err != nil {
		if isDatabaseExistsError(err) {
			return nil
		}
		return err
	}
	return nil
}

func isDatabaseMissingError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") && strings.Contains(msg, "database")
}

func isDatabaseExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") && strings.Contains(msg, "database")
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func getenvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}
