package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Config Google Sheets manbasi sozlamalari. Service account JSON birinchi
// o'rinda, bo'lmasa API key (faqat ochiq jadvallar uchun yetadi).
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	APIKey             string
}

// Client bitta spreadsheetdan worksheetlarni nomi bo'yicha o'qiydi va
// repository.TableSource sifatida ishlaydi.
type Client struct {
	service       *sheetsapi.Service
	spreadsheetID string
	log           *zap.Logger
}

// NewClient sheets servisini quradi.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("GOOGLE_SPREADSHEET_ID bo'sh")
	}

	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		opts = append(opts,
			option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)),
			option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	case strings.TrimSpace(cfg.APIKey) != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		return nil, fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON ham, GOOGLE_SHEETS_API_KEY ham berilmagan")
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service yaratilmadi: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{service: service, spreadsheetID: cfg.SpreadsheetID, log: log}, nil
}

// FetchTable worksheet qatorlarini qaytaradi. Birinchi qator sarlavha:
// kichik harfga tushirib trim qilinadi, qolgan qatorlar sarlavha->qiymat
// map ko'rinishida. Butunlay bo'sh qatorlar tashlab yuboriladi.
func (c *Client) FetchTable(ctx context.Context, name string) ([]map[string]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("worksheet %q o'qilmadi: %w", name, err)
	}
	rows := recordsFromValues(resp.Values)
	c.log.Debug("worksheet fetched", zap.String("table", name), zap.Int("rows", len(rows)))
	return rows, nil
}

// recordsFromValues xom katak matritsasini sarlavha bo'yicha map qatorlarga
// aylantiradi. Qisqa qatorlarda yetishmagan kataklar bo'sh qiymat oladi.
func recordsFromValues(values [][]interface{}) []map[string]string {
	if len(values) < 2 {
		return nil
	}
	headers := make([]string, len(values[0]))
	for i, cell := range values[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(cellString(cell)))
	}

	rows := make([]map[string]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make(map[string]string, len(headers))
		empty := true
		for i, header := range headers {
			if header == "" {
				continue
			}
			value := ""
			if i < len(raw) {
				value = strings.TrimSpace(cellString(raw[i]))
			}
			row[header] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
