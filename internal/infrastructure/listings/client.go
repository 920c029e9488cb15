package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
	"github.com/tira-ua/realtor-bot/internal/infrastructure/metrics"
)

// maxResponseBytes javob tanasining o'qiladigan chegarasi.
const maxResponseBytes = 2 << 20

// Config listings API mijozi sozlamalari.
type Config struct {
	URL       string
	APIKey    string
	MediaBase string
}

// Client tashqi e'lonlar bazasi bilan gaplashadi. Transport yoki parse
// xatosi hech qachon chaqiruvchiga chiqmaydi: bo'sh natija qaytadi, sabab
// logda qoladi.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	mediaBase  string
	log        *zap.Logger
}

// NewClient listings mijozini quradi.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	mediaBase := strings.TrimRight(cfg.MediaBase, "/")
	if mediaBase == "" {
		mediaBase = "https://re24.com.ua"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		mediaBase:  mediaBase,
		log:        log,
	}
}

// Search payloadni POST qiladi va javobni e'lonlar ro'yxatiga aylantiradi.
func (c *Client) Search(ctx context.Context, payload map[string]any) entity.SearchResult {
	result := entity.SearchResult{RequestID: uuid.NewString()}
	log := c.log.With(zap.String("request_id", result.RequestID))

	if c.apiKey != "" {
		if _, ok := payload["key"]; !ok {
			payload["key"] = c.apiKey
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("listings payload marshal failed", zap.Error(err))
		metrics.ListingsRequests.WithLabelValues("error").Inc()
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		log.Error("listings request build failed", zap.Error(err))
		metrics.ListingsRequests.WithLabelValues("error").Inc()
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("listings request failed", zap.Error(err))
		metrics.ListingsRequests.WithLabelValues("network_error").Inc()
		return result
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	metrics.ListingsRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("listings response read failed", zap.Error(err))
		metrics.ListingsRequests.WithLabelValues("network_error").Inc()
		return result
	}
	result.Raw = raw

	if resp.StatusCode != http.StatusOK {
		log.Warn("listings API returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(raw), 500)))
		metrics.ListingsRequests.WithLabelValues("http_error").Inc()
		return result
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Warn("listings response parse failed",
			zap.Error(err),
			zap.String("body", truncate(string(raw), 500)))
		metrics.ListingsRequests.WithLabelValues("parse_error").Inc()
		return result
	}

	items := anySlice(parsed["items"])
	if len(items) == 0 {
		items = anySlice(parsed["data"])
	}
	total := intValue(parsed["count"])
	if total == 0 {
		total = intValue(parsed["total"])
	}
	if total == 0 {
		total = len(items)
	}

	listings := make([]entity.Listing, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		listings = append(listings, c.toListing(obj))
	}
	result.Items = listings
	result.Total = total

	log.Info("listings fetched", zap.Int("items", len(listings)), zap.Int("total", total))
	metrics.ListingsRequests.WithLabelValues("ok").Inc()
	return result
}

// toListing API javobidagi bitta elementni karta maydonlariga ajratadi.
// Xom element Raw ichida qoladi va ko'rsatuv yozuviga payload bo'ladi.
func (c *Client) toListing(item map[string]any) entity.Listing {
	l := entity.Listing{
		ID:          int64(intValue(item["id"])),
		Title:       stringValue(item["title"]),
		Price:       stringValue(item["price"]),
		Address:     stringValue(item["address"]),
		AreaTotal:   stringValue(item["area_total"]),
		Rooms:       stringValue(item["rooms"]),
		Floor:       intValue(item["floor"]),
		FloorsTotal: intValue(item["floors_total"]),
		URL:         cleanURL(stringValue(item["url"])),
		Raw:         item,
	}
	if photos := extractPhotos(item); len(photos) > 0 {
		l.PhotoURL = c.absolutize(stringValue(photos[0]["name"]))
	}
	return l
}

// extractPhotos photos maydonining uch ko'rinishini qo'llaydi: JSON matn,
// JSON matnli bitta elementli ro'yxat yoki tayyor obyektlar ro'yxati.
func extractPhotos(item map[string]any) []map[string]any {
	raw, ok := item["photos"]
	if !ok || raw == nil {
		return nil
	}
	switch t := raw.(type) {
	case string:
		return photosFromJSON(t)
	case []any:
		if len(t) == 0 {
			return nil
		}
		if s, ok := t[0].(string); ok {
			return photosFromJSON(s)
		}
		out := make([]map[string]any, 0, len(t))
		for _, v := range t {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			out = append(out, obj)
		}
		return out
	}
	return nil
}

func photosFromJSON(s string) []map[string]any {
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if obj, ok := v.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// absolutize nisbiy fayl nomini media bazasiga bog'laydi; http manzillar
// https ga ko'tariladi.
func (c *Client) absolutize(name string) string {
	name = cleanURL(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "http://") {
		name = "https://" + strings.TrimPrefix(name, "http://")
	}
	if strings.HasPrefix(name, "https://") {
		return name
	}
	return c.mediaBase + "/" + strings.TrimLeft(name, "/")
}

// cleanURL ko'rinmas belgilar va qator uzilishlarini olib tashlaydi,
// bunaqa axlat spreadsheets orqali kelgan qiymatlarda uchraydi.
func cleanURL(u string) string {
	if u == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(u))
	for _, r := range u {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\r', '\n':
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func anySlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func intValue(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case json.Number:
		n, _ := t.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	}
	return 0
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	}
	return ""
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
