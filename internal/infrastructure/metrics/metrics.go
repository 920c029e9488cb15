package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal qayta ishlangan dialog hodisalari, hodisani qabul qilgan
	// holat bo'yicha.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_turns_total",
			Help: "Total number of processed dialog turns by handling state",
		},
		[]string{"state"},
	)

	// ListingsRequests tashqi e'lonlar APIsiga so'rovlar.
	ListingsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_listings_requests_total",
			Help: "Total number of listings API requests by outcome",
		},
		[]string{"status"},
	)

	// ListingsRequestDuration e'lonlar API chaqiruvi davomiyligi.
	ListingsRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "bot_listings_request_duration_seconds",
			Help: "Duration of listings API requests in seconds",
		},
	)

	// SilenceNotices yuborilgan jimlik eslatmalari.
	SilenceNotices = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_silence_notices_total",
			Help: "Total number of re-engagement messages sent to silent dialogs",
		},
	)

	// TableReloads sozlama jadvallarini yangilash urinishlari.
	TableReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_table_reloads_total",
			Help: "Total number of lookup table reloads by outcome",
		},
		[]string{"status"},
	)

	// SendErrors Telegramga yuborishdagi xatolar.
	SendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_send_errors_total",
			Help: "Total number of failed Telegram send attempts",
		},
	)
)
