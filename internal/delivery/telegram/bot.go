package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/repository"
	"github.com/tira-ua/realtor-bot/internal/usecase"
)

// Config telegram adapteri sozlamalari.
type Config struct {
	Token                string
	ListingsAPIKey       string
	PageSize             int
	WorkerCount          int
	AdminIDs             []int64
	TableRefreshInterval time.Duration
	SilenceThreshold     time.Duration
	SilenceCheckInterval time.Duration
}

// Handler telegram long-poll adapteri. Update'lar engine hodisalariga
// aylantiriladi, effektlar shu yerda bajariladi: xabar yuborish, e'lonlarni
// olib kelish, tarix va sessiyani yozish.
type Handler struct {
	bot      *tgbotapi.BotAPI
	engine   *usecase.Engine
	tables   *usecase.Tables
	sessions repository.SessionRepository
	store    repository.DialogStore
	gateway  repository.ListingsGateway
	queue    *turnQueue
	log      *zap.Logger

	apiKey       string
	pageSize     int
	adminIDs     map[int64]bool
	refreshEvery time.Duration
	silenceAfter time.Duration
	silenceEvery time.Duration
}

// NewHandler botga ulanadi va adapterni quradi.
func NewHandler(
	cfg Config,
	engine *usecase.Engine,
	tables *usecase.Tables,
	sessions repository.SessionRepository,
	store repository.DialogStore,
	gateway repository.ListingsGateway,
	log *zap.Logger,
) (*Handler, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram botga ulanib bo'lmadi: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	refreshEvery := cfg.TableRefreshInterval
	if refreshEvery <= 0 {
		refreshEvery = 5 * time.Minute
	}
	silenceAfter := cfg.SilenceThreshold
	if silenceAfter <= 0 {
		silenceAfter = constants.DefaultSilenceThreshold
	}
	silenceEvery := cfg.SilenceCheckInterval
	if silenceEvery <= 0 {
		silenceEvery = constants.DefaultSilenceCheckInterval
	}

	admins := make(map[int64]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}

	h := &Handler{
		bot:          bot,
		engine:       engine,
		tables:       tables,
		sessions:     sessions,
		store:        store,
		gateway:      gateway,
		log:          log,
		apiKey:       cfg.ListingsAPIKey,
		pageSize:     pageSize,
		adminIDs:     admins,
		refreshEvery: refreshEvery,
		silenceAfter: silenceAfter,
		silenceEvery: silenceEvery,
	}
	h.queue = newTurnQueue(h, cfg.WorkerCount)
	return h, nil
}

// GetBotUsername telegramdan olingan bot username.
func (h *Handler) GetBotUsername() string {
	return h.bot.Self.UserName
}
