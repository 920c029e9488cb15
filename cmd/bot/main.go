package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/config"
	"github.com/tira-ua/realtor-bot/internal/delivery/ops"
	"github.com/tira-ua/realtor-bot/internal/delivery/telegram"
	"github.com/tira-ua/realtor-bot/internal/domain/repository"
	"github.com/tira-ua/realtor-bot/internal/infrastructure/listings"
	"github.com/tira-ua/realtor-bot/internal/infrastructure/logging"
	"github.com/tira-ua/realtor-bot/internal/infrastructure/sheets"
	"github.com/tira-ua/realtor-bot/internal/infrastructure/storage"
	"github.com/tira-ua/realtor-bot/internal/usecase"
)

func main() {
	initDefaultTimezone()

	// Konfiguratsiyani yuklash
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Konfiguratsiya yuklanmadi: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	logger.Info("🚀 Ilova ishga tushmoqda...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Dependencies ni yaratish (Dependency Injection)

	// 1. Konfiguratsiya jadvallari (Google Sheets yoki built-in)
	tables := buildTables(ctx, cfg, logger)

	// 2. E'lonlar bazasi mijozi
	gateway := listings.NewClient(listings.Config{
		URL:       cfg.Listings.URL,
		APIKey:    cfg.Listings.APIKey,
		MediaBase: cfg.Listings.MediaBase,
	}, logger)
	logger.Info("✅ Listings mijozi tayyor", zap.String("url", cfg.Listings.URL))

	// 3. Sessiya ombori (Redis yoki in-memory)
	sessions := buildSessionRepository(ctx, cfg, logger)

	// 4. Dialog ombori (Postgres yoki in-memory)
	store := buildDialogStore(cfg, logger)
	defer store.Close()

	// 5. Suhbat engine
	extractor := usecase.NewExtractor(logger)
	engine := usecase.NewEngine(tables, extractor, cfg.Listings.Limit, cfg.Dialog.SilenceThreshold, logger)
	logger.Info("✅ Suhbat engine tayyor")

	// 6. Telegram bot handler
	handler, err := telegram.NewHandler(telegram.Config{
		Token:                cfg.TelegramToken,
		ListingsAPIKey:       cfg.Listings.APIKey,
		PageSize:             cfg.Listings.Limit,
		WorkerCount:          cfg.Dialog.WorkerCount,
		AdminIDs:             cfg.AdminIDs,
		TableRefreshInterval: cfg.Sheets.RefreshInterval,
		SilenceThreshold:     cfg.Dialog.SilenceThreshold,
		SilenceCheckInterval: cfg.Dialog.SilenceCheckInterval,
	}, engine, tables, sessions, store, gateway, logger)
	if err != nil {
		logger.Fatal("❌ Bot handler yaratilmadi", zap.Error(err))
	}
	logger.Info("✅ Telegram bot tayyor", zap.String("username", handler.GetBotUsername()))

	// 7. Ops HTTP server (/health, /metrics)
	opsServer := ops.NewServer(cfg.OpsAddr, logger)
	go func() {
		if err := opsServer.Run(ctx); err != nil {
			logger.Error("❌ Ops server xatosi", zap.Error(err))
		}
	}()

	logger.Info("🤖 Bot ishlayapti. To'xtatish uchun Ctrl+C ni bosing.")

	// Start signal kelguncha bloklanadi va navbatdagi turlarni tugatib qaytadi
	if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("❌ Bot xatosi", zap.Error(err))
	}

	logger.Info("✅ Bot to'xtatildi.")
}

// buildTables Google Sheets manbasini ulaydi. Manba sozlanmagan yoki
// ulanmagan bo'lsa bot built-in jadvallar bilan ishlayveradi.
func buildTables(ctx context.Context, cfg *config.Config, logger *zap.Logger) *usecase.Tables {
	if strings.TrimSpace(cfg.Sheets.SpreadsheetID) == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID berilmagan, built-in jadvallar ishlatiladi")
		return usecase.NewStaticTables(usecase.BuildSnapshot(nil))
	}

	source, err := sheets.NewClient(ctx, sheets.Config{
		SpreadsheetID:      cfg.Sheets.SpreadsheetID,
		ServiceAccountJSON: cfg.Sheets.ServiceAccountJSON,
		APIKey:             cfg.Sheets.APIKey,
	}, logger)
	if err != nil {
		logger.Warn("Google Sheets ulanmadi, built-in jadvallar ishlatiladi", zap.Error(err))
		return usecase.NewStaticTables(usecase.BuildSnapshot(nil))
	}

	tables := usecase.NewTables(source, logger)

	reloadCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := tables.Reload(reloadCtx); err != nil {
		logger.Warn("Jadvallar birinchi urinishda yuklanmadi, davriy yangilash qayta urinadi", zap.Error(err))
	} else {
		logger.Info("✅ Konfiguratsiya jadvallari yuklandi")
	}
	return tables
}

// buildSessionRepository Redis sozlangan bo'lsa unga ulanadi, aks holda
// (yoki ulanish xatosida) in-memory omborga qaytadi.
func buildSessionRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) repository.SessionRepository {
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		client, err := storage.NewRedisClient(ctx, storage.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			logger.Info("✅ Redis sessiya ombori tayyor", zap.String("addr", cfg.Redis.Addr))
			return storage.NewRedisSessionRepository(client, cfg.Dialog.SessionTTL, logger)
		}
		logger.Warn("Redis ulanmadi, in-memory sessiyalar ishlatiladi", zap.Error(err))
	}

	repo := storage.NewMemorySessionRepository(cfg.Dialog.SessionTTL, logger)
	repo.StartJanitor(ctx, 15*time.Minute)
	logger.Info("✅ In-memory sessiya ombori tayyor")
	return repo
}

// buildDialogStore Postgres sozlangan bo'lsa unga ulanadi. Ulana olmasa bot
// xotira ombori bilan ko'tariladi, lekin tarix restart'da yo'qoladi.
func buildDialogStore(cfg *config.Config, logger *zap.Logger) repository.DialogStore {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Warn("DATABASE_URL berilmagan, dialog tarixi xotirada saqlanadi")
		return storage.NewMemoryDialogStore()
	}

	store, err := storage.NewPostgresDialogStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Postgres ulanmadi, dialog tarixi xotirada saqlanadi", zap.Error(err))
		return storage.NewMemoryDialogStore()
	}
	logger.Info("✅ Postgres dialog ombori tayyor")
	return store
}

func initDefaultTimezone() {
	const tzName = "Europe/Kyiv"
	if loc, err := time.LoadLocation(tzName); err == nil {
		time.Local = loc
		return
	}
	time.Local = time.FixedZone(tzName, 2*60*60)
}
