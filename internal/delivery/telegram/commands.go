package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/infrastructure/metrics"
	"github.com/tira-ua/realtor-bot/internal/usecase"
)

const helpText = `Я допоможу підібрати квартиру 🏠

Напишіть, що шукаєте, наприклад:
«Шукаю 2-кімнатну на Салтівці до 40000»

Команди:
/start - почати спочатку
/help - ця довідка`

// handleCommand komandalarni qayta ishlaydi. /start sessiyaga tegadi va
// navbat orqali o'tadi, admin komandalar esa darhol bajariladi.
func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		h.submitEvent(message, usecase.Event{Kind: usecase.EventStart})
	case "help":
		h.sendPlain(message.Chat.ID, helpText)
	case "reload":
		h.handleReloadCommand(ctx, message)
	case "export":
		h.handleExportCommand(ctx, message)
	case "stats":
		h.handleStatsCommand(ctx, message)
	default:
		h.sendPlain(message.Chat.ID, "Невідома команда. /help для довідки.")
	}
}

func (h *Handler) isAdmin(userID int64) bool {
	return h.adminIDs[userID]
}

// handleReloadCommand sozlama jadvallarini qo'lda yangilash.
func (h *Handler) handleReloadCommand(ctx context.Context, message *tgbotapi.Message) {
	if !h.isAdmin(message.From.ID) {
		h.log.Warn("admin bo'lmagan reload urinishi", zap.Int64("user_id", message.From.ID))
		return
	}
	if err := h.reloadTables(ctx); err != nil {
		h.sendPlain(message.Chat.ID, "⚠️ Не вдалося оновити таблиці: "+err.Error())
		return
	}
	h.sendPlain(message.Chat.ID, "✅ Таблиці оновлено.")
}

// handleExportCommand barcha ko'rsatuv arizalarini xlsx fayl qilib yuboradi.
func (h *Handler) handleExportCommand(ctx context.Context, message *tgbotapi.Message) {
	if !h.isAdmin(message.From.ID) {
		h.log.Warn("admin bo'lmagan export urinishi", zap.Int64("user_id", message.From.ID))
		return
	}

	records, err := h.store.ListViewingRequests(ctx, 0)
	if err != nil {
		h.log.Error("arizalarni o'qib bo'lmadi", zap.Error(err))
		h.sendPlain(message.Chat.ID, "⚠️ Не вдалося прочитати заявки.")
		return
	}
	if len(records) == 0 {
		h.sendPlain(message.Chat.ID, "Заявок поки немає.")
		return
	}

	xlsxBytes, err := buildViewingRequestsXLSX(records)
	if err != nil {
		h.log.Error("xlsx tayyorlanmadi", zap.Error(err))
		h.sendPlain(message.Chat.ID, "⚠️ Не вдалося підготувати файл.")
		return
	}

	if h.bot == nil {
		return
	}
	filename := fmt.Sprintf("viewing_requests_%s.xlsx", time.Now().Format("20060102_150405"))
	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{Name: filename, Bytes: xlsxBytes})
	doc.Caption = fmt.Sprintf("📋 Заявки на перегляд\nВсього: %d", len(records))
	if _, err := h.bot.Send(doc); err != nil {
		metrics.SendErrors.Inc()
		h.log.Error("export yuborilmadi", zap.Error(err))
	}
}

// handleStatsCommand umumiy hisoblagichlar.
func (h *Handler) handleStatsCommand(ctx context.Context, message *tgbotapi.Message) {
	if !h.isAdmin(message.From.ID) {
		h.log.Warn("admin bo'lmagan stats urinishi", zap.Int64("user_id", message.From.ID))
		return
	}

	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.log.Error("statistikani o'qib bo'lmadi", zap.Error(err))
		h.sendPlain(message.Chat.ID, "⚠️ Не вдалося прочитати статистику.")
		return
	}
	h.sendPlain(message.Chat.ID, fmt.Sprintf(
		"👥 Користувачів: %d\n💬 Активних діалогів: %d\n✉️ Повідомлень: %d\n📋 Заявок на перегляд: %d",
		stats.Users, stats.ActiveDialogs, stats.Messages, stats.ViewingRequests))
}
