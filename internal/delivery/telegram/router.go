package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/infrastructure/metrics"
	"github.com/tira-ua/realtor-bot/internal/usecase"
)

// Start long-poll siklini ishga tushiradi va ctx bekor bo'lganda navbatni
// to'xtatib chiqadi.
func (h *Handler) Start(ctx context.Context) error {
	h.queue.start(ctx)
	go h.watchSilence(ctx)
	go h.refreshTables(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.queue.shutdown()
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage update'ni hodisaga aylantirib navbatga qo'yadi. Bot faqat
// shaxsiy chatlarda ishlaydi, guruh xabarlari indamay tashlanadi.
func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.From.IsBot {
		return
	}
	if message.Chat == nil || !message.Chat.IsPrivate() {
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	if message.Contact != nil {
		h.submitEvent(message, usecase.Event{
			Kind:  usecase.EventContact,
			Phone: message.Contact.PhoneNumber,
		})
		return
	}

	// sticker, rasm va boshqa matnsiz kontent qayta ishlanmaydi
	if strings.TrimSpace(message.Text) == "" {
		return
	}
	h.submitEvent(message, usecase.Event{Kind: usecase.EventText, Text: message.Text})
}

// submitEvent foydalanuvchi profilini hodisaga ilova qilib navbatga beradi.
func (h *Handler) submitEvent(message *tgbotapi.Message, ev usecase.Event) {
	ev.Now = time.Now()
	req := &turnRequest{
		chatID:    message.Chat.ID,
		userID:    message.From.ID,
		username:  message.From.UserName,
		firstName: message.From.FirstName,
		lastName:  message.From.LastName,
		event:     ev,
	}
	if !h.queue.submit(req) {
		h.sendPlain(req.chatID, "Забагато повідомлень, зачекайте хвилинку 🙏")
	}
}

// refreshTables sozlama jadvallarini davriy yangilab turadi.
func (h *Handler) refreshTables(ctx context.Context) {
	ticker := time.NewTicker(h.refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = h.reloadTables(ctx)
		}
	}
}

// reloadTables bitta yangilash urinishi; natija metrikaga yoziladi.
func (h *Handler) reloadTables(ctx context.Context) error {
	reloadCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	err := h.tables.Reload(reloadCtx)
	status := "ok"
	if err != nil {
		status = "error"
		h.log.Warn("jadvallarni yangilab bo'lmadi", zap.Error(err))
	}
	metrics.TableReloads.WithLabelValues(status).Inc()
	return err
}
