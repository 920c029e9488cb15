package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
	"github.com/tira-ua/realtor-bot/internal/infrastructure/metrics"
	"github.com/tira-ua/realtor-bot/internal/usecase"
)

// telegramMessageLimit bitta xabardagi maksimal belgilar soni.
const telegramMessageLimit = 4096

// contactButtonText kontakt ulashish tugmasi matni.
const contactButtonText = "📞 Поділитись контактом"

// deliver FxSend effektini bajaradi: matnni bo'laklab yuboradi, kerak
// bo'lsa klaviatura qo'shadi va javobni dialog tarixiga yozadi.
func (h *Handler) deliver(ctx context.Context, sess *entity.Session, fx usecase.FxSend) error {
	text := strings.TrimSpace(fx.Text)
	if text == "" {
		h.log.Warn("bo'sh javob o'tkazib yuborildi", zap.Int64("chat_id", sess.ChatID))
		return nil
	}

	if h.bot != nil {
		chunks := splitIntoChunks(text, telegramMessageLimit)
		for i, chunk := range chunks {
			msg := tgbotapi.NewMessage(sess.ChatID, chunk)
			if i == len(chunks)-1 {
				// klaviatura oxirgi bo'lakka ulanadi
				switch {
				case fx.ContactKeyboard:
					msg.ReplyMarkup = contactKeyboard()
				case fx.RemoveKeyboard:
					msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
				}
			}
			if _, err := h.bot.Send(msg); err != nil {
				metrics.SendErrors.Inc()
				return fmt.Errorf("xabar yuborilmadi: %w", err)
			}
		}
	}

	if err := h.store.AppendMessage(ctx, sess.DialogID, constants.SenderAgent, text); err != nil {
		h.log.Warn("chiquvchi xabar yozilmadi", zap.Int64("chat_id", sess.ChatID), zap.Error(err))
	}
	return nil
}

// sendCard e'lon kartasi: rasm bo'lsa caption bilan photo, aks holda oddiy
// matn. Photo ketmasa matn bilan yuboriladi, karta yo'qolmasligi kerak.
func (h *Handler) sendCard(ctx context.Context, sess *entity.Session, photoURL, card string) error {
	if h.bot != nil && photoURL != "" {
		photo := tgbotapi.NewPhoto(sess.ChatID, tgbotapi.FileURL(photoURL))
		photo.Caption = card
		_, err := h.bot.Send(photo)
		if err == nil {
			if err := h.store.AppendMessage(ctx, sess.DialogID, constants.SenderAgent, card); err != nil {
				h.log.Warn("chiquvchi xabar yozilmadi", zap.Error(err))
			}
			return nil
		}
		metrics.SendErrors.Inc()
		h.log.Warn("photo yuborilmadi, matn bilan yuboriladi",
			zap.Int64("chat_id", sess.ChatID), zap.String("photo_url", photoURL), zap.Error(err))
	}
	return h.deliver(ctx, sess, usecase.FxSend{Text: card})
}

// sendPlain dialog tarixiga bog'lanmagan xizmat xabari (komanda javoblari).
func (h *Handler) sendPlain(chatID int64, text string) {
	if h.bot == nil {
		return
	}
	for _, chunk := range splitIntoChunks(text, telegramMessageLimit) {
		if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			metrics.SendErrors.Inc()
			h.log.Warn("xabar yuborilmadi", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
}

// contactKeyboard bitta tugmali reply klaviatura: telefon raqamini so'raydi.
func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(contactButtonText)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// splitIntoChunks matnni telegram limitiga mos bo'laklarga bo'ladi.
func splitIntoChunks(s string, limit int) []string {
	if limit <= 0 {
		return []string{s}
	}
	var chunks []string
	var current strings.Builder

	for _, r := range s {
		current.WriteRune(r)
		if current.Len() >= limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
