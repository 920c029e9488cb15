package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/usecase"
)

// watchSilence jim qolgan suhbatlarni davriy ko'rib chiqadi. Eslatma
// yuborish qarori engine'da, bu yer faqat nomzod sessiyalarni navbatga
// soladi; navbat orqali o'tgani uchun eslatma foydalanuvchining parallel
// xabari bilan to'qnashmaydi.
func (h *Handler) watchSilence(ctx context.Context) {
	ticker := time.NewTicker(h.silenceEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweepSilence(ctx)
		}
	}
}

func (h *Handler) sweepSilence(ctx context.Context) {
	sessions, err := h.sessions.All(ctx)
	if err != nil {
		h.log.Warn("sessiyalarni ko'rib chiqib bo'lmadi", zap.Error(err))
		return
	}

	now := time.Now()
	for _, sess := range sessions {
		if sess.SilenceNotified || now.Sub(sess.LastActivity) < h.silenceAfter {
			continue
		}
		h.queue.submit(&turnRequest{
			chatID: sess.ChatID,
			event:  usecase.Event{Kind: usecase.EventSilence, Now: now},
		})
	}
}
