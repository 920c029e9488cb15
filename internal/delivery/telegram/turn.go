package telegram

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
	"github.com/tira-ua/realtor-bot/internal/domain/repository"
	"github.com/tira-ua/realtor-bot/internal/infrastructure/metrics"
	"github.com/tira-ua/realtor-bot/internal/usecase"
)

// processTurn bitta hodisaning to'liq sikli: profil va dialogni tayyorlash,
// sessiyani yuklash, engine qadami, effektlarni bajarish va sessiyani
// saqlash. Bitta chat turlari qat'iy ketma-ket kelishini turnQueue
// kafolatlaydi, shuning uchun sessiya ustida poyga yo'q.
func (h *Handler) processTurn(ctx context.Context, req *turnRequest) {
	log := h.log.With(zap.Int64("chat_id", req.chatID))

	if req.event.Kind == usecase.EventSilence {
		h.processSilenceTurn(ctx, req, log)
		return
	}

	user, err := h.store.UpsertUser(ctx, req.userID, req.username, req.firstName, req.lastName)
	if err != nil {
		log.Error("user upsert xatosi", zap.Error(err))
		return
	}
	dialogID, err := h.store.ActiveDialog(ctx, user.ID)
	if err != nil {
		log.Error("dialogni ochib bo'lmadi", zap.Error(err))
		return
	}

	sess, err := h.sessions.Load(ctx, req.chatID)
	if err != nil {
		log.Warn("sessiyani o'qib bo'lmadi", zap.Error(err))
	}
	if sess == nil || sess.DialogID != dialogID {
		// yangi dialog yoki yo'qolgan sessiya: oxirgi filtr snapshotidan tiklanadi
		criteria, _, err := h.store.LatestCriteria(ctx, dialogID)
		if err != nil {
			log.Warn("oxirgi filtrni o'qib bo'lmadi", zap.Error(err))
		}
		sess = usecase.NewSession(req.chatID, dialogID, user.DisplayName, criteria, req.event.Now)
	}

	if content := inboundContent(req.event); content != "" {
		if err := h.store.AppendMessage(ctx, dialogID, constants.SenderUser, content); err != nil {
			log.Warn("kiruvchi xabar yozilmadi", zap.Error(err))
		}
	}

	ev := req.event
	if ev.Shown, err = h.store.ViewsByDialog(ctx, dialogID); err != nil {
		log.Warn("ko'rsatilgan e'lonlar o'qilmadi", zap.Error(err))
	}
	ids, err := h.store.RequestedListingIDs(ctx, dialogID)
	if err != nil {
		log.Warn("mavjud arizalar o'qilmadi", zap.Error(err))
	}
	ev.Requested = make(map[int64]bool, len(ids))
	for _, id := range ids {
		ev.Requested[id] = true
	}

	metrics.TurnsTotal.WithLabelValues(sess.State).Inc()
	effects := h.engine.Step(sess, ev)

	finished := false
	for _, fx := range effects {
		done, err := h.runEffect(ctx, log, user, sess, fx)
		if err != nil {
			log.Error("effekt bajarilmadi", zap.Error(err))
			break
		}
		finished = finished || done
	}

	if finished {
		if err := h.sessions.Delete(ctx, req.chatID); err != nil {
			log.Warn("sessiya o'chirilmadi", zap.Error(err))
		}
		return
	}
	if err := h.sessions.Save(ctx, sess); err != nil {
		log.Error("sessiya saqlanmadi", zap.Error(err))
	}
}

// processSilenceTurn jimlik tekshiruvi: sessiya bo'lmasa yoki engine jim
// tursa hech narsa qilinmaydi. Yuborish muvaffaqiyatsiz bo'lsa sessiya
// saqlanmaydi, keyingi tekshiruv qayta uringanida eslatma chiqadi.
func (h *Handler) processSilenceTurn(ctx context.Context, req *turnRequest, log *zap.Logger) {
	sess, err := h.sessions.Load(ctx, req.chatID)
	if err != nil || sess == nil {
		return
	}
	effects := h.engine.Step(sess, req.event)
	if len(effects) == 0 {
		return
	}
	metrics.SilenceNotices.Inc()
	for _, fx := range effects {
		if _, err := h.runEffect(ctx, log, repository.UserRecord{}, sess, fx); err != nil {
			log.Warn("jimlik eslatmasi yuborilmadi", zap.Error(err))
			return
		}
	}
	if err := h.sessions.Save(ctx, sess); err != nil {
		log.Warn("sessiya saqlanmadi", zap.Error(err))
	}
}

// runEffect bitta effektni bajaradi; FxFinishDialog uchun true qaytaradi.
func (h *Handler) runEffect(ctx context.Context, log *zap.Logger, user repository.UserRecord, sess *entity.Session, fx usecase.Effect) (bool, error) {
	switch x := fx.(type) {
	case usecase.FxSend:
		return false, h.deliver(ctx, sess, x)
	case usecase.FxFetch:
		return false, h.fetchAndSend(ctx, log, sess, x)
	case usecase.FxSaveName:
		return false, h.store.SetDisplayName(ctx, user.ID, x.Name)
	case usecase.FxSaveContact:
		return false, h.store.SetContact(ctx, user.ID, sess.DialogID, x.Phone)
	case usecase.FxSaveCriteria:
		return false, h.store.SaveCriteria(ctx, sess.DialogID, x.Criteria, x.Completed)
	case usecase.FxRecordViewings:
		for _, l := range x.Listings {
			if err := h.store.SaveViewingRequest(ctx, sess.DialogID, l); err != nil {
				return false, err
			}
		}
		return false, nil
	case usecase.FxFinishDialog:
		return true, h.store.FinishDialog(ctx, sess.DialogID)
	default:
		log.Warn("noma'lum effekt turi")
		return false, nil
	}
}

// fetchAndSend filtr bo'yicha e'lonlarni olib keladi va kartalarni yuboradi.
// API muammolari bo'sh natija sifatida keladi, dialog hech qachon xato
// matni ko'rmaydi.
func (h *Handler) fetchAndSend(ctx context.Context, log *zap.Logger, sess *entity.Session, fx usecase.FxFetch) error {
	snap := h.tables.Snapshot()
	payload := fx.Criteria.Payload(h.apiKey, h.pageSize, fx.Offset)
	result := h.gateway.Search(ctx, payload)

	// API kaliti bazaga yozilmaydi
	delete(payload, "key")
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		payloadJSON = nil
	}
	if err := h.store.LogAPIRequest(ctx, sess.DialogID, result.RequestID, payloadJSON, result.Raw); err != nil {
		log.Warn("api so'rovi logga yozilmadi", zap.Error(err))
	}

	if fx.WithSummary {
		summary := snap.Copy(constants.CopySummaryHeader) + "\n" + usecase.Summary(snap, fx.Criteria)
		if err := h.deliver(ctx, sess, usecase.FxSend{Text: summary}); err != nil {
			return err
		}
	}

	items := result.Items
	total := result.Total
	if fx.Criteria.FloorOnlyLast {
		// server bu filtrni bilmaydi: sahifa tozalanadi va jami qayta sanaladi
		items = usecase.FilterLastFloor(items)
		total = len(items)
	}
	if len(items) == 0 {
		return h.deliver(ctx, sess, usecase.FxSend{Text: snap.Copy(constants.CopyNoResults)})
	}

	for _, item := range items {
		idx, err := h.store.NextDisplayIndex(ctx, sess.DialogID)
		if err != nil {
			return err
		}
		if err := h.sendCard(ctx, sess, item.PhotoURL, usecase.RenderCard(item, idx)); err != nil {
			return err
		}
		view := entity.ShownListing{
			ListingID:    item.ID,
			DisplayIndex: idx,
			Title:        item.Title,
			Address:      item.Address,
			Payload:      item.Raw,
		}
		if err := h.store.SaveView(ctx, sess.DialogID, view); err != nil {
			return err
		}
	}

	extra := usecase.ExtraOffersMessage(snap, total, fx.Offset, len(items))
	return h.deliver(ctx, sess, usecase.FxSend{Text: extra})
}

// inboundContent dialog tarixiga yoziladigan kiruvchi matn.
func inboundContent(ev usecase.Event) string {
	switch ev.Kind {
	case usecase.EventStart:
		return "/start"
	case usecase.EventContact:
		return ev.Phone
	default:
		return ev.Text
	}
}
