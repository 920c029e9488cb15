package usecase

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

// EventKind turga kelgan hodisa turi.
type EventKind int

const (
	// EventText oddiy matnli xabar
	EventText EventKind = iota
	// EventStart /start komandasi
	EventStart
	// EventContact telefon raqami ulashildi
	EventContact
	// EventSilence jimlik tekshiruvi (foydalanuvchi xabarisiz)
	EventSilence
)

// Event engine uchun tayyorlangan bitta hodisa. Adapter hodisani sessiya
// konteksti bilan boyitadi: dialogda ko'rsatilgan e'lonlar va ular bo'yicha
// mavjud arizalar.
type Event struct {
	Kind      EventKind
	Text      string
	Phone     string
	Shown     []entity.ShownListing
	Requested map[int64]bool
	Now       time.Time
}

// Effect bitta turdan chiqqan deklarativ yon ta'sir. Engine I/O qilmaydi,
// adapter effektlarni tartib bilan bajaradi va birinchi xatoda to'xtaydi.
type Effect interface{ effect() }

// FxSend matnli javob; ContactKeyboard kontakt ulashish tugmasini qo'shadi,
// RemoveKeyboard klaviaturani yig'ishtiradi.
type FxSend struct {
	Text            string
	ContactKeyboard bool
	RemoveKeyboard  bool
}

// FxFetch filtr bo'yicha e'lonlarni olib yuborish; WithSummary oldin filtr
// xulosasini chiqaradi.
type FxFetch struct {
	Criteria    entity.Criteria
	Offset      int
	WithSummary bool
}

// FxSaveName tasdiqlangan ismni saqlash.
type FxSaveName struct{ Name string }

// FxSaveContact telefon raqamini saqlash.
type FxSaveContact struct{ Phone string }

// FxSaveCriteria filtr snapshotini yozish.
type FxSaveCriteria struct {
	Criteria  entity.Criteria
	Completed bool
}

// FxRecordViewings tanlangan e'lonlarga ko'rsatuv arizalarini yozish.
type FxRecordViewings struct{ Listings []entity.ShownListing }

// FxFinishDialog dialogni yopiq deb belgilash; keyingi xabar yangi dialog
// va toza sessiya bilan boshlanadi.
type FxFinishDialog struct{}

func (FxSend) effect()           {}
func (FxFetch) effect()          {}
func (FxSaveName) effect()       {}
func (FxSaveContact) effect()    {}
func (FxSaveCriteria) effect()   {}
func (FxRecordViewings) effect() {}
func (FxFinishDialog) effect()   {}

// chainLeftoverMinRunes ismdan keyin qolgan matn shu uzunlikdan oshsa,
// o'sha turda filtr xabari sifatida qayta ishlanadi.
const chainLeftoverMinRunes = 10

// Engine dialog holat mashinasi. Step sessiyani o'zgartiradi va effektlar
// ro'yxatini qaytaradi; hech qanday tashqi chaqiruv qilmaydi, shuning uchun
// to'liq deterministik test qilinadi.
type Engine struct {
	tables       *Tables
	extractor    *Extractor
	pageSize     int
	silenceAfter time.Duration
	log          *zap.Logger
}

// NewEngine dialog engineni quradi.
func NewEngine(tables *Tables, extractor *Extractor, pageSize int, silenceAfter time.Duration, log *zap.Logger) *Engine {
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if silenceAfter <= 0 {
		silenceAfter = constants.DefaultSilenceThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		tables:       tables,
		extractor:    extractor,
		pageSize:     pageSize,
		silenceAfter: silenceAfter,
		log:          log,
	}
}

// NewSession yangi chat sessiyasi. Ism ma'lum bo'lsa suhbat darhol erkin
// qidiruvdan boshlanadi.
func NewSession(chatID, dialogID int64, displayName string, criteria entity.Criteria, now time.Time) *entity.Session {
	state := constants.StateBrowsing
	if displayName == "" {
		state = constants.StateCollectingName
	}
	return &entity.Session{
		ChatID:       chatID,
		DialogID:     dialogID,
		State:        state,
		Criteria:     criteria,
		DisplayName:  displayName,
		LastActivity: now,
	}
}

// Step bitta hodisani qayta ishlaydi.
func (e *Engine) Step(s *entity.Session, ev Event) []Effect {
	snap := e.tables.Snapshot()

	if ev.Kind == EventSilence {
		return e.stepSilence(s, ev, snap)
	}

	s.LastActivity = ev.Now

	switch ev.Kind {
	case EventStart:
		return e.stepStart(s, ev, snap)
	case EventContact:
		return e.stepContact(s, ev, snap)
	}

	switch s.State {
	case constants.StateCollectingName:
		return e.stepCollectingName(s, ev, snap)
	case constants.StateCollectingFilters:
		return e.stepCollectingFilters(s, ev, snap)
	case constants.StateViewingSelection:
		return e.stepViewingSelection(s, ev, snap)
	case constants.StateViewingRequest:
		return e.stepViewingRequest(s, ev, snap)
	default:
		return e.stepBrowsing(s, ev, snap)
	}
}

// stepStart sessiyani boshlang'ich holatga qaytaradi va salomlashadi.
func (e *Engine) stepStart(s *entity.Session, ev Event, snap *Snapshot) []Effect {
	s.ResetSearch()
	s.SilenceNotified = false
	fx := []Effect{FxSend{Text: e.welcomeText(snap, ev.Now)}}
	if s.DisplayName == "" {
		s.State = constants.StateCollectingName
		s.CurrentQuestion = constants.SlotName
		return append(fx, FxSend{Text: NameQuestionText(snap)})
	}
	s.State = constants.StateBrowsing
	return append(fx, FxSend{Text: snap.Copy(constants.CopyAskParams)})
}

// stepContact kontakt tugmasi bosilganda. Ko'rsatuv arizasi kutilayotgan
// bo'lsa arizani yopadi, boshqa holatlarda shunchaki raqamni saqlaydi.
func (e *Engine) stepContact(s *entity.Session, ev Event, snap *Snapshot) []Effect {
	if s.State == constants.StateViewingRequest {
		return e.completeViewingRequest(s, ev.Phone, snap)
	}
	return []Effect{
		FxSaveContact{Phone: ev.Phone},
		FxSend{Text: snap.Copy(constants.CopyContactSaved), RemoveKeyboard: true},
	}
}

// stepCollectingName ism savoli va javobi.
func (e *Engine) stepCollectingName(s *entity.Session, ev Event, snap *Snapshot) []Effect {
	if s.CurrentQuestion != constants.SlotName {
		// birinchi kontakt: avval salomlashamiz, xabarni ism deb olmaymiz
		s.CurrentQuestion = constants.SlotName
		return []Effect{
			FxSend{Text: e.welcomeText(snap, ev.Now)},
			FxSend{Text: NameQuestionText(snap)},
		}
	}

	name, leftover := ExtractName(ev.Text)
	if name == "" {
		return []Effect{FxSend{Text: NameQuestionText(snap)}}
	}

	s.DisplayName = name
	s.State = constants.StateBrowsing
	s.CurrentQuestion = ""
	fx := []Effect{
		FxSaveName{Name: name},
		FxSend{Text: copyWithName(snap, constants.CopyGreetName, name)},
	}

	if utf8.RuneCountInString(strings.TrimSpace(leftover)) >= chainLeftoverMinRunes {
		chained := ev
		chained.Text = leftover
		return append(fx, e.stepBrowsing(s, chained, snap)...)
	}

	if q, ok := NextQuestion(snap, s.Criteria, nil); ok {
		s.State = constants.StateCollectingFilters
		s.CurrentQuestion = q.Key
		s.AskedQuestions = []string{q.Key}
		return append(fx, FxSend{Text: q.Text})
	}
	if !s.Criteria.IsEmpty() {
		return append(fx, FxFetch{Criteria: s.Criteria, WithSummary: true})
	}
	return append(fx, FxSend{Text: snap.Copy(constants.CopyAskParams)})
}

// stepBrowsing erkin qidiruv: intentlar, kutilgan slot, e'tirozlar va
// opportunistik ekstraksiya shu tartibda tekshiriladi.
func (e *Engine) stepBrowsing(s *entity.Session, ev Event, snap *Snapshot) []Effect {
	text := ev.Text

	if MatchIntent(snap, constants.IntentViewing, text) {
		if len(ev.Shown) == 0 {
			return []Effect{FxSend{Text: snap.Copy(constants.CopyViewingNothingShown)}}
		}
		s.State = constants.StateViewingSelection
		return []Effect{FxSend{Text: snap.Copy(constants.CopyViewingPrompt)}}
	}

	if MatchIntent(snap, constants.IntentNewSearch, text) {
		return e.startNewSearch(s, snap)
	}

	if MatchIntent(snap, constants.IntentShowMore, text) {
		s.Offset += e.pageSize
		return []Effect{FxFetch{Criteria: s.Criteria, Offset: s.Offset}}
	}

	if MatchIntent(snap, constants.IntentContinue, text) {
		return e.resumeFlow(s, snap)
	}

	if s.PendingSlot != "" {
		pending := s.PendingSlot
		s.PendingSlot = ""
		upd, ok := e.extractor.Extract(snap, pending, text, ModeScoped)
		if ok {
			upd = upd.Restrict(SlotKeys(pending))
		}
		if ok && !upd.Empty() {
			s.Criteria = s.Criteria.Apply(upd)
			s.Offset = 0
			return []Effect{
				FxSaveCriteria{Criteria: s.Criteria, Completed: len(MissingSlots(snap, s.Criteria)) == 0},
				FxFetch{Criteria: s.Criteria, WithSummary: true},
			}
		}
		return []Effect{FxSend{Text: snap.Copy(constants.CopyClarify)}}
	}

	if rule, ok := MatchObjection(snap, text); ok {
		if rule.Slot != "" {
			s.PendingSlot = rule.Slot
		}
		return []Effect{FxSend{Text: rule.Reply}}
	}

	upd := e.scanAllSlots(snap, text)
	if upd.Empty() {
		upd = NumericFallback(s.Criteria, text)
	}
	if !upd.Empty() {
		s.Criteria = s.Criteria.Apply(upd)
		s.Offset = 0
		fx := []Effect{FxSaveCriteria{
			Criteria:  s.Criteria,
			Completed: len(MissingSlots(snap, s.Criteria)) == 0,
		}}
		if q, ok := NextQuestion(snap, s.Criteria, nil); ok {
			s.State = constants.StateCollectingFilters
			s.CurrentQuestion = q.Key
			s.AskedQuestions = []string{q.Key}
			return append(fx, FxSend{Text: q.Text})
		}
		return append(fx, FxFetch{Criteria: s.Criteria, WithSummary: true})
	}

	if reply, ok := MatchReaction(snap, text); ok {
		return []Effect{FxSend{Text: reply}}
	}
	if s.Criteria.IsEmpty() {
		return []Effect{FxSend{Text: snap.Copy(constants.CopyAskParams)}}
	}
	return []Effect{FxSend{Text: snap.Copy(constants.CopyNotUnderstood)}}
}

// stepCollectingFilters savol-javob sikli.
func (e *Engine) stepCollectingFilters(s *entity.Session, ev Event, snap *Snapshot) []Effect {
	text := ev.Text

	if MatchIntent(snap, constants.IntentNewSearch, text) {
		return e.startNewSearch(s, snap)
	}
	if MatchIntent(snap, constants.IntentSkip, text) {
		return e.advanceQuestion(s, snap, nil)
	}

	upd, ok := e.extractor.Extract(snap, s.CurrentQuestion, text, ModeScoped)
	if ok && upd.Empty() {
		// skip qoidasi: savol javobsiz yopiladi
		return e.advanceQuestion(s, snap, nil)
	}
	if !ok || upd.Empty() {
		// javob savolga tushmadi: butun xabarni boshqa kalitlar bo'ylab o'qiymiz
		upd = e.scanAllSlots(snap, text)
		if upd.Empty() {
			return []Effect{FxSend{Text: e.questionPrompt(snap, s.CurrentQuestion)}}
		}
	}

	s.Criteria = s.Criteria.Apply(upd)
	s.Offset = 0
	save := FxSaveCriteria{
		Criteria:  s.Criteria,
		Completed: len(MissingSlots(snap, s.Criteria)) == 0,
	}
	return e.advanceQuestion(s, snap, []Effect{save})
}

// advanceQuestion navbatdagi savolga o'tadi yoki siklni yakunlab e'lonlarni
// yuboradi.
func (e *Engine) advanceQuestion(s *entity.Session, snap *Snapshot, pre []Effect) []Effect {
	if q, ok := NextQuestion(snap, s.Criteria, s.AskedQuestions); ok {
		s.CurrentQuestion = q.Key
		s.MarkAsked(q.Key)
		return append(pre, FxSend{Text: q.Text})
	}
	s.State = constants.StateBrowsing
	s.ResetQuestions()
	s.Offset = 0
	if s.Criteria.IsEmpty() {
		return append(pre, FxSend{Text: snap.Copy(constants.CopyAskParams)})
	}
	pre = append(pre, FxSend{Text: snap.Copy(constants.CopyReadyToSend)})
	return append(pre, FxFetch{Criteria: s.Criteria, WithSummary: true})
}

// stepViewingSelection foydalanuvchi ko'rsatilgan variantlardan tanlaydi.
func (e *Engine) stepViewingSelection(s *entity.Session, ev Event, snap *Snapshot) []Effect {
	if MatchIntent(snap, constants.IntentNewSearch, ev.Text) {
		return e.startNewSearch(s, snap)
	}

	matches := matchShownListings(ev.Shown, ev.Text)
	if len(matches) == 0 {
		return []Effect{FxSend{Text: snap.Copy(constants.CopyViewingNotFound)}}
	}

	var fresh, dup []entity.ShownListing
	for _, m := range matches {
		if ev.Requested[m.ListingID] {
			dup = append(dup, m)
		} else {
			fresh = append(fresh, m)
		}
	}

	if len(fresh) == 0 {
		s.State = constants.StateBrowsing
		return []Effect{FxSend{Text: snap.Copy(constants.CopyViewingAllRequested)}}
	}

	var fx []Effect
	if len(dup) > 0 {
		fx = append(fx, FxSend{Text: snap.Copy(constants.CopyViewingSomeRequested)})
	}
	s.Selected = fresh
	s.State = constants.StateViewingRequest
	return append(fx, FxSend{Text: snap.Copy(constants.CopyContactPrompt), ContactKeyboard: true})
}

// stepViewingRequest telefon raqami kutilmoqda: kontakt tugmasi yoki raqamga
// o'xshash matn arizani yopadi, qolgan hamma narsa eslatma oladi.
func (e *Engine) stepViewingRequest(s *entity.Session, ev Event, snap *Snapshot) []Effect {
	if phone, ok := phoneFromText(ev.Text); ok {
		return e.completeViewingRequest(s, phone, snap)
	}
	return []Effect{FxSend{Text: snap.Copy(constants.CopyContactReminder), ContactKeyboard: true}}
}

func (e *Engine) completeViewingRequest(s *entity.Session, phone string, snap *Snapshot) []Effect {
	fx := []Effect{
		FxSaveContact{Phone: phone},
		FxRecordViewings{Listings: s.Selected},
		FxSend{Text: snap.Copy(constants.CopyContactThanks), RemoveKeyboard: true},
		FxFinishDialog{},
	}
	s.Selected = nil
	s.State = constants.StateBrowsing
	return fx
}

// stepSilence jimlik tekshiruvi: chegara o'tgan va hali eslatilmagan
// sessiyaga bitta xabar yuboriladi.
func (e *Engine) stepSilence(s *entity.Session, ev Event, snap *Snapshot) []Effect {
	if s.SilenceNotified {
		return nil
	}
	if ev.Now.Sub(s.LastActivity) < e.silenceAfter {
		return nil
	}
	s.SilenceNotified = true
	return []Effect{FxSend{Text: snap.Copy(constants.CopySilence)}}
}

// resumeFlow to'xtab qolgan suhbatni davom ettiradi: yetishmagan savol
// bo'lsa so'raladi, filtr to'liq bo'lsa qidiruv qayta yuboriladi.
func (e *Engine) resumeFlow(s *entity.Session, snap *Snapshot) []Effect {
	s.PendingSlot = ""
	if q, ok := NextQuestion(snap, s.Criteria, nil); ok {
		s.State = constants.StateCollectingFilters
		s.CurrentQuestion = q.Key
		s.AskedQuestions = []string{q.Key}
		return []Effect{FxSend{Text: q.Text}}
	}
	if s.Criteria.IsEmpty() {
		return []Effect{FxSend{Text: snap.Copy(constants.CopyAskParams)}}
	}
	return []Effect{FxFetch{Criteria: s.Criteria, Offset: s.Offset}}
}

// startNewSearch filtrni tozalab erkin qidiruvga qaytadi.
func (e *Engine) startNewSearch(s *entity.Session, snap *Snapshot) []Effect {
	s.ResetSearch()
	s.State = constants.StateBrowsing
	return []Effect{
		FxSaveCriteria{Criteria: s.Criteria},
		FxSend{Text: snap.Copy(constants.CopyNewSearch)},
	}
}

// scanAllSlots xabarni barcha savol kalitlari bo'ylab opportunistik o'qiydi
// va topilmalarni bitta update ga yig'adi.
func (e *Engine) scanAllSlots(snap *Snapshot, text string) *entity.Update {
	merged := entity.NewUpdate()
	for _, q := range snap.Questions {
		if q.Key == constants.SlotName {
			continue
		}
		upd, ok := e.extractor.Extract(snap, q.Key, text, ModeOpportunistic)
		if ok && !upd.Empty() {
			merged.Merge(upd)
		}
	}
	return merged
}

// questionPrompt savolni takrorlaydi; savol topilmasa umumiy uzr.
func (e *Engine) questionPrompt(snap *Snapshot, slot string) string {
	if text := QuestionText(snap, slot); text != "" {
		return text
	}
	return snap.Copy(constants.CopyNotUnderstood)
}

// welcomeText welcome worksheetidan deterministik tasodifiy matn.
func (e *Engine) welcomeText(snap *Snapshot, now time.Time) string {
	if len(snap.Welcome) == 0 {
		return snap.Copy(constants.CopyGreeting)
	}
	idx := int(now.UnixNano()) % len(snap.Welcome)
	if idx < 0 {
		idx = -idx
	}
	return snap.Welcome[idx]
}

// copyWithName copy matnidagi {name} o'rnini bosadi.
func copyWithName(snap *Snapshot, key, name string) string {
	return strings.ReplaceAll(snap.Copy(key), "{name}", name)
}

// matchShownListings foydalanuvchi javobidan ko'rsatilgan e'lonlarni topadi:
// avval tartib raqamlari, keyin manzil so'zlari bo'yicha.
func matchShownListings(shown []entity.ShownListing, text string) []entity.ShownListing {
	var matches []entity.ShownListing
	seen := make(map[int64]bool)

	for _, n := range Ints(text) {
		for _, l := range shown {
			if l.DisplayIndex == n && !seen[l.ListingID] {
				seen[l.ListingID] = true
				matches = append(matches, l)
			}
		}
	}
	if len(matches) > 0 {
		return matches
	}

	words := strings.Fields(Normalize(text))
	for _, l := range shown {
		target := Normalize(l.Address + " " + l.Title)
		if target == "" {
			continue
		}
		for _, w := range words {
			if utf8.RuneCountInString(w) < 4 {
				continue
			}
			if hasToken(target, w) || strings.Contains(target, Stem(w)) {
				if !seen[l.ListingID] {
					seen[l.ListingID] = true
					matches = append(matches, l)
				}
				break
			}
		}
	}
	return matches
}

// phoneFromText matn telefon raqamiga o'xshasligini tekshiradi.
func phoneFromText(text string) (string, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '\u00a0':
			return -1
		}
		return r
	}, strings.TrimSpace(text))
	if cleaned == "" {
		return "", false
	}
	digits := cleaned
	if strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if len(digits) < 10 || len(digits) > 13 {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return cleaned, true
}
