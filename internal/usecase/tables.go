package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/repository"
)

// PatternRule filter_patterns worksheetidagi bitta qator: kalit so'zlar
// to'plami va mos kelganda yoziladigan qiymatlar.
type PatternRule struct {
	FilterKey string
	Type      string // word, phrase, special
	Keywords  []string
	Min       *int
	Max       *int
	List      []int
	LastFloor bool // value_list == "LAST"
	Skip      bool // special qoida: savolni javobsiz yopish
}

// Question questions worksheetidagi bitta savol, tartib bo'yicha.
type Question struct {
	Key   string
	Text  string
	Order int
}

// ObjectionRule e'tiroz yoki ishonchsizlikka tayyor javob; Slot to'ldirilgan
// bo'lsa javobdan keyin o'sha savol kutiladi.
type ObjectionRule struct {
	Trigger string
	Reply   string
	Slot    string
}

// ReactionRule umumiy iboraga tayyor javob (salomlashish, rahmat, kulgi).
type ReactionRule struct {
	Trigger string
	Reply   string
}

// locationTable bitta joylashuv darajasi uchun indekslar: to'liq mos kelish
// va stem bo'yicha. Birinchi yozilgan sinonim g'alaba qiladi, shunda qator
// tartibi natijani aniqlaydi.
type locationTable struct {
	exact   map[string]int
	stemmed map[string]int
	names   map[int]string
}

func newLocationTable() locationTable {
	return locationTable{
		exact:   make(map[string]int),
		stemmed: make(map[string]int),
		names:   make(map[int]string),
	}
}

func (t locationTable) add(synonym, official string, id int) {
	norm := Normalize(synonym)
	if norm == "" {
		return
	}
	if _, ok := t.exact[norm]; !ok {
		t.exact[norm] = id
	}
	stem := Stem(norm)
	if _, ok := t.stemmed[stem]; !ok {
		t.stemmed[stem] = id
	}
	if official != "" {
		t.names[id] = official
	} else if _, ok := t.names[id]; !ok {
		t.names[id] = synonym
	}
}

// conditionTable remont holati lug'ati: sinonim -> id, id -> label.
type conditionTable struct {
	synonyms map[string]int
	labels   map[int]string
}

// Snapshot barcha sozlama jadvallarining kompilyatsiya qilingan, o'zgarmas
// ko'rinishi. Reload yangi snapshot quradi va atomik almashtiradi, shuning
// uchun o'qish hech qachon lock olmaydi.
type Snapshot struct {
	Districts  locationTable
	Microareas locationTable
	Streets    locationTable
	Conditions conditionTable
	Patterns   map[string][]PatternRule
	Questions  []Question
	Sections   map[string]string // stemlangan kalit so'z -> section qiymati
	Intents    map[string][]string
	Objections []ObjectionRule
	Reactions  []ReactionRule
	Welcome    []string
	copyTexts  map[string]string
}

// Copy kalit bo'yicha matnni qaytaradi: avval worksheetdagi qiymat,
// bo'lmasa built-in standart.
func (s *Snapshot) Copy(key string) string {
	if s != nil {
		if text, ok := s.copyTexts[key]; ok && text != "" {
			return text
		}
	}
	return defaultCopy[key]
}

// DistrictName rasmiy nomni qaytaradi, topilmasa id raqam sifatida.
func (s *Snapshot) DistrictName(id int) string  { return locationName(s.Districts, id) }
func (s *Snapshot) MicroareaName(id int) string { return locationName(s.Microareas, id) }
func (s *Snapshot) StreetName(id int) string    { return locationName(s.Streets, id) }

// ConditionLabel remont holati idsi uchun label.
func (s *Snapshot) ConditionLabel(id int) string {
	if label, ok := s.Conditions.labels[id]; ok {
		return label
	}
	return strconv.Itoa(id)
}

func locationName(t locationTable, id int) string {
	if name, ok := t.names[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// BuildSnapshot xom worksheet qatorlaridan indekslarni quradi. Buzilgan
// qatorlar (bo'sh kalit, raqam bo'lmagan id) indamay tashlab yuboriladi,
// qolganlari ishlayveradi.
func BuildSnapshot(raw map[string][]map[string]string) *Snapshot {
	snap := &Snapshot{
		Districts:  newLocationTable(),
		Microareas: newLocationTable(),
		Streets:    newLocationTable(),
		Conditions: conditionTable{synonyms: make(map[string]int), labels: make(map[int]string)},
		Patterns:   make(map[string][]PatternRule),
		Sections:   make(map[string]string),
		Intents:    make(map[string][]string),
		copyTexts:  make(map[string]string),
	}

	for _, row := range raw[constants.TableDistricts] {
		id, err := strconv.Atoi(strings.TrimSpace(row["target_id"]))
		if err != nil {
			continue
		}
		synonym := strings.TrimSpace(row["synonym"])
		official := strings.TrimSpace(row["official_name"])
		switch strings.ToLower(strings.TrimSpace(row["type"])) {
		case "district":
			snap.Districts.add(synonym, official, id)
		case "microarea":
			snap.Microareas.add(synonym, official, id)
		case "street":
			snap.Streets.add(synonym, official, id)
		}
	}

	for _, row := range raw[constants.TableDictionaries] {
		id, err := strconv.Atoi(strings.TrimSpace(row["id"]))
		if err != nil {
			continue
		}
		label := strings.TrimSpace(row["label"])
		if label == "" {
			continue
		}
		snap.Conditions.labels[id] = label
		snap.Conditions.synonyms[Normalize(label)] = id
		for _, syn := range strings.Split(row["synonyms"], ";") {
			if norm := Normalize(syn); norm != "" {
				snap.Conditions.synonyms[norm] = id
			}
		}
	}

	for _, row := range raw[constants.TableFilterPatterns] {
		rule, ok := buildPatternRule(row)
		if !ok {
			continue
		}
		snap.Patterns[rule.FilterKey] = append(snap.Patterns[rule.FilterKey], rule)
	}

	for _, row := range raw[constants.TableQuestions] {
		key := strings.ToLower(strings.TrimSpace(row["question_key"]))
		text := strings.TrimSpace(row["question_text"])
		if key == "" || text == "" {
			continue
		}
		order := constants.DefaultQuestionOrder
		if n, err := strconv.Atoi(strings.TrimSpace(row["order"])); err == nil {
			order = n
		}
		snap.Questions = append(snap.Questions, Question{Key: key, Text: text, Order: order})
	}
	sort.SliceStable(snap.Questions, func(i, j int) bool {
		return snap.Questions[i].Order < snap.Questions[j].Order
	})

	for _, row := range raw[constants.TableSections] {
		value := strings.TrimSpace(row["section_value"])
		if value == "" {
			continue
		}
		for _, kw := range strings.Split(row["keyword"], ",") {
			norm := Normalize(kw)
			if norm == "" {
				continue
			}
			stem := Stem(norm)
			if _, ok := snap.Sections[stem]; !ok {
				snap.Sections[stem] = value
			}
		}
	}

	for intent, keywords := range defaultIntents {
		snap.Intents[intent] = keywords
	}
	for _, row := range raw[constants.TableIntents] {
		intent := strings.ToLower(strings.TrimSpace(row["intent"]))
		if intent == "" {
			continue
		}
		var keywords []string
		for _, kw := range strings.Split(row["keywords"], ",") {
			if k := strings.TrimSpace(strings.ToLower(kw)); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) > 0 {
			snap.Intents[intent] = keywords
		}
	}

	for _, row := range raw[constants.TableObjections] {
		trigger := strings.ToLower(strings.TrimSpace(row["trigger"]))
		reply := strings.TrimSpace(row["reply"])
		if trigger == "" || reply == "" {
			continue
		}
		snap.Objections = append(snap.Objections, ObjectionRule{
			Trigger: trigger,
			Reply:   reply,
			Slot:    strings.ToLower(strings.TrimSpace(row["slot_key"])),
		})
	}

	for _, row := range raw[constants.TableReactions] {
		trigger := strings.ToLower(strings.TrimSpace(row["trigger"]))
		reply := strings.TrimSpace(row["reply"])
		if trigger == "" || reply == "" {
			continue
		}
		if reservedCopyKeys[trigger] {
			snap.copyTexts[trigger] = reply
			continue
		}
		snap.Reactions = append(snap.Reactions, ReactionRule{Trigger: trigger, Reply: reply})
	}

	for _, row := range raw[constants.TableWelcome] {
		if text := strings.TrimSpace(row["text"]); text != "" {
			snap.Welcome = append(snap.Welcome, text)
		}
	}

	return snap
}

func buildPatternRule(row map[string]string) (PatternRule, bool) {
	rule := PatternRule{
		FilterKey: strings.ToLower(strings.TrimSpace(row["filter_key"])),
		Type:      strings.ToLower(strings.TrimSpace(row["pattern_type"])),
	}
	if rule.FilterKey == "" {
		return rule, false
	}
	for _, kw := range strings.Split(row["pattern_text"], ",") {
		if k := strings.TrimSpace(strings.ToLower(kw)); k != "" {
			rule.Keywords = append(rule.Keywords, k)
		}
	}
	if len(rule.Keywords) == 0 {
		return rule, false
	}
	if rule.Type == "special" {
		rule.Skip = true
		return rule, true
	}
	if n, err := strconv.Atoi(strings.TrimSpace(row["value_min"])); err == nil {
		rule.Min = &n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(row["value_max"])); err == nil {
		rule.Max = &n
	}
	listRaw := strings.TrimSpace(row["value_list"])
	if strings.EqualFold(listRaw, "LAST") {
		rule.LastFloor = true
	} else if listRaw != "" {
		for _, part := range strings.Split(listRaw, ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				rule.List = append(rule.List, n)
			}
		}
	}
	return rule, true
}

// Tables joriy snapshotni ushlab turadi va davriy reloadda butunlay
// almashtiradi. O'qish atomik pointer orqali, yozish mutex ostida.
type Tables struct {
	source repository.TableSource
	log    *zap.Logger

	current atomic.Pointer[Snapshot]

	mu  sync.Mutex
	raw map[string][]map[string]string
}

// NewTables bo'sh snapshot bilan holder yaratadi; birinchi Reload chaqiruvi
// haqiqiy jadvallarni yuklaydi.
func NewTables(source repository.TableSource, log *zap.Logger) *Tables {
	t := &Tables{
		source: source,
		log:    log,
		raw:    make(map[string][]map[string]string),
	}
	t.current.Store(BuildSnapshot(nil))
	return t
}

// NewStaticTables tayyor snapshot bilan holder qaytaradi (testlar uchun).
func NewStaticTables(snap *Snapshot) *Tables {
	t := &Tables{raw: make(map[string][]map[string]string)}
	t.current.Store(snap)
	return t
}

// Snapshot joriy kompilyatsiya qilingan jadvallar.
func (t *Tables) Snapshot() *Snapshot {
	return t.current.Load()
}

// Reload barcha worksheetlarni qayta o'qiydi. O'qib bo'lmagan jadval uchun
// oxirgi muvaffaqiyatli qatorlar qoladi; xato faqat qaysi jadvallar eski
// qolganini bildiradi.
func (t *Tables) Reload(ctx context.Context) error {
	if t.source == nil {
		return fmt.Errorf("table source is not configured")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var stale []string
	for _, name := range constants.AllTables {
		rows, err := t.source.FetchTable(ctx, name)
		if err != nil {
			stale = append(stale, name)
			if t.log != nil {
				t.log.Warn("table fetch failed, keeping previous rows",
					zap.String("table", name), zap.Error(err))
			}
			continue
		}
		t.raw[name] = rows
	}
	t.current.Store(BuildSnapshot(t.raw))
	if len(stale) > 0 {
		return fmt.Errorf("tables kept stale rows: %s", strings.Join(stale, ", "))
	}
	return nil
}

// reservedCopyKeys reactions worksheetida trigger sifatida emas, copy
// override sifatida o'qiladigan kalitlar.
var reservedCopyKeys = map[string]bool{
	constants.CopyGreeting:             true,
	constants.CopyAskName:              true,
	constants.CopyGreetName:            true,
	constants.CopyAskParams:            true,
	constants.CopyNotUnderstood:        true,
	constants.CopyClarify:              true,
	constants.CopyNewSearch:            true,
	constants.CopyReadyToSend:          true,
	constants.CopyNoResults:            true,
	constants.CopySummaryHeader:        true,
	constants.CopyExtraOffersZero:      true,
	constants.CopyExtraOffersMore:      true,
	constants.CopyViewingPrompt:        true,
	constants.CopyViewingNothingShown:  true,
	constants.CopyViewingNotFound:      true,
	constants.CopyViewingAllRequested:  true,
	constants.CopyViewingSomeRequested: true,
	constants.CopyContactPrompt:        true,
	constants.CopyContactReminder:      true,
	constants.CopyContactThanks:        true,
	constants.CopyContactSaved:         true,
	constants.CopySilence:              true,
}

// defaultIntents worksheet bo'lmaganda ishlaydigan intent lug'ati; intents
// jadvalidagi qator o'z intenti uchun ro'yxatni to'liq almashtiradi.
var defaultIntents = map[string][]string{
	constants.IntentNewSearch: {
		"новий пошук", "новый поиск", "почати заново", "начать заново",
		"почнемо заново", "скинути фільтри", "сбросить фильтры", "спочатку",
	},
	constants.IntentShowMore: {
		"ще", "еще", "ещё", "більше варіантів", "больше вариантов",
		"далі", "дальше", "покажи ще", "покажи еще", "інші варіанти",
	},
	constants.IntentSkip: {
		"пропустити", "пропустить", "пропусти", "не важливо", "неважливо",
		"не важно", "неважно", "байдуже", "все одно", "всё равно", "без різниці",
	},
	constants.IntentViewing: {
		"перегляд", "просмотр", "на перегляд", "записатися на перегляд",
		"записаться на просмотр", "хочу подивитися", "хочу подивитись",
		"хочу посмотреть", "подивитися наживо",
	},
	constants.IntentContinue: {
		"продовжити", "продолжить", "продовжимо", "продолжим", "продовжуй",
	},
}

// defaultCopy built-in javob matnlari; reactions worksheetidagi shu kalitli
// qator matnni almashtiradi.
var defaultCopy = map[string]string{
	constants.CopyGreeting:             "Привіт! Я ШІ Ріелтор, допоможу підібрати квартиру.",
	constants.CopyAskName:              "Як до вас звертатись?",
	constants.CopyGreetName:            "Дуже приємно, {name}!",
	constants.CopyAskParams:            "Напишіть, будь ласка, параметри пошуку: район, кількість кімнат або бюджет.",
	constants.CopyNotUnderstood:        "Вибачте, не зовсім зрозумів. Спробуйте сформулювати інакше.",
	constants.CopyClarify:              "Уточніть, будь ласка, відповідь на останнє питання.",
	constants.CopyNewSearch:            "Добре, починаємо новий пошук! Які параметри вас цікавлять?",
	constants.CopyReadyToSend:          "Дякую! Зараз надішлю варіанти.",
	constants.CopyNoResults:            "На жаль, за вашими параметрами нічого не знайшов. Спробуйте змінити фільтри.",
	constants.CopySummaryHeader:        "Шукаю за параметрами:",
	constants.CopyExtraOffersZero:      "Маю більше варіантів за вашими параметрами, дайте знати якщо цікаво.",
	constants.CopyExtraOffersMore:      "Ще {count} пропозицій за вашими фільтрами, готовий поділитись після дзвінка.",
	constants.CopyViewingPrompt:        "Напишіть номери варіантів або адресу, які хочете подивитись.",
	constants.CopyViewingNothingShown:  "Поки що я не показував варіантів. Напишіть параметри, і я підберу квартири.",
	constants.CopyViewingNotFound:      "Не знайшов таких об'єктів серед показаних. Вкажіть номер варіанту зі списку.",
	constants.CopyViewingAllRequested:  "Ви вже залишали заявку на перегляд цих об'єктів, менеджер зв'яжеться з вами.",
	constants.CopyViewingSomeRequested: "По частині об'єктів заявка вже є, оформлюю нові.",
	constants.CopyContactPrompt:        "Залиште, будь ласка, номер телефону, щоб менеджер домовився про перегляд.",
	constants.CopyContactReminder:      "Будь ласка, скористайтесь кнопкою, щоб поділитися номером телефону.",
	constants.CopyContactThanks:        "Дякую! Передав заявку менеджеру, зв'яжемось найближчим часом.",
	constants.CopyContactSaved:         "Дякую! Номер збережено.",
	constants.CopySilence:              "Я зберіг ваш запит, можете повернутися в будь-який час 👌",
}
