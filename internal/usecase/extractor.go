package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

// ExtractMode ekstraksiya qaysi kontekstda ishlayotganini bildiradi.
type ExtractMode int

const (
	// ModeScoped foydalanuvchi aynan shu savolga javob bermoqda: yalang'och
	// raqamli fallbacklar yoqilgan ("5" javobi qavat savoli uchun qavat).
	ModeScoped ExtractMode = iota

	// ModeOpportunistic erkin xabar barcha savol kalitlari bo'ylab skanerlanadi:
	// faqat kalit so'z bilan bog'langan topilmalar olinadi, yalang'och raqamlar
	// alohida NumericFallback orqali taqsimlanadi.
	ModeOpportunistic
)

// Raqamlarning ruxsat etilgan diapazonlari
const (
	priceFloor    = 1000 // narxlar bundan qat'iy katta
	roomsMax      = 8    // xonalar soni bundan qat'iy kichik
	areaMinBound  = 15
	areaMaxBound  = 500
	floorMinBound = 1
	floorMaxBound = 50
	totalMinBound = 1
	totalMaxBound = 30
)

// nb unicode so'z belgisi bo'lmagan belgi: raqam va kirill harflari
// chegarasida \b ishonchsiz, shuning uchun o'zimiz quramiz.
const nb = `[^\p{L}\p{N}_]`

var (
	floorRangeRe = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)

	priceMaxWords = []string{"до", "максимум", "не більше", "не больше", "макс"}
	priceMinWords = []string{"від", "от", "мінімум", "минимум", "не менше", "не меньше", "мін", "мин"}
	floorWords    = []string{"етаж", "этаж", "пов"}

	roomsKeywordGroup = `кімнат|комнат|кімн|комн|к(?:` + nb + `|$)`
	floorKeywordGroup = `етаж|этаж|пов`

	areaMinContextGroup = `від|от|мінімум|минимум|не менше|не меньше|мін|мин`
	areaMaxContextGroup = `до|максимум|не більше|не больше|макс`
)

// Extractor erkin matndan filtr yangilanishini chiqaradi: avval worksheet
// qoidalari, keyin kalit bo'yicha evristika.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor extractor yaratadi.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// Extract slot uchun javobni tahlil qiladi. Ikkinchi qiymat true bo'lsa javob
// tanilgan: bo'sh update bilan true "savol javobsiz yopildi" degani (skip
// qoidasi), false esa hech narsa topilmaganini bildiradi.
func (e *Extractor) Extract(snap *Snapshot, slot, text string, mode ExtractMode) (*entity.Update, bool) {
	slot = strings.ToLower(strings.TrimSpace(slot))
	lower := strings.ToLower(text)
	normalized := Normalize(text)

	for _, rule := range snap.Patterns[slot] {
		if !ruleMatches(rule, lower, normalized) {
			continue
		}
		upd := applyPatternRule(rule)
		e.log.Debug("pattern rule matched",
			zap.String("slot", slot),
			zap.String("type", rule.Type),
			zap.Strings("keywords", rule.Keywords))
		return upd, true
	}

	switch slot {
	case constants.SlotBudget, constants.SlotPrice:
		return extractPrice(lower, text)
	case constants.SlotRooms:
		return extractRooms(lower, text, mode)
	case constants.SlotArea:
		return extractArea(lower, text, mode)
	case constants.SlotFloor:
		return extractFloor(lower, text, mode)
	case constants.SlotFloorsTotal, constants.SlotBuildingFloors:
		if mode == ModeScoped {
			return extractFloorsTotal(lower, text)
		}
	case constants.SlotState, constants.SlotCondition:
		return extractCondition(snap, normalized)
	case constants.SlotSection:
		return extractSection(snap, normalized)
	case constants.SlotDistrict:
		upd := MatchLocations(snap, text)
		return upd, !upd.Empty()
	}
	return entity.NewUpdate(), false
}

func ruleMatches(rule PatternRule, lower, normalized string) bool {
	for _, kw := range rule.Keywords {
		if rule.Type == "word" {
			if hasToken(normalized, Normalize(kw)) {
				return true
			}
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func applyPatternRule(rule PatternRule) *entity.Update {
	upd := entity.NewUpdate()
	if rule.Skip {
		return upd
	}
	switch canonicalFilterKey(rule.FilterKey) {
	case constants.SlotRooms:
		if len(rule.List) > 0 {
			upd.SetIntList(entity.KeyRoomsIn, rule.List)
		}
	case constants.SlotCondition:
		if len(rule.List) > 0 {
			upd.SetIntList(entity.KeyConditionIn, rule.List)
		}
	case constants.SlotFloor:
		if rule.LastFloor {
			upd.SetBool(entity.KeyFloorOnlyLast, true)
			return upd
		}
		setRuleBounds(upd, entity.KeyFloorMin, entity.KeyFloorMax, rule)
	case constants.SlotPrice:
		setRuleBounds(upd, entity.KeyPriceMin, entity.KeyPriceMax, rule)
	case constants.SlotArea:
		setRuleBounds(upd, entity.KeyAreaMin, entity.KeyAreaMax, rule)
	case constants.SlotFloorsTotal:
		setRuleBounds(upd, entity.KeyFloorsTotalMin, entity.KeyFloorsTotalMax, rule)
	}
	return upd
}

// setRuleBounds qoidada berilgan chegaralarnigina yozadi; yo'q chegara
// tegilmagan qoladi, ochiq nil bilan almashtirilmaydi.
func setRuleBounds(upd *entity.Update, minKey, maxKey string, rule PatternRule) {
	if rule.Min != nil {
		v := *rule.Min
		upd.SetInt(minKey, &v)
	}
	if rule.Max != nil {
		v := *rule.Max
		upd.SetInt(maxKey, &v)
	}
}

// canonicalFilterKey worksheetdagi sinonim kalitlarni bitta nomga keltiradi.
func canonicalFilterKey(key string) string {
	switch key {
	case constants.SlotBudget:
		return constants.SlotPrice
	case constants.SlotState:
		return constants.SlotCondition
	case constants.SlotBuildingFloors:
		return constants.SlotFloorsTotal
	}
	return key
}

// extractPrice 1000 dan katta sonlarni narx deb oladi. Bitta son kalit so'zga
// qarab min yoki max bo'ladi, ikkinchi chegara ochiq holatga qaytariladi.
func extractPrice(lower, text string) (*entity.Update, bool) {
	var nums []int
	for _, n := range Ints(text) {
		if n > priceFloor {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return entity.NewUpdate(), false
	}
	upd := entity.NewUpdate()
	if len(nums) == 1 {
		v := nums[0]
		switch {
		case containsAny(lower, priceMaxWords):
			upd.SetInt(entity.KeyPriceMax, &v)
			upd.SetInt(entity.KeyPriceMin, nil)
		case containsAny(lower, priceMinWords):
			upd.SetInt(entity.KeyPriceMin, &v)
			upd.SetInt(entity.KeyPriceMax, nil)
		default:
			upd.SetInt(entity.KeyPriceMax, &v)
			upd.SetInt(entity.KeyPriceMin, nil)
		}
		return upd, true
	}
	sort.Ints(nums)
	lowV, highV := nums[0], nums[len(nums)-1]
	upd.SetInt(entity.KeyPriceMin, &lowV)
	upd.SetInt(entity.KeyPriceMax, &highV)
	return upd, true
}

// extractRooms 1..7 oralig'idagi sonlarni oladi, tartib sonlarni ("3-й")
// tashlaydi va xona so'ziga yaqinlarini qoldiradi. Scoped rejimda kalit so'z
// topilmasa, qavat so'zi bo'lmagan xabardagi barcha nomzodlar olinadi.
func extractRooms(lower, text string, mode ExtractMode) (*entity.Update, bool) {
	var candidates []int
	for _, n := range Ints(text) {
		if n > 0 && n < roomsMax {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return entity.NewUpdate(), false
	}
	var rooms []int
	for _, n := range candidates {
		if numIsOrdinal(lower, n) {
			continue
		}
		if numNearKeyword(lower, n, roomsKeywordGroup) {
			rooms = append(rooms, n)
		}
	}
	if len(rooms) == 0 {
		if mode != ModeScoped {
			return entity.NewUpdate(), false
		}
		if containsAny(lower, floorWords) {
			return entity.NewUpdate(), false
		}
		if len(candidates) == 2 && containsAny(lower, []string{"від", "от", "до"}) {
			lowV, highV := candidates[0], candidates[1]
			if lowV > highV {
				lowV, highV = highV, lowV
			}
			for n := lowV; n <= highV; n++ {
				rooms = append(rooms, n)
			}
		} else {
			rooms = candidates
		}
	}
	upd := entity.NewUpdate()
	upd.SetIntList(entity.KeyRoomsIn, rooms)
	return upd, true
}

// extractArea 15..500 oralig'idagi sonlarni maydon deb oladi. Opportunistik
// rejimda son birlik bilan yozilgan bo'lishi shart (м, м2, кв, метр) yoki
// xabarda "площ"/"квадрат" bo'lishi kerak.
func extractArea(lower, text string, mode ExtractMode) (*entity.Update, bool) {
	var nums []int
	for _, n := range Ints(text) {
		if n < areaMinBound || n > areaMaxBound {
			continue
		}
		if mode == ModeOpportunistic && !areaAnchored(lower, n) {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return entity.NewUpdate(), false
	}
	upd := entity.NewUpdate()
	if len(nums) == 1 {
		v := nums[0]
		switch {
		case numInContext(lower, areaMinContextGroup, v):
			upd.SetInt(entity.KeyAreaMin, &v)
			upd.SetInt(entity.KeyAreaMax, nil)
		case numInContext(lower, areaMaxContextGroup, v):
			upd.SetInt(entity.KeyAreaMax, &v)
			upd.SetInt(entity.KeyAreaMin, nil)
		default:
			upd.SetInt(entity.KeyAreaMin, &v)
			upd.SetInt(entity.KeyAreaMax, nil)
		}
		return upd, true
	}
	sort.Ints(nums)
	lowV, highV := nums[0], nums[len(nums)-1]
	upd.SetInt(entity.KeyAreaMin, &lowV)
	upd.SetInt(entity.KeyAreaMax, &highV)
	return upd, true
}

// extractFloor qavatlarni oladi: avval aniq "5-10" diapazon, keyin qavat
// so'ziga yaqin sonlar. Opportunistik rejimda xabarda qavat so'zi bo'lishi
// shart, aks holda diapazon ham olinmaydi.
func extractFloor(lower, text string, mode ExtractMode) (*entity.Update, bool) {
	hasFloorWord := containsAny(lower, floorWords)
	if mode == ModeOpportunistic && !hasFloorWord {
		return entity.NewUpdate(), false
	}

	if m := floorRangeRe.FindStringSubmatch(text); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if a >= floorMinBound && a <= floorMaxBound && b >= floorMinBound && b <= floorMaxBound {
			if a > b {
				a, b = b, a
			}
			upd := entity.NewUpdate()
			upd.SetInt(entity.KeyFloorMin, &a)
			upd.SetInt(entity.KeyFloorMax, &b)
			return upd, true
		}
	}

	var candidates []int
	for _, n := range Ints(text) {
		if n >= floorMinBound && n <= floorMaxBound {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return entity.NewUpdate(), false
	}
	var floors []int
	for _, n := range candidates {
		if numNearKeyword(lower, n, floorKeywordGroup) {
			floors = append(floors, n)
		}
	}
	if len(floors) == 0 {
		if mode != ModeScoped || len(candidates) != 1 {
			return entity.NewUpdate(), false
		}
		floors = candidates
	}
	return boundedRangeUpdate(lower, floors,
		entity.KeyFloorMin, entity.KeyFloorMax, floorMinBound, floorMaxBound), true
}

// extractFloorsTotal bino qavatliligi, 1..30 oralig'ida, qavat bilan bir xil
// shaklda ishlaydi. Faqat scoped rejimda chaqiriladi.
func extractFloorsTotal(lower, text string) (*entity.Update, bool) {
	if m := floorRangeRe.FindStringSubmatch(text); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if a >= totalMinBound && a <= totalMaxBound && b >= totalMinBound && b <= totalMaxBound {
			if a > b {
				a, b = b, a
			}
			upd := entity.NewUpdate()
			upd.SetInt(entity.KeyFloorsTotalMin, &a)
			upd.SetInt(entity.KeyFloorsTotalMax, &b)
			return upd, true
		}
	}
	var candidates []int
	for _, n := range Ints(text) {
		if n >= totalMinBound && n <= totalMaxBound {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return entity.NewUpdate(), false
	}
	var totals []int
	for _, n := range candidates {
		if numNearKeyword(lower, n, floorKeywordGroup) {
			totals = append(totals, n)
		}
	}
	if len(totals) == 0 {
		if len(candidates) != 1 {
			return entity.NewUpdate(), false
		}
		totals = candidates
	}
	return boundedRangeUpdate(lower, totals,
		entity.KeyFloorsTotalMin, entity.KeyFloorsTotalMax, totalMinBound, totalMaxBound), true
}

// boundedRangeUpdate bitta son uchun kalit so'zga qarab ochiq diapazon
// quradi: "до N" -> [pastki chegara, N], "від N" -> [N, yuqori chegara],
// oddiy "N" -> [N, N]. Bir nechta son bo'lsa min/max olinadi.
func boundedRangeUpdate(lower string, nums []int, minKey, maxKey string, lowBound, highBound int) *entity.Update {
	upd := entity.NewUpdate()
	if len(nums) == 1 {
		v := nums[0]
		switch {
		case containsAny(lower, priceMaxWords):
			lowV := lowBound
			upd.SetInt(minKey, &lowV)
			upd.SetInt(maxKey, &v)
		case containsAny(lower, priceMinWords):
			highV := highBound
			upd.SetInt(minKey, &v)
			upd.SetInt(maxKey, &highV)
		default:
			upd.SetInt(minKey, &v)
			w := v
			upd.SetInt(maxKey, &w)
		}
		return upd
	}
	sorted := make([]int, len(nums))
	copy(sorted, nums)
	sort.Ints(sorted)
	lowV, highV := sorted[0], sorted[len(sorted)-1]
	upd.SetInt(minKey, &lowV)
	upd.SetInt(maxKey, &highV)
	return upd
}

// extractCondition remont holati sinonimlarini butun token sifatida qidiradi.
func extractCondition(snap *Snapshot, normalized string) (*entity.Update, bool) {
	if normalized == "" {
		return entity.NewUpdate(), false
	}
	seen := make(map[int]bool)
	var ids []int
	for syn, id := range snap.Conditions.synonyms {
		if !seen[id] && hasToken(normalized, syn) {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return entity.NewUpdate(), false
	}
	sort.Ints(ids)
	upd := entity.NewUpdate()
	upd.SetIntList(entity.KeyConditionIn, ids)
	return upd, true
}

// extractSection birinchi mos kelgan so'z bo'yicha ko'pi bilan bitta teg.
func extractSection(snap *Snapshot, normalized string) (*entity.Update, bool) {
	for _, word := range strings.Fields(normalized) {
		if value, ok := snap.Sections[Stem(word)]; ok {
			upd := entity.NewUpdate()
			upd.SetString(entity.KeySection, value)
			return upd, true
		}
	}
	return entity.NewUpdate(), false
}

// NumericFallback yalang'och raqamlarni kattaligiga qarab taqsimlaydi:
// 1..7 xonalar, 20..500 maydon (min keyin max), 500 dan kattasi narx.
// Har bir kategoriya faqat bo'sh bo'lsa va bitta xabarda bir marta to'ladi.
func NumericFallback(existing entity.Criteria, text string) *entity.Update {
	nums := Ints(text)
	upd := entity.NewUpdate()
	if len(nums) == 0 {
		return upd
	}
	sort.Ints(nums)

	roomsOpen := !existing.Has(entity.KeyRoomsIn)
	areaOpen := !existing.HasAny(entity.KeyAreaMin, entity.KeyAreaMax)
	priceOpen := !existing.HasAny(entity.KeyPriceMin, entity.KeyPriceMax)

	roomsDone, areaMinDone, areaMaxDone := false, false, false
	var prices []int
	for _, n := range nums {
		v := n
		switch {
		case n >= 1 && n < roomsMax && roomsOpen && !roomsDone:
			upd.SetIntList(entity.KeyRoomsIn, []int{v})
			roomsDone = true
		case n >= 20 && n <= areaMaxBound && areaOpen && !areaMinDone:
			upd.SetInt(entity.KeyAreaMin, &v)
			areaMinDone = true
		case n >= 20 && n <= areaMaxBound && areaOpen && !areaMaxDone:
			upd.SetInt(entity.KeyAreaMax, &v)
			areaMaxDone = true
		case n > 500 && priceOpen && len(prices) < 2:
			prices = append(prices, v)
		}
	}
	if len(prices) == 1 {
		upd.SetInt(entity.KeyPriceMax, &prices[0])
	} else if len(prices) == 2 {
		upd.SetInt(entity.KeyPriceMin, &prices[0])
		upd.SetInt(entity.KeyPriceMax, &prices[1])
	}
	return upd
}

// numNearKeyword son butun token sifatida uchrashini va 20 belgi ichida
// kalit so'z kelishini tekshiradi.
func numNearKeyword(lower string, num int, keywordGroup string) bool {
	re, err := regexp.Compile(fmt.Sprintf(`(?:^|%s)%d(?:%s|$).{0,20}(?:%s)`, nb, num, nb, keywordGroup))
	if err != nil {
		return false
	}
	return re.MatchString(lower)
}

// numIsOrdinal son tartib son shaklida yozilganini aniqlaydi ("3-й кімнаті").
func numIsOrdinal(lower string, num int) bool {
	re, err := regexp.Compile(fmt.Sprintf(
		`(?:^|%s)%d-(?:ий|ій|ый|ой|ая|яя|ої|го|му|й|я|і|є)(?:%s|$)`, nb, num, nb))
	if err != nil {
		return false
	}
	return re.MatchString(lower)
}

// numInContext son to'g'ridan to'g'ri kontekst so'zidan keyin kelishini
// tekshiradi ("від 50", "не більше 70").
func numInContext(lower, contextGroup string, num int) bool {
	re, err := regexp.Compile(fmt.Sprintf(`(?:%s)\s*%d`, contextGroup, num))
	if err != nil {
		return false
	}
	return re.MatchString(lower)
}

// areaAnchored son maydon birligi bilan yozilganligini tekshiradi.
func areaAnchored(lower string, num int) bool {
	if strings.Contains(lower, "площ") || strings.Contains(lower, "квадрат") {
		return true
	}
	re, err := regexp.Compile(fmt.Sprintf(`%d\s*(?:м2|м²|кв|метр|м(?:%s|$))`, num, nb))
	if err != nil {
		return false
	}
	return re.MatchString(lower)
}
