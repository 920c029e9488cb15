package usecase

import (
	"reflect"
	"testing"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

func mustExtract(t *testing.T, slot, text string, mode ExtractMode) *entity.Update {
	t.Helper()
	upd, ok := NewExtractor(nil).Extract(testSnapshot(), slot, text, mode)
	if !ok {
		t.Fatalf("Extract(%q, %q) did not match", slot, text)
	}
	return upd
}

func mustNotExtract(t *testing.T, slot, text string, mode ExtractMode) {
	t.Helper()
	upd, ok := NewExtractor(nil).Extract(testSnapshot(), slot, text, mode)
	if ok && !upd.Empty() {
		t.Fatalf("Extract(%q, %q) = %v, want no match", slot, text, upd.Keys())
	}
}

func wantInt(t *testing.T, upd *entity.Update, key string, want int) {
	t.Helper()
	if !upd.Has(key) {
		t.Fatalf("key %s not touched, touched: %v", key, upd.Keys())
	}
	got := intFieldValue(upd.Fields(), key)
	if got == nil || *got != want {
		t.Fatalf("key %s = %v, want %d", key, got, want)
	}
}

func wantNilInt(t *testing.T, upd *entity.Update, key string) {
	t.Helper()
	if !upd.Has(key) {
		t.Fatalf("key %s not touched, touched: %v", key, upd.Keys())
	}
	if got := intFieldValue(upd.Fields(), key); got != nil {
		t.Fatalf("key %s = %d, want explicit nil", key, *got)
	}
}

func intFieldValue(c entity.Criteria, key string) *int {
	switch key {
	case entity.KeyPriceMin:
		return c.PriceMin
	case entity.KeyPriceMax:
		return c.PriceMax
	case entity.KeyAreaMin:
		return c.AreaMin
	case entity.KeyAreaMax:
		return c.AreaMax
	case entity.KeyFloorMin:
		return c.FloorMin
	case entity.KeyFloorMax:
		return c.FloorMax
	case entity.KeyFloorsTotalMin:
		return c.FloorsTotalMin
	case entity.KeyFloorsTotalMax:
		return c.FloorsTotalMax
	}
	return nil
}

func TestExtractPrice_SingleMax(t *testing.T) {
	upd := mustExtract(t, "budget", "до 50000", ModeScoped)
	wantInt(t, upd, entity.KeyPriceMax, 50000)
	wantNilInt(t, upd, entity.KeyPriceMin)
}

func TestExtractPrice_SingleMin(t *testing.T) {
	upd := mustExtract(t, "budget", "від 20000 грн", ModeScoped)
	wantInt(t, upd, entity.KeyPriceMin, 20000)
	wantNilInt(t, upd, entity.KeyPriceMax)
}

func TestExtractPrice_SingleNoKeywordDefaultsToMax(t *testing.T) {
	upd := mustExtract(t, "budget", "40000", ModeScoped)
	wantInt(t, upd, entity.KeyPriceMax, 40000)
	wantNilInt(t, upd, entity.KeyPriceMin)
}

func TestExtractPrice_TwoNumbers(t *testing.T) {
	upd := mustExtract(t, "price", "30000 50000", ModeScoped)
	wantInt(t, upd, entity.KeyPriceMin, 30000)
	wantInt(t, upd, entity.KeyPriceMax, 50000)
}

func TestExtractPrice_IgnoresSmallNumbers(t *testing.T) {
	// 1000 chegaraga kirmaydi, 1001 kiradi
	mustNotExtract(t, "budget", "1000", ModeScoped)
	upd := mustExtract(t, "budget", "1001", ModeScoped)
	wantInt(t, upd, entity.KeyPriceMax, 1001)
}

func TestExtractPrice_SkipRule(t *testing.T) {
	upd, ok := NewExtractor(nil).Extract(testSnapshot(), "budget", "не знаю", ModeScoped)
	if !ok {
		t.Fatalf("skip rule should count as a match")
	}
	if !upd.Empty() {
		t.Fatalf("skip rule should not set keys, got %v", upd.Keys())
	}
}

func TestExtractRooms_KeywordAnchored(t *testing.T) {
	upd := mustExtract(t, "rooms", "3 кімнати, до 50000", ModeOpportunistic)
	if got := upd.Fields().RoomsIn; !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("rooms = %v, want [3]", got)
	}
}

func TestExtractRooms_OrdinalExcluded(t *testing.T) {
	// "3-й" tartib son, xona soni emas
	mustNotExtract(t, "rooms", "на 3-й лінії", ModeOpportunistic)
}

func TestExtractRooms_PatternRule(t *testing.T) {
	// word qoidasi aniq token bo'yicha ishlaydi
	upd := mustExtract(t, "rooms", "двушка", ModeScoped)
	if got := upd.Fields().RoomsIn; !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("rooms = %v, want [2]", got)
	}
}

func TestExtractRooms_ScopedBareNumber(t *testing.T) {
	upd := mustExtract(t, "rooms", "2", ModeScoped)
	if got := upd.Fields().RoomsIn; !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("rooms = %v, want [2]", got)
	}
}

func TestExtractRooms_ScopedRangeExpansion(t *testing.T) {
	upd := mustExtract(t, "rooms", "від 1 до 3", ModeScoped)
	if got := upd.Fields().RoomsIn; !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("rooms = %v, want [1 2 3]", got)
	}
}

func TestExtractRooms_OpportunisticNeedsKeyword(t *testing.T) {
	mustNotExtract(t, "rooms", "5", ModeOpportunistic)
}

func TestExtractRooms_FloorWordBlocksFallback(t *testing.T) {
	// scoped rejimda ham qavat haqidagi javob xonaga aylanmaydi
	mustNotExtract(t, "rooms", "5 поверх", ModeScoped)
}

func TestExtractArea_Bounds(t *testing.T) {
	upd := mustExtract(t, "area", "15", ModeScoped)
	wantInt(t, upd, entity.KeyAreaMin, 15)

	upd = mustExtract(t, "area", "500", ModeScoped)
	wantInt(t, upd, entity.KeyAreaMin, 500)

	mustNotExtract(t, "area", "14", ModeScoped)
	mustNotExtract(t, "area", "501", ModeScoped)
}

func TestExtractArea_SingleWithContext(t *testing.T) {
	upd := mustExtract(t, "area", "від 50 м2", ModeScoped)
	wantInt(t, upd, entity.KeyAreaMin, 50)
	wantNilInt(t, upd, entity.KeyAreaMax)

	upd = mustExtract(t, "area", "до 70 кв", ModeScoped)
	wantInt(t, upd, entity.KeyAreaMax, 70)
	wantNilInt(t, upd, entity.KeyAreaMin)
}

func TestExtractArea_TwoNumbers(t *testing.T) {
	upd := mustExtract(t, "area", "50 70", ModeScoped)
	wantInt(t, upd, entity.KeyAreaMin, 50)
	wantInt(t, upd, entity.KeyAreaMax, 70)
}

func TestExtractArea_OpportunisticNeedsUnit(t *testing.T) {
	mustNotExtract(t, "area", "50 70", ModeOpportunistic)

	upd := mustExtract(t, "area", "площа 50", ModeOpportunistic)
	wantInt(t, upd, entity.KeyAreaMin, 50)

	upd = mustExtract(t, "area", "50 м2", ModeOpportunistic)
	wantInt(t, upd, entity.KeyAreaMin, 50)
}

func TestExtractFloor_ExplicitRange(t *testing.T) {
	upd := mustExtract(t, "floor", "5-10", ModeScoped)
	wantInt(t, upd, entity.KeyFloorMin, 5)
	wantInt(t, upd, entity.KeyFloorMax, 10)
}

func TestExtractFloor_Bounds(t *testing.T) {
	upd := mustExtract(t, "floor", "1 поверх", ModeScoped)
	wantInt(t, upd, entity.KeyFloorMin, 1)
	wantInt(t, upd, entity.KeyFloorMax, 1)

	upd = mustExtract(t, "floor", "50 поверх", ModeScoped)
	wantInt(t, upd, entity.KeyFloorMin, 50)

	mustNotExtract(t, "floor", "0", ModeScoped)
	mustNotExtract(t, "floor", "51", ModeScoped)
}

func TestExtractFloor_SingleWithKeywordDirection(t *testing.T) {
	upd := mustExtract(t, "floor", "до 5", ModeScoped)
	wantInt(t, upd, entity.KeyFloorMin, 1)
	wantInt(t, upd, entity.KeyFloorMax, 5)

	upd = mustExtract(t, "floor", "від 3", ModeScoped)
	wantInt(t, upd, entity.KeyFloorMin, 3)
	wantInt(t, upd, entity.KeyFloorMax, 50)
}

func TestExtractFloor_LastFloorRule(t *testing.T) {
	upd := mustExtract(t, "floor", "тільки останній поверх", ModeScoped)
	if !upd.Fields().FloorOnlyLast {
		t.Fatalf("floor_only_last not set, touched: %v", upd.Keys())
	}
}

func TestExtractFloor_NotFirstRule(t *testing.T) {
	upd := mustExtract(t, "floor", "не перший", ModeScoped)
	wantInt(t, upd, entity.KeyFloorMin, 2)
	if upd.Has(entity.KeyFloorMax) {
		t.Fatalf("floor_max should stay untouched")
	}
}

func TestExtractFloor_OpportunisticNeedsFloorWord(t *testing.T) {
	mustNotExtract(t, "floor", "5-10", ModeOpportunistic)

	upd := mustExtract(t, "floor", "поверх 2-10", ModeOpportunistic)
	wantInt(t, upd, entity.KeyFloorMin, 2)
	wantInt(t, upd, entity.KeyFloorMax, 10)
}

func TestExtractFloorsTotal_Range(t *testing.T) {
	upd := mustExtract(t, "floors_total", "5-9", ModeScoped)
	wantInt(t, upd, entity.KeyFloorsTotalMin, 5)
	wantInt(t, upd, entity.KeyFloorsTotalMax, 9)
}

func TestExtractFloorsTotal_OpenBounds(t *testing.T) {
	upd := mustExtract(t, "building_floors", "до 9", ModeScoped)
	wantInt(t, upd, entity.KeyFloorsTotalMin, 1)
	wantInt(t, upd, entity.KeyFloorsTotalMax, 9)

	upd = mustExtract(t, "floors_total", "від 5", ModeScoped)
	wantInt(t, upd, entity.KeyFloorsTotalMin, 5)
	wantInt(t, upd, entity.KeyFloorsTotalMax, 30)
}

func TestExtractCondition_TokenMatch(t *testing.T) {
	upd := mustExtract(t, "state", "бажано євроремонт", ModeScoped)
	if got := upd.Fields().ConditionIn; !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("condition = %v, want [1]", got)
	}
}

func TestExtractCondition_MultipleSorted(t *testing.T) {
	upd := mustExtract(t, "condition", "житловий стан або євроремонт", ModeScoped)
	if got := upd.Fields().ConditionIn; !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("condition = %v, want [1 2]", got)
	}
}

func TestExtractCondition_NoSubstringFalsePositive(t *testing.T) {
	// "евро" sinonimi "европейський" so'zi ichidan olinmasligi kerak
	mustNotExtract(t, "state", "европейський квартал", ModeScoped)
}

func TestExtractSection_StemmedKeyword(t *testing.T) {
	upd := mustExtract(t, "section", "цікавить новобудова", ModeScoped)
	if got := upd.Fields().Section; got != "new" {
		t.Fatalf("section = %q, want new", got)
	}
}

func TestExtractSection_AtMostOne(t *testing.T) {
	upd := mustExtract(t, "section", "новобуд або вторинка", ModeScoped)
	if got := upd.Fields().Section; got != "new" {
		t.Fatalf("section = %q, want first match new", got)
	}
}

func TestExtractDistrict_DelegatesToLocations(t *testing.T) {
	upd := mustExtract(t, "district", "шукаю салтівку", ModeOpportunistic)
	if got := upd.Fields().MicroareaIDs; !reflect.DeepEqual(got, []int{10}) {
		t.Fatalf("microarea = %v, want [10]", got)
	}
}

func TestNumericFallback_RoomsAreaPrice(t *testing.T) {
	upd := NumericFallback(entity.Criteria{}, "3 45 30000")
	if got := upd.Fields().RoomsIn; !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("rooms = %v, want [3]", got)
	}
	wantInt(t, upd, entity.KeyAreaMin, 45)
	wantInt(t, upd, entity.KeyPriceMax, 30000)
}

func TestNumericFallback_TwoAreaNumbers(t *testing.T) {
	upd := NumericFallback(entity.Criteria{}, "50 70")
	wantInt(t, upd, entity.KeyAreaMin, 50)
	wantInt(t, upd, entity.KeyAreaMax, 70)
}

func TestNumericFallback_TwoPricesBecomeRange(t *testing.T) {
	upd := NumericFallback(entity.Criteria{}, "70000 30000")
	wantInt(t, upd, entity.KeyPriceMin, 30000)
	wantInt(t, upd, entity.KeyPriceMax, 70000)
}

func TestNumericFallback_SkipsSetCategories(t *testing.T) {
	two := 2
	existing := entity.Criteria{RoomsIn: []int{1}, AreaMin: &two}
	upd := NumericFallback(existing, "3 45")
	if upd.Has(entity.KeyRoomsIn) {
		t.Fatalf("rooms already set, must not be overwritten")
	}
	if upd.Has(entity.KeyAreaMin) || upd.Has(entity.KeyAreaMax) {
		t.Fatalf("area already set, must not be overwritten")
	}
}
