package usecase

import (
	"reflect"
	"testing"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

func intPtr(v int) *int { return &v }

func TestNextQuestion_SkipsNameSlot(t *testing.T) {
	q, ok := NextQuestion(testSnapshot(), entity.Criteria{}, nil)
	if !ok {
		t.Fatalf("expected a question")
	}
	if q.Key != "district" {
		t.Fatalf("first question = %q, want district", q.Key)
	}
}

func TestNextQuestion_SkipsSatisfiedSlots(t *testing.T) {
	c := entity.Criteria{DistrictIDs: []int{1}, RoomsIn: []int{2}}
	q, ok := NextQuestion(testSnapshot(), c, nil)
	if !ok || q.Key != "budget" {
		t.Fatalf("question = %q (ok=%v), want budget", q.Key, ok)
	}
}

func TestNextQuestion_PartialBoundSatisfiesSlot(t *testing.T) {
	// faqat price_max ham budget savolini yopadi
	c := entity.Criteria{DistrictIDs: []int{1}, RoomsIn: []int{2}, PriceMax: intPtr(40000)}
	q, ok := NextQuestion(testSnapshot(), c, nil)
	if !ok || q.Key != "area" {
		t.Fatalf("question = %q (ok=%v), want area", q.Key, ok)
	}
}

func TestNextQuestion_SkipsAskedSlots(t *testing.T) {
	q, ok := NextQuestion(testSnapshot(), entity.Criteria{}, []string{"district", "rooms"})
	if !ok || q.Key != "budget" {
		t.Fatalf("question = %q (ok=%v), want budget", q.Key, ok)
	}
}

func TestNextQuestion_Exhausted(t *testing.T) {
	asked := []string{"district", "rooms", "budget", "area", "floor"}
	if _, ok := NextQuestion(testSnapshot(), entity.Criteria{}, asked); ok {
		t.Fatalf("expected no question when all were asked")
	}
}

func TestMissingSlots(t *testing.T) {
	c := entity.Criteria{RoomsIn: []int{1}, PriceMax: intPtr(30000)}
	got := MissingSlots(testSnapshot(), c)
	want := []string{"district", "area", "floor"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
}

func TestMissingSlots_FloorOnlyLastCountsAsAnswer(t *testing.T) {
	c := entity.Criteria{FloorOnlyLast: true}
	for _, slot := range MissingSlots(testSnapshot(), c) {
		if slot == "floor" {
			t.Fatalf("floor must not be missing when floor_only_last is set")
		}
	}
}

func TestSlotKeys(t *testing.T) {
	got := SlotKeys("budget")
	want := []string{entity.KeyPriceMin, entity.KeyPriceMax}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if keys := SlotKeys("name"); len(keys) != 0 {
		t.Fatalf("name slot must map to no filter keys, got %v", keys)
	}
}

func TestQuestionText(t *testing.T) {
	if got := QuestionText(testSnapshot(), "rooms"); got != "Скільки кімнат розглядаєте?" {
		t.Fatalf("text = %q", got)
	}
	if got := QuestionText(testSnapshot(), "unknown"); got != "" {
		t.Fatalf("unknown slot text = %q, want empty", got)
	}
}

func TestNameQuestionText_WorksheetRow(t *testing.T) {
	if got := NameQuestionText(testSnapshot()); got != "Як до вас звертатись?" {
		t.Fatalf("text = %q", got)
	}
}

func TestNameQuestionText_Fallback(t *testing.T) {
	rows := testRows()
	delete(rows, constants.TableQuestions)
	snap := BuildSnapshot(rows)
	got := NameQuestionText(snap)
	if got == "" {
		t.Fatalf("fallback text must not be empty")
	}
	if got == "Як до вас звертатись?" {
		t.Fatalf("fallback must not reuse the deleted worksheet row")
	}
}
