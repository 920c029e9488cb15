package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
)

type stubTableSource struct {
	rows map[string][]map[string]string
	fail map[string]bool
}

func (s *stubTableSource) FetchTable(_ context.Context, name string) ([]map[string]string, error) {
	if s.fail[name] {
		return nil, errors.New("fetch failed")
	}
	return s.rows[name], nil
}

func TestBuildSnapshot_Locations(t *testing.T) {
	snap := testSnapshot()
	if id, ok := snap.Streets.exact["сумська"]; !ok || id != 100 {
		t.Fatalf("exact street lookup = %d (ok=%v)", id, ok)
	}
	if id, ok := snap.Districts.stemmed[Stem(Normalize("шевченківський"))]; !ok || id != 1 {
		t.Fatalf("stemmed district lookup = %d (ok=%v)", id, ok)
	}
	if got := snap.MicroareaName(10); got != "Салтівка" {
		t.Fatalf("microarea name = %q", got)
	}
}

func TestBuildSnapshot_BadRowsSkipped(t *testing.T) {
	rows := testRows()
	rows[constants.TableDistricts] = append(rows[constants.TableDistricts],
		map[string]string{"type": "district", "synonym": "битий", "target_id": "не число"},
		map[string]string{"type": "невідомий", "synonym": "десь", "target_id": "5"},
	)
	snap := BuildSnapshot(rows)
	if _, ok := snap.Districts.stemmed[Stem("битий")]; ok {
		t.Fatalf("row with a broken id must be skipped")
	}
	if id := snap.Districts.exact["центр"]; id != 2 {
		t.Fatalf("valid rows must survive broken neighbours, got %d", id)
	}
}

func TestBuildSnapshot_QuestionsSorted(t *testing.T) {
	rows := testRows()
	rows[constants.TableQuestions] = []map[string]string{
		{"question_key": "floor", "question_text": "Поверх?", "order": "6"},
		{"question_key": "district", "question_text": "Район?", "order": "2"},
		{"question_key": "extra", "question_text": "Додатково?"},
		{"question_key": "rooms", "question_text": "Кімнати?", "order": "3"},
	}
	snap := BuildSnapshot(rows)
	var keys []string
	for _, q := range snap.Questions {
		keys = append(keys, q.Key)
	}
	want := "district rooms floor extra"
	if got := strings.Join(keys, " "); got != want {
		t.Fatalf("order = %q, want %q", got, want)
	}
}

func TestBuildSnapshot_PatternRules(t *testing.T) {
	snap := testSnapshot()

	rooms := snap.Patterns["rooms"]
	if len(rooms) != 2 {
		t.Fatalf("rooms rules = %d, want 2", len(rooms))
	}
	if rooms[0].Type != "word" || len(rooms[0].List) != 1 || rooms[0].List[0] != 1 {
		t.Fatalf("unexpected first rooms rule: %+v", rooms[0])
	}

	floor := snap.Patterns["floor"]
	if len(floor) != 2 {
		t.Fatalf("floor rules = %d, want 2", len(floor))
	}
	if !floor[0].LastFloor {
		t.Fatalf("LAST value must set the last-floor flag: %+v", floor[0])
	}
	if floor[1].Min == nil || *floor[1].Min != 2 || floor[1].Max != nil {
		t.Fatalf("value_min rule parsed wrong: %+v", floor[1])
	}

	budget := snap.Patterns["budget"]
	if len(budget) != 1 || !budget[0].Skip {
		t.Fatalf("special rule must be a skip rule: %+v", budget)
	}
}

func TestBuildSnapshot_ConditionSynonyms(t *testing.T) {
	snap := testSnapshot()
	// "євро" va "евро" normalizatsiyadan keyin bitta kalitga tushadi
	if id, ok := snap.Conditions.synonyms[Normalize("євро")]; !ok || id != 1 {
		t.Fatalf("synonym lookup = %d (ok=%v)", id, ok)
	}
	if got := snap.ConditionLabel(3); got != "Під ремонт" {
		t.Fatalf("label = %q", got)
	}
	if got := snap.ConditionLabel(99); got != "99" {
		t.Fatalf("unknown label fallback = %q", got)
	}
}

func TestBuildSnapshot_ReservedReactionBecomesCopy(t *testing.T) {
	snap := testSnapshot()
	if got := snap.Copy(constants.CopySilence); got != "Ви ще тут? 🙂" {
		t.Fatalf("silence copy = %q", got)
	}
	for _, r := range snap.Reactions {
		if r.Trigger == "silence" {
			t.Fatalf("reserved trigger leaked into reactions")
		}
	}
}

func TestSnapshot_CopyDefaults(t *testing.T) {
	snap := BuildSnapshot(nil)
	if got := snap.Copy(constants.CopyAskParams); got == "" {
		t.Fatalf("built-in copy must not be empty")
	}
	if got := snap.Copy("unknown_key"); got != "" {
		t.Fatalf("unknown key = %q, want empty", got)
	}
}

func TestTables_ReloadKeepsStaleRows(t *testing.T) {
	source := &stubTableSource{rows: testRows(), fail: map[string]bool{}}
	tables := NewTables(source, zap.NewNop())

	if err := tables.Reload(context.Background()); err != nil {
		t.Fatalf("first reload: %v", err)
	}
	if _, ok := tables.Snapshot().Streets.exact["сумська"]; !ok {
		t.Fatalf("street missing after first reload")
	}

	source.fail[constants.TableDistricts] = true
	source.rows[constants.TableQuestions] = []map[string]string{
		{"question_key": "district", "question_text": "Оновлене питання?", "order": "1"},
	}

	err := tables.Reload(context.Background())
	if err == nil || !strings.Contains(err.Error(), constants.TableDistricts) {
		t.Fatalf("reload error = %v, want stale districts", err)
	}
	snap := tables.Snapshot()
	if _, ok := snap.Streets.exact["сумська"]; !ok {
		t.Fatalf("failed table must keep previous rows")
	}
	if got := QuestionText(snap, "district"); got != "Оновлене питання?" {
		t.Fatalf("healthy tables must still refresh, got %q", got)
	}
}

func TestTables_ReloadWithoutSource(t *testing.T) {
	tables := NewStaticTables(testSnapshot())
	if err := tables.Reload(context.Background()); err == nil {
		t.Fatalf("reload without a source must fail")
	}
}
