package usecase

import (
	"reflect"
	"testing"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

func TestMatchLocations_ExactStreet(t *testing.T) {
	upd := MatchLocations(testSnapshot(), "Сумська")
	if got := upd.Fields().StreetIDs; !reflect.DeepEqual(got, []int{100}) {
		t.Fatalf("streets = %v, want [100]", got)
	}
	if !upd.Fields().ExplicitStreet {
		t.Fatalf("explicit_street not set")
	}
}

func TestMatchLocations_StemmedStreetForm(t *testing.T) {
	// "на сумській" fleksiyasi stem orqali ko'chaga mos kelishi kerak
	upd := MatchLocations(testSnapshot(), "на сумській")
	if got := upd.Fields().StreetIDs; !reflect.DeepEqual(got, []int{100}) {
		t.Fatalf("streets = %v, want [100]", got)
	}
}

func TestMatchLocations_DistrictByStem(t *testing.T) {
	upd := MatchLocations(testSnapshot(), "в шевченківському районі")
	if got := upd.Fields().DistrictIDs; !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("districts = %v, want [1]", got)
	}
	if len(upd.Fields().StreetIDs) != 0 {
		t.Fatalf("streets must be empty, got %v", upd.Fields().StreetIDs)
	}
}

func TestMatchLocations_StreetWinsOverDistrict(t *testing.T) {
	upd := MatchLocations(testSnapshot(), "Шевченківський, Сумська")
	f := upd.Fields()
	if got := f.StreetIDs; !reflect.DeepEqual(got, []int{100}) {
		t.Fatalf("streets = %v, want [100]", got)
	}
	if upd.Has(entity.KeyDistrictID) {
		t.Fatalf("district key must not be touched when a street matched")
	}
}

func TestMatchLocations_MultipleDistrictsDeduped(t *testing.T) {
	upd := MatchLocations(testSnapshot(), "центр, шевченківський, центр")
	if got := upd.Fields().DistrictIDs; !reflect.DeepEqual(got, []int{2, 1}) {
		t.Fatalf("districts = %v, want [2 1]", got)
	}
}

func TestMatchLocations_NoMatchEmptyUpdate(t *testing.T) {
	upd := MatchLocations(testSnapshot(), "десь у гарному місці")
	if !upd.Empty() {
		t.Fatalf("expected empty update, touched: %v", upd.Keys())
	}
}

func TestSplitLocationParts_OrdinalInheritsBase(t *testing.T) {
	parts := splitLocationParts("Салтівка 2, 3-й")
	want := []string{"Салтівка 2", "Салтівка 2 3-й"}
	if !reflect.DeepEqual(parts, want) {
		t.Fatalf("parts = %v, want %v", parts, want)
	}
}

func TestSplitLocationParts_OrdinalBaseStripped(t *testing.T) {
	parts := splitLocationParts("Салтівка 2-й, 3-й")
	want := []string{"Салтівка 2-й", "Салтівка 3-й"}
	if !reflect.DeepEqual(parts, want) {
		t.Fatalf("parts = %v, want %v", parts, want)
	}
}

func TestSplitLocationParts_PlainParts(t *testing.T) {
	parts := splitLocationParts("центр; салтівка")
	want := []string{"центр", "салтівка"}
	if !reflect.DeepEqual(parts, want) {
		t.Fatalf("parts = %v, want %v", parts, want)
	}
}
