package usecase

import (
	"regexp"
	"strings"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

var (
	locationPartRe = regexp.MustCompile(`[;,]`)

	// "3-й" kabi faqat tartib sondan iborat qism oldingi qism nomini oladi:
	// "Салтівка 2, 3-й" -> "Салтівка 3-й"
	ordinalOnlyPartRe = regexp.MustCompile(`(?i)^\d+-?(й|и|ий|ый|і)$`)
	trailingOrdinalRe = regexp.MustCompile(`(?i)(.+?)\s+\d+-?(й|и|ий|ый|і)$`)
)

// MatchLocations erkin matndan joylashuvlarni aniqlaydi. Matn vergul va
// nuqta-vergul bo'yicha qismlarga bo'linadi, har bir qism avval ko'cha
// nomiga to'liq mos kelishga, keyin so'zma-so'z stem bo'yicha ko'cha,
// mikrorayon va rayon lug'atlariga tekshiriladi. Birorta ko'cha topilsa
// natijada faqat ko'chalar qoladi.
func MatchLocations(snap *Snapshot, text string) *entity.Update {
	parts := splitLocationParts(text)

	var streets, micros, districts []int
	seenStreet := make(map[int]bool)
	seenMicro := make(map[int]bool)
	seenDistrict := make(map[int]bool)

	for _, part := range parts {
		ps, pm, pd := matchLocationPart(snap, part)
		for _, id := range ps {
			if !seenStreet[id] {
				seenStreet[id] = true
				streets = append(streets, id)
			}
		}
		for _, id := range pm {
			if !seenMicro[id] {
				seenMicro[id] = true
				micros = append(micros, id)
			}
		}
		for _, id := range pd {
			if !seenDistrict[id] {
				seenDistrict[id] = true
				districts = append(districts, id)
			}
		}
	}

	upd := entity.NewUpdate()
	if len(streets) > 0 {
		upd.SetIntList(entity.KeyStreetID, streets)
		upd.SetBool(entity.KeyExplicitStreet, true)
		return upd
	}
	if len(micros) > 0 {
		upd.SetIntList(entity.KeyMicroareaID, micros)
	}
	if len(districts) > 0 {
		upd.SetIntList(entity.KeyDistrictID, districts)
	}
	return upd
}

// splitLocationParts qismlarga bo'ladi va yolg'iz tartib sonli qismga
// oldingi qism asosini qo'shadi. Oldingi qism tartib son bilan tugasa
// asos sifatida faqat nomi olinadi, aks holda qism to'liq olinadi.
func splitLocationParts(text string) []string {
	var parts []string
	lastBase := ""
	for _, p := range locationPartRe.Split(text, -1) {
		part := strings.TrimSpace(p)
		if part == "" {
			continue
		}
		if ordinalOnlyPartRe.MatchString(part) {
			if lastBase != "" {
				part = lastBase + " " + part
			}
			parts = append(parts, part)
			continue
		}
		parts = append(parts, part)
		if m := trailingOrdinalRe.FindStringSubmatch(part); m != nil {
			lastBase = strings.TrimSpace(m[1])
		} else {
			lastBase = part
		}
	}
	return parts
}

func matchLocationPart(snap *Snapshot, part string) (streets, micros, districts []int) {
	normalized := Normalize(part)
	if normalized == "" {
		return nil, nil, nil
	}
	if id, ok := snap.Streets.exact[normalized]; ok {
		return []int{id}, nil, nil
	}
	for _, word := range strings.Fields(normalized) {
		stem := Stem(word)
		if id, ok := snap.Streets.stemmed[stem]; ok {
			streets = append(streets, id)
		}
		if id, ok := snap.Microareas.stemmed[stem]; ok {
			micros = append(micros, id)
		}
		if id, ok := snap.Districts.stemmed[stem]; ok {
			districts = append(districts, id)
		}
	}
	return streets, micros, districts
}
