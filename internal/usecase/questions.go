package usecase

import (
	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

// slotCriteriaKeys savol kaliti qaysi filtr kalitlarini yopishini aniqlaydi.
// Kamida bittasi to'ldirilgan bo'lsa savol berilmaydi.
var slotCriteriaKeys = map[string][]string{
	constants.SlotName:           {},
	constants.SlotDistrict:       {entity.KeyDistrictID, entity.KeyMicroareaID, entity.KeyStreetID, entity.KeyExplicitStreet},
	constants.SlotRooms:          {entity.KeyRoomsIn},
	constants.SlotState:          {entity.KeyConditionIn},
	constants.SlotCondition:      {entity.KeyConditionIn},
	constants.SlotBudget:         {entity.KeyPriceMin, entity.KeyPriceMax},
	constants.SlotPrice:          {entity.KeyPriceMin, entity.KeyPriceMax},
	constants.SlotSection:        {entity.KeySection},
	constants.SlotArea:           {entity.KeyAreaMin, entity.KeyAreaMax},
	constants.SlotFloor:          {entity.KeyFloorMin, entity.KeyFloorMax, entity.KeyFloorOnlyLast},
	constants.SlotFloorsTotal:    {entity.KeyFloorsTotalMin, entity.KeyFloorsTotalMax},
	constants.SlotBuildingFloors: {entity.KeyFloorsTotalMin, entity.KeyFloorsTotalMax},
}

// SlotKeys savol kaliti yopadigan filtr kalitlari (pending slot uchun
// ruxsat ro'yxati sifatida ham ishlatiladi).
func SlotKeys(slot string) []string {
	return slotCriteriaKeys[slot]
}

// slotSatisfied savolga javob berilganligini tekshiradi. Ism savoli filtr
// emas, u hech qachon yetishmayotgan hisoblanmaydi.
func slotSatisfied(slot string, c entity.Criteria) bool {
	keys, known := slotCriteriaKeys[slot]
	if !known {
		return true
	}
	if slot == constants.SlotName {
		return true
	}
	return c.HasAny(keys...)
}

// MissingSlots hali to'ldirilmagan savollar, worksheet tartibida.
func MissingSlots(snap *Snapshot, c entity.Criteria) []string {
	var missing []string
	for _, q := range snap.Questions {
		if !slotSatisfied(q.Key, c) {
			missing = append(missing, q.Key)
		}
	}
	return missing
}

// NextQuestion navbatdagi berilmagan va to'ldirilmagan savolni qaytaradi.
// Ikkinchi qiymat false bo'lsa so'raladigan savol qolmagan: filtr to'liq
// yoki qolgan savollar shu siklda allaqachon berilgan.
func NextQuestion(snap *Snapshot, c entity.Criteria, asked []string) (Question, bool) {
	askedSet := make(map[string]bool, len(asked))
	for _, a := range asked {
		askedSet[a] = true
	}
	for _, q := range snap.Questions {
		if askedSet[q.Key] || slotSatisfied(q.Key, c) {
			continue
		}
		return q, true
	}
	return Question{}, false
}

// QuestionText savol matnini qaytaradi; savol worksheetda bo'lmasa bo'sh.
func QuestionText(snap *Snapshot, slot string) string {
	for _, q := range snap.Questions {
		if q.Key == slot {
			return q.Text
		}
	}
	return ""
}

// NameQuestionText ism savoli matni: worksheetdagi name qatori yoki standart.
func NameQuestionText(snap *Snapshot) string {
	if text := QuestionText(snap, constants.SlotName); text != "" {
		return text
	}
	return snap.Copy(constants.CopyAskName)
}
