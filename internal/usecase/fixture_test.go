package usecase

import (
	"github.com/tira-ua/realtor-bot/internal/domain/constants"
)

// testRows to'liq worksheet to'plami: testlar BuildSnapshot orqali haqiqiy
// qurilish yo'lini ishlatadi.
func testRows() map[string][]map[string]string {
	return map[string][]map[string]string{
		constants.TableDistricts: {
			{"type": "district", "synonym": "шевченківський", "official_name": "Шевченківський", "target_id": "1"},
			{"type": "district", "synonym": "центр", "official_name": "Центр", "target_id": "2"},
			{"type": "district", "synonym": "київський", "official_name": "Київський", "target_id": "3"},
			{"type": "microarea", "synonym": "салтівка", "official_name": "Салтівка", "target_id": "10"},
			{"type": "microarea", "synonym": "олексіївка", "official_name": "Олексіївка", "target_id": "11"},
			{"type": "street", "synonym": "сумська", "official_name": "вул. Сумська", "target_id": "100"},
			{"type": "street", "synonym": "наукова", "official_name": "вул. Наукова", "target_id": "101"},
		},
		constants.TableDictionaries: {
			{"label": "Євроремонт", "synonyms": "євро;евро", "id": "1"},
			{"label": "Житлова", "synonyms": "жилое;житловий стан", "id": "2"},
			{"label": "Під ремонт", "synonyms": "без ремонту;под ремонт", "id": "3"},
		},
		constants.TableFilterPatterns: {
			{"filter_key": "rooms", "pattern_type": "word", "pattern_text": "однокімнатна,однушка,1к", "value_list": "1"},
			{"filter_key": "rooms", "pattern_type": "word", "pattern_text": "двокімнатна,двушка,2к", "value_list": "2"},
			{"filter_key": "floor", "pattern_type": "phrase", "pattern_text": "останній поверх,последний этаж", "value_list": "LAST"},
			{"filter_key": "floor", "pattern_type": "phrase", "pattern_text": "не перший,не первый", "value_min": "2"},
			{"filter_key": "budget", "pattern_type": "special", "pattern_text": "не знаю"},
		},
		constants.TableQuestions: {
			{"question_key": "name", "question_text": "Як до вас звертатись?", "order": "1"},
			{"question_key": "district", "question_text": "Який район вас цікавить?", "order": "2"},
			{"question_key": "rooms", "question_text": "Скільки кімнат розглядаєте?", "order": "3"},
			{"question_key": "budget", "question_text": "Який бюджет розглядаєте?", "order": "4"},
			{"question_key": "area", "question_text": "Яка площа потрібна?", "order": "5"},
			{"question_key": "floor", "question_text": "Які поверхи підходять?", "order": "6"},
		},
		constants.TableSections: {
			{"keyword": "новобуд,новострой,новобудова", "section_value": "new"},
			{"keyword": "вторинка,вторичка", "section_value": "secondary"},
		},
		constants.TableIntents: {
			{"intent": "more", "keywords": "ще,еще,більше"},
		},
		constants.TableObjections: {
			{"trigger": "дорого", "reply": "Розумію, можемо подивитись дешевші варіанти.", "slot_key": "budget"},
		},
		constants.TableReactions: {
			{"trigger": "дякую", "reply": "Будь ласка!"},
			{"trigger": "silence", "reply": "Ви ще тут? 🙂"},
		},
		constants.TableWelcome: {
			{"text": "Вітаю! Підберу квартиру під ваші параметри."},
		},
	}
}

func testSnapshot() *Snapshot {
	return BuildSnapshot(testRows())
}
