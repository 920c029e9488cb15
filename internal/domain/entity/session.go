package entity

import "time"

// Session bitta chat uchun dialog holati. Engine har bir turda sessiyani
// o'qiydi va yangilangan holatda saqlashga qaytaradi; bitta chat xabarlari
// qat'iy ketma-ket qayta ishlanadi, shuning uchun lock kerak emas.
type Session struct {
	ChatID          int64          `json:"chat_id"`
	DialogID        int64          `json:"dialog_id"`
	State           string         `json:"state"`
	Criteria        Criteria       `json:"criteria"`
	Offset          int            `json:"offset"`
	PendingSlot     string         `json:"pending_slot,omitempty"`
	CurrentQuestion string         `json:"current_question,omitempty"`
	AskedQuestions  []string       `json:"asked_questions,omitempty"`
	Selected        []ShownListing `json:"selected,omitempty"`
	DisplayName     string         `json:"display_name,omitempty"`
	LastActivity    time.Time      `json:"last_activity"`
	SilenceNotified bool           `json:"silence_notified,omitempty"`
}

// MarkAsked savolni berilganlar ro'yxatiga qo'shadi (takrorsiz).
func (s *Session) MarkAsked(slot string) {
	for _, a := range s.AskedQuestions {
		if a == slot {
			return
		}
	}
	s.AskedQuestions = append(s.AskedQuestions, slot)
}

// WasAsked savol shu yig'ish siklida berilganligini qaytaradi.
func (s *Session) WasAsked(slot string) bool {
	for _, a := range s.AskedQuestions {
		if a == slot {
			return true
		}
	}
	return false
}

// ResetQuestions savollar siklini boshidan boshlaydi.
func (s *Session) ResetQuestions() {
	s.AskedQuestions = nil
	s.CurrentQuestion = ""
	s.PendingSlot = ""
}

// ResetSearch qidiruv holatini to'liq tozalaydi (yangi qidiruv intenti).
func (s *Session) ResetSearch() {
	s.Criteria = Criteria{}
	s.Offset = 0
	s.Selected = nil
	s.ResetQuestions()
}
