package usecase

import "strings"

// MatchIntent xabarda intent kalit so'zlaridan biri butun token (yoki token
// ketma-ketligi) sifatida borligini tekshiradi. Token chegarasi substring
// xatolarini kesadi: "краще" ichidagi "ще" intent emas.
func MatchIntent(snap *Snapshot, intent, text string) bool {
	keywords, ok := snap.Intents[intent]
	if !ok {
		return false
	}
	normalized := Normalize(text)
	if normalized == "" {
		return false
	}
	for _, kw := range keywords {
		if normKw := Normalize(kw); normKw != "" && hasToken(normalized, normKw) {
			return true
		}
	}
	return false
}

// MatchObjection e'tiroz triggerini substring sifatida qidiradi va birinchi
// mos qoidani qaytaradi.
func MatchObjection(snap *Snapshot, text string) (ObjectionRule, bool) {
	lower := strings.ToLower(text)
	for _, rule := range snap.Objections {
		if strings.Contains(lower, rule.Trigger) {
			return rule, true
		}
	}
	return ObjectionRule{}, false
}

// MatchReaction umumiy ibora uchun tayyor javobni qaytaradi.
func MatchReaction(snap *Snapshot, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, rule := range snap.Reactions {
		if strings.Contains(lower, rule.Trigger) {
			return rule.Reply, true
		}
	}
	return "", false
}
