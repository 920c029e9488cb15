package usecase

import (
	"strings"
	"unicode"
)

// nameMarkers "мене звати Олег" turidagi kirish iboralari.
var nameMarkers = []string{
	"мене звати", "мене звуть", "меня зовут", "звати мене", "зовут меня",
	"я - ", "я — ",
}

// ExtractName erkin kirish xabaridan ismni ajratadi. Qaytgan leftover ism
// bo'lmagan qism: unda filtr parametrlari bo'lishi mumkin ("Олег, 2 кімнати
// до 40000" -> "Олег" va "2 кімнати до 40000").
func ExtractName(text string) (name, leftover string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ""
	}
	lower := strings.ToLower(trimmed)

	for _, marker := range nameMarkers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(trimmed[idx+len(marker):])
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		head := strings.Trim(fields[0], ",.;!")
		rem := strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
		rem = strings.TrimLeft(rem, ",.;! ")
		return capitalizeName(head), rem
	}

	for _, sep := range []string{",", ";", " - ", " — "} {
		idx := strings.Index(trimmed, sep)
		if idx <= 0 {
			continue
		}
		head := strings.TrimSpace(trimmed[:idx])
		if head == "" || len(strings.Fields(head)) > 2 || strings.ContainsAny(head, "0123456789") {
			continue
		}
		return capitalizeName(head), strings.TrimSpace(trimmed[idx+len(sep):])
	}

	fields := strings.Fields(trimmed)
	head := strings.Trim(fields[0], ",.;!")
	return capitalizeName(head), strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))
}

// capitalizeName har bir so'zning birinchi harfini katta qiladi.
func capitalizeName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
