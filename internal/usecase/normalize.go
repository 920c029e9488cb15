package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	digitsRe  = regexp.MustCompile(`\d+`)

	// ukraincha harf variantlari ruscha muqobiliga yig'iladi, shunda bitta
	// sinonim ikkala yozuvni ham qoplaydi
	letterFold = strings.NewReplacer("і", "и", "ї", "и", "є", "е", "ґ", "г")
)

// Normalize matnni kichik harfga o'tkazadi, ukraincha harf variantlarini
// yig'adi va harf-raqam bo'lmagan ketma-ketliklarni bitta bo'shliqqa
// almashtiradi. Natija idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = letterFold.Replace(s)
	s = nonWordRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stemEndings uzunlik bo'yicha kamayish tartibida, shunda eng uzun mos
// qo'shimcha birinchi olinadi.
var stemEndings = []string{
	"ого", "ому", "ими", "ыми", "ами", "ями",
	"ой", "ый", "ий", "ас", "яс", "ое", "ее", "ом", "ою",
	"ам", "ах", "ів", "ов", "ей", "ям", "ях",
	"а", "у", "ю", "о", "е", "і", "и", "ь", "ї",
}

// Stem so'zdan ma'lum fleksiya qo'shimchasini oladi, agar qolgan o'zak
// kamida uch harf bo'lsa. Uch harf va undan qisqa so'zlar o'zgarmaydi.
func Stem(word string) string {
	if utf8.RuneCountInString(word) <= 3 {
		return word
	}
	wordLen := utf8.RuneCountInString(word)
	for _, ending := range stemEndings {
		if !strings.HasSuffix(word, ending) {
			continue
		}
		if wordLen-utf8.RuneCountInString(ending) >= 3 {
			return strings.TrimSuffix(word, ending)
		}
	}
	return word
}

// Ints matndagi barcha butun sonlarni chiqaradi. Buzilmas bo'shliqlar
// o'chiriladi, shunda "50 000" bitta son sifatida o'qiladi.
func Ints(text string) []int {
	cleaned := strings.ReplaceAll(text, "\u00a0", "")
	matches := digitsRe.FindAllString(cleaned, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// containsAny substr ro'yxatidan kamida bittasi matnda borligini tekshiradi.
func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// hasToken normalizatsiya qilingan matnda so'z (yoki so'z ketma-ketligi)
// butun token sifatida borligini tekshiradi.
func hasToken(normalized, token string) bool {
	return strings.Contains(" "+normalized+" ", " "+token+" ")
}
