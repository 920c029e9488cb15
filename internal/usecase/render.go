package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

// RenderCard bitta e'lon kartasini tartib raqami bilan formatlaydi. Bo'sh
// maydonlar qatordan tushib qoladi.
func RenderCard(l entity.Listing, displayIndex int) string {
	title := l.Title
	if title == "" {
		title = "Квартира"
	}
	lines := []string{fmt.Sprintf("%d. %s", displayIndex, title)}
	if l.Price != "" {
		lines = append(lines, "Ціна: "+l.Price)
	}
	if l.Address != "" {
		lines = append(lines, "Адреса: "+l.Address)
	}
	if l.AreaTotal != "" {
		lines = append(lines, "Площа: "+l.AreaTotal)
	}
	if l.Rooms != "" {
		lines = append(lines, "Кімнат: "+l.Rooms)
	}
	if l.URL != "" {
		lines = append(lines, l.URL)
	}
	return strings.Join(lines, "\n")
}

// ExtraOffersMessage sahifadan keyin qolgan variantlar haqidagi xabar.
// remaining = jami - offset - yuborilganlar.
func ExtraOffersMessage(snap *Snapshot, total, offset, shown int) string {
	remaining := total - offset - shown
	if remaining <= 0 {
		return snap.Copy(constants.CopyExtraOffersZero)
	}
	text := snap.Copy(constants.CopyExtraOffersMore)
	return strings.ReplaceAll(text, "{count}", strconv.Itoa(remaining))
}

// FilterLastFloor faqat o'z binosining oxirgi qavatidagi e'lonlarni
// qoldiradi. Server bu filtrni bilmaydi, shuning uchun javob keyin tozalanadi.
func FilterLastFloor(items []entity.Listing) []entity.Listing {
	var out []entity.Listing
	for _, l := range items {
		if l.Floor > 0 && l.Floor == l.FloorsTotal {
			out = append(out, l)
		}
	}
	return out
}

// Summary joriy filtrni foydalanuvchi tilida ko'rsatadi. Id lar lug'atdagi
// rasmiy nomlarga almashtiriladi; hech narsa to'ldirilmagan bo'lsa alohida
// matn qaytadi.
func Summary(snap *Snapshot, c entity.Criteria) string {
	var parts []string

	if len(c.DistrictIDs) > 0 {
		parts = append(parts, "Район: "+joinNames(c.DistrictIDs, snap.DistrictName))
	}
	if len(c.MicroareaIDs) > 0 {
		parts = append(parts, "Мікрорайон: "+joinNames(c.MicroareaIDs, snap.MicroareaName))
	}
	if len(c.StreetIDs) > 0 {
		parts = append(parts, "Вулиця: "+joinNames(c.StreetIDs, snap.StreetName))
	}
	if len(c.RoomsIn) > 0 {
		nums := make([]string, len(c.RoomsIn))
		for i, n := range c.RoomsIn {
			nums[i] = strconv.Itoa(n)
		}
		parts = append(parts, "Кімнати: "+strings.Join(nums, ", "))
	}
	if line := rangeLine("Бюджет", c.PriceMin, c.PriceMax, " грн"); line != "" {
		parts = append(parts, line)
	}
	if line := rangeLine("Площа", c.AreaMin, c.AreaMax, " м²"); line != "" {
		parts = append(parts, line)
	}
	if line := floorLine(c.FloorMin, c.FloorMax); line != "" {
		parts = append(parts, "Поверх: "+line)
	}
	if line := floorLine(c.FloorsTotalMin, c.FloorsTotalMax); line != "" {
		parts = append(parts, "Поверховість будинку: "+line)
	}
	if c.FloorOnlyLast {
		parts = append(parts, "Поверх: тільки останній")
	}
	if len(c.ConditionIn) > 0 {
		parts = append(parts, "Стан: "+joinNames(c.ConditionIn, snap.ConditionLabel))
	}
	if c.Section != "" {
		parts = append(parts, "Розділ: "+c.Section)
	}

	if len(parts) == 0 {
		return "Параметри не задані"
	}
	return strings.Join(parts, "\n")
}

func joinNames(ids []int, name func(int) string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = name(id)
	}
	return strings.Join(out, ", ")
}

// rangeLine "Бюджет: 20000-50000 грн" / "Бюджет до 50000 грн" /
// "Бюджет від 20000 грн" shaklidagi qator.
func rangeLine(label string, minV, maxV *int, unit string) string {
	switch {
	case intSet(minV) && intSet(maxV):
		return fmt.Sprintf("%s: %d-%d%s", label, *minV, *maxV, unit)
	case intSet(maxV):
		return fmt.Sprintf("%s до %d%s", label, *maxV, unit)
	case intSet(minV):
		return fmt.Sprintf("%s від %d%s", label, *minV, unit)
	}
	return ""
}

// floorLine "5" / "5-10" / "від 5" / "до 10" shaklidagi qiymat.
func floorLine(minV, maxV *int) string {
	switch {
	case intSet(minV) && intSet(maxV) && *minV == *maxV:
		return strconv.Itoa(*minV)
	case intSet(minV) && intSet(maxV):
		return fmt.Sprintf("%d-%d", *minV, *maxV)
	case intSet(minV):
		return fmt.Sprintf("від %d", *minV)
	case intSet(maxV):
		return fmt.Sprintf("до %d", *maxV)
	}
	return ""
}

func intSet(p *int) bool {
	return p != nil && *p != 0
}
