package entity

import "github.com/samber/lo"

// Filter kalitlari (snapshotlarda va listings API payloadida ishlatiladi)
const (
	KeyDistrictID     = "district_id"
	KeyMicroareaID    = "microarea_id"
	KeyStreetID       = "street_id"
	KeyExplicitStreet = "explicit_street"
	KeyRoomsIn        = "rooms_in"
	KeyPriceMin       = "price_min"
	KeyPriceMax       = "price_max"
	KeyAreaMin        = "area_min"
	KeyAreaMax        = "area_max"
	KeyFloorMin       = "floor_min"
	KeyFloorMax       = "floor_max"
	KeyFloorOnlyLast  = "floor_only_last"
	KeyFloorsTotalMin = "floors_total_min"
	KeyFloorsTotalMax = "floors_total_max"
	KeyConditionIn    = "condition_in"
	KeySection        = "section"
	KeySort           = "sort"
)

// Criteria to'plangan kvartira qidiruv filtri. Min/max chegaralar pointer:
// nil - chegara qo'yilmagan, extractor to'g'ridan to'g'ri nil yozishi ham mumkin
// (masalan "до 50000" narx maksimumni qo'yadi va minimumni ochiq qoldiradi).
type Criteria struct {
	DistrictIDs    []int  `json:"district_id,omitempty"`
	MicroareaIDs   []int  `json:"microarea_id,omitempty"`
	StreetIDs      []int  `json:"street_id,omitempty"`
	ExplicitStreet bool   `json:"explicit_street,omitempty"`
	RoomsIn        []int  `json:"rooms_in,omitempty"`
	PriceMin       *int   `json:"price_min,omitempty"`
	PriceMax       *int   `json:"price_max,omitempty"`
	AreaMin        *int   `json:"area_min,omitempty"`
	AreaMax        *int   `json:"area_max,omitempty"`
	FloorMin       *int   `json:"floor_min,omitempty"`
	FloorMax       *int   `json:"floor_max,omitempty"`
	FloorOnlyLast  bool   `json:"floor_only_last,omitempty"`
	FloorsTotalMin *int   `json:"floors_total_min,omitempty"`
	FloorsTotalMax *int   `json:"floors_total_max,omitempty"`
	ConditionIn    []int  `json:"condition_in,omitempty"`
	Section        string `json:"section,omitempty"`
	Sort           string `json:"sort,omitempty"`
}

// Update bitta xabardan chiqarilgan qisman o'zgarish. Faqat touched kalitlar
// merge paytida qo'llanadi; touched bo'lib nil qiymatli kalit chegarani ochiq
// holatga qaytaradi.
type Update struct {
	fields  Criteria
	touched []string
	seen    map[string]bool
}

// NewUpdate bo'sh update yaratadi.
func NewUpdate() *Update {
	return &Update{seen: make(map[string]bool)}
}

func (u *Update) mark(key string) {
	if u.seen[key] {
		return
	}
	u.seen[key] = true
	u.touched = append(u.touched, key)
}

// SetInt min/max turidagi kalitni belgilaydi; v nil bo'lsa chegara ochiladi.
func (u *Update) SetInt(key string, v *int) {
	switch key {
	case KeyPriceMin:
		u.fields.PriceMin = v
	case KeyPriceMax:
		u.fields.PriceMax = v
	case KeyAreaMin:
		u.fields.AreaMin = v
	case KeyAreaMax:
		u.fields.AreaMax = v
	case KeyFloorMin:
		u.fields.FloorMin = v
	case KeyFloorMax:
		u.fields.FloorMax = v
	case KeyFloorsTotalMin:
		u.fields.FloorsTotalMin = v
	case KeyFloorsTotalMax:
		u.fields.FloorsTotalMax = v
	default:
		return
	}
	u.mark(key)
}

// SetIntList ro'yxat turidagi kalitni belgilaydi.
func (u *Update) SetIntList(key string, v []int) {
	switch key {
	case KeyDistrictID:
		u.fields.DistrictIDs = v
	case KeyMicroareaID:
		u.fields.MicroareaIDs = v
	case KeyStreetID:
		u.fields.StreetIDs = v
	case KeyRoomsIn:
		u.fields.RoomsIn = v
	case KeyConditionIn:
		u.fields.ConditionIn = v
	default:
		return
	}
	u.mark(key)
}

// SetBool bayroq kalitini belgilaydi.
func (u *Update) SetBool(key string, v bool) {
	switch key {
	case KeyExplicitStreet:
		u.fields.ExplicitStreet = v
	case KeyFloorOnlyLast:
		u.fields.FloorOnlyLast = v
	default:
		return
	}
	u.mark(key)
}

// SetString matn kalitini belgilaydi.
func (u *Update) SetString(key string, v string) {
	switch key {
	case KeySection:
		u.fields.Section = v
	case KeySort:
		u.fields.Sort = v
	default:
		return
	}
	u.mark(key)
}

// Empty hech bir kalit belgilanmaganligini qaytaradi.
func (u *Update) Empty() bool {
	return u == nil || len(u.touched) == 0
}

// Has kalit belgilanganligini qaytaradi (nil qiymat bilan ham).
func (u *Update) Has(key string) bool {
	return u != nil && u.seen[key]
}

// Keys belgilangan kalitlar ro'yxati, belgilash tartibida.
func (u *Update) Keys() []string {
	if u == nil {
		return nil
	}
	out := make([]string, len(u.touched))
	copy(out, u.touched)
	return out
}

// Fields update ichidagi qiymatlar nusxasi.
func (u *Update) Fields() Criteria {
	if u == nil {
		return Criteria{}
	}
	return u.fields
}

// Merge boshqa update kalitlarini shu update ustiga yozadi.
func (u *Update) Merge(other *Update) {
	if other == nil {
		return
	}
	for _, key := range other.touched {
		switch key {
		case KeyDistrictID:
			u.SetIntList(key, other.fields.DistrictIDs)
		case KeyMicroareaID:
			u.SetIntList(key, other.fields.MicroareaIDs)
		case KeyStreetID:
			u.SetIntList(key, other.fields.StreetIDs)
		case KeyRoomsIn:
			u.SetIntList(key, other.fields.RoomsIn)
		case KeyConditionIn:
			u.SetIntList(key, other.fields.ConditionIn)
		case KeyExplicitStreet:
			u.SetBool(key, other.fields.ExplicitStreet)
		case KeyFloorOnlyLast:
			u.SetBool(key, other.fields.FloorOnlyLast)
		case KeySection:
			u.SetString(key, other.fields.Section)
		case KeySort:
			u.SetString(key, other.fields.Sort)
		case KeyPriceMin:
			u.SetInt(key, other.fields.PriceMin)
		case KeyPriceMax:
			u.SetInt(key, other.fields.PriceMax)
		case KeyAreaMin:
			u.SetInt(key, other.fields.AreaMin)
		case KeyAreaMax:
			u.SetInt(key, other.fields.AreaMax)
		case KeyFloorMin:
			u.SetInt(key, other.fields.FloorMin)
		case KeyFloorMax:
			u.SetInt(key, other.fields.FloorMax)
		case KeyFloorsTotalMin:
			u.SetInt(key, other.fields.FloorsTotalMin)
		case KeyFloorsTotalMax:
			u.SetInt(key, other.fields.FloorsTotalMax)
		}
	}
}

// Restrict faqat ruxsat etilgan kalitlarni saqlab yangi update qaytaradi.
func (u *Update) Restrict(allowed []string) *Update {
	out := NewUpdate()
	if u == nil {
		return out
	}
	allow := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		allow[k] = true
	}
	for _, key := range u.touched {
		if allow[key] {
			tmp := &Update{fields: u.fields, touched: []string{key}}
			out.Merge(tmp)
		}
	}
	return out
}

func (u *Update) hasLocation() bool {
	return len(u.fields.StreetIDs) > 0 || len(u.fields.MicroareaIDs) > 0 || len(u.fields.DistrictIDs) > 0
}

// Apply update'ni mavjud filtr ustiga qo'llaydi. Joylashuv kalitlari
// almashtiriladi (birlashtirish yo'q), qolgan touched kalitlar qiymatni
// to'g'ridan to'g'ri yozadi, shu jumladan ochiq nil chegaralarni ham.
func (c Criteria) Apply(u *Update) Criteria {
	out := c
	if u.Empty() {
		return out
	}
	f := u.fields
	if u.hasLocation() {
		out.StreetIDs, out.MicroareaIDs, out.DistrictIDs = nil, nil, nil
		out.ExplicitStreet = false
		switch {
		case len(f.StreetIDs) > 0:
			out.StreetIDs = lo.Uniq(f.StreetIDs)
			out.ExplicitStreet = f.ExplicitStreet
		case len(f.MicroareaIDs) > 0:
			out.MicroareaIDs = lo.Uniq(f.MicroareaIDs)
		default:
			out.DistrictIDs = lo.Uniq(f.DistrictIDs)
		}
	}
	for _, key := range u.touched {
		switch key {
		case KeyDistrictID, KeyMicroareaID, KeyStreetID, KeyExplicitStreet:
			// joylashuv yuqorida hal qilindi
		case KeyRoomsIn:
			out.RoomsIn = lo.Uniq(f.RoomsIn)
		case KeyConditionIn:
			out.ConditionIn = lo.Uniq(f.ConditionIn)
		case KeyPriceMin:
			out.PriceMin = f.PriceMin
		case KeyPriceMax:
			out.PriceMax = f.PriceMax
		case KeyAreaMin:
			out.AreaMin = f.AreaMin
		case KeyAreaMax:
			out.AreaMax = f.AreaMax
		case KeyFloorMin:
			out.FloorMin = f.FloorMin
		case KeyFloorMax:
			out.FloorMax = f.FloorMax
		case KeyFloorsTotalMin:
			out.FloorsTotalMin = f.FloorsTotalMin
		case KeyFloorsTotalMax:
			out.FloorsTotalMax = f.FloorsTotalMax
		case KeyFloorOnlyLast:
			out.FloorOnlyLast = f.FloorOnlyLast
		case KeySection:
			out.Section = f.Section
		case KeySort:
			out.Sort = f.Sort
		}
	}
	return out
}

// Has kalit bo'yicha qiymat haqiqatan borligini qaytaradi (bo'sh ro'yxat,
// nil yoki nol chegara "yo'q" hisoblanadi).
func (c Criteria) Has(key string) bool {
	switch key {
	case KeyDistrictID:
		return len(c.DistrictIDs) > 0
	case KeyMicroareaID:
		return len(c.MicroareaIDs) > 0
	case KeyStreetID:
		return len(c.StreetIDs) > 0
	case KeyExplicitStreet:
		return c.ExplicitStreet
	case KeyRoomsIn:
		return len(c.RoomsIn) > 0
	case KeyConditionIn:
		return len(c.ConditionIn) > 0
	case KeyPriceMin:
		return intSet(c.PriceMin)
	case KeyPriceMax:
		return intSet(c.PriceMax)
	case KeyAreaMin:
		return intSet(c.AreaMin)
	case KeyAreaMax:
		return intSet(c.AreaMax)
	case KeyFloorMin:
		return intSet(c.FloorMin)
	case KeyFloorMax:
		return intSet(c.FloorMax)
	case KeyFloorsTotalMin:
		return intSet(c.FloorsTotalMin)
	case KeyFloorsTotalMax:
		return intSet(c.FloorsTotalMax)
	case KeyFloorOnlyLast:
		return c.FloorOnlyLast
	case KeySection:
		return c.Section != ""
	case KeySort:
		return c.Sort != ""
	}
	return false
}

// HasAny kalitlardan kamida bittasi to'ldirilganligini qaytaradi.
func (c Criteria) HasAny(keys ...string) bool {
	for _, key := range keys {
		if c.Has(key) {
			return true
		}
	}
	return false
}

// IsEmpty qidiruvga yaroqli birorta filtr yo'qligini qaytaradi
// (sort hisobga olinmaydi).
func (c Criteria) IsEmpty() bool {
	return !c.HasAny(
		KeyDistrictID, KeyMicroareaID, KeyStreetID,
		KeyRoomsIn, KeyConditionIn, KeySection,
		KeyPriceMin, KeyPriceMax, KeyAreaMin, KeyAreaMax,
		KeyFloorMin, KeyFloorMax, KeyFloorsTotalMin, KeyFloorsTotalMax,
		KeyFloorOnlyLast,
	)
}

// Payload listings API uchun so'rov tanasini quradi: bo'sh qiymatlar
// tashlanadi, key/limit/offset/sort har doim qo'shiladi.
func (c Criteria) Payload(apiKey string, limit, offset int) map[string]any {
	p := make(map[string]any)
	if len(c.DistrictIDs) > 0 {
		p[KeyDistrictID] = c.DistrictIDs
	}
	if len(c.MicroareaIDs) > 0 {
		p[KeyMicroareaID] = c.MicroareaIDs
	}
	if len(c.StreetIDs) > 0 {
		p[KeyStreetID] = c.StreetIDs
	}
	if c.ExplicitStreet {
		p[KeyExplicitStreet] = true
	}
	if len(c.RoomsIn) > 0 {
		p[KeyRoomsIn] = c.RoomsIn
	}
	if len(c.ConditionIn) > 0 {
		p[KeyConditionIn] = c.ConditionIn
	}
	putInt(p, KeyPriceMin, c.PriceMin)
	putInt(p, KeyPriceMax, c.PriceMax)
	putInt(p, KeyAreaMin, c.AreaMin)
	putInt(p, KeyAreaMax, c.AreaMax)
	putInt(p, KeyFloorMin, c.FloorMin)
	putInt(p, KeyFloorMax, c.FloorMax)
	putInt(p, KeyFloorsTotalMin, c.FloorsTotalMin)
	putInt(p, KeyFloorsTotalMax, c.FloorsTotalMax)
	if c.FloorOnlyLast {
		p[KeyFloorOnlyLast] = true
	}
	if c.Section != "" {
		p[KeySection] = c.Section
	}
	if apiKey != "" {
		p["key"] = apiKey
	}
	p["limit"] = limit
	p["offset"] = offset
	sort := c.Sort
	if sort == "" {
		sort = "newest"
	}
	p[KeySort] = sort
	return p
}

func intSet(p *int) bool {
	return p != nil && *p != 0
}

func putInt(p map[string]any, key string, v *int) {
	if intSet(v) {
		p[key] = *v
	}
}
