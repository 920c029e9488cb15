package entity

// Listing listings API javobidagi bitta kvartira e'loni. Karta uchun kerakli
// maydonlar ajratib olinadi, qolgan xom javob Raw ichida saqlanadi va
// ko'rsatuv yozuvlariga payload sifatida yoziladi.
type Listing struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Price       string         `json:"price"`
	Address     string         `json:"address"`
	AreaTotal   string         `json:"area_total"`
	Rooms       string         `json:"rooms"`
	Floor       int            `json:"floor"`
	FloorsTotal int            `json:"floors_total"`
	URL         string         `json:"url"`
	PhotoURL    string         `json:"photo_url"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// ShownListing foydalanuvchiga yuborilgan e'lon: dialog ichidagi tartib
// raqami bilan, keyin "1 va 3-variant" degan javoblarni shu raqam orqali
// topamiz.
type ShownListing struct {
	ListingID    int64          `json:"listing_id"`
	DisplayIndex int            `json:"display_index"`
	Title        string         `json:"title"`
	Address      string         `json:"address"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// SearchResult listings API javobi. Har qanday xatoda mijoz bo'sh natija
// qaytaradi, shuning uchun Items nil bo'lishi normal holat.
type SearchResult struct {
	Items     []Listing
	Total     int
	RequestID string
	Raw       []byte
}
