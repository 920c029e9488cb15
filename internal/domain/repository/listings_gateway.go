package repository

import (
	"context"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

// ListingsGateway tashqi e'lonlar bazasiga so'rov yuboradi. Xato hech qachon
// dialogga chiqmaydi: transport yoki parse muammosida bo'sh natija qaytadi,
// sabab faqat logda qoladi.
type ListingsGateway interface {
	// Search payload bo'yicha e'lonlarni qidiradi
	Search(ctx context.Context, payload map[string]any) entity.SearchResult
}

// TableSource sozlama jadvallarini tashqi manbadan o'qiydi (Google Sheets).
type TableSource interface {
	// FetchTable worksheet qatorlarini sarlavha->qiymat map ko'rinishida qaytaradi
	FetchTable(ctx context.Context, name string) ([]map[string]string, error)
}
