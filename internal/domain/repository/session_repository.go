package repository

import (
	"context"

	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

// SessionRepository chat bo'yicha dialog sessiyalarini saqlaydi.
// Redis yoki memory implementatsiyasi ishlatiladi.
type SessionRepository interface {
	// Load sessiyani qaytaradi, topilmasa (nil, nil)
	Load(ctx context.Context, chatID int64) (*entity.Session, error)

	// Save sessiyani yozadi yoki yangilaydi
	Save(ctx context.Context, session *entity.Session) error

	// All barcha sessiyalar (jimlik tekshiruvi uchun)
	All(ctx context.Context) ([]*entity.Session, error)

	// Delete sessiyani o'chiradi
	Delete(ctx context.Context, chatID int64) error
}
