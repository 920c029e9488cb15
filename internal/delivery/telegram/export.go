package telegram

import (
	"bytes"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tira-ua/realtor-bot/internal/domain/repository"
)

// buildViewingRequestsXLSX arizalar ro'yxatidan excel fayl yasaydi.
func buildViewingRequestsXLSX(records []repository.ViewingRequestRecord) ([]byte, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, header := range viewingRequestHeaders() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, rec := range records {
		values := viewingRequestValues(rec)
		rowIdx := i + 2
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func viewingRequestHeaders() []string {
	return []string{
		"Дата",
		"Діалог",
		"Telegram ID",
		"Ім'я",
		"Телефон",
		"ID об'єкта",
		"Назва",
		"Адреса",
	}
}

func viewingRequestValues(rec repository.ViewingRequestRecord) []interface{} {
	return []interface{}{
		formatExportTime(rec.CreatedAt),
		rec.DialogID,
		rec.TelegramID,
		rec.Name,
		rec.Phone,
		rec.ListingID,
		rec.Title,
		rec.Address,
	}
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("2006-01-02 15:04:05")
}
