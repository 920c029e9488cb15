package telegram

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tira-ua/realtor-bot/internal/domain/repository"
)

func TestBuildViewingRequestsXLSX(t *testing.T) {
	records := []repository.ViewingRequestRecord{
		{
			CreatedAt:  time.Date(2025, 10, 7, 12, 30, 0, 0, time.UTC),
			DialogID:   55,
			TelegramID: 42,
			Name:       "Олег",
			Phone:      "+380671234567",
			ListingID:  101,
			Title:      "2-кімн. квартира",
			Address:    "вул. Сумська, 12",
		},
		{
			DialogID:   56,
			TelegramID: 43,
			Name:       "Ірина",
			ListingID:  102,
		},
	}

	data, err := buildViewingRequestsXLSX(records)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Дата", header)

	name, err := f.GetCellValue(sheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "Олег", name)

	phone, err := f.GetCellValue(sheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "+380671234567", phone)

	address, err := f.GetCellValue(sheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "вул. Сумська, 12", address)

	// ikkinchi qator: sana bo'sh, ism to'ldirilgan
	emptyDate, err := f.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "", emptyDate)

	secondName, err := f.GetCellValue(sheet, "D3")
	require.NoError(t, err)
	assert.Equal(t, "Ірина", secondName)
}

func TestFormatExportTime(t *testing.T) {
	assert.Equal(t, "", formatExportTime(time.Time{}))
	assert.NotEmpty(t, formatExportTime(time.Now()))
}
