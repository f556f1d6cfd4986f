package service

import (
	"github.com/xuri/excelize/v2"

	bookingmodel "wavehouse-backend/internal/domains/booking/model"
)

const exportSheet = "Bookings"

var exportHeaders = []string{
	"Reference",
	"Date",
	"Start",
	"End",
	"Service",
	"Status",
	"Client",
	"Email",
	"Phone",
	"Estimated Price",
	"Notes",
	"Created At",
}

func buildBookingsWorkbook(bookings []bookingmodel.BookingWithClient) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	// Row 1: Header
	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		f.SetCellStyle(exportSheet, "A1", last, headerStyle)
	}

	for i, b := range bookings {
		rowNum := i + 2
		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, rowNum)
			return name
		}

		f.SetCellValue(exportSheet, cell(1), b.Reference)
		f.SetCellValue(exportSheet, cell(2), bookingmodel.FormatDate(b.Date))
		f.SetCellValue(exportSheet, cell(3), b.StartTime.String())
		f.SetCellValue(exportSheet, cell(4), b.EndTime.String())
		f.SetCellValue(exportSheet, cell(5), b.ServiceType.Title())
		f.SetCellValue(exportSheet, cell(6), string(b.Status))
		f.SetCellValue(exportSheet, cell(7), b.ClientName)
		f.SetCellValue(exportSheet, cell(8), b.ClientEmail)
		f.SetCellValue(exportSheet, cell(9), b.ClientPhone)
		f.SetCellValue(exportSheet, cell(10), b.EstimatedPrice.InexactFloat64())
		f.SetCellValue(exportSheet, cell(11), b.Notes)
		f.SetCellValue(exportSheet, cell(12), b.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
