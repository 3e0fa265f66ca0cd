package output

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/shouni/go-clinic-scraper/pkg/types"
)

// SheetName はXLSX出力のシート名です。
const SheetName = "Clinics"

// XLSXCodec は1シートのExcelブックとして読み書きを行います。
type XLSXCodec struct{}

func (XLSXCodec) WriteAll(w io.Writer, records []types.ClinicRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRow(f, i+2, r.Fields()); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("XLSXの書き込みに失敗しました: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}

func (XLSXCodec) ReadAll(r io.Reader) ([]types.ClinicRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("XLSXの読み込みに失敗しました: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("シート %s の読み込みに失敗しました: %w", SheetName, err)
	}
	if len(rows) == 0 || !slices.Equal(rows[0], Header) {
		return nil, fmt.Errorf("見出し行が一致しません")
	}

	records := make([]types.ClinicRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, types.RecordFromFields(row))
	}
	return records, nil
}
