package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/shouni/go-clinic-scraper/pkg/types"
)

// CSVCodec はRFC 4180形式 (カンマ区切り、必要に応じて引用符付き) の読み書きを行います。
type CSVCodec struct{}

func (CSVCodec) WriteAll(w io.Writer, records []types.ClinicRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (CSVCodec) ReadAll(r io.Reader) ([]types.ClinicRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("見出し行がありません")
	}
	if err != nil {
		return nil, fmt.Errorf("CSVの読み込みに失敗しました: %w", err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("見出し行が一致しません: %v", header)
	}

	var records []types.ClinicRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSVの読み込みに失敗しました: %w", err)
		}
		records = append(records, types.RecordFromFields(row))
	}
	return records, nil
}
