// Package output は、抽出したクリニックの一覧を区切りテキストやExcelファイルとして書き出します。
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-clinic-scraper/pkg/types"
)

// Format は出力形式です。
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Header は出力ファイルの見出し行です。
var Header = []string{"Name of Clinic", "Address", "Email", "Phone", "Services"}

// Writer はレコード一覧をまとめて書き出します。
type Writer interface {
	WriteAll(w io.Writer, records []types.ClinicRecord) error
}

// Reader は Writer が書き出した内容を読み戻します。
type Reader interface {
	ReadAll(r io.Reader) ([]types.ClinicRecord, error)
}

// Codec は同じ形式の Writer と Reader の組です。
type Codec interface {
	Writer
	Reader
}

// ParseFormat は文字列を Format に変換します。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("未対応の出力形式です: %q", s)
	}
}

// FormatFromPath はファイルの拡張子から形式を判定します。判定できない場合はCSVです。
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// NewCodec は指定された形式の Codec を返します。
func NewCodec(format Format) (Codec, error) {
	switch format {
	case FormatCSV:
		return CSVCodec{}, nil
	case FormatXLSX:
		return XLSXCodec{}, nil
	default:
		return nil, fmt.Errorf("未対応の出力形式です: %q", format)
	}
}

// WriteFile は path にファイルを作成し、レコードをまとめて書き出します。
func WriteFile(path string, format Format, records []types.ClinicRecord) (err error) {
	codec, err := NewCodec(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("出力ファイルの作成に失敗しました: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("出力ファイルのクローズに失敗しました: %w", cerr)
		}
	}()

	if err := codec.WriteAll(f, records); err != nil {
		return fmt.Errorf("出力ファイルへの書き込みに失敗しました (%s): %w", path, err)
	}
	return nil
}

// ReadFile は path のファイルを形式に従って読み込みます。
func ReadFile(path string, format Format) ([]types.ClinicRecord, error) {
	codec, err := NewCodec(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ファイルを開けませんでした: %w", err)
	}
	defer f.Close()

	return codec.ReadAll(f)
}

// FileSink は1つのファイルへレコードをまとめて書き出す書き出し先です。
// ファイルは Save が呼ばれた時点で初めて作成されます。
type FileSink struct {
	Path   string
	Format Format
}

// NewFileSink は FileSink を生成します。format が空の場合は拡張子から判定します。
func NewFileSink(path string, format Format) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("出力先のパスが指定されていません")
	}
	if format == "" {
		format = FormatFromPath(path)
	}
	if _, err := NewCodec(format); err != nil {
		return nil, err
	}
	return &FileSink{Path: path, Format: format}, nil
}

func (s *FileSink) Save(records []types.ClinicRecord) error {
	return WriteFile(s.Path, s.Format, records)
}

func (s *FileSink) Location() string {
	return s.Path
}
