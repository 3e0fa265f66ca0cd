package cmd

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shouni/go-clinic-scraper/pkg/output"
	"github.com/shouni/go-clinic-scraper/pkg/types"
)

var showFormat string // --format

var showCmd = &cobra.Command{
	Use:   "show [FILE]",
	Short: "書き出し済みのファイルを表形式で表示します",
	Long:  `scrape が書き出した CSV/XLSX を読み込んで表示します。FILE を省略した場合は設定ファイルの output_path を読み込みます。`,
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		defer syncLogger()

		path := appConfig.OutputPath
		if len(args) == 1 {
			path = args[0]
		}

		format := output.FormatFromPath(path)
		if showFormat != "" {
			f, err := output.ParseFormat(showFormat)
			if err != nil {
				return err
			}
			format = f
		}

		records, err := output.ReadFile(path, format)
		if err != nil {
			return err
		}
		renderRecords(cmd.OutOrStdout(), records)
		return nil
	},
}

func renderRecords(w io.Writer, records []types.ClinicRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{}
	for _, h := range output.Header {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for _, r := range records {
		row := table.Row{}
		for _, f := range r.Fields() {
			// 複数行の住所はセル内で1行にまとめる
			row = append(row, strings.ReplaceAll(f, "\n", ", "))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "",
		"入力形式 (csv|xlsx)。省略時は拡張子から判定")
}
