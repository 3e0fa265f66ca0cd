package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/go-clinic-scraper/internal/pipeline"
	"github.com/shouni/go-clinic-scraper/pkg/output"
	"github.com/shouni/go-clinic-scraper/pkg/scraper"
)

var (
	outputPath  string // --output
	outputFmt   string // --format
	concurrency int    // --concurrency
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "全リージョンのクリニック情報を収集し、ファイルに書き出します",
	Long: `各リージョンのディレクトリページからクリニックを列挙し、詳細ページから住所・メール・電話番号・
サービスを抽出して CSV または XLSX に書き出します。個々のページの失敗は集計されるだけで処理は継続します。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		defer syncLogger()

		// 1. 出力形式の決定 (フラグ優先、なければ拡張子から判定)
		var format output.Format
		if outputFmt != "" {
			f, err := output.ParseFormat(outputFmt)
			if err != nil {
				return err
			}
			format = f
		}

		// 2. 依存性の初期化
		orch, err := pipeline.NewOrchestrator(appConfig, pipeline.Settings{
			OutputPath:  outputPath,
			Format:      format,
			Concurrency: concurrency,
			Out:         cmd.OutOrStdout(),
			Logger:      appLogger,
		})
		if err != nil {
			return err
		}

		// 3. Ctrl+C で取得済みの分だけ書き出して終了する
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 4. メインロジックの実行
		if _, err := orch.Run(ctx); err != nil {
			return fmt.Errorf("スクレイピングに失敗しました: %w", err)
		}
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"出力ファイルのパス (省略時は設定ファイルの output_path)")
	scrapeCmd.Flags().StringVarP(&outputFmt, "format", "f", "",
		"出力形式 (csv|xlsx)。省略時は拡張子から判定")
	scrapeCmd.Flags().IntVarP(&concurrency, "concurrency", "c",
		scraper.DefaultMaxConcurrency,
		fmt.Sprintf("詳細ページ取得の最大並列数 (デフォルト: %d)", scraper.DefaultMaxConcurrency))
}
