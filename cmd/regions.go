package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shouni/go-clinic-scraper/internal/pipeline"
	"github.com/shouni/go-clinic-scraper/pkg/types"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "リージョンページから発見したクリニックの一覧を表示します (詳細ページは取得しません)",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		defer syncLogger()

		orch, err := pipeline.NewOrchestrator(appConfig, pipeline.Settings{
			Out:    cmd.ErrOrStderr(),
			Logger: appLogger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		renderLinks(cmd.OutOrStdout(), orch.ListAll(ctx))
		return nil
	},
}

func renderLinks(w io.Writer, links []types.ClinicLink) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Name", "URL"})
	for i, l := range links {
		t.AppendRow(table.Row{i + 1, l.Name, l.URL})
	}
	t.AppendFooter(table.Row{"", "Total", len(links)})
	t.Render()
}
