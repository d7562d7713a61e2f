package commands

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"legiscrape/lib/scrapers/legistar"
	"legiscrape/lib/scrapers/legistar/convert"
	"legiscrape/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(billsCmd)
}

var billsCmd = &cobra.Command{
	Use:   "bills --config <jurisdiction.json5>",
	Short: "Scrapes the jurisdiction's legislation search and prints each bill.",
	Run: func(cmd *cobra.Command, args []string) {
		client, cfg := createClient()
		scraper := legistar.NewBillsScraper(client, cfg)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"File #", "Type", "Status", "Title", "Sponsors", "Actions"})

		count := 0
		t1 := time.Now()
		err := scraper.Scrape(cmd.Context(), func(rec legistar.Record) error {
			adapter := convert.BillAdapter{Data: rec}
			bill, err := adapter.Instance()
			if err != nil {
				return err
			}
			if bill == nil {
				return nil
			}
			count++
			t.AppendRow(table.Row{
				bill.Identifier,
				bill.Classification,
				bill.Status,
				bill.Title,
				strings.Join(bill.Sponsors, ", "),
				len(bill.Actions),
			})
			return nil
		})
		if err != nil {
			serviceutil.Fatal("bill scrape failed", err)
		}

		t.Render()
		slog.Info("scraped bills",
			"jurisdiction", cfg.Name,
			"count", count,
			"seconds", time.Since(t1).Seconds(),
		)
	},
}
