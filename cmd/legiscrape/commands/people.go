package commands

import (
	"log/slog"
	"os"
	"time"

	"legiscrape/lib/civic"
	"legiscrape/lib/scrapers/legistar"
	"legiscrape/lib/scrapers/legistar/convert"
	"legiscrape/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(peopleCmd)
}

var peopleCmd = &cobra.Command{
	Use:   "people --config <jurisdiction.json5>",
	Short: "Scrapes the jurisdiction's member listing and prints each person.",
	Run: func(cmd *cobra.Command, args []string) {
		client, cfg := createClient()
		scraper := legistar.NewPeopleScraper(client, cfg)
		converter := convert.NewPersonConverter(cfg)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Name", "District", "Party", "Memberships"})

		people, memberships := 0, 0
		t1 := time.Now()
		err := scraper.Scrape(cmd.Context(), func(rec legistar.Record) error {
			objects, err := converter.Convert(rec)
			if err != nil {
				return err
			}

			var person *civic.Person
			own := 0
			for _, object := range objects {
				switch v := object.(type) {
				case *civic.Person:
					person = v
				case *civic.Membership:
					own++
				}
			}
			if person == nil {
				return nil
			}
			people++
			memberships += own
			t.AppendRow(table.Row{person.Name, person.District, person.Party, own})
			return nil
		})
		if err != nil {
			serviceutil.Fatal("people scrape failed", err)
		}

		t.Render()
		slog.Info("scraped people",
			"jurisdiction", cfg.Name,
			"people", people,
			"memberships", memberships,
			"seconds", time.Since(t1).Seconds(),
		)
	},
}
