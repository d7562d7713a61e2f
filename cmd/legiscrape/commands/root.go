package commands

import (
	"context"
	"fmt"
	"os"

	"legiscrape/lib/pagecache"
	"legiscrape/lib/scrapers/legistar"
	"legiscrape/lib/serviceutil"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "legiscrape",
	Short: "legiscrape scrapes municipal legislative records off legistar sites.",
}

var (
	configPath string
	cachePath  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the jurisdiction config file.")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "Optional sqlite page cache path.")
	rootCmd.MarkPersistentFlagRequired("config")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createClient() (*legistar.Client, *legistar.Config) {
	cfg, err := legistar.LoadConfig(configPath)
	if err != nil {
		serviceutil.Fatal("failed to load jurisdiction config", err)
	}

	var cache *pagecache.Cache
	if cachePath != "" {
		cache, err = pagecache.Open(cachePath)
		if err != nil {
			serviceutil.Fatal("failed to open page cache", err)
		}
	}

	client, err := legistar.NewClient(legistar.ClientOptions{
		BaseUrl: cfg.BaseUrl,
		Cache:   cache,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}
	return client, cfg
}
