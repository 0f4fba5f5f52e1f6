package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"AnesthUpdate/internal/app"
	"AnesthUpdate/internal/config"
	"AnesthUpdate/internal/corpus"
	"AnesthUpdate/internal/logging"
)

func newApp() *app.Application {
	cfg := config.Load()
	return app.New(cfg, logging.New(cfg.Logging.Level))
}

// BatchCmd returns the ingestion-run command.
func BatchCmd() *cobra.Command {
	var daemon bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Fetch, summarize, persist, and notify new papers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application := newApp()
			if daemon {
				return application.RunDaemon(cmd.Context())
			}
			return application.RunBatch(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&daemon, "daemon", false, "keep running on the configured interval")
	return cmd
}

// RepairCmd returns the corpus-cleanup command.
func RepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Deduplicate the corpus and re-summarize failed records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := newApp().RunRepair(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("duplicates removed: %d\n", report.DuplicatesRemoved)
			fmt.Printf("records fixed:      %d\n", report.Fixed)
			fmt.Printf("skipped (no abstract): %d\n", report.SkippedNoAbstract)
			return nil
		},
	}
}

// ServeCmd returns the dashboard API command.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only browsing API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newApp().RunServe(cmd.Context())
		},
	}
}

// StatusCmd returns a corpus statistics command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show corpus statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			papers, err := newApp().Papers().Load()
			if err != nil {
				return err
			}

			header := color.New(color.Bold)
			header.Println("Anesth Update corpus")
			fmt.Printf("records: %d\n", len(papers))

			if len(papers) == 0 {
				return nil
			}

			sentinels := 0
			for _, p := range papers {
				if p.IsSummaryError() {
					sentinels++
				}
			}
			_, duplicates := corpus.Deduplicate(papers)

			if sentinels > 0 {
				color.Yellow("summary errors: %d (run `anesthupdate repair`)", sentinels)
			} else {
				fmt.Println("summary errors: 0")
			}
			if duplicates > 0 {
				color.Yellow("duplicate titles: %d (run `anesthupdate repair`)", duplicates)
			} else {
				fmt.Println("duplicate titles: 0")
			}

			part, err := corpus.NewPartition(papers)
			if err != nil {
				return err
			}
			fmt.Printf("latest: %s (%s)\n", part.Latest.TitleJa, part.Latest.RecencyKey())
			fmt.Printf("recent window: %d, archive: %d\n", len(part.Recent), len(part.Archive))

			grouped := corpus.ArchiveByMonth(part.Archive)
			for _, month := range corpus.MonthKeys(grouped) {
				fmt.Printf("  %s: %d\n", month, len(grouped[month]))
			}
			return nil
		},
	}
}
