package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"AnesthUpdate/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "anesthupdate",
		Short: "Daily anesthesiology literature digest",
		Long: `AnesthUpdate fetches recent anesthesiology papers from PubMed,
summarizes their clinical relevance, notifies subscribers over LINE, and
serves a read-only browsing API over the accumulated corpus.`,
	}

	rootCmd.AddCommand(cli.BatchCmd())
	rootCmd.AddCommand(cli.RepairCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
