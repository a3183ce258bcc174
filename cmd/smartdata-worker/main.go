package main

import (
	"fmt"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/susom/smartdata-worker/worker"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Variables from the environment take precedence over the .env file
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "smartdata-worker",
		Short: "Syncs REDCap record values to Epic SmartData elements",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(readCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled syncs and serve the health check",
		Run: func(cmd *cobra.Command, args []string) {
			worker.New().Run()
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a single sync of all enabled projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, ran, err := worker.RunSync(ctx)
			if err != nil {
				return err
			}
			if !ran {
				return fmt.Errorf("sync is already running in another process")
			}
			return printJSON(cmd, report)
		},
	}
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <entity-id> [smartdata-id]",
		Short: "Print the SmartData values of a patient",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			smartDataID := ""
			if len(args) > 1 {
				smartDataID = args[1]
			}

			response, err := worker.ReadValues(cmd.Context(), args[0], smartDataID)
			if err != nil {
				return err
			}
			if response.Body == nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), response.Raw)
				return err
			}
			return printJSON(cmd, response.Body)
		},
	}
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
