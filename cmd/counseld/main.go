package main

import (
	"fmt"
	"os"

	"github.com/clausewise/counselai/internal/cli"
	"github.com/clausewise/counselai/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "counseld",
		Short: "Counsel daemon and CLI",
		Long:  "Counsel daemon for running the API server and managing company assistant agents",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.AgentCmd())
	rootCmd.AddCommand(admin.AskCmd())
	rootCmd.AddCommand(admin.IngestCmd())
	rootCmd.AddCommand(admin.SweepCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
