package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type flags struct {
	apiPort string
	uiPort  string
	backend string
	apiURL  string
}

func main() {
	var f flags

	rootCmd := &cobra.Command{
		Use:           "lexai",
		Short:         "Summarize YouTube videos and answer questions about them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Run the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd.Context(), f)
		},
	}
	apiCmd.Flags().StringVar(&f.apiPort, "port", "", "API listen port (default: from API_PORT env)")

	uiCmd := &cobra.Command{
		Use:   "ui",
		Short: "Run the web UI against a local or remote summarizer",
		Long: `Run the web UI.

With --backend=local the UI fetches transcripts and calls the language model
itself. With --backend=remote it forwards every request to a running "lexai api".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), f)
		},
	}
	uiCmd.Flags().StringVar(&f.uiPort, "port", "", "UI listen port (default: from UI_PORT env)")
	uiCmd.Flags().StringVar(&f.backend, "backend", "", "Summarizer backend: local or remote (default: from UI_BACKEND env)")
	uiCmd.Flags().StringVar(&f.apiURL, "api-url", "", "API base URL for the remote backend (default: from API_URL env)")

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Run the API and the UI in one process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(cmd.Context(), f)
		},
	}
	allCmd.Flags().StringVar(&f.apiPort, "api-port", "", "API listen port (default: from API_PORT env)")
	allCmd.Flags().StringVar(&f.uiPort, "ui-port", "", "UI listen port (default: from UI_PORT env)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lexai %s\n", version)
		},
	}

	rootCmd.AddCommand(apiCmd, uiCmd, allCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
