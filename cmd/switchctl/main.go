package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

func Execute() error {
	rootCmd := &cobra.Command{
		Use:               "switchctl",
		Short:             "Operator CLI for the cardswitch payment services",
		Long:              `A CLI for exercising the cardswitch services: initiate payments through the PSP and inspect transaction state across the chain.`,
		DisableAutoGenTag: true,
		Version:           "1.0.0",
	}

	rootCmd.PersistentFlags().StringVar(&pspURL, "psp-url", envOr("SWITCHCTL_PSP_URL", "http://localhost:8080"), "PSP gateway base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", envOr("SWITCHCTL_API_KEY", ""), "merchant API key")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Display the version of switchctl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("switchctl version 1.0.0")
		},
	})

	rootCmd.AddCommand(newPayCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd.Execute()
}

var (
	pspURL string
	apiKey string
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
