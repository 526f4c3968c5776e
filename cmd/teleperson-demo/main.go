package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "teleperson-demo",
		Short: "Generate branded AI chat demo pages from a company URL",
		Long:  "Teleperson demo generator: researches a company, publishes its chatbot prompt and serves a demo page with a live chat widget.",
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
