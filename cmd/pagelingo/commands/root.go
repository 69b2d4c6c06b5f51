package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/cmd/pagelingo/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "pagelingo",
	Short: "PageLingo - translate PDF documents page by page",
	Long: `PageLingo rasterizes each page of a PDF and translates it through a
vision language model or a plain text translation endpoint, producing an
HTML document that preserves the original layout.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		ui.InitUI(noColor, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
