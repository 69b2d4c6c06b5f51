package commands

import (
	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/cmd/pagelingo/ui"
	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/domain"
)

var (
	setProvider string
	setBaseURL  string
	setModel    string
	setAPIKey   string
	setLang     string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage stored translation settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored translation settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewFileStore(config.DefaultStorePath()).Load()
		if err != nil {
			return err
		}
		ui.Message("provider:    %s", cfg.Provider)
		ui.Message("base_url:    %s", cfg.BaseURL)
		ui.Message("model:       %s", cfg.Model)
		ui.Message("target_lang: %s", cfg.TargetLang)
		if cfg.APIKey != "" {
			ui.Message("api_key:     (set)")
		} else {
			ui.Message("api_key:     (not set)")
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update stored translation settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.NewFileStore(config.DefaultStorePath())
		cfg, err := store.Load()
		if err != nil {
			return err
		}

		if setProvider != "" {
			cfg.Provider = domain.ProviderKind(setProvider)
		}
		if setBaseURL != "" {
			cfg.BaseURL = setBaseURL
		}
		if setModel != "" {
			cfg.Model = setModel
		}
		if setAPIKey != "" {
			cfg.APIKey = setAPIKey
		}
		if setLang != "" {
			cfg.TargetLang = setLang
		}

		cfg = cfg.Normalize()
		if err := store.Save(cfg); err != nil {
			return err
		}
		ui.Success("Settings saved")
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().StringVar(&setProvider, "provider", "", "backend kind: vision or text-endpoint")
	settingsSetCmd.Flags().StringVar(&setBaseURL, "base-url", "", "backend base URL")
	settingsSetCmd.Flags().StringVar(&setModel, "model", "", "model identifier")
	settingsSetCmd.Flags().StringVar(&setAPIKey, "api-key", "", "API key")
	settingsSetCmd.Flags().StringVar(&setLang, "lang", "", "target language")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
