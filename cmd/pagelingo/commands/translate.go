package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/cmd/pagelingo/ui"
	"github.com/pagelingo/pagelingo/internal/cache"
	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/domain"
	"github.com/pagelingo/pagelingo/internal/observability"
	"github.com/pagelingo/pagelingo/internal/pipeline"
	"github.com/pagelingo/pagelingo/internal/provider"
	"github.com/pagelingo/pagelingo/internal/render"
	"github.com/pagelingo/pagelingo/internal/session"
	"github.com/pagelingo/pagelingo/internal/viewer"
)

var (
	translateOutput     string
	translateLang       string
	translateProvider   string
	translateBaseURL    string
	translateModel      string
	translateAPIKey     string
	translateSaveConfig bool
)

var translateCmd = &cobra.Command{
	Use:   "translate <pdf-file>",
	Short: "Translate a PDF document to HTML",
	Long: `Translate every page of a PDF document and write the result as a
standalone HTML file next to the input (or to --output).`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "output HTML path")
	translateCmd.Flags().StringVarP(&translateLang, "lang", "l", "", "target language")
	translateCmd.Flags().StringVar(&translateProvider, "provider", "", "backend kind: vision or text-endpoint")
	translateCmd.Flags().StringVar(&translateBaseURL, "base-url", "", "backend base URL")
	translateCmd.Flags().StringVar(&translateModel, "model", "", "model identifier for the vision backend")
	translateCmd.Flags().StringVar(&translateAPIKey, "api-key", "", "API key (overrides stored settings and env)")
	translateCmd.Flags().BoolVar(&translateSaveConfig, "save-config", false, "persist the effective settings for future runs")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       logLevel(cfg),
		Format:      cfg.Observability.LogFormat,
		ServiceName: "pagelingo",
	})

	transCfg, settingsStore, err := effectiveTranslationConfig(cfg)
	if err != nil {
		return err
	}

	pdfPath := args[0]
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}
	if err := render.ValidateDocumentBytes(data); err != nil {
		return err
	}

	prov, err := provider.ForConfig(transCfg, logger)
	if err != nil {
		return err
	}

	if translateSaveConfig {
		if err := settingsStore.Save(transCfg); err != nil {
			ui.Warning("could not persist settings: %v", err)
		}
	}

	cacheClient := newCacheClient(cfg, logger)
	defer cacheClient.Close()

	progress := newProgressNotifier("Loading document...")
	orch := pipeline.New(pipeline.Options{
		Renderer: render.NewRenderer(render.Options{
			MaxDimension: cfg.Render.MaxDimension,
			JPEGQuality:  cfg.Render.JPEGQuality,
		}),
		Provider: prov,
		Config:   transCfg,
		Retry: provider.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Logger:      logger,
		},
		Cache:    cacheClient,
		CacheTTL: cfg.Cache.TTL,
		Notifier: progress,
		Logger:   logger,
	})

	ui.Info("Translating %s to %s via %s", filepath.Base(pdfPath), transCfg.TargetLang, prov.Name())
	progress.start()

	if err := orch.ProcessDocument(ctx, data); err != nil {
		progress.finish()
		return fmt.Errorf("translate document: %w", err)
	}
	progress.finish()

	snap := orch.Session()
	html, err := viewer.RenderDocument(snap)
	if err != nil {
		return err
	}

	outPath := translateOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".html"
	}
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	reportOutcome(snap, outPath)
	return nil
}

// effectiveTranslationConfig layers flag overrides on top of stored
// settings and the app config.
func effectiveTranslationConfig(cfg *config.Config) (domain.TranslationConfig, domain.ConfigStore, error) {
	settingsStore := config.NewFileStore(config.DefaultStorePath())
	transCfg, err := settingsStore.Load()
	if err != nil {
		return domain.TranslationConfig{}, nil, err
	}

	// The app config wins over stored settings, flags win over both.
	if cfg.Translation.BaseURL != "" {
		transCfg = cfg.Translation
	}
	if translateProvider != "" {
		transCfg.Provider = domain.ProviderKind(translateProvider)
	}
	if translateBaseURL != "" {
		transCfg.BaseURL = translateBaseURL
	}
	if translateModel != "" {
		transCfg.Model = translateModel
	}
	if translateAPIKey != "" {
		transCfg.APIKey = translateAPIKey
	}
	if translateLang != "" {
		transCfg.TargetLang = translateLang
	}
	transCfg = transCfg.Normalize()

	if err := transCfg.Validate(); err != nil {
		return domain.TranslationConfig{}, nil, err
	}
	return transCfg, settingsStore, nil
}

func newCacheClient(cfg *config.Config, logger *observability.Logger) cache.Client {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err == nil {
			return client
		}
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}

func logLevel(cfg *config.Config) string {
	if verbose {
		return "debug"
	}
	return cfg.Observability.LogLevel
}

func reportOutcome(snap session.Snapshot, outPath string) {
	failed := 0
	for _, page := range snap.Pages {
		if page.Status == session.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		ui.Warning("%d of %d pages failed to translate", failed, snap.TotalPages)
	}
	ui.Success("Wrote %s", outPath)
}

// progressNotifier drives the terminal progress display from session
// updates: a spinner while the document loads, then the page bar once
// the page count is known.
type progressNotifier struct {
	spin *ui.Spinner
	bar  *ui.ProgressBar
}

func newProgressNotifier(loadMessage string) *progressNotifier {
	return &progressNotifier{spin: ui.NewSpinner(loadMessage)}
}

func (n *progressNotifier) start() {
	if n.spin != nil {
		n.spin.Start()
	}
}

func (n *progressNotifier) SessionUpdated(snap session.Snapshot) {
	n.stopSpinner()
	if snap.TotalPages == 0 {
		return
	}
	if n.bar == nil {
		n.bar = ui.NewProgressBar(int64(snap.TotalPages), "Translating pages")
	}
	n.bar.Set(int64(snap.Progress().Current))
}

func (n *progressNotifier) finish() {
	n.stopSpinner()
	if n.bar != nil {
		n.bar.Finish()
	}
}

func (n *progressNotifier) stopSpinner() {
	if n.spin != nil {
		n.spin.Stop()
		n.spin = nil
	}
}
