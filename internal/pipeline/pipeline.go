// Package pipeline runs the page translation loop: rasterize each page,
// send it to the configured backend, and record the outcome on the
// document session. Pages are processed strictly in order and a failed
// page never aborts the document.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/pagelingo/pagelingo/internal/cache"
	"github.com/pagelingo/pagelingo/internal/domain"
	"github.com/pagelingo/pagelingo/internal/observability"
	"github.com/pagelingo/pagelingo/internal/provider"
	"github.com/pagelingo/pagelingo/internal/session"
)

// Notifier receives a session snapshot after every state change.
type Notifier interface {
	SessionUpdated(snap session.Snapshot)
}

// Store persists session snapshots. Implemented by store.SessionRepository.
type Store interface {
	Save(ctx context.Context, snap session.Snapshot) error
}

// Options configures an Orchestrator. Renderer, Provider, and Config are
// required; everything else is optional.
type Options struct {
	Renderer domain.Renderer
	Provider domain.Provider
	Config   domain.TranslationConfig
	Retry    provider.RetryConfig
	Cache    cache.Client
	CacheTTL time.Duration
	Store    Store
	Notifier Notifier
	Logger   *observability.Logger
}

// Orchestrator drives one document session at a time.
type Orchestrator struct {
	renderer domain.Renderer
	provider domain.Provider
	cfg      domain.TranslationConfig
	retry    provider.RetryConfig
	cache    cache.Client
	cacheTTL time.Duration
	store    Store
	notifier Notifier
	logger   *observability.Logger
	sess     *session.DocumentSession
}

// New creates an orchestrator with a fresh session.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = observability.Nop()
	}
	retry := opts.Retry
	if retry.MaxAttempts == 0 {
		retry = provider.DefaultRetryConfig()
	}
	if retry.Logger == nil {
		retry.Logger = logger
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	sess := session.New()
	return &Orchestrator{
		renderer: opts.Renderer,
		provider: opts.Provider,
		cfg:      opts.Config.Normalize(),
		retry:    retry,
		cache:    opts.Cache,
		cacheTTL: cacheTTL,
		store:    opts.Store,
		notifier: opts.Notifier,
		logger:   logger.WithComponent("pipeline").WithSession(sess.ID()),
		sess:     sess,
	}
}

// Session returns the current session snapshot.
func (o *Orchestrator) Session() session.Snapshot {
	return o.sess.Snapshot()
}

// SessionID returns the session identifier.
func (o *Orchestrator) SessionID() string {
	return o.sess.ID()
}

// Reset discards all page results and returns the session to idle.
func (o *Orchestrator) Reset() {
	o.sess.Reset()
	o.publish(context.Background())
}

// ProcessDocument translates every page of the given PDF in order. The
// returned error reflects document-level failures only; individual page
// failures are recorded on the session and do not stop the run.
func (o *Orchestrator) ProcessDocument(ctx context.Context, data []byte) error {
	doc, err := o.renderer.LoadDocument(ctx, data)
	if err != nil {
		o.logger.Error().Err(err).Msg("failed to load document")
		o.sess.Fail(err.Error())
		o.publish(ctx)
		return err
	}
	defer doc.Close()

	total := doc.PageCount()
	o.sess.Begin(total)
	o.publish(ctx)
	o.logger.Info().Int("pages", total).Msg("document loaded")

	if total == 0 {
		o.sess.Complete()
		o.publish(ctx)
		return nil
	}

	for pageNum := 1; pageNum <= total; pageNum++ {
		if err := ctx.Err(); err != nil {
			o.sess.Fail(err.Error())
			o.publish(ctx)
			return err
		}
		if err := o.processPage(ctx, doc, pageNum); err != nil {
			// Only cancellation stops the loop.
			o.sess.Fail(err.Error())
			o.publish(ctx)
			return err
		}
	}

	o.sess.Complete()
	o.publish(ctx)
	o.logger.Info().Msg("document completed")
	return nil
}

// processPage handles one page end to end. A non-nil return means the
// run context was canceled; page-level failures are absorbed here.
func (o *Orchestrator) processPage(ctx context.Context, doc domain.Document, pageNum int) error {
	img, err := doc.RenderPage(ctx, pageNum)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Warn().Err(err).Int("page", pageNum).Msg("render failed")
		o.failPage(ctx, pageNum, err)
		return nil
	}

	task := domain.PageTask{PageNumber: pageNum, ImageDataURL: img.DataURL}
	if o.cfg.RequiresText() {
		text, err := doc.ExtractText(ctx, pageNum)
		if err != nil {
			o.logger.Warn().Err(err).Int("page", pageNum).Msg("text extraction failed")
			o.failPage(ctx, pageNum, err)
			return nil
		}
		task.Text = text
	}

	if err := o.sess.MarkTranslating(pageNum, img.DataURL); err != nil {
		return err
	}
	o.publish(ctx)

	key := o.cacheKey(task)
	if html, ok := o.cacheGet(ctx, key); ok {
		o.logger.Debug().Int("page", pageNum).Msg("cache hit")
		o.completePage(ctx, pageNum, html)
		return nil
	}

	html, err := provider.WithRetry(ctx, o.retry, func(ctx context.Context) (string, error) {
		return o.provider.Translate(ctx, task)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Warn().Err(err).Int("page", pageNum).Msg("translation failed")
		o.failPage(ctx, pageNum, err)
		return nil
	}

	o.cacheSet(ctx, key, html)
	o.completePage(ctx, pageNum, html)
	return nil
}

func (o *Orchestrator) completePage(ctx context.Context, pageNum int, html string) {
	if err := o.sess.MarkCompleted(pageNum, html); err != nil {
		o.logger.Error().Err(err).Int("page", pageNum).Msg("invalid page transition")
		return
	}
	o.publish(ctx)
}

func (o *Orchestrator) failPage(ctx context.Context, pageNum int, cause error) {
	if err := o.sess.MarkFailed(pageNum, cause.Error()); err != nil {
		o.logger.Error().Err(err).Int("page", pageNum).Msg("invalid page transition")
		return
	}
	o.publish(ctx)
}

func (o *Orchestrator) cacheKey(task domain.PageTask) string {
	payload := task.ImageDataURL
	if o.cfg.RequiresText() {
		payload = task.Text
	}
	return cache.TranslationKey(o.provider.Name(), o.cfg.Model, o.cfg.TargetLang, payload)
}

func (o *Orchestrator) cacheGet(ctx context.Context, key string) (string, bool) {
	if o.cache == nil {
		return "", false
	}
	val, err := o.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			o.logger.Warn().Err(err).Msg("cache get failed")
		}
		return "", false
	}
	return string(val), true
}

func (o *Orchestrator) cacheSet(ctx context.Context, key, html string) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Set(ctx, key, []byte(html), o.cacheTTL); err != nil {
		o.logger.Warn().Err(err).Msg("cache set failed")
	}
}

// publish persists the current snapshot and fans it out to the notifier.
func (o *Orchestrator) publish(ctx context.Context) {
	snap := o.sess.Snapshot()
	if o.store != nil {
		if err := o.store.Save(ctx, snap); err != nil {
			o.logger.Warn().Err(err).Msg("failed to persist session")
		}
	}
	if o.notifier != nil {
		o.notifier.SessionUpdated(snap)
	}
}
