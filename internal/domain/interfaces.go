package domain

import "context"

// Document is an open, renderable document produced by a Renderer.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// RenderPage rasterizes one page (1-based) to a JPEG data URL,
	// downscaled so neither dimension exceeds the renderer's cap.
	RenderPage(ctx context.Context, pageNumber int) (PageImage, error)

	// ExtractText returns the plain text of one page (1-based).
	// Used only by the text-endpoint provider.
	ExtractText(ctx context.Context, pageNumber int) (string, error)

	// Close releases document resources.
	Close() error
}

// Renderer loads raw document bytes into a renderable Document.
type Renderer interface {
	LoadDocument(ctx context.Context, data []byte) (Document, error)
}

// Provider turns a page payload into a translated HTML fragment.
type Provider interface {
	// Name identifies the backend variant.
	Name() string

	// Translate performs one backend call for one page. Failures carry a
	// fatal-vs-retryable classification for the retry engine.
	Translate(ctx context.Context, task PageTask) (string, error)
}

// ConfigStore persists the user's translation settings between runs.
type ConfigStore interface {
	Load() (TranslationConfig, error)
	Save(cfg TranslationConfig) error
}
