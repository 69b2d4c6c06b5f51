// Package render implements the PDF rendering collaborator using go-fitz.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"

	"github.com/pagelingo/pagelingo/internal/domain"
)

const (
	// DefaultMaxDimension caps the longer side of a rendered page.
	// Pages larger than this are downscaled, preserving aspect ratio.
	DefaultMaxDimension = 768

	// DefaultJPEGQuality keeps page payloads small enough to embed in
	// backend requests.
	DefaultJPEGQuality = 60

	baseDPI = 72.0
)

// Options configures page rasterization.
type Options struct {
	MaxDimension int
	JPEGQuality  int
}

// Renderer loads PDF documents with go-fitz.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer with the given options; zero values fall
// back to the defaults.
func NewRenderer(opts Options) *Renderer {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	return &Renderer{opts: opts}
}

// LoadDocument opens a PDF from raw bytes.
func (r *Renderer) LoadDocument(ctx context.Context, data []byte) (domain.Document, error) {
	if err := ValidateDocumentBytes(data); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, domain.DocumentError("failed to open PDF", err)
	}

	return &document{doc: doc, opts: r.opts}, nil
}

// document wraps an open fitz document.
type document struct {
	doc  *fitz.Document
	opts Options
}

// PageCount returns the number of pages.
func (d *document) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes one page (1-based) to a JPEG data URL, downscaled
// so neither dimension exceeds the configured cap.
func (d *document) RenderPage(ctx context.Context, pageNumber int) (domain.PageImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.PageImage{}, err
	}
	if pageNumber < 1 || pageNumber > d.doc.NumPage() {
		return domain.PageImage{}, domain.RenderError(fmt.Sprintf("page %d out of range", pageNumber), nil)
	}
	idx := pageNumber - 1

	bound, err := d.doc.Bound(idx)
	if err != nil {
		return domain.PageImage{}, domain.RenderError(fmt.Sprintf("failed to measure page %d", pageNumber), err)
	}

	// Bound is in points at 72 DPI. Downscale only, never upscale.
	dpi := baseDPI
	longSide := bound.Dx()
	if bound.Dy() > longSide {
		longSide = bound.Dy()
	}
	if longSide > d.opts.MaxDimension {
		dpi = baseDPI * float64(d.opts.MaxDimension) / float64(longSide)
	}

	img, err := d.doc.ImageDPI(idx, dpi)
	if err != nil {
		return domain.PageImage{}, domain.RenderError(fmt.Sprintf("failed to render page %d", pageNumber), err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: d.opts.JPEGQuality}); err != nil {
		return domain.PageImage{}, domain.RenderError(fmt.Sprintf("failed to encode page %d as JPEG", pageNumber), err)
	}

	size := img.Bounds()
	return domain.PageImage{
		DataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:   size.Dx(),
		Height:  size.Dy(),
	}, nil
}

// ExtractText returns the plain text of one page (1-based).
func (d *document) ExtractText(ctx context.Context, pageNumber int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if pageNumber < 1 || pageNumber > d.doc.NumPage() {
		return "", domain.RenderError(fmt.Sprintf("page %d out of range", pageNumber), nil)
	}

	text, err := d.doc.Text(pageNumber - 1)
	if err != nil {
		return "", domain.RenderError(fmt.Sprintf("failed to extract text from page %d", pageNumber), err)
	}
	return text, nil
}

// Close releases the underlying document.
func (d *document) Close() error {
	return d.doc.Close()
}
