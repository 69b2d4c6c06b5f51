package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelingo/pagelingo/internal/session"
)

func TestRenderDocumentCompletedPages(t *testing.T) {
	snap := session.Snapshot{
		State:      session.StateCompleted,
		TotalPages: 2,
		Pages: []session.PageResult{
			{PageNumber: 1, Status: session.StatusCompleted, HTML: "<p>Bonjour <sup>1</sup></p>"},
			{PageNumber: 2, Status: session.StatusCompleted, HTML: "<table><tr><td>x</td></tr></table>"},
		},
	}

	out, err := RenderDocument(snap)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Bonjour <sup>1</sup></p>")
	assert.Contains(t, out, "<table><tr><td>x</td></tr></table>")
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "Page 2 of 2")
	assert.NotContains(t, out, "doc-error")
}

func TestRenderDocumentFailedPageShowsError(t *testing.T) {
	snap := session.Snapshot{
		State:      session.StateCompleted,
		TotalPages: 1,
		Pages: []session.PageResult{
			{PageNumber: 1, Status: session.StatusFailed, Error: "status 500 <oops>"},
		},
	}

	out, err := RenderDocument(snap)
	require.NoError(t, err)
	assert.Contains(t, out, "page-error")
	assert.Contains(t, out, "Translation failed: status 500 &lt;oops&gt;")
}

func TestRenderDocumentInFlightPageShowsOriginal(t *testing.T) {
	snap := session.Snapshot{
		State:      session.StateProcessing,
		TotalPages: 2,
		Pages: []session.PageResult{
			{PageNumber: 1, Status: session.StatusTranslating, ImageDataURL: "data:image/jpeg;base64,abc"},
			{PageNumber: 2, Status: session.StatusPending},
		},
	}

	out, err := RenderDocument(snap)
	require.NoError(t, err)
	assert.Contains(t, out, `<img src="data:image/jpeg;base64,abc"`)
	assert.Contains(t, out, "Waiting for translation.")
}

func TestRenderDocumentError(t *testing.T) {
	snap := session.Snapshot{
		State: session.StateError,
		Error: "not a PDF",
	}

	out, err := RenderDocument(snap)
	require.NoError(t, err)
	assert.Contains(t, out, "doc-error")
	assert.Contains(t, out, "Document processing failed: not a PDF")
	assert.Contains(t, out, "Upload the document again to retry.")
}
