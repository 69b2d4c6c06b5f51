package render

import (
	"bytes"

	"github.com/pagelingo/pagelingo/internal/domain"
)

// maxDocumentSize rejects absurdly large uploads before MuPDF sees them.
const maxDocumentSize = 100 * 1024 * 1024 // 100MB

var pdfMagic = []byte("%PDF-")

// ValidateDocumentBytes checks that data plausibly holds a PDF document.
func ValidateDocumentBytes(data []byte) error {
	if len(data) == 0 {
		return domain.ValidationError("document is empty", nil)
	}
	if len(data) > maxDocumentSize {
		return domain.ValidationError("document exceeds the 100MB size limit", nil)
	}
	// The header may be preceded by a small amount of junk; MuPDF itself
	// tolerates this, so only scan the first kilobyte.
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	if !bytes.Contains(probe, pdfMagic) {
		return domain.ValidationError("document does not look like a PDF", nil)
	}
	return nil
}
