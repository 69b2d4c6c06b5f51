package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocumentBytes(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"empty", nil, true},
		{"not a pdf", []byte("hello world"), true},
		{"pdf header", []byte("%PDF-1.7\n..."), false},
		{"header after junk", append([]byte("\xef\xbb\xbf junk "), []byte("%PDF-1.4")...), false},
		{"header too deep", append(bytes.Repeat([]byte{0}, 2048), []byte("%PDF-1.4")...), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentBytes(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer(Options{})
	assert.Equal(t, DefaultMaxDimension, r.opts.MaxDimension)
	assert.Equal(t, DefaultJPEGQuality, r.opts.JPEGQuality)

	r = NewRenderer(Options{MaxDimension: 1024, JPEGQuality: 150})
	assert.Equal(t, 1024, r.opts.MaxDimension)
	assert.Equal(t, DefaultJPEGQuality, r.opts.JPEGQuality, "out-of-range quality falls back")
}
