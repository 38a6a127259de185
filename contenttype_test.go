package gallery_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/sagarc03/gallery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name    string
		file    string
		content []byte
		want    string
	}{
		{name: "known extension", file: "photo.png", want: "image/png"},
		{name: "json extension", file: "data.json", content: []byte("{}"), want: "application/json"},
		{name: "sniffed without extension", file: "blob", content: png, want: "image/png"},
		{name: "unknown extension and no reader", file: "blob.zzz", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r io.ReadSeeker
			if tt.content != nil {
				r = bytes.NewReader(tt.content)
			}
			assert.Equal(t, tt.want, gallery.DetectContentType(tt.file, r))
		})
	}
}

func TestDetectContentType_RewindsReader(t *testing.T) {
	content := []byte("GIF89a rest of image")
	r := bytes.NewReader(content)

	assert.Equal(t, "image/gif", gallery.DetectContentType("noext", r))

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}
