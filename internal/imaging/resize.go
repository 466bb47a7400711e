// Package imaging downsizes raster images before upload.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultMaxWidth is the width limit used when none is configured.
const DefaultMaxWidth = 4096

// Resizer scales png and jpeg images down to a maximum width, keeping the
// aspect ratio and the encoded format. Other formats pass through.
type Resizer struct {
	maxWidth int
}

// NewResizer returns a Resizer for maxWidth pixels.
func NewResizer(maxWidth int) *Resizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Resizer{maxWidth: maxWidth}
}

// MaxWidth returns the configured limit.
func (r *Resizer) MaxWidth() int { return r.maxWidth }

// Process returns data unchanged unless filename names a png or jpeg wider
// than the limit, in which case the re-encoded smaller image is returned.
func (r *Resizer) Process(data []byte, filename string) ([]byte, error) {
	format, err := imaging.FormatFromFilename(filename)
	if err != nil || (format != imaging.PNG && format != imaging.JPEG) {
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data, fmt.Errorf("read image header of %s: %w", filename, err)
	}
	if cfg.Width <= r.maxWidth {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data, fmt.Errorf("decode %s: %w", filename, err)
	}
	resized := imaging.Resize(img, r.maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(92)); err != nil {
		return data, fmt.Errorf("encode %s: %w", filename, err)
	}
	return buf.Bytes(), nil
}
