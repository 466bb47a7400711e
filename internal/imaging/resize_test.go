package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcess_DownscalesWidePNG(t *testing.T) {
	r := NewResizer(50)
	out, err := r.Process(encodePNG(t, 200, 100), "wide.png")
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 50, cfg.Width)
	require.Equal(t, 25, cfg.Height)
}

func TestProcess_KeepsJPEGFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, err := NewResizer(60).Process(buf.Bytes(), "photo.JPG")
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 60, cfg.Width)
}

func TestProcess_SmallImageUnchanged(t *testing.T) {
	data := encodePNG(t, 40, 10)
	out, err := NewResizer(40).Process(data, "small.png")
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestProcess_PassThroughFormats(t *testing.T) {
	data := []byte("<svg/>")
	for _, name := range []string{"a.svg", "a.gif", "a.webp", "a.bmp", "a.tiff", "noext"} {
		out, err := NewResizer(1).Process(data, name)
		require.NoError(t, err, name)
		require.Equal(t, data, out, name)
	}
}

func TestProcess_CorruptImage(t *testing.T) {
	data := []byte("not a png")
	out, err := NewResizer(10).Process(data, "broken.png")
	require.Error(t, err)
	require.Equal(t, data, out)
}

func TestNewResizer_Default(t *testing.T) {
	require.Equal(t, DefaultMaxWidth, NewResizer(0).MaxWidth())
}
