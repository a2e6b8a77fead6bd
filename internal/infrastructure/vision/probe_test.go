//go:build !gocv

package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, G: 150, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProbe_PNG(t *testing.T) {
	info, err := NewProbe(0).Probe(pngBytes(t, 12, 8))
	require.NoError(t, err)
	require.Equal(t, "png", info.Format)
	require.Equal(t, 12, info.Width)
	require.Equal(t, 8, info.Height)
}

func TestProbe_Rejects(t *testing.T) {
	_, err := NewProbe(0).Probe(nil)
	require.Error(t, err)

	_, err = NewProbe(0).Probe([]byte("definitely not an image"))
	require.ErrorContains(t, err, "not a decodable image")

	_, err = NewProbe(32).Probe(pngBytes(t, 12, 8))
	require.ErrorContains(t, err, "too small")
}
