//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"samosa-vision/internal/domain/port"
)

// Probe проверяет изображение стандартными декодерами (без OpenCV).
type Probe struct {
	MinSide int // минимальная сторона в пикселях, 0 — без ограничения
}

// NewProbe создаёт пробу с минимальной стороной изображения.
func NewProbe(minSide int) *Probe {
	return &Probe{MinSide: minSide}
}

// Probe читает только заголовок изображения.
func (p *Probe) Probe(data []byte) (port.ImageInfo, error) {
	if len(data) == 0 {
		return port.ImageInfo{}, errors.New("empty image")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return port.ImageInfo{}, fmt.Errorf("not a decodable image: %w", err)
	}
	info := port.ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}
	if err := checkSize(info, p.MinSide); err != nil {
		return port.ImageInfo{}, err
	}
	return info, nil
}

var _ port.ImageProbe = (*Probe)(nil)
