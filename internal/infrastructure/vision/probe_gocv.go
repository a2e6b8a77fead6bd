//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"net/http"
	"strings"

	"gocv.io/x/gocv"

	"samosa-vision/internal/domain/port"
)

// Probe проверяет изображение через OpenCV.
type Probe struct {
	MinSide int // минимальная сторона в пикселях, 0 — без ограничения
}

// NewProbe создаёт пробу с минимальной стороной изображения.
func NewProbe(minSide int) *Probe {
	return &Probe{MinSide: minSide}
}

// Probe декодирует изображение целиком и закрывает Mat.
func (p *Probe) Probe(data []byte) (port.ImageInfo, error) {
	if len(data) == 0 {
		return port.ImageInfo{}, errors.New("empty image")
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return port.ImageInfo{}, err
	}
	defer mat.Close()

	if mat.Empty() {
		return port.ImageInfo{}, errors.New("not a decodable image")
	}
	info := port.ImageInfo{
		Format: strings.TrimPrefix(http.DetectContentType(data), "image/"),
		Width:  mat.Cols(),
		Height: mat.Rows(),
	}
	if err := checkSize(info, p.MinSide); err != nil {
		return port.ImageInfo{}, err
	}
	return info, nil
}

var _ port.ImageProbe = (*Probe)(nil)
