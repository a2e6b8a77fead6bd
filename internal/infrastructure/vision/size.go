package vision

import (
	"fmt"

	"samosa-vision/internal/domain/port"
)

func checkSize(info port.ImageInfo, minSide int) error {
	if minSide <= 0 {
		return nil
	}
	if info.Width < minSide || info.Height < minSide {
		return fmt.Errorf("image %dx%d is too small, need at least %dpx per side", info.Width, info.Height, minSide)
	}
	return nil
}
