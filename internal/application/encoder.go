package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"samosa-vision/internal/domain/entity"
	"samosa-vision/internal/domain/port"
)

// DefaultMaxImageBytes — предел размера загружаемого файла.
const DefaultMaxImageBytes = 10 << 20

// Encoder превращает выбранный файл в base64 для отправки провайдеру.
type Encoder struct {
	probe    port.ImageProbe
	maxBytes int64
}

// EncoderOption настраивает Encoder.
type EncoderOption func(*Encoder)

// WithProbe включает проверку, что байты действительно декодируются как изображение.
func WithProbe(p port.ImageProbe) EncoderOption {
	return func(e *Encoder) { e.probe = p }
}

// WithMaxBytes ограничивает размер файла.
func WithMaxBytes(n int64) EncoderOption {
	return func(e *Encoder) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// NewEncoder создаёт кодировщик изображений.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{maxBytes: DefaultMaxImageBytes}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode читает файл целиком и возвращает base64 без data-URI префикса.
func (e *Encoder) Encode(ctx context.Context, file *entity.ImageFile) (*entity.EncodedImage, error) {
	if file == nil || file.Reader == nil {
		return nil, fmt.Errorf("%w: no file selected", entity.ErrInvalidInput)
	}
	if !file.IsImage() {
		return nil, fmt.Errorf("%w: %q is not an image type", entity.ErrInvalidInput, file.MediaType)
	}
	mediaType := normalizeMediaType(file.MediaType)

	data, err := io.ReadAll(io.LimitReader(&ctxReader{ctx: ctx, r: file.Reader}, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", entity.ErrEncoding, file.Name, err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, fmt.Errorf("%w: file is larger than %d bytes", entity.ErrInvalidInput, e.maxBytes)
	}

	if e.probe != nil && len(data) > 0 {
		if _, err := e.probe.Probe(data); err != nil {
			return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", entity.ErrEncoding)
	}

	return &entity.EncodedImage{Data: base64.StdEncoding.EncodeToString(data), MediaType: mediaType}, nil
}

func normalizeMediaType(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// ctxReader прерывает чтение при отмене контекста.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
