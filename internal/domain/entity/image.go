package entity

import (
	"encoding/base64"
	"io"
	"strings"
)

// ImageFile — файл, который выбрал пользователь.
type ImageFile struct {
	Name      string    // имя файла (может быть пустым)
	MediaType string    // заявленный MIME-тип
	Reader    io.Reader // содержимое
}

// IsImage проверяет, что заявленный тип относится к изображениям.
func (f *ImageFile) IsImage() bool {
	if f == nil {
		return false
	}
	mt := strings.ToLower(strings.TrimSpace(f.MediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if strings.ContainsAny(mt, ", \t\r\n") {
		return false
	}
	return strings.HasPrefix(mt, "image/") && len(mt) > len("image/")
}

// EncodedImage — base64 без data-URI префикса и MIME-тип.
type EncodedImage struct {
	Data      string
	MediaType string
}

// Bytes декодирует полезную нагрузку обратно в байты.
func (e *EncodedImage) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(e.Data)
}

// DataURL собирает data:<mime>;base64,<payload> для провайдеров, которые принимают URL.
func (e *EncodedImage) DataURL() string {
	return "data:" + e.MediaType + ";base64," + e.Data
}
