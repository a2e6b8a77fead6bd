package port

// ImageInfo — то, что удалось узнать из заголовка изображения.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// ImageProbe проверяет, что байты действительно декодируются как изображение
type ImageProbe interface {
	Probe(data []byte) (ImageInfo, error)
}
