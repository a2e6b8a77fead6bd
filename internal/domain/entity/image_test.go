package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageFile_IsImage(t *testing.T) {
	cases := map[string]bool{
		"image/png":                true,
		"IMAGE/JPEG":               true,
		" image/webp ":             true,
		"image/jpeg; charset=bin":  true,
		"image/":                   false,
		"image/x,y":                false,
		"image/ png":               false,
		"image/png\tx":             false,
		"text/plain":               false,
		"application/octet-stream": false,
		"":                         false,
	}
	for mt, want := range cases {
		f := &ImageFile{MediaType: mt}
		require.Equal(t, want, f.IsImage(), mt)
	}

	var nilFile *ImageFile
	require.False(t, nilFile.IsImage())
}

func TestEncodedImage_DataURL(t *testing.T) {
	e := &EncodedImage{Data: "aGk=", MediaType: "image/png"}
	require.Equal(t, "data:image/png;base64,aGk=", e.DataURL())

	b, err := e.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), b)
}
