package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712/photos/abc.webp": "photos/abc",
		"https://res.cloudinary.com/demo/image/upload/photos/abc.webp":       "photos/abc",
		"https://res.cloudinary.com/demo/image/upload/video/abc.png":         "video/abc",
		"https://res.cloudinary.com/demo/image/upload/v12.png":               "v12",
		"https://example.com/no-upload-segment/abc.png":                      "",
		"://broken": "",
	}

	for in, want := range cases {
		assert.Equal(t, want, PublicIDFromURL(in), in)
	}
}

func TestNilStorageIsDisabled(t *testing.T) {
	var s *cloudinaryStorage

	_, err := s.UploadImage(context.Background(), strings.NewReader("x"), "photos", "a.png")
	assert.ErrorIs(t, err, ErrStorageDisabled)
	assert.ErrorIs(t, s.DeleteImage(context.Background(), "https://x/upload/a.png"), ErrStorageDisabled)
}
