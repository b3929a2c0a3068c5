// Package upload validates image attachments posted as multipart files.
package upload

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"
)

// MaxImageBytes is the size ceiling for every uploaded image.
const MaxImageBytes = 10 << 20

var (
	ErrNotImage = errors.New("file must be an image")
	ErrTooLarge = errors.New("file must be 10 MB or smaller")
	ErrEmpty    = errors.New("file is empty")
)

// Image is an uploaded image held in memory.
type Image struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// Size is the byte length of the image data.
func (i Image) Size() int {
	return len(i.Data)
}

// CheckImage validates metadata before the bytes are read.
func CheckImage(contentType string, size int64) error {
	if size > MaxImageBytes {
		return ErrTooLarge
	}
	if size == 0 {
		return ErrEmpty
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return ErrNotImage
	}
	return nil
}

// ReadImage checks the declared type and size of fh and loads its bytes.
func ReadImage(fh *multipart.FileHeader) (Image, error) {
	if fh == nil {
		return Image{}, ErrEmpty
	}
	ct := fh.Header.Get("Content-Type")
	if err := CheckImage(ct, fh.Size); err != nil {
		return Image{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return Image{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return Image{}, err
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrTooLarge
	}
	return Image{Name: fh.Filename, ContentType: ct, Data: data}, nil
}

// IsValidation reports whether err is one of the image validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNotImage) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrEmpty)
}
