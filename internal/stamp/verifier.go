package stamp

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ErrDateUnreadable means the file's date tag could not be read, usually
// because the container is not one goexif understands (PNG, HEIC).
var ErrDateUnreadable = errors.New("capture date not readable")

// ExifVerifier reads DateTimeOriginal (or DateTime) from JPEG and TIFF files.
type ExifVerifier struct{}

// NewExifVerifier returns an ExifVerifier.
func NewExifVerifier() *ExifVerifier {
	return &ExifVerifier{}
}

// ReadDate returns the capture date stored in path.
func (v *ExifVerifier) ReadDate(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrDateUnreadable, err)
	}

	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrDateUnreadable, err)
	}
	return t, nil
}
