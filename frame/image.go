package frame

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type encodeFunc func(w io.Writer, img image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", "":
		return png.Encode, nil
	case ".bmp":
		return bmp.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedImageFormat, "extension %q", ext)
	}
}

// WriteImage encodes img to path, choosing the encoder from the file
// extension. The file is written next to its destination and renamed into
// place so a failed encode leaves no partial output.
func WriteImage(path string, img image.Image) error {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	defer os.Remove(tmp.Name())

	err = encode(tmp, img)
	if err != nil {
		tmp.Close()
		return errors.Wrapf(err, "encode %s", path)
	}

	err = tmp.Chmod(0o644)
	if err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", path)
	}

	err = tmp.Close()
	if err != nil {
		return errors.Wrapf(err, "write %s", path)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return errors.Wrapf(err, "write %s", path)
	}

	log.WithFields(log.Fields{
		"path": path,
		"size": img.Bounds().Size(),
	}).Info("image written")
	return nil
}
