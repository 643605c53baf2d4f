// Package photo loads a picture of student writing from disk and prepares
// it for upload.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxDimension bounds the longer side of an uploaded image.
	MaxDimension = 1600

	// MaxBytes bounds the size of the file read from disk.
	MaxBytes = 20 << 20

	jpegQuality = 80
)

var (
	// ErrCanceled is returned when no file was chosen.
	ErrCanceled = errors.New("photo: no file chosen")

	ErrNotImage = errors.New("photo: file is not an image")
	ErrTooLarge = errors.New("photo: file is too large")
)

// Capture is an image ready to send to the model.
type Capture struct {
	URI      string
	Base64   string
	MIMEType string
	Width    int
	Height   int
	Resized  bool
}

// Load reads the image at path. Images whose longer side exceeds
// MaxDimension are scaled down and re-encoded as JPEG; others are sent as
// they are.
func Load(path string) (*Capture, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrCanceled
	}
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("%w (%s)", ErrNotImage, mime.String())
	}

	c := &Capture{URI: abs, MIMEType: mime.String()}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Formats the decoder does not know (HEIC, WebP) go up unchanged.
		c.Base64 = base64.StdEncoding.EncodeToString(data)
		return c, nil
	}
	c.Width, c.Height = cfg.Width, cfg.Height

	if cfg.Width <= MaxDimension && cfg.Height <= MaxDimension {
		c.Base64 = base64.StdEncoding.EncodeToString(data)
		return c, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	b := img.Bounds()
	c.Width, c.Height = b.Dx(), b.Dy()
	c.MIMEType = "image/jpeg"
	c.Base64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	c.Resized = true
	return c, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
