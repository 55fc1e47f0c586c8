package ai

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcpchat/internal/ai/tools"
)

type ImageKind int

const (
	ImageDataURL ImageKind = iota
	ImageFile
	ImageBase64
)

func (k ImageKind) String() string {
	switch k {
	case ImageDataURL:
		return "data-url"
	case ImageFile:
		return "file"
	case ImageBase64:
		return "base64"
	}
	return "unknown"
}

// ImagePayload is an image reference as typed by the user.
type ImagePayload struct {
	Kind  ImageKind
	Value string
}

// NewImagePayload classifies input: an inline data URL, then an existing
// file, otherwise a raw base64 blob.
func NewImagePayload(input string) ImagePayload {
	if strings.HasPrefix(input, "data:image") {
		return ImagePayload{Kind: ImageDataURL, Value: input}
	}
	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		return ImagePayload{Kind: ImageFile, Value: input}
	}
	return ImagePayload{Kind: ImageBase64, Value: input}
}

// Resolve returns the canonical inline data URL for the payload.
func (p ImagePayload) Resolve() (string, error) {
	switch p.Kind {
	case ImageDataURL:
		return p.Value, nil

	case ImageFile:
		data, err := os.ReadFile(p.Value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		// extension is used as written, "photo.JPG" yields image/JPG
		ext := strings.TrimPrefix(filepath.Ext(p.Value), ".")
		if ext == "" {
			ext = "png"
		}
		return fmt.Sprintf("data:image/%s;base64,%s", ext, base64.StdEncoding.EncodeToString(data)), nil

	case ImageBase64:
		blob := strings.TrimSpace(p.Value)
		if blob == "" {
			return "", fmt.Errorf("%w: empty input", ErrInvalidImage)
		}
		if _, err := base64.StdEncoding.DecodeString(blob); err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidImage, tools.TruncateString(blob, 30))
		}
		return "data:image/png;base64," + blob, nil
	}

	return "", fmt.Errorf("%w: unknown payload kind %d", ErrInvalidImage, int(p.Kind))
}
