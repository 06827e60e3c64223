package ai

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Kind is the type of source a palette is extracted from.
type Kind string

const (
	KindCSS   Kind = "css"
	KindURL   Kind = "url"
	KindImage Kind = "image"
)

var Kinds = []Kind{KindCSS, KindURL, KindImage}

var supportedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindCSS:
		return KindCSS, nil
	case KindURL:
		return KindURL, nil
	case KindImage:
		return KindImage, nil
	default:
		return "", fmt.Errorf("%w: unknown input kind %q", ErrInvalidInput, raw)
	}
}

// Input is one extraction request. Text carries CSS source or a URL; Image and
// MIMEType carry an uploaded image.
type Input struct {
	Kind     Kind
	Text     string
	Image    []byte
	MIMEType string
}

func CSSInput(css string) Input {
	return Input{Kind: KindCSS, Text: css}
}

func URLInput(url string) Input {
	return Input{Kind: KindURL, Text: url}
}

func ImageInput(data []byte, mimeType string) Input {
	return Input{Kind: KindImage, Image: data, MIMEType: mimeType}
}

// Validate rejects empty payloads and unsupported image types. For images without a usable
// declared type, the type is sniffed from the bytes.
func (in Input) Validate() (Input, error) {
	switch in.Kind {
	case KindCSS, KindURL:
		if strings.TrimSpace(in.Text) == "" {
			return in, fmt.Errorf("%w: %s input is empty", ErrInvalidInput, in.Kind)
		}
		return in, nil
	case KindImage:
		if len(in.Image) == 0 {
			return in, fmt.Errorf("%w: image is empty", ErrInvalidInput)
		}
		mimeType, err := ImageMIMEType(in.MIMEType, in.Image)
		if err != nil {
			return in, err
		}
		in.MIMEType = mimeType
		return in, nil
	default:
		return in, fmt.Errorf("%w: unknown input kind %q", ErrInvalidInput, in.Kind)
	}
}

// ImageMIMEType resolves the media type of an uploaded image, falling back to content
// sniffing when the declared type is missing or generic.
func ImageMIMEType(declared string, data []byte) (string, error) {
	mediaType := ""
	if declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			mediaType = strings.ToLower(parsed)
		}
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	if !supportedImageTypes[mediaType] {
		return "", fmt.Errorf("%w: unsupported image type %q", ErrInvalidInput, mediaType)
	}
	return mediaType, nil
}
