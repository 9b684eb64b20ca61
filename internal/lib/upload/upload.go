package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"

	"imageproxy/internal/structs/models"
)

const (
	FieldName = "image"

	maxMemory = 32 << 20

	// room for multipart boundaries and headers on top of the file itself
	multipartOverhead = 1 << 20

	fallbackFilename = "image"
)

var (
	ErrNoFile      = errors.New("no image file provided")
	ErrNoFilename  = errors.New("no file selected")
	ErrInvalidType = errors.New("invalid file type")
	ErrTooLarge    = errors.New("file too large")
	ErrMalformed   = errors.New("malformed multipart request")
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Rules describe what an accepted upload looks like.
// MaxSize <= 0 disables the size check.
type Rules struct {
	AllowedExtensions []string
	MaxSize           int64
}

// Extract reads the "image" file part of a multipart request and validates it.
// Checks run in order: presence, filename, extension, size.
func Extract(w http.ResponseWriter, r *http.Request, rules Rules) (*models.Image, error) {
	const op = "lib.upload.Extract"

	if rules.MaxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rules.MaxSize+multipartOverhead)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return nil, ErrTooLarge
		case errors.Is(err, http.ErrNotMultipart):
			return nil, ErrNoFile
		default:
			return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
		}
	}

	src, hdr, err := r.FormFile(FieldName)
	if errors.Is(err, http.ErrMissingFile) {
		// a file input submitted without a selection arrives as a plain value
		if _, ok := r.MultipartForm.Value[FieldName]; ok {
			return nil, ErrNoFilename
		}
		return nil, ErrNoFile
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer src.Close()

	if hdr.Filename == "" {
		return nil, ErrNoFilename
	}

	ext, ok := allowedExtension(hdr.Filename, rules.AllowedExtensions)
	if !ok {
		return nil, ErrInvalidType
	}

	if rules.MaxSize > 0 && hdr.Size > rules.MaxSize {
		return nil, ErrTooLarge
	}

	payload, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if rules.MaxSize > 0 && int64(len(payload)) > rules.MaxSize {
		return nil, ErrTooLarge
	}

	contentType := hdr.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(payload).String()
	}

	return &models.Image{
		Payload:     payload,
		Name:        hdr.Filename,
		Size:        int64(len(payload)),
		Extension:   ext,
		ContentType: contentType,
	}, nil
}

// IsClientError reports whether err is a validation failure of the upload itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrNoFilename) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrMalformed)
}

func allowedExtension(filename string, allowed []string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "", false
	}

	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return strings.ToLower(ext), true
		}
	}

	return "", false
}

// SanitizeFilename reduces name to ASCII letters, digits, '_', '.', '-'
// so it can be safely used as a file name on any filesystem.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, norm.NFKD.String(name))

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if name == "" {
		return fallbackFilename
	}

	return name
}

// Message returns the caller-facing text for a validation error from Extract.
func Message(err error, maxSize int64) string {
	switch {
	case errors.Is(err, ErrNoFile):
		return "No image file provided"
	case errors.Is(err, ErrNoFilename):
		return "No file selected"
	case errors.Is(err, ErrInvalidType):
		return "Invalid file type. Only images are allowed."
	case errors.Is(err, ErrTooLarge):
		return fmt.Sprintf("File too large. Maximum size is %s.", humanize.IBytes(uint64(maxSize)))
	case errors.Is(err, ErrMalformed):
		return "Invalid multipart request"
	default:
		return "Invalid upload"
	}
}
