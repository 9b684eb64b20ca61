package vectorizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"imageproxy/internal/lib/upload"
	"imageproxy/internal/structs/models"
)

const (
	ResultFilename    = "vectorized.svg"
	ResultContentType = "image/svg+xml"
)

var ErrTimeout = errors.New("vectorizer request timed out")

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vectorizer returned %d - %s", e.StatusCode, e.Reason)
}

// Options are forwarded to the upstream as form fields. Zero values are not sent.
type Options struct {
	Mode      string
	MaxColors *int
}

type Client struct {
	client   *resty.Client
	endpoint string
}

// New returns a client authenticating every call with HTTP Basic apiID:apiSecret.
func New(log *slog.Logger, endpoint, apiID, apiSecret string, timeout time.Duration) *Client {
	c := resty.New().
		SetTimeout(timeout).
		SetBasicAuth(apiID, apiSecret).
		SetLogger(restyLogger{log: log.With(slog.String("component", "vectorizer"))})

	return &Client{client: c, endpoint: endpoint}
}

// Vectorize uploads img and returns the SVG produced by the upstream.
func (c *Client) Vectorize(ctx context.Context, img *models.Image, opts Options) (*models.Image, error) {
	const op = "clients.vectorizer.Vectorize"

	req := c.client.R().
		SetContext(ctx).
		SetMultipartFields(&resty.MultipartField{
			Param:       upload.FieldName,
			FileName:    upload.SanitizeFilename(img.Name),
			ContentType: img.ContentType,
			Reader:      bytes.NewReader(img.Payload),
		})

	if form := opts.formData(); len(form) > 0 {
		req.SetFormData(form)
	}

	resp, err := req.Post(c.endpoint)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !resp.IsSuccess() {
		return nil, &StatusError{
			StatusCode: resp.StatusCode(),
			Reason:     reason(resp.StatusCode(), resp.Status()),
			Body:       string(resp.Body()),
		}
	}

	body := resp.Body()

	return &models.Image{
		Payload:     body,
		Name:        ResultFilename,
		Size:        int64(len(body)),
		Extension:   "svg",
		ContentType: ResultContentType,
	}, nil
}

func (o Options) formData() map[string]string {
	form := make(map[string]string, 2)
	if o.Mode != "" {
		form["mode"] = o.Mode
	}
	if o.MaxColors != nil {
		form["processing.max_colors"] = strconv.Itoa(*o.MaxColors)
	}
	return form
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// reason extracts the reason phrase from a status line such as "422 Unprocessable Entity".
func reason(code int, status string) string {
	if r := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code))); r != "" {
		return r
	}
	return http.StatusText(code)
}

type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
