package app

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// ErrImageUnavailable means an image URL does not serve an image.
var ErrImageUnavailable = errors.New("image unavailable")

// ImageChecker probes whether an image URL loads.
type ImageChecker interface {
	CheckImage(ctx context.Context, imageURL string) error
}

// HTTPImageChecker issues a HEAD request and expects an image/* content type.
type HTTPImageChecker struct {
	client *http.Client
}

// NewHTTPImageChecker creates a checker. A nil client uses http.DefaultClient.
func NewHTTPImageChecker(client *http.Client) *HTTPImageChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPImageChecker{client: client}
}

// CheckImage implements ImageChecker.
func (c *HTTPImageChecker) CheckImage(ctx context.Context, imageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageUnavailable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageUnavailable, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrImageUnavailable, resp.StatusCode)
	}
	mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mt, "image/") {
		return fmt.Errorf("%w: content type %q", ErrImageUnavailable, resp.Header.Get("Content-Type"))
	}
	return nil
}
