package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// HTTP resolves an absolute URL directly, or resolves id against BaseURL
// when set and id is not itself absolute.
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTP(baseURL string) *HTTP {
	return &HTTP{BaseURL: baseURL, Client: http.DefaultClient}
}

func isAbsoluteURL(id string) bool {
	return strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://")
}

func (h *HTTP) Resolve(ctx context.Context, id string) (string, error) {
	target := id
	if !isAbsoluteURL(id) {
		if h.BaseURL == "" {
			return "", fmt.Errorf("%w: %q is not an absolute URL and no base URL is configured", errz.ErrRegistryFetchFailed, id)
		}
		base, err := url.Parse(h.BaseURL)
		if err != nil {
			return "", fmt.Errorf("%w: invalid base URL %q: %s", errz.ErrRegistryFetchFailed, h.BaseURL, err)
		}
		rel, err := url.Parse(id)
		if err != nil {
			return "", fmt.Errorf("%w: invalid identifier %q: %s", errz.ErrRegistryFetchFailed, id, err)
		}
		target = base.ResolveReference(rel).String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errz.ErrRegistryFetchFailed, err)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errz.ErrRegistryFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %d %s", errz.ErrRegistryFetchFailed, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errz.ErrRegistryFetchFailed, err)
	}
	return string(body), nil
}
