package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// hostedIDPattern matches host:owner/repo/path[@branch].
var hostedIDPattern = regexp.MustCompile(`^([^:]+):([^/]+)/([^/]+)/(.+)$`)

// Hosted resolves a "host:owner/repo/path[@branch]" identifier against a
// repository-style base URL, optionally authenticating with a bearer
// token.
type Hosted struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHosted(baseURL, token string) *Hosted {
	return &Hosted{BaseURL: baseURL, Token: token, Client: http.DefaultClient}
}

type parsedHostedID struct {
	Host   string
	Owner  string
	Repo   string
	Path   string
	Branch string
}

func parseHostedID(id string) (parsedHostedID, error) {
	m := hostedIDPattern.FindStringSubmatch(id)
	if m == nil {
		return parsedHostedID{}, fmt.Errorf("%w: %q does not match host:owner/repo/path[@branch]", errz.ErrPathSanitisation, id)
	}
	path := m[4]
	branch := ""
	if idx := strings.LastIndex(path, "@"); idx >= 0 {
		branch = path[idx+1:]
		path = path[:idx]
	}
	return parsedHostedID{Host: m[1], Owner: m[2], Repo: m[3], Path: path, Branch: branch}, nil
}

func (h *Hosted) Resolve(ctx context.Context, id string) (string, error) {
	parsed, err := parseHostedID(id)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/%s/%s/%s", strings.TrimSuffix(h.BaseURL, "/"), parsed.Host, parsed.Owner, parsed.Repo, parsed.Path)
	if parsed.Branch != "" {
		url = fmt.Sprintf("%s?ref=%s", url, parsed.Branch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errz.ErrRegistryFetchFailed, err)
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
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
