package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/relaygrid/scriptengine/internal/errz"
)

var safeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// Filesystem resolves an id to a file under Root, rejecting any id that
// does not match the allowed character set or that would resolve outside
// Root.
type Filesystem struct {
	Root string
}

func NewFilesystem(root string) *Filesystem {
	return &Filesystem{Root: root}
}

func (f *Filesystem) Resolve(_ context.Context, id string) (string, error) {
	if !safeIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q contains characters outside [A-Za-z0-9_.-]", errz.ErrPathSanitisation, id)
	}

	root, err := filepath.Abs(f.Root)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errz.ErrPathSanitisation, err)
	}
	full := filepath.Join(root, id)
	if !strings.HasPrefix(full, root+string(filepath.Separator)) && full != root {
		return "", fmt.Errorf("%w: %q escapes root %q", errz.ErrPathSanitisation, id, f.Root)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errz.ErrScriptNotFound, err)
	}
	return string(data), nil
}
