package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// Composite tries each child registry in order, returning the first
// success. On exhaustion it fails with an aggregate message naming every
// child's error.
type Composite struct {
	Children []Registry
}

func NewComposite(children ...Registry) *Composite {
	return &Composite{Children: children}
}

func (c *Composite) Resolve(ctx context.Context, id string) (string, error) {
	var errs []string
	for i, child := range c.Children {
		text, err := child.Resolve(ctx, id)
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Sprintf("registry %d: %s", i, err))
	}
	return "", fmt.Errorf("%w: %q: %s", errz.ErrAllRegistriesFailed, id, strings.Join(errs, "; "))
}
