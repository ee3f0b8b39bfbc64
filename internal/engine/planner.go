package engine

import (
	"context"
	"fmt"

	"github.com/relaygrid/scriptengine/internal/cache"
	"github.com/relaygrid/scriptengine/internal/errz"
)

// mainScriptID is the stable identifier the main script is planned and
// cached under. Each Engine owns its own cache, so collisions across
// instances are impossible; reload() clears the cache and re-plans under
// the same id.
const mainScriptID = "main"

type plan struct {
	main *LoadedScript
	all  map[string]*LoadedScript
}

type queueItem struct {
	id   string
	text string // empty means "resolve from registry/cache"
}

// runPlan performs a breadth-first dependency walk: assign the main
// script a fixed id, enqueue its declared dependencies,
// and for each dequeued item either reuse a fresh-enough cache entry or
// fetch, validate, and introspect it before enqueuing its own
// dependencies.
func (e *Engine) runPlan(ctx context.Context) (*plan, error) {
	mainText, err := e.resolveSource(ctx)
	if err != nil {
		return nil, err
	}

	result := e.validator.Validate(mainText)
	if !result.Valid {
		return nil, fmt.Errorf("%w: %v", errz.ErrShape, result.Errors)
	}

	queue := []queueItem{{id: mainScriptID, text: mainText}}
	seen := map[string]bool{mainScriptID: true}
	loaded := map[string]*LoadedScript{}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		script, err := e.loadOne(ctx, item)
		if err != nil {
			return nil, err
		}
		loaded[item.id] = script

		for _, dep := range script.Deps {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, queueItem{id: dep})
			}
		}
	}

	return &plan{main: loaded[mainScriptID], all: loaded}, nil
}

func (e *Engine) loadOne(ctx context.Context, item queueItem) (*LoadedScript, error) {
	source := "dependency"
	if item.id == mainScriptID {
		source = "main"
	}

	if item.text != "" {
		hash := cache.ContentHash(item.text)
		if entry, ok := e.cache.Get(item.id); ok && entry.ContentHash == hash {
			if script, ok := entry.Script.(*LoadedScript); ok {
				return script, nil
			}
		}
		script, err := introspect(item.id, item.text)
		if err != nil {
			return nil, err
		}
		e.cache.Put(item.id, cache.Entry{Script: script, ContentHash: hash, Source: source})
		return script, nil
	}

	if entry, ok := e.cache.Get(item.id); ok {
		if script, ok := entry.Script.(*LoadedScript); ok {
			return script, nil
		}
	}

	if e.registry == nil {
		return nil, fmt.Errorf("%w: no registry configured to resolve dependency %q", errz.ErrRegistryFetchFailed, item.id)
	}
	text, err := e.registry.Resolve(ctx, item.id)
	if err != nil {
		return nil, err
	}
	result := e.validator.Validate(text)
	if !result.Valid {
		return nil, fmt.Errorf("%w: dependency %q: %v", errz.ErrShape, item.id, result.Errors)
	}
	script, err := introspect(item.id, text)
	if err != nil {
		return nil, err
	}
	e.cache.Put(item.id, cache.Entry{Script: script, ContentHash: cache.ContentHash(text), Source: source})
	return script, nil
}
