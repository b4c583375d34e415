package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yungbote/bidgate-backend/internal/domain/negotiation"
	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

// CatalogStore holds the screening criteria and the negotiation item template.
// Both come from YAML files when paths are configured and fall back to the
// embedded defaults otherwise.
type CatalogStore struct {
	log          *logger.Logger
	criteriaPath string
	templatePath string

	mu       sync.RWMutex
	criteria []prequal.Criterion
	template []negotiation.Item
}

func NewCatalogStore(criteriaPath, templatePath string, log *logger.Logger) (*CatalogStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	c := &CatalogStore{
		log:          log.With("service", "CatalogStore"),
		criteriaPath: strings.TrimSpace(criteriaPath),
		templatePath: strings.TrimSpace(templatePath),
		criteria:     prequal.DefaultCriteria(),
		template:     negotiation.DefaultItems(),
	}
	if err := c.reloadCriteria(); err != nil {
		return nil, err
	}
	if err := c.reloadTemplate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Criteria returns a copy of the active screening catalog.
func (c *CatalogStore) Criteria() []prequal.Criterion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]prequal.Criterion, len(c.criteria))
	copy(out, c.criteria)
	return out
}

// NegotiationItems returns a copy of the active item template.
func (c *CatalogStore) NegotiationItems() []negotiation.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]negotiation.Item, len(c.template))
	copy(out, c.template)
	return out
}

func (c *CatalogStore) reloadCriteria() error {
	if c.criteriaPath == "" {
		return nil
	}
	cs, err := prequal.LoadCatalogFile(c.criteriaPath)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.criteria = cs
	c.mu.Unlock()
	c.log.Info("criteria catalog loaded", "path", c.criteriaPath, "criteria", len(cs))
	return nil
}

func (c *CatalogStore) reloadTemplate() error {
	if c.templatePath == "" {
		return nil
	}
	items, err := negotiation.LoadTemplateFile(c.templatePath)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.template = items
	c.mu.Unlock()
	c.log.Info("negotiation template loaded", "path", c.templatePath, "items", len(items))
	return nil
}

// Watch reloads a file whenever it changes until ctx is done. A file that
// fails to parse leaves the previous catalog in place.
func (c *CatalogStore) Watch(ctx context.Context) error {
	if c.criteriaPath == "" && c.templatePath == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	// Watch directories so editors that replace files atomically are seen.
	dirs := map[string]struct{}{}
	for _, p := range []string{c.criteriaPath, c.templatePath} {
		if p != "" {
			dirs[filepath.Dir(p)] = struct{}{}
		}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			_ = w.Close()
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				c.handle(filepath.Clean(ev.Name))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.log.Warn("catalog watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (c *CatalogStore) handle(name string) {
	switch name {
	case filepath.Clean(c.criteriaPath):
		if err := c.reloadCriteria(); err != nil {
			c.log.Warn("criteria catalog reload failed; keeping previous", "path", name, "error", err)
		}
	case filepath.Clean(c.templatePath):
		if err := c.reloadTemplate(); err != nil {
			c.log.Warn("negotiation template reload failed; keeping previous", "path", name, "error", err)
		}
	}
}
