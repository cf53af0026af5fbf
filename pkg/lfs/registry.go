package lfs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrRepositoryNotFound reports a lookup for a name no repository is
// registered under.
var ErrRepositoryNotFound = errors.New("repository not found")

// NotFoundError carries the name that missed.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrRepositoryNotFound }

// Registry maps repository names to the repositories serving them.
type Registry struct {
	mu    sync.RWMutex
	repos map[string]Repository
}

func NewRegistry() *Registry {
	return &Registry{repos: make(map[string]Repository)}
}

// Register adds repo under name, replacing any previous registration.
func (g *Registry) Register(name string, repo Repository) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.repos[name] = repo
}

// Lookup returns the repository registered under name.
func (g *Registry) Lookup(name string) (Repository, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	repo, ok := g.repos[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return repo, nil
}

// Remove drops the registration for name, if any.
func (g *Registry) Remove(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.repos, name)
}

// Names returns the registered names in sorted order.
func (g *Registry) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.repos))
	for name := range g.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered repositories.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.repos)
}
