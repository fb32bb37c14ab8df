// Package integration turns third-party webhook payloads into chat
// notifications. Each integration lives in its own subpackage and is
// registered by name.
package integration

import (
	"context"
	"errors"
	"sort"

	"basegraph.app/herald/internal/mapper"
	"basegraph.app/herald/internal/payload"
)

var (
	ErrUnknownIntegration = errors.New("unknown integration")
	ErrEmptyNotification  = errors.New("notification has no body")
)

// Notification is the canonical message an event is rendered into.
type Notification struct {
	EventType mapper.EventType
	Topic     string
	Body      string
}

type Normalizer interface {
	Name() string
	// Normalize classifies the event and renders it. Events the integration
	// does not handle return an error wrapping mapper.ErrUnsupportedEvent.
	Normalize(ctx context.Context, body payload.Value, headers map[string]string) (*Notification, error)
}

type Registry struct {
	normalizers map[string]Normalizer
}

func NewRegistry(normalizers ...Normalizer) *Registry {
	r := &Registry{normalizers: make(map[string]Normalizer, len(normalizers))}
	for _, n := range normalizers {
		r.normalizers[n.Name()] = n
	}
	return r
}

func (r *Registry) Get(name string) (Normalizer, error) {
	n, ok := r.normalizers[name]
	if !ok {
		return nil, ErrUnknownIntegration
	}
	return n, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.normalizers))
	for name := range r.normalizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
