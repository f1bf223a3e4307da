// Package resource provides the generic handle-indexed owner used for every
// resource kind.
package resource

import (
	"errors"
	"fmt"
	"sort"

	"github.com/younwookim/scenecore/internal/domain/handle"
)

var (
	// ErrUnknownHandle is returned when a handle was never issued or was deleted.
	ErrUnknownHandle = errors.New("unknown handle")
	// ErrNotFound is returned by HandleOf for instances the manager does not own.
	ErrNotFound = errors.New("not found in manager")
)

// CreateFunc is a post-create callback. It runs after the instance is stored.
type CreateFunc[T any] func(h handle.Handle, obj *T)

// Manager owns all live instances of one resource kind, indexed by handle.
type Manager[T any] struct {
	kind     handle.Kind
	alloc    *handle.Allocator
	objects  map[handle.Handle]*T
	reverse  map[*T]handle.Handle
	onCreate []CreateFunc[T]
	busy     bool
}

// Option configures a Manager at construction.
type Option[T any] func(*Manager[T])

// OnCreate registers a post-create callback. Callbacks run in registration order.
func OnCreate[T any](fn CreateFunc[T]) Option[T] {
	return func(m *Manager[T]) {
		m.onCreate = append(m.onCreate, fn)
	}
}

// NewManager creates a manager for kind that draws handles from alloc.
func NewManager[T any](kind handle.Kind, alloc *handle.Allocator, opts ...Option[T]) *Manager[T] {
	m := &Manager[T]{
		kind:    kind,
		alloc:   alloc,
		objects: make(map[handle.Handle]*T),
		reverse: make(map[*T]handle.Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Kind returns the resource kind stored by this manager.
func (m *Manager[T]) Kind() handle.Kind {
	return m.kind
}

// Create allocates a handle, constructs the instance with it, stores it and
// runs the post-create callbacks.
func (m *Manager[T]) Create(construct func(h handle.Handle) *T) handle.Handle {
	m.enter("create")
	defer func() { m.busy = false }()

	h := m.alloc.Next(m.kind)
	obj := construct(h)
	if obj == nil {
		panic(fmt.Sprintf("resource: constructor for %s returned nil", m.kind))
	}
	m.objects[h] = obj
	m.reverse[obj] = h

	for _, fn := range m.onCreate {
		fn(h, obj)
	}
	return h
}

// Get returns the live instance for h.
func (m *Manager[T]) Get(h handle.Handle) (*T, error) {
	obj, ok := m.objects[h]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", m.kind, h, ErrUnknownHandle)
	}
	return obj, nil
}

// Contains reports whether h refers to a live instance.
func (m *Manager[T]) Contains(h handle.Handle) bool {
	_, ok := m.objects[h]
	return ok
}

// Delete releases the instance for h.
func (m *Manager[T]) Delete(h handle.Handle) error {
	obj, ok := m.objects[h]
	if !ok {
		return fmt.Errorf("delete %s %s: %w", m.kind, h, ErrUnknownHandle)
	}
	m.enter("delete")
	defer func() { m.busy = false }()

	delete(m.objects, h)
	delete(m.reverse, obj)
	return nil
}

// HandleOf returns the handle of an instance owned by this manager.
func (m *Manager[T]) HandleOf(obj *T) (handle.Handle, error) {
	h, ok := m.reverse[obj]
	if !ok {
		return handle.None, fmt.Errorf("%s instance %p: %w", m.kind, obj, ErrNotFound)
	}
	return h, nil
}

// Len returns the number of live instances.
func (m *Manager[T]) Len() int {
	return len(m.objects)
}

// Handles returns all live handles ordered by ID.
func (m *Manager[T]) Handles() []handle.Handle {
	hs := make([]handle.Handle, 0, len(m.objects))
	for h := range m.objects {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i].ID < hs[j].ID })
	return hs
}

// Each calls fn for every live instance in handle order.
// fn must not create or delete instances of this manager.
func (m *Manager[T]) Each(fn func(h handle.Handle, obj *T)) {
	for _, h := range m.Handles() {
		fn(h, m.objects[h])
	}
}

func (m *Manager[T]) enter(op string) {
	if m.busy {
		panic(fmt.Sprintf("resource: %s on %s manager re-entered from a post-create callback", op, m.kind))
	}
	m.busy = true
}
