package action

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Func is the body of an action.
type Func func(ctx context.Context, tk *Toolkit) error

var (
	registryMu sync.RWMutex
	registry   = map[string]Func{}
)

// Register makes fn available under name. It panics if name is empty, fn is
// nil or name is already taken.
func Register(name string, fn Func) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if name == "" {
		panic("action: Register with empty name")
	}
	if fn == nil {
		panic("action: Register " + name + " with nil func")
	}
	if _, dup := registry[name]; dup {
		panic("action: Register called twice for " + name)
	}
	registry[name] = fn
}

// Lookup returns the action registered under name.
func Lookup(name string) (Func, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	return fn, ok
}

// Names returns the registered action names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownActionError is returned by Run for names nothing registered.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Name)
}

// PanicError is returned by Run when the action panics.
type PanicError struct {
	Name  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v", e.Value)
}

// Run looks up and runs the named action. A panic inside the action is
// returned as a *PanicError.
func Run(ctx context.Context, name string, tk *Toolkit) (err error) {
	fn, ok := Lookup(name)
	if !ok {
		return &UnknownActionError{Name: name}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Name: name, Value: r}
		}
	}()
	return fn(ctx, tk)
}
