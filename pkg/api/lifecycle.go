package api

import "sync"

// LifecycleAdapter feeds page suspend/resume signals into the
// coordinator. The coordinator registers its hooks at construction and
// depends on nothing else about the adapter, so a concrete adapter
// backed by real browser events is swappable with NoopAdapter in
// non-browser environments or with ManualAdapter in tests.
type LifecycleAdapter interface {
	// OnResume registers fn to run when a previously frozen page
	// instance is restored from cache.
	OnResume(fn func())

	// OnSuspend registers fn to run when the page may be about to
	// freeze.
	OnSuspend(fn func())
}

// NoopAdapter ignores all registrations. It is the default when no
// adapter is configured.
type NoopAdapter struct{}

func (NoopAdapter) OnResume(func())  {}
func (NoopAdapter) OnSuspend(func()) {}

// ManualAdapter is a LifecycleAdapter driven by explicit method calls.
// Resume and Suspend invoke every registered hook in registration
// order. Useful in tests and in hosts that surface their own
// suspend/resume signals.
type ManualAdapter struct {
	mu        sync.Mutex
	onResume  []func()
	onSuspend []func()
}

func (a *ManualAdapter) OnResume(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onResume = append(a.onResume, fn)
}

func (a *ManualAdapter) OnSuspend(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSuspend = append(a.onSuspend, fn)
}

// Resume fires the resume hooks.
func (a *ManualAdapter) Resume() {
	a.mu.Lock()
	hooks := append([]func(){}, a.onResume...)
	a.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Suspend fires the suspend hooks.
func (a *ManualAdapter) Suspend() {
	a.mu.Lock()
	hooks := append([]func(){}, a.onSuspend...)
	a.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
