package workflow

import (
	"sync"
	"time"
)

// ToastKind styles a toast
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a short-lived banner message
type Toast struct {
	ID        uint64    `json:"id"`
	Kind      ToastKind `json:"kind"`
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Toaster holds at most one toast. Showing a new toast replaces the pending
// dismissal of the previous one, so onDismiss fires once per toast that is
// still on screen when its timer runs out.
type Toaster struct {
	mu        sync.Mutex
	seq       uint64
	current   *Toast
	timer     *time.Timer
	onDismiss func(Toast)
}

// NewToaster creates a toaster. onDismiss may be nil.
func NewToaster(onDismiss func(Toast)) *Toaster {
	return &Toaster{onDismiss: onDismiss}
}

// Show displays a toast for ttl
func (t *Toaster) Show(kind ToastKind, text string, ttl time.Duration) Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.seq++
	toast := Toast{
		ID:        t.seq,
		Kind:      kind,
		Text:      text,
		ExpiresAt: time.Now().Add(ttl),
	}
	t.current = &toast

	seq := t.seq
	t.timer = time.AfterFunc(ttl, func() { t.expire(seq) })
	return toast
}

// Cancel drops the current toast without firing onDismiss
func (t *Toaster) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	// a timer that already fired is waiting on mu; bumping seq makes it a no-op
	t.seq++
	t.current = nil
}

// Current returns the toast on screen, if any
func (t *Toaster) Current() (Toast, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return Toast{}, false
	}
	return *t.current, true
}

func (t *Toaster) expire(seq uint64) {
	t.mu.Lock()
	if seq != t.seq || t.current == nil {
		t.mu.Unlock()
		return
	}
	toast := *t.current
	t.current = nil
	t.timer = nil
	t.mu.Unlock()

	if t.onDismiss != nil {
		t.onDismiss(toast)
	}
}

func (t *Toaster) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
