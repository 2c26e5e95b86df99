// Package local implements lock.Locker for a single process.
package local

import (
	"context"
	"sync/atomic"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/lock"
)

// Locker is an in-process try-lock.
type Locker struct {
	held atomic.Bool
}

// NewLocker creates an unlocked Locker.
func NewLocker() *Locker {
	return &Locker{}
}

func (l *Locker) TryLock(_ context.Context) (bool, error) {
	return l.held.CompareAndSwap(false, true), nil
}

func (l *Locker) Unlock(_ context.Context) error {
	if !l.held.CompareAndSwap(true, false) {
		return lock.ErrNotHeld
	}
	return nil
}

var _ lock.Locker = (*Locker)(nil)
