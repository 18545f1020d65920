// Package logging wires zap into named per-subsystem loggers. The CLI builds
// one root logger at startup; everything else asks for a category.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Categories in use across the client.
const (
	CategoryAPI     = "api"
	CategorySession = "session"
	CategoryInbox   = "inbox"
	CategoryUI      = "ui"
)

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// Init installs the process-wide root logger. Call once from main.
func Init(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	root = l
}

// Get returns a named logger for the category.
func Get(category string) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(category)
}

// Sync flushes buffered log entries. Safe to call on shutdown paths.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
