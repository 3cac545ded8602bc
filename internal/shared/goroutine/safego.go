// Package goroutine provides helpers for running code with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

// PanicError is returned by Run when fn panicked.
type PanicError struct {
	Name  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Name, e.Value)
}

// Run calls fn synchronously and converts a panic into a *PanicError.
// The panic is logged with its stack trace.
func Run(log logger.Interface, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			log.Errorw("recovered from panic",
				"task", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)
			err = &PanicError{Name: name, Value: r, Stack: stack}
		}
	}()
	return fn()
}

// SafeGo launches fn in a goroutine. A panic is logged instead of crashing
// the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		_ = Run(log, name, func() error {
			fn()
			return nil
		})
	}()
}
