package goroutine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

func TestRun_ReturnsError(t *testing.T) {
	want := errors.New("boom")
	err := Run(logger.NewNopLogger(), "task", func() error { return want })
	assert.ErrorIs(t, err, want)
}

func TestRun_RecoversPanic(t *testing.T) {
	err := Run(logger.NewNopLogger(), "member-7", func() error {
		panic("nil map")
	})

	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "member-7", pe.Name)
	assert.Equal(t, "nil map", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestSafeGo_DoesNotCrash(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	SafeGo(logger.NewNopLogger(), "worker", func() {
		defer wg.Done()
		panic("unexpected")
	})
	wg.Wait()
}
