package exit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/FactomWyomingEntity/prosper-stake/exit"
	"github.com/stretchr/testify/require"
)

func TestExitHandler_Close(t *testing.T) {
	require := require.New(t)
	e := NewExitHandler()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		e.AddExit(func() error {
			order = append(order, i)
			return fmt.Errorf("closer %d", i)
		})
	}
	cancelled := false
	e.AddCancel(func() { cancelled = true })

	e.Close()
	e.Close()
	require.True(cancelled)
	require.Equal([]int{2, 1, 0}, order)
}

func TestExitHandler_CloseWithTimeout(t *testing.T) {
	require := require.New(t)
	e := NewExitHandler()

	require.NoError(e.CloseWithTimeout(context.Background()))

	block := make(chan struct{})
	defer close(block)
	slow := NewExitHandler()
	slow.AddExit(func() error {
		<-block
		return nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*50)
	defer cancel()
	require.Equal(context.DeadlineExceeded, slow.CloseWithTimeout(ctx))
}
