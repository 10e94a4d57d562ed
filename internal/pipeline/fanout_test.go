package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanOut_PreservesItemOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	results := FanOut(context.Background(), items, 3, func(ctx context.Context, n int) (string, error) {
		return fmt.Sprintf("r%d", n), nil
	})

	require.Len(t, results, 5)
	for i, r := range results {
		require.Equal(t, items[i], r.Item)
		require.Equal(t, fmt.Sprintf("r%d", items[i]), r.Value)
		require.NoError(t, r.Err)
	}
}

func TestFanOut_FailingItemDoesNotAffectSiblings(t *testing.T) {
	failErr := errors.New("boom")

	results := FanOut(context.Background(), []int{1, 2, 3}, 2, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, failErr
		}
		return n * 10, nil
	})

	require.NoError(t, results[0].Err)
	require.Equal(t, 10, results[0].Value)
	require.ErrorIs(t, results[1].Err, failErr)
	require.NoError(t, results[2].Err)
	require.Equal(t, 30, results[2].Value)
}

func TestFanOut_RespectsConcurrencyLimit(t *testing.T) {
	var mu sync.Mutex
	running, peak := 0, 0

	FanOut(context.Background(), make([]int, 20), 3, func(ctx context.Context, _ int) (struct{}, error) {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()

		mu.Lock()
		running--
		mu.Unlock()
		return struct{}{}, nil
	})

	require.LessOrEqual(t, peak, 3)
}

func TestFanOut_EmptyInput(t *testing.T) {
	results := FanOut(context.Background(), nil, 3, func(ctx context.Context, _ int) (int, error) {
		t.Fatal("fn must not be called")
		return 0, nil
	})
	require.Empty(t, results)
}
