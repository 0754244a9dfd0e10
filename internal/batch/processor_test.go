package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/positivity/pkg/errors"
)

func TestNew_Defaults(t *testing.T) {
	p := New[string, string]()
	assert.NotNil(t, p)
	assert.Positive(t, p.MaxConcurrency())
	assert.Equal(t, 3, New[int, int](WithMaxConcurrency(3), WithMaxConcurrency(0)).MaxConcurrency())
}

func TestProcess_AllSuccessKeepsOrder(t *testing.T) {
	p := New[int, int](WithMaxConcurrency(4))
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	res, err := p.Process(context.Background(), items, func(_ context.Context, v int) (int, error) {
		return v * v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 50, res.TotalCount)
	assert.Equal(t, 50, res.SuccessCount)
	for i, r := range res.Results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, i*i, r.Result)
		assert.Equal(t, ItemStatusSuccess, r.Status)
	}
}

func TestProcess_FailuresAreIsolated(t *testing.T) {
	p := New[int, int]()
	boom := errors.New("boom")

	res, err := p.Process(context.Background(), []int{1, 2, 3, 4}, func(_ context.Context, v int) (int, error) {
		if v%2 == 0 {
			return -v, boom
		}
		return v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 2, res.FailureCount)
	assert.ErrorIs(t, res.Results[1].Error, boom)
	assert.Equal(t, ItemStatusFailed, res.Results[1].Status)
	assert.Equal(t, -2, res.Results[1].Result)
	assert.NoError(t, res.Results[2].Error)
}

func TestProcess_ConcurrencyLimit(t *testing.T) {
	var current, peak int32
	p := New[int, int](WithMaxConcurrency(2))

	_, err := p.Process(context.Background(), []int{1, 2, 3, 4, 5, 6}, func(_ context.Context, v int) (int, error) {
		c := atomic.AddInt32(&current, 1)
		defer atomic.AddInt32(&current, -1)
		for {
			old := atomic.LoadInt32(&peak)
			if c <= old || atomic.CompareAndSwapInt32(&peak, old, c) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return v, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestProcess_ItemTimeout(t *testing.T) {
	p := New[int, int](WithItemTimeout(10 * time.Millisecond))

	res, err := p.Process(context.Background(), []int{1}, func(ctx context.Context, _ int) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return 1, nil
		}
	})
	require.NoError(t, err)
	assert.Equal(t, ItemStatusTimeout, res.Results[0].Status)
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	res, err := New[int, int]().Process(ctx, []int{1, 2, 3}, func(_ context.Context, v int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return v, nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCanceled))
	require.NotNil(t, res)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, 3, res.FailureCount)
	for _, r := range res.Results {
		assert.Equal(t, ItemStatusCancelled, r.Status)
	}
}

func TestProcess_EmptyAndNil(t *testing.T) {
	p := New[int, int]()

	res, err := p.Process(context.Background(), nil, func(_ context.Context, v int) (int, error) { return v, nil })
	require.NoError(t, err)
	assert.Empty(t, res.Results)

	_, err = p.Process(context.Background(), []int{1}, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestItemStatus_String(t *testing.T) {
	assert.Equal(t, "SUCCESS", ItemStatusSuccess.String())
	assert.Equal(t, "FAILED", ItemStatusFailed.String())
	assert.Equal(t, "TIMEOUT", ItemStatusTimeout.String())
	assert.Equal(t, "CANCELLED", ItemStatusCancelled.String())
	assert.Equal(t, "UNKNOWN(9)", ItemStatus(9).String())
}
