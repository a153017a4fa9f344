package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCommitter remembers every committed batch and can fail on a given call.
type recordingCommitter struct {
	batches [][]int
	failOn  int // 1-based commit call number that fails; 0 never fails
	calls   int
}

func (r *recordingCommitter) Commit(ctx context.Context, items []int) error {
	r.calls++
	if r.failOn == r.calls {
		return errors.New("disk full")
	}
	cp := append([]int(nil), items...)
	r.batches = append(r.batches, cp)
	return nil
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := New[int](0, &recordingCommitter{})
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = New[int](-3, &recordingCommitter{})
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = New[int](1, nil)
	assert.Error(t, err)
}

func TestPersister_BatchArithmetic(t *testing.T) {
	tests := []struct {
		items       int
		size        int
		wantFlushes int
	}{
		{0, 20, 0},
		{1, 2, 1},
		{2, 2, 1},
		{3, 2, 2},
		{40, 20, 2},
		{41, 20, 3},
		{7, 1, 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_items_size_%d", tt.items, tt.size), func(t *testing.T) {
			c := &recordingCommitter{}
			p, err := New[int](tt.size, c)
			require.NoError(t, err)

			ctx := context.Background()
			for i := 0; i < tt.items; i++ {
				_, err := p.Stage(ctx, i)
				require.NoError(t, err)
			}
			require.NoError(t, p.Close(ctx))

			assert.Equal(t, tt.wantFlushes, p.Flushes())
			assert.Len(t, c.batches, tt.wantFlushes)
			assert.Equal(t, tt.items, p.Committed())
			for i, b := range c.batches {
				if i < len(c.batches)-1 {
					assert.Len(t, b, tt.size, "every batch but the last is full")
				} else {
					assert.LessOrEqual(t, len(b), tt.size)
					assert.Greater(t, len(b), 0)
				}
			}
			assert.Equal(t, 0, p.Staged())
		})
	}
}

func TestPersister_StageReportsFlush(t *testing.T) {
	c := &recordingCommitter{}
	p, err := New[int](2, c)
	require.NoError(t, err)
	ctx := context.Background()

	flushed, err := p.Stage(ctx, 1)
	require.NoError(t, err)
	assert.False(t, flushed)
	assert.Equal(t, 1, p.Staged())

	flushed, err = p.Stage(ctx, 2)
	require.NoError(t, err)
	assert.True(t, flushed)
	assert.Equal(t, 0, p.Staged())
	assert.Equal(t, [][]int{{1, 2}}, c.batches)
}

func TestPersister_FlushFailureKeepsEarlierBatches(t *testing.T) {
	c := &recordingCommitter{failOn: 2}
	p, err := New[int](2, c)
	require.NoError(t, err)
	ctx := context.Background()

	var flushErr error
	for i := 1; i <= 6; i++ {
		if _, err := p.Stage(ctx, i); err != nil {
			flushErr = err
			break
		}
	}

	require.Error(t, flushErr)
	var fe *FlushError
	require.True(t, errors.As(flushErr, &fe))
	assert.Equal(t, 2, fe.Batch)
	assert.Equal(t, 2, fe.Size)
	assert.EqualError(t, errors.Unwrap(flushErr), "disk full")

	assert.Equal(t, [][]int{{1, 2}}, c.batches)
	assert.Equal(t, 1, p.Flushes())
	assert.Equal(t, 2, p.Committed())
	assert.Equal(t, 2, p.Staged(), "failed batch stays staged")
}

func TestPersister_BarrierAndHooks(t *testing.T) {
	var order []string
	var stats []FlushStats

	c := CommitFunc[string](func(ctx context.Context, items []string) error {
		order = append(order, "commit")
		return nil
	})
	p, err := New[string](2, c,
		WithBarrier[string](func(ctx context.Context) error {
			order = append(order, "barrier")
			return nil
		}),
		WithFlushHook[string](func(s FlushStats) {
			order = append(order, "hook")
			stats = append(stats, s)
		}),
	)
	require.NoError(t, err)
	ctx := context.Background()

	for _, s := range []string{"a", "b", "c"} {
		_, err := p.Stage(ctx, s)
		require.NoError(t, err)
	}
	require.NoError(t, p.Close(ctx))

	assert.Equal(t, []string{"barrier", "commit", "hook", "barrier", "commit", "hook"}, order)
	assert.Equal(t, []FlushStats{
		{Batch: 1, Size: 2, Committed: 2, Final: false},
		{Batch: 2, Size: 1, Committed: 3, Final: true},
	}, stats)
}

func TestPersister_BarrierError(t *testing.T) {
	c := &recordingCommitter{}
	p, err := New[int](1, c, WithBarrier[int](func(ctx context.Context) error {
		return context.Canceled
	}))
	require.NoError(t, err)

	_, err = p.Stage(context.Background(), 1)
	var fe *FlushError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.batches)
}
