package core_test

import (
	"context"
	"testing"
	"time"

	"warehouse-slotting/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	locker := core.NewLocalLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 1)
	require.NoError(t, err)

	other, err := locker.Lock(ctx, 2)
	require.NoError(t, err, "warehouses lock independently")
	other()

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()

	again, err := locker.Lock(ctx, 1)
	require.NoError(t, err)
	again()
}

func TestLocalLocker_SerialisesRuns(t *testing.T) {
	f := newFixture(t, "2", "1", "2", 2, 1, nil)
	box := f.item("box", dims("1", "1", "1"))

	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := f.svc.AssignOneUnit(f.ctx, f.whID, box)
			errs <- err
		}()
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-errs)
	}
	locs := f.locations(t)
	assert.Equal(t, 2, f.store.StockAt(locs[0].ID, box))
	assert.Equal(t, 2, f.store.StockAt(locs[1].ID, box))
}
