package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/ovenlight/orderboard/internal/clock"
	"github.com/ovenlight/orderboard/internal/communityctx"
	counterdomain "github.com/ovenlight/orderboard/internal/counter/domain"
	"github.com/ovenlight/orderboard/internal/counter/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCounterService(t *testing.T) (counterdomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Serialize writers; the in-memory sqlite otherwise reports busy
	// under concurrent transactions.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&counterdomain.Record{}))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func scoped(communityID snowflake.ID) context.Context {
	return communityctx.WithCommunityID(context.Background(), communityID)
}

func TestIncrementCreatesAndAccumulates(t *testing.T) {
	svc, db := setupCounterService(t)
	ctx := scoped(100)

	for want := 1; want <= 3; want++ {
		got, err := svc.Increment(ctx, 42, 1, "Alice")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	var record counterdomain.Record
	require.NoError(t, db.Where("community_id = ? AND member_id = ?", 100, 42).First(&record).Error)
	assert.Equal(t, "Alice", record.DisplayName)
	assert.Equal(t, 3, record.Count)
}

func TestIncrementClampsAtZero(t *testing.T) {
	svc, _ := setupCounterService(t)
	ctx := scoped(100)

	got, err := svc.Increment(ctx, 42, -5, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = svc.SetValue(ctx, 42, 3, "Alice")
	require.NoError(t, err)

	got, err = svc.Increment(ctx, 42, -10, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestSetThenIncrement(t *testing.T) {
	svc, _ := setupCounterService(t)
	ctx := scoped(100)

	_, err := svc.SetValue(ctx, 42, 5, "Alice")
	require.NoError(t, err)

	got, err := svc.Increment(ctx, 42, 3, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 8, got)
}

func TestSetValueClampsNegative(t *testing.T) {
	svc, _ := setupCounterService(t)
	ctx := scoped(100)

	got, err := svc.SetValue(ctx, 42, -7, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestMutationsRefreshDisplayName(t *testing.T) {
	svc, db := setupCounterService(t)
	ctx := scoped(100)

	_, err := svc.Increment(ctx, 42, 1, "Alice")
	require.NoError(t, err)

	_, err = svc.SetValue(ctx, 42, 5, "Alicia")
	require.NoError(t, err)

	var record counterdomain.Record
	require.NoError(t, db.Where("member_id = ?", 42).First(&record).Error)
	assert.Equal(t, "Alicia", record.DisplayName)

	// An empty name never overwrites the cached one.
	_, err = svc.Increment(ctx, 42, 1, "")
	require.NoError(t, err)

	require.NoError(t, db.Where("member_id = ?", 42).First(&record).Error)
	assert.Equal(t, "Alicia", record.DisplayName)
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _ := setupCounterService(t)
	ctx := scoped(100)

	_, err := svc.Increment(ctx, 42, 1, "Alice")
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, 42)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Remove(ctx, 42)
	require.NoError(t, err)
	assert.False(t, removed)

	records, err := svc.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTopNOrderingAndLimit(t *testing.T) {
	svc, _ := setupCounterService(t)
	ctx := scoped(100)

	_, err := svc.SetValue(ctx, 3, 5, "Carol")
	require.NoError(t, err)
	_, err = svc.SetValue(ctx, 1, 9, "Alice")
	require.NoError(t, err)
	_, err = svc.SetValue(ctx, 4, 5, "Dave")
	require.NoError(t, err)
	_, err = svc.SetValue(ctx, 2, 7, "Bob")
	require.NoError(t, err)

	records, err := svc.TopN(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, snowflake.ID(1), records[0].MemberID)
	assert.Equal(t, snowflake.ID(2), records[1].MemberID)
	// Tie on count 5 breaks by member_id ascending.
	assert.Equal(t, snowflake.ID(3), records[2].MemberID)

	// Stable across repeated calls with no intervening writes.
	again, err := svc.TopN(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestTopNEmptyCommunity(t *testing.T) {
	svc, _ := setupCounterService(t)

	records, err := svc.TopN(scoped(999), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestResetAllPreservesRowsAndNames(t *testing.T) {
	svc, db := setupCounterService(t)
	ctx := scoped(100)

	_, err := svc.SetValue(ctx, 1, 9, "Alice")
	require.NoError(t, err)
	_, err = svc.SetValue(ctx, 2, 7, "Bob")
	require.NoError(t, err)

	affected, err := svc.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	var records []counterdomain.Record
	require.NoError(t, db.Where("community_id = ?", 100).Order("member_id").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, "Alice", records[0].DisplayName)
	assert.Equal(t, "Bob", records[1].DisplayName)
	assert.Equal(t, 0, records[0].Count)
	assert.Equal(t, 0, records[1].Count)
}

func TestCommunityIsolation(t *testing.T) {
	svc, _ := setupCounterService(t)

	_, err := svc.Increment(scoped(100), 42, 1, "Alice")
	require.NoError(t, err)
	_, err = svc.SetValue(scoped(200), 42, 9, "Alice")
	require.NoError(t, err)

	records, err := svc.TopN(scoped(100), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Count)

	affected, err := svc.ResetAll(scoped(200))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	records, err = svc.TopN(scoped(100), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Count)
}

func TestConcurrentIncrementsLoseNoUpdates(t *testing.T) {
	svc, _ := setupCounterService(t)
	ctx := scoped(100)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Increment(ctx, 42, 1, "Alice"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent increment: %v", err)
	}

	records, err := svc.TopN(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, workers, records[0].Count)
}

func TestMissingCommunityScope(t *testing.T) {
	svc, _ := setupCounterService(t)

	_, err := svc.Increment(context.Background(), 42, 1, "Alice")
	assert.ErrorIs(t, err, counterdomain.ErrInvalidCommunity)

	_, err = svc.TopN(context.Background(), 10)
	assert.ErrorIs(t, err, counterdomain.ErrInvalidCommunity)

	_, err = svc.ResetAll(context.Background())
	assert.ErrorIs(t, err, counterdomain.ErrInvalidCommunity)
}
