package session

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/orderlens/report"
	"github.com/spektr-org/orderlens/store"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testStore() *store.Store {
	mk := func(id, day, category string) store.Order {
		return store.Order{
			OrderID:     id,
			PurchasedAt: date(day).Add(9 * time.Hour),
			Category:    category,
			SellerID:    "s-" + id,
			ReviewScore: 4,
			PaymentType: "credit_card",
			Latitude:    math.NaN(),
			Longitude:   math.NaN(),
		}
	}
	return store.New([]store.Order{
		mk("1", "2018-01-01", "toys"),
		mk("2", "2018-01-02", "books"),
		mk("3", "2018-01-03", "toys"),
		mk("4", "2018-01-10", "garden"),
	}, nil)
}

// ============================================================================
// SESSION TESTS
// ============================================================================

func TestNewDefaultsToStoreBounds(t *testing.T) {
	s := New(testStore())

	_, err := uuid.Parse(s.ID())
	assert.NoError(t, err)

	f := s.Filter()
	assert.Equal(t, date("2018-01-01"), f.Start())
	assert.Equal(t, date("2018-01-10"), f.End())
	assert.Nil(t, f.Categories())
	assert.Nil(t, s.Last())
	assert.Equal(t, []string{"books", "garden", "toys"}, s.Categories())
}

func TestApplyValidRequest(t *testing.T) {
	s := New(testStore())
	d, err := s.Apply(context.Background(), Request{
		Start:      date("2018-01-01"),
		End:        date("2018-01-03"),
		Categories: []string{"toys"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, d.FilteredRecords)
	assert.Equal(t, d, s.Last())
	assert.Empty(t, d.Warnings)
}

func TestApplyInvalidRangeKeepsPriorRange(t *testing.T) {
	s := New(testStore())
	ctx := context.Background()

	_, err := s.Apply(ctx, Request{Start: date("2018-01-02"), End: date("2018-01-03")})
	require.NoError(t, err)

	d, err := s.Apply(ctx, Request{
		Start:      date("2018-01-09"),
		End:        date("2018-01-01"),
		Categories: []string{"books"},
	})
	require.NoError(t, err)

	f := s.Filter()
	assert.Equal(t, date("2018-01-02"), f.Start())
	assert.Equal(t, date("2018-01-03"), f.End())
	assert.Equal(t, []string{"books"}, f.Categories(), "categories still apply")

	assert.Equal(t, 1, d.FilteredRecords)
	require.NotEmpty(t, d.Warnings)
	assert.Contains(t, d.Warnings[0], report.ErrInvalidRange.Error())
}

func TestSetRangeAndCategories(t *testing.T) {
	s := New(testStore())
	ctx := context.Background()

	d, err := s.SetCategories(ctx, "toys", "garden")
	require.NoError(t, err)
	assert.Equal(t, 3, d.FilteredRecords)

	d, err = s.SetRange(ctx, date("2018-01-03"), date("2018-01-10"))
	require.NoError(t, err)
	assert.Equal(t, 2, d.FilteredRecords)

	d, err = s.SetRange(ctx, date("2018-01-10"), date("2018-01-03"))
	require.NoError(t, err)
	assert.Equal(t, 2, d.FilteredRecords, "invalid range leaves the filter unchanged")
	assert.NotEmpty(t, d.Warnings)

	d, err = s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, d.FilteredRecords)
	assert.Nil(t, s.Filter().Categories())
}

func TestRefreshUsesCurrentFilter(t *testing.T) {
	s := New(testStore())
	ctx := context.Background()
	_, err := s.SetCategories(ctx, "books")
	require.NoError(t, err)

	d, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.FilteredRecords)
}

func TestLatestRequestWins(t *testing.T) {
	s := New(testStore())
	ctx := context.Background()

	started := make(chan struct{})
	s.run = func(ctx context.Context, st *store.Store, f report.Filter, opts ...report.Option) (*report.Dashboard, error) {
		if cats := f.Categories(); len(cats) == 1 && cats[0] == "slow" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return report.Run(ctx, st, f, opts...)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := s.SetCategories(ctx, "slow")
		errc <- err
	}()
	<-started

	d, err := s.SetCategories(ctx, "toys")
	require.NoError(t, err)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded request did not return")
	}

	assert.Same(t, d, s.Last())
	assert.Equal(t, []string{"toys"}, s.Filter().Categories())
}

func TestRunErrorIsReturned(t *testing.T) {
	s := New(testStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, s.Last())
}

func TestFailedRequestKeepsFilter(t *testing.T) {
	s := New(testStore())
	before := s.Filter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.SetCategories(ctx, "toys")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, s.Filter(), "no dashboard was built for the cancelled request")
	assert.Nil(t, s.Last())

	d, err := s.SetRange(context.Background(), date("2018-01-02"), date("2018-01-10"))
	require.NoError(t, err)
	assert.Equal(t, 3, d.FilteredRecords, "the next request starts from the committed filter")
	assert.Nil(t, s.Filter().Categories())
}

func TestEmptyStoreSession(t *testing.T) {
	s := New(store.New(nil, nil))
	d, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.Equal(t, "All time", s.Filter().Period())
}
