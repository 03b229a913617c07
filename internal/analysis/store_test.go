package analysis

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/theirongolddev/cashraaga/internal/model"
	"github.com/theirongolddev/cashraaga/internal/store"
)

func fixture() *model.AnalysisResult {
	handle := "swiggy@icici"
	return &model.AnalysisResult{
		Summary: &model.Summary{
			Inflow:     80000,
			Outflow:    61000.5,
			NetSavings: 18999.5,
			ThisMonth: &model.ThisMonthSummary{
				Month:       "2025-06",
				Savings:     9000,
				PrevSavings: 7000,
				MomChange:   28.571428571428573,
			},
			SafeDailySpend: 850.25,
		},
		UPI:             &model.UPIInfo{ThisMonth: 12000, TopHandle: &handle, TotalUPI: 54000},
		EMI:             &model.EMIInfo{ThisMonth: 12500, MonthsTracked: 6},
		MonthlySavings:  []model.MonthlySaving{{Month: "2025-05", SignedAmount: 7000}, {Month: "2025-06", SignedAmount: -1200.75}},
		CategorySummary: []model.CategorySummary{{Category: "Food", SignedAmount: -9000}},
		CleanedCSV:      "date,description,amount\n2025-06-01,SALARY,80000\n",
		FutureBlock: &model.FutureBlock{
			PredictedEOMSavings: 8000,
			PredictedEOMRange:   [2]float64{5000, 11000},
			OverspendRisk:       model.OverspendRisk{Level: "medium", Probability: 0.4},
			RiskyCategories:     []model.RiskyCategory{{Name: "Shopping", ProjectedAmount: 9000, BaselineAmount: 6000}},
		},
	}
}

// failingKV fails every operation with err.
type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingKV) Put(context.Context, string, []byte) error   { return f.err }
func (f failingKV) Delete(context.Context, string) error        { return f.err }
func (f failingKV) Close() error                                { return nil }

func TestStore_RoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	first, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	assert.Nil(t, first.Get())

	want := fixture()
	require.NoError(t, first.Set(ctx, want))

	second, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, want, second.Get())
}

func TestStore_EmptyCollectionsSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	want := &model.AnalysisResult{
		MonthlySavings:  []model.MonthlySaving{},
		CategorySummary: []model.CategorySummary{},
	}

	s := New(kv, nil)
	require.NoError(t, s.Set(ctx, want))

	fresh, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, want, fresh.Get())
}

func TestStore_SetNilClears(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := New(kv, nil)

	require.NoError(t, s.Set(ctx, fixture()))
	require.NoError(t, s.Set(ctx, nil))

	assert.Nil(t, s.Get())
	_, err := kv.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, store.ErrNotFound)

	fresh, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	assert.Nil(t, fresh.Get())
}

func TestStore_CorruptEntryIsDiscarded(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{definitely not json"},
		{"schema invalid", `{"future_block": {"overspend_risk": {"level": "extreme", "probability": 2}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := store.NewMemory()
			require.NoError(t, kv.Put(ctx, StorageKey, []byte(tt.data)))

			core, logs := observer.New(zapcore.WarnLevel)
			s, err := Open(ctx, kv, zap.New(core))
			require.NoError(t, err)

			assert.Nil(t, s.Get())
			_, err = kv.Get(ctx, StorageKey)
			assert.ErrorIs(t, err, store.ErrNotFound)
			assert.Equal(t, 1, logs.FilterMessage("discarding corrupt persisted analysis").Len())

			// The store remains usable afterwards.
			require.NoError(t, s.Set(ctx, fixture()))
			assert.Equal(t, fixture(), s.Get())
		})
	}
}

func TestStore_RehydrateOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory(), nil)
	require.NoError(t, s.Rehydrate(ctx))
	assert.ErrorIs(t, s.Rehydrate(ctx), ErrAlreadyRehydrated)
}

func TestStore_RehydrateIOError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	core, logs := observer.New(zapcore.ErrorLevel)

	s, err := Open(ctx, failingKV{err: boom}, zap.New(core))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, s.Get())
	assert.Equal(t, 1, logs.Len())
}

func TestStore_SetRejectsUnserializable(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := New(kv, nil)
	require.NoError(t, s.Set(ctx, fixture()))

	calls := 0
	s.Subscribe(func(*model.AnalysisResult) { calls++ })

	bad := fixture()
	bad.Summary.Inflow = math.NaN()
	err := s.Set(ctx, bad)
	assert.ErrorIs(t, err, ErrUnserializable)

	assert.Equal(t, fixture(), s.Get())
	assert.Equal(t, 0, calls)

	fresh, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, fixture(), fresh.Get())
}

func TestStore_SetRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory(), nil)

	bad := fixture()
	bad.FutureBlock.OverspendRisk.Level = "catastrophic"
	assert.ErrorIs(t, s.Set(ctx, bad), ErrMalformed)
	assert.Nil(t, s.Get())
}

func TestStore_PersistFailureLeavesValue(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("read-only")
	s := New(failingKV{err: boom}, nil)

	assert.ErrorIs(t, s.Set(ctx, fixture()), boom)
	assert.Nil(t, s.Get())
}

func TestStore_SubscribersNotifiedOnce(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory(), nil)

	var got []*model.AnalysisResult
	cancel := s.Subscribe(func(a *model.AnalysisResult) { got = append(got, a) })

	require.NoError(t, s.Set(ctx, fixture()))
	require.Len(t, got, 1)
	assert.Equal(t, fixture(), got[0])

	require.NoError(t, s.Set(ctx, nil))
	require.Len(t, got, 2)
	assert.Nil(t, got[1])

	cancel()
	cancel()
	require.NoError(t, s.Set(ctx, fixture()))
	assert.Len(t, got, 2)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory(), nil)
	require.NoError(t, s.Set(ctx, fixture()))

	a := s.Get()
	a.Summary.Inflow = 1
	a.MonthlySavings[0].Month = "tampered"

	b := s.Get()
	assert.Equal(t, float64(80000), b.Summary.Inflow)
	assert.Equal(t, "2025-05", b.MonthlySavings[0].Month)
	assert.Equal(t, model.Projection{Income: 80000, ExistingMonthlyEMI: 12500}, s.Projection())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, fixture())
		}()
		go func() {
			defer wg.Done()
			if a := s.Get(); a != nil {
				assert.Equal(t, fixture(), a)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, fixture(), s.Get())
}

func TestStore_NotificationsFollowStoreOrder(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := New(kv, nil)

	var (
		mu       sync.Mutex
		notified []float64
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	s.Subscribe(func(a *model.AnalysisResult) {
		if a.Summary.Inflow == 1 {
			close(entered)
			<-release
		}
		mu.Lock()
		notified = append(notified, a.Summary.Inflow)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Set(ctx, &model.AnalysisResult{Summary: &model.Summary{Inflow: 1}}))
	}()
	<-entered

	go func() {
		defer wg.Done()
		assert.NoError(t, s.Set(ctx, &model.AnalysisResult{Summary: &model.Summary{Inflow: 2}}))
	}()
	// Wait until the second value is persisted before letting the first
	// notification finish.
	require.Eventually(t, func() bool {
		data, err := kv.Get(ctx, StorageKey)
		if err != nil {
			return false
		}
		a, err := Decode(data)
		return err == nil && a.Summary.Inflow == 2
	}, 5*time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{1, 2}, notified)
	assert.Equal(t, float64(2), s.Get().Summary.Inflow)
}

func TestStore_SavedAt(t *testing.T) {
	ctx := context.Background()

	mem := New(store.NewMemory(), nil)
	require.NoError(t, mem.Set(ctx, fixture()))
	_, ok := mem.SavedAt(ctx)
	assert.False(t, ok)

	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	defer db.Close()

	s := New(db, nil)
	_, ok = s.SavedAt(ctx)
	assert.False(t, ok)
	assert.False(t, s.Loaded())

	before := time.Now().Add(-2 * time.Second)
	require.NoError(t, s.Set(ctx, fixture()))
	at, ok := s.SavedAt(ctx)
	require.True(t, ok)
	assert.True(t, at.After(before), "SavedAt = %v", at)
	assert.True(t, s.Loaded())
}
