package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
)

// fakeRepo is an in-memory Repository. AdjustQuantity clamps at zero the way
// the store does.
type fakeRepo struct {
	entries map[id.ID]*StockEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[id.ID]*StockEntry)}
}

func (f *fakeRepo) Create(ctx context.Context, e *StockEntry) error {
	copied := *e
	f.entries[e.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, entryID id.ID) (*StockEntry, error) {
	e, ok := f.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("stock entry", entryID)
	}
	copied := *e
	return &copied, nil
}

func (f *fakeRepo) GetByIDForUpdate(ctx context.Context, entryID id.ID) (*StockEntry, error) {
	return f.GetByID(ctx, entryID)
}

func (f *fakeRepo) FindByKey(ctx context.Context, brand, wineName string, quinta *string) (*StockEntry, error) {
	for _, e := range f.entries {
		if e.Brand == brand && e.WineName == wineName && sameLocation(e.Quinta, quinta) {
			copied := *e
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("stock entry", brand+" "+wineName)
}

func (f *fakeRepo) ListByWine(ctx context.Context, brand, wineName string) ([]*StockEntry, error) {
	var out []*StockEntry
	for _, e := range f.entries {
		if e.Brand == brand && e.WineName == wineName {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]*StockEntry, error) {
	var out []*StockEntry
	for _, e := range f.entries {
		if filter.LowStockOnly && !(e.LowStockAlert && e.Quantity <= LowStockThreshold) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, e *StockEntry) error {
	if _, ok := f.entries[e.ID]; !ok {
		return apperror.NewNotFound("stock entry", e.ID)
	}
	copied := *e
	copied.Version++
	f.entries[e.ID] = &copied
	e.Version++
	return nil
}

func (f *fakeRepo) AdjustQuantity(ctx context.Context, entryID id.ID, delta int) (int, error) {
	e, ok := f.entries[entryID]
	if !ok {
		return 0, apperror.NewNotFound("stock entry", entryID)
	}
	e.Quantity += delta
	if e.Quantity < 0 {
		e.Quantity = 0
	}
	e.Version++
	return e.Quantity, nil
}

func (f *fakeRepo) Delete(ctx context.Context, entryID id.ID) error {
	if _, ok := f.entries[entryID]; !ok {
		return apperror.NewNotFound("stock entry", entryID)
	}
	delete(f.entries, entryID)
	return nil
}

func (f *fakeRepo) LocationHasStock(ctx context.Context, quinta *string) (bool, error) {
	for _, e := range f.entries {
		if sameLocation(e.Quinta, quinta) && e.Quantity > 0 {
			return true, nil
		}
	}
	return false, nil
}

func sameLocation(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func seedEntry(t *testing.T, repo *fakeRepo, brand, wineName string, wineType WineType, location string, quantity int) *StockEntry {
	t.Helper()
	e := NewStockEntry(brand, wineName, wineType, location, quantity)
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestAddWine_Validation(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	err := svc.AddWine(ctx, NewStockEntry("", "Vintage 2017", TypePorto, "", 10))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	err = svc.AddWine(ctx, NewStockEntry("Dow's", "Vintage 2017", "Verde", "", 10))
	require.Error(t, err)

	err = svc.AddWine(ctx, NewStockEntry("Dow's", "Vintage 2017", TypePorto, "Ajuste de Stock", 10))
	require.Error(t, err, "reserved names are not storage locations")
}

func TestAddWine_DuplicateKey(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.AddWine(ctx, NewStockEntry("Dow's", "Vintage 2017", TypePorto, "", 10)))

	err := svc.AddWine(ctx, NewStockEntry("Dow's", "Vintage 2017", TypePorto, "Stock Geral", 5))
	require.Error(t, err, "empty location and Stock Geral are the same key")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)

	// Same wine at a different location is a different entry.
	require.NoError(t, svc.AddWine(ctx, NewStockEntry("Dow's", "Vintage 2017", TypePorto, "Quinta do Bomfim", 5)))
}

func TestAdjustQuantity(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	e := seedEntry(t, repo, "Dow's", "Vintage 2017", TypePorto, "", 4)

	_, err := svc.AdjustQuantity(ctx, e.ID, 0)
	require.Error(t, err, "zero delta is rejected")

	quantity, err := svc.AdjustQuantity(ctx, e.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, 10, quantity)

	quantity, err = svc.AdjustQuantity(ctx, e.ID, -25)
	require.NoError(t, err)
	assert.Equal(t, 0, quantity, "decrement clamps at zero instead of going negative")

	_, err = svc.AdjustQuantity(ctx, id.New(), 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteEntry_Guards(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	stocked := seedEntry(t, repo, "Dow's", "Vintage 2017", TypePorto, "", 3)

	err := svc.DeleteEntry(ctx, stocked.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsPrecondition(err), "entry with stock cannot be deleted")

	// Empty here, but the sibling at another location still holds bottles.
	empty := seedEntry(t, repo, "Graham's", "Six Grapes", TypePorto, "", 0)
	seedEntry(t, repo, "Graham's", "Six Grapes", TypePorto, "Quinta do Bomfim", 12)

	err = svc.DeleteEntry(ctx, empty.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsPrecondition(err), "wine with stock elsewhere cannot be deleted")

	// Fully drained everywhere: deletion goes through.
	lonely := seedEntry(t, repo, "Altano", "Branco 2023", TypeBranco, "", 0)
	require.NoError(t, svc.DeleteEntry(ctx, lonely.ID))
	_, err = svc.GetByID(ctx, lonely.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAvailable_MissingEntryReadsAsZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	seedEntry(t, repo, "Dow's", "Vintage 2017", TypePorto, "", 10)

	quantity, err := svc.Available(ctx, "Dow's", "Vintage 2017", "Stock Geral")
	require.NoError(t, err)
	assert.Equal(t, 10, quantity)

	quantity, err = svc.Available(ctx, "Dow's", "Vintage 2017", "Quinta dos Canais")
	require.NoError(t, err)
	assert.Equal(t, 0, quantity)
}

func TestApplyOutbound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	e := seedEntry(t, repo, "Dow's", "Vintage 2017", TypePorto, "", 10)

	require.NoError(t, svc.ApplyOutbound(ctx, "Dow's", "Vintage 2017", "Stock Geral", 4))
	got, err := svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)

	// Missing source entry is a logged no-op, not an error.
	require.NoError(t, svc.ApplyOutbound(ctx, "Unknown", "Wine", "Stock Geral", 4))

	// Over-decrement clamps.
	require.NoError(t, svc.ApplyOutbound(ctx, "Dow's", "Vintage 2017", "Stock Geral", 100))
	got, err = svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestApplyInbound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	e := seedEntry(t, repo, "Dow's", "Vintage 2017", TypePorto, "Quinta do Bomfim", 5)

	// Existing destination entry is incremented.
	require.NoError(t, svc.ApplyInbound(ctx, "Dow's", "Vintage 2017", "Quinta do Bomfim", 3))
	got, err := svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)

	// Missing destination entry is created, wine type copied from a sibling.
	require.NoError(t, svc.ApplyInbound(ctx, "Dow's", "Vintage 2017", "Quinta dos Canais", 2))
	created, err := svc.FindEntry(ctx, "Dow's", "Vintage 2017", "Quinta dos Canais")
	require.NoError(t, err)
	assert.Equal(t, TypePorto, created.WineType)
	assert.Equal(t, 2, created.Quantity)

	// Wine unknown everywhere gets the default type.
	require.NoError(t, svc.ApplyInbound(ctx, "New Brand", "New Wine", "Stock Geral", 6))
	fresh, err := svc.FindEntry(ctx, "New Brand", "New Wine", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultWineType, fresh.WineType)
}

func TestLowStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	flaggedLow := seedEntry(t, repo, "Dow's", "Vintage 2017", TypePorto, "", 3)
	_, err := svc.SetLowStockAlert(ctx, flaggedLow.ID, true)
	require.NoError(t, err)

	flaggedHigh := seedEntry(t, repo, "Graham's", "Six Grapes", TypePorto, "", 50)
	_, err = svc.SetLowStockAlert(ctx, flaggedHigh.ID, true)
	require.NoError(t, err)

	seedEntry(t, repo, "Altano", "Branco 2023", TypeBranco, "", 1) // low but not flagged

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1, "only flagged entries at or below the threshold alert")
	assert.Equal(t, "Dow's", low[0].Brand)
}

func TestNormalizeLocation(t *testing.T) {
	assert.Nil(t, NormalizeLocation(""))
	assert.Nil(t, NormalizeLocation("Stock Geral"))

	loc := NormalizeLocation("Quinta do Bomfim")
	require.NotNil(t, loc)
	assert.Equal(t, "Quinta do Bomfim", *loc)
}
