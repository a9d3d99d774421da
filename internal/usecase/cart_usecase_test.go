package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"storefront/internal/domain/cart"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type CartStoreMock struct{ mock.Mock }

func (m *CartStoreMock) Load(ctx context.Context, sessionID string) ([]byte, error) {
	args := m.Called(ctx, sessionID)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *CartStoreMock) Save(ctx context.Context, sessionID string, payload []byte) error {
	args := m.Called(ctx, sessionID, payload)
	return args.Error(0)
}

func newCartUC(store repo.CartStore) *usecase.CartUsecase {
	return usecase.NewCartUsecase(store, cart.DefaultShippingPolicy())
}

func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	assert.Equal(t, msg, he.Message)
}

func f64(v float64) *float64 { return &v }

// =====================
// GetCart
// =====================

func TestCartUsecase_GetCart_EmptyWhenNothingStored(t *testing.T) {
	store := new(CartStoreMock)
	store.On("Load", mock.Anything, "s1").Return(nil, repo.ErrNotFound)

	out, err := newCartUC(store).GetCart(context.Background(), "s1")
	require.NoError(t, err)

	assert.Empty(t, out.Items)
	assert.Equal(t, 0, out.TotalItems)
	assert.Equal(t, "EUR", out.Currency)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_GetCart_RecomputesRestoredTotals(t *testing.T) {
	store := new(CartStoreMock)
	stored := `{"version":1,"items":[{"id":"a","name":"Widget","image":"img.png","price":10,"weight":0.5,"quantity":1},{"id":"b","name":"Gadget","image":"img2.png","price":20,"weight":4.6,"quantity":1}]}`
	store.On("Load", mock.Anything, "s1").Return([]byte(stored), nil)

	out, err := newCartUC(store).GetCart(context.Background(), "s1")
	require.NoError(t, err)

	assert.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.TotalItems)
	assert.Equal(t, 5.10, out.TotalWeight)
	assert.Equal(t, 30.0, out.SubTotal)
	assert.Equal(t, 15.0, out.ShippingCost)
	assert.Equal(t, 45.0, out.GrandTotal)
}

func TestCartUsecase_GetCart_CorruptFailsLoudly(t *testing.T) {
	store := new(CartStoreMock)
	store.On("Load", mock.Anything, "s1").Return([]byte(`{broken`), nil)

	_, err := newCartUC(store).GetCart(context.Background(), "s1")
	assertHTTPError(t, err, http.StatusInternalServerError, "corrupt cart")
}

func TestCartUsecase_GetCart_NoSession(t *testing.T) {
	_, err := newCartUC(new(CartStoreMock)).GetCart(context.Background(), "")
	assertHTTPError(t, err, http.StatusUnauthorized, "no session")
}

// =====================
// AddItem
// =====================

func TestCartUsecase_AddItem_PersistsSnapshot(t *testing.T) {
	store := new(CartStoreMock)
	store.On("Load", mock.Anything, "s1").Return(nil, repo.ErrNotFound)
	store.On("Save", mock.Anything, "s1", mock.MatchedBy(func(b []byte) bool {
		snap, err := cart.DecodeSnapshot(b)
		return err == nil && len(snap.Items) == 1 && snap.Items[0].ID == "a" && snap.Items[0].Weight == 0.5
	})).Return(nil)

	out, err := newCartUC(store).AddItem(context.Background(), "s1", usecase.AddItemInput{
		ID: "a", Name: "Widget", Image: "img.png", Price: 10, Weight: "0.5",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, out.TotalItems)
	assert.Equal(t, 15.0, out.GrandTotal)
	store.AssertExpectations(t)
}

func TestCartUsecase_AddItem_MissingWeightDefaultsToZero(t *testing.T) {
	uc := newCartUC(infraRepo.NewCartMemoryStore(0))

	out, err := uc.AddItem(context.Background(), "s1", usecase.AddItemInput{ID: "a", Price: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Items[0].Weight)
	assert.Equal(t, 5.0, out.ShippingCost)
}

func TestCartUsecase_AddItem_InvalidWeightRejected(t *testing.T) {
	store := new(CartStoreMock)

	_, err := newCartUC(store).AddItem(context.Background(), "s1", usecase.AddItemInput{ID: "a", Price: 3, Weight: "heavy"})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid weight")
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddItem_InvalidPriceRejected(t *testing.T) {
	store := new(CartStoreMock)
	store.On("Load", mock.Anything, "s1").Return(nil, repo.ErrNotFound)

	_, err := newCartUC(store).AddItem(context.Background(), "s1", usecase.AddItemInput{ID: "a", Price: -3})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid price")
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddItem_SaveFailureIsNoop(t *testing.T) {
	mem := infraRepo.NewCartMemoryStore(0)
	uc := newCartUC(mem)
	_, err := uc.AddItem(context.Background(), "s1", usecase.AddItemInput{ID: "a", Price: 10})
	require.NoError(t, err)
	before, err := mem.Load(context.Background(), "s1")
	require.NoError(t, err)

	failing := new(CartStoreMock)
	failing.On("Load", mock.Anything, "s1").Return(before, nil)
	failing.On("Save", mock.Anything, "s1", mock.Anything).Return(errors.New("disk full"))

	_, err = newCartUC(failing).AddItem(context.Background(), "s1", usecase.AddItemInput{ID: "b", Price: 1})
	assertHTTPError(t, err, http.StatusInternalServerError, "storage error")

	after, err := mem.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCartUsecase_AddItem_TwiceGivesQuantityTwo(t *testing.T) {
	uc := newCartUC(infraRepo.NewCartMemoryStore(0))
	ctx := context.Background()

	_, err := uc.AddItem(ctx, "s1", usecase.AddItemInput{ID: "a", Price: 10, Weight: "1"})
	require.NoError(t, err)
	out, err := uc.AddItem(ctx, "s1", usecase.AddItemInput{ID: "a", Price: 10, Weight: "1"})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.Items[0].Quantity)
	assert.Equal(t, 2.0, out.TotalWeight)
}

// =====================
// RemoveItem / SetQuantity
// =====================

func TestCartUsecase_RemoveItem_AbsentDoesNotSave(t *testing.T) {
	store := new(CartStoreMock)
	store.On("Load", mock.Anything, "s1").Return([]byte(`{"version":1,"items":[{"id":"a","price":10,"quantity":2}]}`), nil)

	out, err := newCartUC(store).RemoveItem(context.Background(), "s1", "missing")
	require.NoError(t, err)

	assert.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.TotalItems)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_RemoveItem(t *testing.T) {
	uc := newCartUC(infraRepo.NewCartMemoryStore(0))
	ctx := context.Background()
	_, err := uc.AddItem(ctx, "s1", usecase.AddItemInput{ID: "a", Price: 10})
	require.NoError(t, err)

	out, err := uc.RemoveItem(ctx, "s1", "a")
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	again, err := uc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, again.Items)
}

func TestCartUsecase_SetQuantity(t *testing.T) {
	uc := newCartUC(infraRepo.NewCartMemoryStore(0))
	ctx := context.Background()
	_, err := uc.AddItem(ctx, "s1", usecase.AddItemInput{ID: "a", Price: 10, Weight: "2"})
	require.NoError(t, err)

	out, err := uc.SetQuantity(ctx, "s1", "a", usecase.SetQuantityInput{Quantity: f64(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalItems)
	assert.Equal(t, 6.0, out.TotalWeight)
	assert.Equal(t, 15.0, out.ShippingCost)

	out, err = uc.SetQuantity(ctx, "s1", "a", usecase.SetQuantityInput{Quantity: f64(0)})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestCartUsecase_SetQuantity_Rejected(t *testing.T) {
	uc := newCartUC(infraRepo.NewCartMemoryStore(0))
	ctx := context.Background()
	_, err := uc.AddItem(ctx, "s1", usecase.AddItemInput{ID: "a", Price: 10})
	require.NoError(t, err)

	_, err = uc.SetQuantity(ctx, "s1", "a", usecase.SetQuantityInput{Quantity: f64(-1)})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid quantity")

	_, err = uc.SetQuantity(ctx, "s1", "a", usecase.SetQuantityInput{Quantity: f64(1.5)})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid quantity")

	_, err = uc.SetQuantity(ctx, "s1", "a", usecase.SetQuantityInput{})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid quantity")

	_, err = uc.SetQuantity(ctx, "s1", "missing", usecase.SetQuantityInput{Quantity: f64(2)})
	assertHTTPError(t, err, http.StatusNotFound, "not found")

	out, err := uc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Items[0].Quantity)
}

// =====================
// Session isolation
// =====================

func TestCartUsecase_SessionsAreIsolated(t *testing.T) {
	uc := newCartUC(infraRepo.NewCartMemoryStore(0))
	ctx := context.Background()

	_, err := uc.AddItem(ctx, "alice", usecase.AddItemInput{ID: "a", Price: 10})
	require.NoError(t, err)

	bob, err := uc.GetCart(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bob.Items)
}

func TestCartUsecase_ConcurrentAddsOnOneSession(t *testing.T) {
	uc := newCartUC(infraRepo.NewCartMemoryStore(0))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.AddItem(ctx, "s1", usecase.AddItemInput{ID: "a", Price: 1})
		}()
	}
	wg.Wait()

	out, err := uc.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 50, out.Items[0].Quantity)
}
