package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func cartJSON(t *testing.T, items []model.CartItem) []byte {
	t.Helper()
	data, err := json.Marshal(items)
	assert.NoError(t, err)
	return data
}

func TestCartUsecase_GetCart_Empty(t *testing.T) {
	carts := new(CartRepoMock)
	uc := NewCartUsecase(carts, new(ProductRepoMock))

	carts.On("LoadSnapshot", mock.Anything, "user-1").Return([]byte(nil), false, nil)

	out, err := uc.GetCart(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.TotalMilli)
}

func TestCartUsecase_GetCart_CorruptSnapshotTreatedAsEmpty(t *testing.T) {
	carts := new(CartRepoMock)
	uc := NewCartUsecase(carts, new(ProductRepoMock))

	carts.On("LoadSnapshot", mock.Anything, "user-1").Return([]byte("{not json"), true, nil)

	out, err := uc.GetCart(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestCartUsecase_AddToCart_NewItemSnapshotsNameAndPrice(t *testing.T) {
	ctx := context.Background()
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	uc := NewCartUsecase(carts, products)

	products.On("FindByID", mock.Anything, "prod-1").Return(model.Product{
		ID: "prod-1", StoreID: "store-1", Name: "Açaí 500ml", PriceMilli: 25000, IsActive: true,
	}, nil)
	carts.On("LoadSnapshot", mock.Anything, "user-1").Return([]byte(nil), false, nil)
	carts.On("SaveSnapshot", mock.Anything, "user-1", mock.MatchedBy(func(data []byte) bool {
		var items []model.CartItem
		if err := json.Unmarshal(data, &items); err != nil {
			return false
		}
		return len(items) == 1 && items[0].Name == "Açaí 500ml" && items[0].PriceMilli == 25000
	})).Return(nil)

	out, err := uc.AddToCart(ctx, "user-1", AddCartInput{ProductID: "prod-1", Qty: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(50000), out.TotalMilli)

	carts.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_SameProductIncrementsQty(t *testing.T) {
	ctx := context.Background()
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	uc := NewCartUsecase(carts, products)

	existing := []model.CartItem{
		{ProductID: "prod-1", StoreID: "store-1", Name: "Pizza", PriceMilli: 1000, Qty: 1},
	}

	products.On("FindByID", mock.Anything, "prod-1").Return(model.Product{
		ID: "prod-1", StoreID: "store-1", Name: "Pizza", PriceMilli: 1200, IsActive: true,
	}, nil)
	carts.On("LoadSnapshot", mock.Anything, "user-1").Return(cartJSON(t, existing), true, nil)
	carts.On("SaveSnapshot", mock.Anything, "user-1", mock.Anything).Return(nil)

	out, err := uc.AddToCart(ctx, "user-1", AddCartInput{ProductID: "prod-1", Qty: 1})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(2), out.Items[0].Qty)
	//数量加算では追加時点の価格スナップショットを保つ
	assert.Equal(t, int64(1000), out.Items[0].PriceMilli)
	assert.Equal(t, int64(2000), out.TotalMilli)
}

func TestCartUsecase_AddToCart_InactiveProductRejected(t *testing.T) {
	products := new(ProductRepoMock)
	uc := NewCartUsecase(new(CartRepoMock), products)

	products.On("FindByID", mock.Anything, "prod-1").Return(model.Product{ID: "prod-1", IsActive: false}, nil)

	_, err := uc.AddToCart(context.Background(), "user-1", AddCartInput{ProductID: "prod-1", Qty: 1})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCartUsecase_AddToCart_UnknownProductRejected(t *testing.T) {
	products := new(ProductRepoMock)
	uc := NewCartUsecase(new(CartRepoMock), products)

	products.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddToCart(context.Background(), "user-1", AddCartInput{ProductID: "nope", Qty: 1})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCartUsecase_UpdateItem_ZeroRemovesAndEmptyCartDeletesSnapshot(t *testing.T) {
	ctx := context.Background()
	carts := new(CartRepoMock)
	uc := NewCartUsecase(carts, new(ProductRepoMock))

	existing := []model.CartItem{
		{ProductID: "prod-1", StoreID: "store-1", Name: "Pizza", PriceMilli: 1000, Qty: 2},
	}
	carts.On("LoadSnapshot", mock.Anything, "user-1").Return(cartJSON(t, existing), true, nil)
	carts.On("DeleteSnapshot", mock.Anything, "user-1").Return(nil)

	out, err := uc.UpdateItem(ctx, "user-1", "prod-1", UpdateCartItemInput{Qty: 0})
	assert.NoError(t, err)
	assert.Empty(t, out.Items)

	carts.AssertExpectations(t)
}

func TestCartUsecase_UpdateItem_NotInCart(t *testing.T) {
	carts := new(CartRepoMock)
	uc := NewCartUsecase(carts, new(ProductRepoMock))

	carts.On("LoadSnapshot", mock.Anything, "user-1").Return([]byte(nil), false, nil)

	_, err := uc.UpdateItem(context.Background(), "user-1", "prod-1", UpdateCartItemInput{Qty: 3})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestCartUsecase_TotalSpansStores(t *testing.T) {
	carts := new(CartRepoMock)
	uc := NewCartUsecase(carts, new(ProductRepoMock))

	//別店舗の商品もカートでは1つの合計になる
	items := []model.CartItem{
		{ProductID: "prod-1", StoreID: "store-1", Name: "A", PriceMilli: 2000, Qty: 1},
		{ProductID: "prod-2", StoreID: "store-2", Name: "B", PriceMilli: 3000, Qty: 1},
	}
	carts.On("LoadSnapshot", mock.Anything, "user-1").Return(cartJSON(t, items), true, nil)

	out, err := uc.GetCart(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), out.TotalMilli)
}
