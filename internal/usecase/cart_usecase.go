package usecase

import (
	"context"
	"encoding/json"
	"net/http"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"github.com/rs/zerolog/log"
)

// CartUsecaseはカートの業務ロジック。
// カートはユーザーごとのJSONスナップショット1行で、ミューテーションごとに
// 全量を読み、直し、全量を書き戻す。合計は保存せず毎回計算する。
type CartUsecase struct {
	carts    repo.CartRepository
	products repo.ProductRepository
}

func NewCartUsecase(carts repo.CartRepository, products repo.ProductRepository) *CartUsecase {
	return &CartUsecase{carts: carts, products: products}
}

type CartResponse struct {
	Items      []model.CartItem `json:"items"`
	TotalMilli int64            `json:"total_milli"`
}

type AddCartInput struct {
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
}

type UpdateCartItemInput struct {
	Qty int64 `json:"qty"`
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	items, err := u.loadItems(ctx, userID)
	if err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(items), nil
}

// AddToCartは同一商品なら数量加算。名前と価格は追加時点のスナップショット。
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Qty < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid qty")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	items, err := u.loadItems(ctx, userID)
	if err != nil {
		return CartResponse{}, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == in.ProductID {
			items[i].Qty += in.Qty
			found = true
			break
		}
	}
	if !found {
		items = append(items, model.CartItem{
			ProductID:  p.ID,
			StoreID:    p.StoreID,
			Name:       p.Name,
			PriceMilli: p.PriceMilli,
			Qty:        in.Qty,
		})
	}

	if err := u.saveItems(ctx, userID, items); err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(items), nil
}

// UpdateItemは数量の上書き。0なら行を消す。
func (u *CartUsecase) UpdateItem(ctx context.Context, userID string, productID string, in UpdateCartItemInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Qty < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid qty")
	}

	items, err := u.loadItems(ctx, userID)
	if err != nil {
		return CartResponse{}, err
	}

	next := make([]model.CartItem, 0, len(items))
	found := false
	for _, it := range items {
		if it.ProductID == productID {
			found = true
			if in.Qty == 0 {
				continue
			}
			it.Qty = in.Qty
		}
		next = append(next, it)
	}
	if !found {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.saveItems(ctx, userID, next); err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(next), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, productID string) (CartResponse, error) {
	return u.UpdateItem(ctx, userID, productID, UpdateCartItemInput{Qty: 0})
}

func (u *CartUsecase) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.carts.DeleteSnapshot(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 壊れたスナップショットは空カート扱いで読み捨てる（次の保存で上書きされる）
func (u *CartUsecase) loadItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	data, found, err := u.carts.LoadSnapshot(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found {
		return []model.CartItem{}, nil
	}

	var items []model.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn().Str("user_id", userID).Msg("corrupt cart snapshot, treating as empty")
		return []model.CartItem{}, nil
	}
	return items, nil
}

func (u *CartUsecase) saveItems(ctx context.Context, userID string, items []model.CartItem) error {
	if len(items) == 0 {
		if err := u.carts.DeleteSnapshot(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "encode error")
	}
	if err := u.carts.SaveSnapshot(ctx, userID, data); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toCartResponse(items []model.CartItem) CartResponse {
	var total int64
	for _, it := range items {
		total += it.PriceMilli * it.Qty
	}
	return CartResponse{Items: items, TotalMilli: total}
}
