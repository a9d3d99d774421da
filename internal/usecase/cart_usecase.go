package usecase

import (
	"context"
	"errors"
	"hash/fnv"
	"net/http"
	"sync"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	log "github.com/sirupsen/logrus"
)

const lockStripes = 64

// CartUsecase は /api/cart の業務ロジックです。
// 1リクエスト = 読み込み → 変更 → 保存。保存できなければ何も変わらない。
type CartUsecase struct {
	store  repo.CartStore
	policy cart.ShippingPolicy
	locks  [lockStripes]sync.Mutex
}

func NewCartUsecase(store repo.CartStore, policy cart.ShippingPolicy) *CartUsecase {
	return &CartUsecase{
		store:  store,
		policy: policy,
	}
}

// 明細と合計をまとめて返す
type CartResponse struct {
	Items []model.LineItem `json:"items"`
	cart.Totals
	Currency string `json:"currency"`
}

type AddItemInput struct {
	ID     string
	Name   string
	Image  string
	Price  float64
	Weight string // 数値文字列 or 空
}

type SetQuantityInput struct {
	Quantity *float64
}

// GetCart は保存済みカートを復元して返す（無ければ空）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	unlock := u.lock(sessionID)
	defer unlock()

	c, err := u.load(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(c), nil
}

// AddItem は同一IDなら数量+1、無ければ数量1で追加。
func (u *CartUsecase) AddItem(ctx context.Context, sessionID string, in AddItemInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	weight, err := cart.ParseWeight(in.Weight)
	if err != nil {
		log.WithFields(log.Fields{"session": sessionID, "item": in.ID, "weight": in.Weight}).Warn("cart: rejected item weight")
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid weight")
	}

	item := cart.NewItem{
		ID:     in.ID,
		Name:   in.Name,
		Image:  in.Image,
		Price:  in.Price,
		Weight: weight,
	}

	return u.mutate(ctx, sessionID, func(c *cart.Cart) (bool, error) {
		if err := c.AddItem(item); err != nil {
			return false, err
		}
		return true, nil
	})
}

// RemoveItem は無いIDでもエラーにしない（ログだけ）。
func (u *CartUsecase) RemoveItem(ctx context.Context, sessionID string, itemID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	return u.mutate(ctx, sessionID, func(c *cart.Cart) (bool, error) {
		if !c.RemoveItem(itemID) {
			log.WithFields(log.Fields{"session": sessionID, "item": itemID}).Warn("cart: item to remove does not exist")
			return false, nil
		}
		return true, nil
	})
}

// SetQuantity は0以上の整数のみ。0なら削除。
func (u *CartUsecase) SetQuantity(ctx context.Context, sessionID string, itemID string, in SetQuantityInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	if in.Quantity == nil {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	qty, err := cart.ParseQuantity(*in.Quantity)
	if err != nil {
		log.WithFields(log.Fields{"session": sessionID, "item": itemID, "quantity": *in.Quantity}).Warn("cart: rejected quantity")
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	return u.mutate(ctx, sessionID, func(c *cart.Cart) (bool, error) {
		if err := c.SetQuantity(itemID, qty); err != nil {
			if errors.Is(err, cart.ErrItemNotFound) {
				log.WithFields(log.Fields{"session": sessionID, "item": itemID}).Warn("cart: item to update not found")
			}
			return false, err
		}
		return true, nil
	})
}

// mutate はセッション単位で直列化し、変更があったときだけ保存する。
func (u *CartUsecase) mutate(ctx context.Context, sessionID string, fn func(c *cart.Cart) (bool, error)) (CartResponse, error) {
	unlock := u.lock(sessionID)
	defer unlock()

	c, err := u.load(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	changed, err := fn(c)
	if err != nil {
		return CartResponse{}, domainError(err)
	}

	if changed {
		if err := u.save(ctx, sessionID, c); err != nil {
			return CartResponse{}, err
		}
	}

	return toCartResponse(c), nil
}

// 保存済みを復元し、合計を再計算する
func (u *CartUsecase) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	payload, err := u.store.Load(ctx, sessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return cart.New(u.policy), nil
	}
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Error("cart: failed to load")
		return nil, NewHTTPError(http.StatusInternalServerError, "storage error")
	}

	snap, err := cart.DecodeSnapshot(payload)
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Error("cart: stored cart is corrupt")
		return nil, NewHTTPError(http.StatusInternalServerError, "corrupt cart")
	}

	c, err := cart.Restore(u.policy, snap)
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Error("cart: stored cart is corrupt")
		return nil, NewHTTPError(http.StatusInternalServerError, "corrupt cart")
	}
	return c, nil
}

func (u *CartUsecase) save(ctx context.Context, sessionID string, c *cart.Cart) error {
	payload, err := cart.EncodeSnapshot(c.Snapshot())
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.store.Save(ctx, sessionID, payload); err != nil {
		log.WithError(err).WithField("session", sessionID).Error("cart: failed to save")
		return NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return nil
}

func (u *CartUsecase) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &u.locks[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

func domainError(err error) error {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, cart.ErrInvalidItem):
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	case errors.Is(err, cart.ErrInvalidPrice):
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	case errors.Is(err, cart.ErrInvalidWeight):
		return NewHTTPError(http.StatusBadRequest, "invalid weight")
	}
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}

func toCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		Items:    c.Items(),
		Totals:   c.Totals(),
		Currency: c.Currency(),
	}
}
