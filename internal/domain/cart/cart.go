// Package cart はセッション単位のカート状態と合計計算を持つ。
package cart

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
)

var (
	ErrInvalidItem     = errors.New("invalid item")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidWeight   = errors.New("invalid weight")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrItemNotFound    = errors.New("item not found")
)

// AddItem の入力
type NewItem struct {
	ID     string
	Name   string
	Image  string
	Price  float64
	Weight float64
}

// Cart は1セッションのカート。
// 明細は追加順、IDで一意。変更は AddItem / RemoveItem / SetQuantity のみ。
type Cart struct {
	policy ShippingPolicy
	items  []model.LineItem
	totals Totals
}

func New(policy ShippingPolicy) *Cart {
	c := &Cart{policy: policy, items: []model.LineItem{}}
	c.recompute()
	return c
}

// Restore は保存済みスナップショットからカートを作り、すぐ合計を再計算する。
func Restore(policy ShippingPolicy, snap model.CartSnapshot) (*Cart, error) {
	if err := checkItems(snap.Items); err != nil {
		return nil, err
	}

	items := make([]model.LineItem, len(snap.Items))
	copy(items, snap.Items)

	c := &Cart{policy: policy}
	if err := c.commit(items); err != nil {
		return nil, err
	}
	return c, nil
}

// 同一IDは数量+1（他の項目は変えない）
func (c *Cart) AddItem(in NewItem) error {
	if strings.TrimSpace(in.ID) == "" {
		return ErrInvalidItem
	}
	if !validAmount(in.Price) {
		return ErrInvalidPrice
	}
	if !validAmount(in.Weight) {
		return ErrInvalidWeight
	}

	next := c.Items()
	if i := c.indexOf(in.ID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, model.LineItem{
			ID:       in.ID,
			Name:     in.Name,
			Image:    in.Image,
			Price:    in.Price,
			Weight:   in.Weight,
			Quantity: 1,
		})
	}
	return c.commit(next)
}

// 無いIDなら false を返して何もしない
func (c *Cart) RemoveItem(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}

	c.items = append(c.items[:i], c.items[i+1:]...)
	c.recompute()
	return true
}

// 0 は削除と同じ
func (c *Cart) SetQuantity(id string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	i := c.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}

	if quantity == 0 {
		c.RemoveItem(id)
		return nil
	}

	next := c.Items()
	next[i].Quantity = quantity
	if err := c.commit(next); err != nil {
		return ErrInvalidQuantity
	}
	return nil
}

// 明細のコピーを返す
func (c *Cart) Items() []model.LineItem {
	out := make([]model.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Totals() Totals {
	return c.totals
}

func (c *Cart) Currency() string {
	return c.policy.Currency
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Snapshot() model.CartSnapshot {
	return model.CartSnapshot{
		Version: model.CartSnapshotVersion,
		Items:   c.Items(),
	}
}

func (c *Cart) indexOf(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// 合計は1回の代入で差し替える
func (c *Cart) recompute() {
	c.totals = Calculate(c.items, c.policy)
}

// 候補の明細で合計を出し、有限なときだけ差し替える（失敗時はカートそのまま）
func (c *Cart) commit(items []model.LineItem) error {
	t := Calculate(items, c.policy)
	if err := t.check(); err != nil {
		return err
	}
	c.items = items
	c.totals = t
	return nil
}

// ParseWeight はフロントから来た重量文字列を数値にする。
// 空なら0、数値でない・負の値は ErrInvalidWeight。
func ParseWeight(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	w, err := strconv.ParseFloat(raw, 64)
	if err != nil || !validAmount(w) {
		return 0, ErrInvalidWeight
	}
	return w, nil
}

// ParseQuantity は0以上の整数だけ通す（上限は MaxInt32）
func ParseQuantity(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, ErrInvalidQuantity
	}
	return int(v), nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkItems(items []model.LineItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			return ErrInvalidItem
		}
		if _, dup := seen[it.ID]; dup {
			return ErrInvalidItem
		}
		seen[it.ID] = struct{}{}

		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if !validAmount(it.Price) {
			return ErrInvalidPrice
		}
		if !validAmount(it.Weight) {
			return ErrInvalidWeight
		}
	}
	return nil
}
