package cart

import (
	"math"

	"storefront/internal/domain/model"
)

// 明細から導出される合計値。直接書き換えない。
type Totals struct {
	TotalItems   int     `json:"total_items"`
	TotalWeight  float64 `json:"total_weight"`
	SubTotal     float64 `json:"sub_total"`
	ShippingCost float64 `json:"shipping_cost"`
	GrandTotal   float64 `json:"grand_total"`
}

// Calculate は明細を1回なめて合計を出す。
// 重量は小数2桁に丸めてから送料を決める。
func Calculate(items []model.LineItem, policy ShippingPolicy) Totals {
	var t Totals
	var weight float64

	for _, it := range items {
		q := float64(it.Quantity)
		t.SubTotal += q * it.Price
		weight += q * it.Weight
		t.TotalItems += it.Quantity
	}

	t.TotalWeight = roundWeight(weight)
	t.ShippingCost = policy.Cost(t.TotalWeight)
	t.GrandTotal = t.SubTotal + t.ShippingCost
	return t
}

func roundWeight(w float64) float64 {
	return math.Round(w*100) / 100
}

// 合計がオーバーフローしていないか
func (t Totals) check() error {
	if math.IsInf(t.TotalWeight, 0) || math.IsNaN(t.TotalWeight) {
		return ErrInvalidWeight
	}
	for _, v := range []float64{t.SubTotal, t.ShippingCost, t.GrandTotal} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return ErrInvalidPrice
		}
	}
	return nil
}
