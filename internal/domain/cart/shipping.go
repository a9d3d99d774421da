package cart

import (
	"errors"
	"math"
	"strings"
)

var ErrInvalidShippingPolicy = errors.New("invalid shipping policy")

// ShippingPolicy は総重量から送料を引く段階関数です。
//
//	weight <  LightLimit               -> LightFee
//	LightLimit <= weight <= HeavyLimit -> StandardFee
//	weight >  HeavyLimit               -> HeavyFee
//
// 単位と通貨は設定で決める。
type ShippingPolicy struct {
	LightLimit  float64
	HeavyLimit  float64
	LightFee    float64
	StandardFee float64
	HeavyFee    float64
	Currency    string
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		LightLimit:  1,
		HeavyLimit:  5,
		LightFee:    5,
		StandardFee: 10,
		HeavyFee:    15,
		Currency:    "EUR",
	}
}

func (p ShippingPolicy) Cost(weight float64) float64 {
	switch {
	case weight < p.LightLimit:
		return p.LightFee
	case weight <= p.HeavyLimit:
		return p.StandardFee
	default:
		return p.HeavyFee
	}
}

func (p ShippingPolicy) Validate() error {
	for _, v := range []float64{p.LightLimit, p.HeavyLimit, p.LightFee, p.StandardFee, p.HeavyFee} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidShippingPolicy
		}
	}
	if p.LightLimit > p.HeavyLimit {
		return ErrInvalidShippingPolicy
	}
	if strings.TrimSpace(p.Currency) == "" {
		return ErrInvalidShippingPolicy
	}
	return nil
}
