package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

const (
	OrdersPath   = "/wp-json/wc/v3/orders"
	ProductsPath = "/wp-json/wc/v3/products"
)

// 上流の詳細は返さない
var ErrOrderRejected = errors.New("failed to create order")

// OrderGateway は注文ペイロードをそのまま WooCommerce に転送する
type OrderGateway struct {
	fetcher *Fetcher
}

func NewOrderGateway(fetcher *Fetcher) *OrderGateway {
	return &OrderGateway{fetcher: fetcher}
}

func (g *OrderGateway) Configured() bool {
	return g.fetcher.Configured()
}

func (g *OrderGateway) CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	if !g.fetcher.Configured() {
		return nil, ErrNotConfigured
	}

	resp, err := g.fetcher.Do(ctx, OrdersPath, Options{
		Method: http.MethodPost,
		Body:   payload,
	})

	var se *StatusError
	switch {
	case errors.As(err, &se):
		log.WithField("status", se.Status).Warn("order API rejected the order")
		return nil, ErrOrderRejected
	case err != nil:
		return nil, err
	case resp == nil:
		log.WithField("status", http.StatusNotFound).Warn("order API rejected the order")
		return nil, ErrOrderRejected
	case resp.Unauthorized():
		log.WithField("status", http.StatusUnauthorized).Warn("order API rejected the order")
		return nil, ErrOrderRejected
	}

	return resp.Body, nil
}
