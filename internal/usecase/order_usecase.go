package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/gateway/woocommerce"

	log "github.com/sirupsen/logrus"
)

type OrderGateway interface {
	Configured() bool
	CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
}

// OrderUsecase は注文作成をそのまま上流に流すだけ（状態なし・リトライなし）
type OrderUsecase struct {
	gateway OrderGateway
}

func NewOrderUsecase(gateway OrderGateway) *OrderUsecase {
	return &OrderUsecase{gateway: gateway}
}

// CreateOrder の失敗はすべて500。
// 設定不足なら body を読む前に返す。
func (u *OrderUsecase) CreateOrder(ctx context.Context, body io.Reader) (json.RawMessage, error) {
	if !u.gateway.Configured() {
		return nil, NewHTTPError(http.StatusInternalServerError, woocommerce.ErrNotConfigured.Error())
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var payload json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	order, err := u.gateway.CreateOrder(ctx, payload)
	if err != nil {
		if !errors.Is(err, woocommerce.ErrOrderRejected) && !errors.Is(err, woocommerce.ErrNotConfigured) {
			log.WithError(err).Error("order: request to order API failed")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return order, nil
}
