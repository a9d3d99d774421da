package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/create-order", h.create)
}

// bodyはそのまま WooCommerce に転送。失敗は全部500 + {"error": ...}
func (h *OrderHandler) create(c echo.Context) error {
	out, err := h.uc.CreateOrder(c.Request().Context(), c.Request().Body)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSONBlob(http.StatusOK, out)
}
