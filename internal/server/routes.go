package server

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Product *handler.ProductHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
}
