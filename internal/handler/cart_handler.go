package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// weight は数値・数値文字列・省略のどれでも受ける
type AddCartItemRequest struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Image  string      `json:"image"`
	Price  float64     `json:"price"`
	Weight interface{} `json:"weight"`
}

type SetQuantityRequest struct {
	Quantity *float64 `json:"quantity"`
}

// /api/cart, /api/cart/items/{id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/cart")
	g.Use(middleware.Session(cfg))

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:id", h.setQuantity)
	g.DELETE("/items/:id", h.removeItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	weight, ok := weightString(req.Weight)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid weight"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), sessionID, usecase.AddItemInput{
		ID:     req.ID,
		Name:   req.Name,
		Image:  req.Image,
		Price:  req.Price,
		Weight: weight,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) setQuantity(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetQuantity(c.Request().Context(), sessionID, c.Param("id"), usecase.SetQuantityInput{
		Quantity: req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), sessionID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// JSONの weight を文字列にそろえる（解釈は usecase 側）
func weightString(v interface{}) (string, bool) {
	switch w := v.(type) {
	case nil:
		return "", true
	case float64:
		return strconv.FormatFloat(w, 'f', -1, 64), true
	case string:
		return w, true
	default:
		return "", false
	}
}
