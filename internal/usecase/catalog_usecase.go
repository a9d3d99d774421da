package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"storefront/internal/gateway/woocommerce"

	log "github.com/sirupsen/logrus"
)

// CatalogUsecase は商品一覧・詳細を WooCommerce から取ってくる
type CatalogUsecase struct {
	fetcher *woocommerce.Fetcher
}

func NewCatalogUsecase(fetcher *woocommerce.Fetcher) *CatalogUsecase {
	return &CatalogUsecase{fetcher: fetcher}
}

// GET /api/products の入力
type ListProductsInput struct {
	Page    int
	PerPage int
	Search  string
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) (json.RawMessage, error) {
	if in.Page < 1 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.PerPage < 1 || in.PerPage > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid per_page")
	}
	search := strings.TrimSpace(in.Search)
	if utf8.RuneCountInString(search) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "search too long")
	}

	query := map[string]string{
		"page":     strconv.Itoa(in.Page),
		"per_page": strconv.Itoa(in.PerPage),
	}
	if search != "" {
		query["search"] = search
	}

	resp, err := u.fetcher.Do(ctx, woocommerce.ProductsPath, woocommerce.Options{Query: query})
	if err != nil {
		return nil, upstreamError(err)
	}
	// 404は空一覧
	if resp == nil {
		return json.RawMessage("[]"), nil
	}
	if resp.Unauthorized() {
		log.Warn("catalog: WooCommerce rejected the API credentials")
		return nil, NewHTTPError(http.StatusBadGateway, "upstream unauthorized")
	}
	return resp.Body, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, productID int64) (json.RawMessage, error) {
	if productID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	resp, err := u.fetcher.Do(ctx, woocommerce.ProductsPath+"/"+strconv.FormatInt(productID, 10), woocommerce.Options{})
	if err != nil {
		return nil, upstreamError(err)
	}
	if resp == nil {
		return nil, NewHTTPError(http.StatusNotFound, "not found")
	}
	if resp.Unauthorized() {
		log.Warn("catalog: WooCommerce rejected the API credentials")
		return nil, NewHTTPError(http.StatusBadGateway, "upstream unauthorized")
	}
	return resp.Body, nil
}

func upstreamError(err error) error {
	if errors.Is(err, woocommerce.ErrNotConfigured) {
		return NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	log.WithError(err).Error("catalog: request to WooCommerce failed")
	return NewHTTPError(http.StatusBadGateway, "upstream error")
}
