// Package woocommerce は WooCommerce REST API への認証付きHTTPクライアント。
// リトライ・タイムアウト・キャッシュは持たない。
package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

var ErrNotConfigured = errors.New("API configuration missing")

// StatusError は 404/401 以外の 2xx でない応答
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

type Options struct {
	Method  string // 空なら GET
	Query   map[string]string
	Headers map[string]string
	Body    []byte
}

// Response は Fetcher.Do の結果。
// 401 のときは Body を解釈せず Raw だけ返す。
type Response struct {
	Status int
	Body   json.RawMessage
	Raw    *resty.Response
}

func (r *Response) Unauthorized() bool {
	return r != nil && r.Status == http.StatusUnauthorized
}

type Fetcher struct {
	baseURL string
	key     string
	secret  string
	client  *resty.Client
}

func NewFetcher(baseURL, key, secret string) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		key:     key,
		secret:  secret,
		client:  resty.New(),
	}
}

func (f *Fetcher) Configured() bool {
	return f.baseURL != "" && f.key != "" && f.secret != ""
}

// URL はベースURLとパスをスラッシュ1つでつなぐ
func (f *Fetcher) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return f.baseURL + path
}

// Do はリクエストを1回だけ送る。
//
//	404      -> (nil, nil)
//	401      -> Response{Status: 401, Raw: ...}
//	その他の非2xx -> *StatusError
//	2xx      -> Body にJSON
func (f *Fetcher) Do(ctx context.Context, path string, opts Options) (*Response, error) {
	if !f.Configured() {
		return nil, ErrNotConfigured
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req := f.client.R().SetContext(ctx)
	for k, v := range opts.Headers {
		if strings.EqualFold(k, "Authorization") || strings.EqualFold(k, "Content-Type") {
			continue
		}
		req.SetHeader(k, v)
	}
	req.SetBasicAuth(f.key, f.secret)
	req.SetHeader("Content-Type", "application/json")

	if len(opts.Query) > 0 {
		req.SetQueryParams(opts.Query)
	}
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}

	url := f.URL(path)
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}

	status := resp.StatusCode()
	log.Debugf("woocommerce %s %s -> %d", method, path, status)

	switch {
	case status == http.StatusNotFound:
		return nil, nil
	case status == http.StatusUnauthorized:
		return &Response{Status: status, Raw: resp}, nil
	case !resp.IsSuccess():
		return nil, &StatusError{Status: status}
	}

	body := []byte(resp.String())
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON from %s", path)
	}

	return &Response{Status: status, Body: json.RawMessage(body), Raw: resp}, nil
}
