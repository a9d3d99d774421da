package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"storefront/internal/gateway/woocommerce"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type OrderGatewayMock struct{ mock.Mock }

func (m *OrderGatewayMock) Configured() bool {
	return m.Called().Bool(0)
}

func (m *OrderGatewayMock) CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	out, _ := args.Get(0).(json.RawMessage)
	return out, args.Error(1)
}

func TestOrderUsecase_CreateOrder_Success(t *testing.T) {
	gw := new(OrderGatewayMock)
	gw.On("Configured").Return(true)
	gw.On("CreateOrder", mock.Anything, json.RawMessage(`{"line_items":[]}`)).Return(json.RawMessage(`{"id":1}`), nil)

	out, err := usecase.NewOrderUsecase(gw).CreateOrder(context.Background(), strings.NewReader(`{"line_items":[]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(out))
	gw.AssertExpectations(t)
}

func TestOrderUsecase_CreateOrder_NotConfigured(t *testing.T) {
	gw := new(OrderGatewayMock)
	gw.On("Configured").Return(false)

	_, err := usecase.NewOrderUsecase(gw).CreateOrder(context.Background(), strings.NewReader(`{}`))
	assertHTTPError(t, err, http.StatusInternalServerError, "API configuration missing")
	gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderUsecase_CreateOrder_InvalidBody(t *testing.T) {
	gw := new(OrderGatewayMock)
	gw.On("Configured").Return(true)

	_, err := usecase.NewOrderUsecase(gw).CreateOrder(context.Background(), strings.NewReader(`{not json`))

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	assert.NotEmpty(t, he.Message)
	gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderUsecase_CreateOrder_GatewayErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{woocommerce.ErrOrderRejected, "failed to create order"},
		{errors.New("dial tcp: connection refused"), "dial tcp: connection refused"},
	}

	for _, tc := range cases {
		gw := new(OrderGatewayMock)
		gw.On("Configured").Return(true)
		gw.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, tc.err)

		_, err := usecase.NewOrderUsecase(gw).CreateOrder(context.Background(), strings.NewReader(`{}`))
		assertHTTPError(t, err, http.StatusInternalServerError, tc.want)
	}
}
