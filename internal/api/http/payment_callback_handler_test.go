package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medilink-client/internal/domain"
)

type fakeRegistry struct {
	page      CheckoutPage
	completed *domain.PaymentResult
	dismissed bool
}

func (f *fakeRegistry) Page(orderID, nonce string) (CheckoutPage, bool) {
	if orderID != f.page.OrderID || nonce != f.page.Nonce {
		return CheckoutPage{}, false
	}
	return f.page, true
}

func (f *fakeRegistry) Complete(orderID, nonce string, result domain.PaymentResult) bool {
	if orderID != f.page.OrderID || nonce != f.page.Nonce {
		return false
	}
	f.completed = &result
	return true
}

func (f *fakeRegistry) Dismiss(orderID, nonce string) bool {
	if orderID != f.page.OrderID || nonce != f.page.Nonce {
		return false
	}
	f.dismissed = true
	return true
}

func setupCheckoutRouter() (*mux.Router, *fakeRegistry) {
	reg := &fakeRegistry{page: CheckoutPage{
		OrderID:      "order_1",
		Nonce:        "n-1",
		Key:          "rzp_test",
		ScriptURL:    "https://checkout.example/v1.js",
		AmountMinor:  250000,
		Currency:     "INR",
		MerchantName: "MediLink",
		Description:  `Oxygen <concentrator>`,
	}}
	router := mux.NewRouter()
	RegisterCheckoutRoutes(router, reg)
	return router, reg
}

func TestPaymentCallbackHandler_HandleCheckout(t *testing.T) {
	router, _ := setupCheckoutRouter()

	t.Run("Renders page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/checkout/order_1?nonce=n-1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		body := w.Body.String()
		assert.Contains(t, body, "https://checkout.example/v1.js")
		assert.Contains(t, body, "250000")
		assert.Contains(t, body, "Oxygen &lt;concentrator&gt;")
		assert.NotContains(t, body, "<concentrator>")
	})

	t.Run("Unknown nonce", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/checkout/order_1?nonce=bad", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/checkout/order_1?nonce=n-1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func postForm(router http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPaymentCallbackHandler_HandleCallback(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, reg := setupCheckoutRouter()
		w := postForm(router, url.Values{
			"order_id":            {"order_1"},
			"nonce":               {"n-1"},
			"razorpay_order_id":   {"order_1"},
			"razorpay_payment_id": {"pay_1"},
			"razorpay_signature":  {"sig_1"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Payment received")
		require.NotNil(t, reg.completed)
		assert.Equal(t, domain.PaymentResult{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig_1"}, *reg.completed)
	})

	t.Run("Partial result is passed through", func(t *testing.T) {
		router, reg := setupCheckoutRouter()
		w := postForm(router, url.Values{"order_id": {"order_1"}, "nonce": {"n-1"}, "razorpay_payment_id": {"pay_1"}})

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, reg.completed)
		assert.False(t, reg.completed.Complete())
	})

	t.Run("Missing order", func(t *testing.T) {
		router, reg := setupCheckoutRouter()
		w := postForm(router, url.Values{"nonce": {"n-1"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, reg.completed)
	})

	t.Run("Unknown checkout", func(t *testing.T) {
		router, reg := setupCheckoutRouter()
		w := postForm(router, url.Values{"order_id": {"order_2"}, "nonce": {"n-1"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Nil(t, reg.completed)
	})
}

func TestPaymentCallbackHandler_HandleDismiss(t *testing.T) {
	router, reg := setupCheckoutRouter()

	req := httptest.NewRequest(http.MethodPost, "/dismiss/order_1?nonce=wrong", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, reg.dismissed)

	req = httptest.NewRequest(http.MethodPost, "/dismiss/order_1?nonce=n-1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, reg.dismissed)
}
