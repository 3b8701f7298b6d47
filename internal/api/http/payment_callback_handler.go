package http

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"medilink-client/internal/domain"
	"medilink-client/internal/logger"
)

// CheckoutPage is everything the checkout page needs to start the provider widget
type CheckoutPage struct {
	OrderID      string // provider order id
	Nonce        string
	Key          string // provider public key
	ScriptURL    string
	AmountMinor  int64 // amount in the currency's minor unit
	Currency     string
	MerchantName string
	Description  string
	Email        string
}

// CheckoutRegistry tracks the checkouts waiting for the user
type CheckoutRegistry interface {
	Page(orderID, nonce string) (CheckoutPage, bool)
	Complete(orderID, nonce string, result domain.PaymentResult) bool
	Dismiss(orderID, nonce string) bool
}

// PaymentCallbackHandler serves the local checkout page and receives the
// provider's completion callback
type PaymentCallbackHandler struct {
	registry CheckoutRegistry
}

func NewPaymentCallbackHandler(registry CheckoutRegistry) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{registry: registry}
}

// HandleCheckout renders the page that opens the provider widget
func (h *PaymentCallbackHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderID"]
	page, ok := h.registry.Page(orderID, r.URL.Query().Get("nonce"))
	if !ok {
		http.Error(w, "Unknown checkout", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := checkoutTemplate.Execute(w, page); err != nil {
		logger.Error("Failed to render checkout page", "order_id", orderID, "error", err)
	}
}

// HandleCallback receives the form posted by the page once the widget reports success
func (h *PaymentCallbackHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	orderID := r.PostForm.Get("order_id")
	if orderID == "" {
		http.Error(w, "Missing order", http.StatusBadRequest)
		return
	}
	result := domain.PaymentResult{
		OrderID:   r.PostForm.Get("razorpay_order_id"),
		PaymentID: r.PostForm.Get("razorpay_payment_id"),
		Signature: r.PostForm.Get("razorpay_signature"),
	}
	if !h.registry.Complete(orderID, r.PostForm.Get("nonce"), result) {
		http.Error(w, "Unknown checkout", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	doneTemplate.Execute(w, nil)
}

// HandleDismiss is called by the page when the user closes the widget
func (h *PaymentCallbackHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Dismiss(mux.Vars(r)["orderID"], r.URL.Query().Get("nonce")) {
		http.Error(w, "Unknown checkout", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterCheckoutRoutes registers the checkout endpoints
func RegisterCheckoutRoutes(router *mux.Router, registry CheckoutRegistry) {
	handler := NewPaymentCallbackHandler(registry)
	router.HandleFunc("/checkout/{orderID}", handler.HandleCheckout).Methods("GET")
	router.HandleFunc("/callback", handler.HandleCallback).Methods("POST")
	router.HandleFunc("/dismiss/{orderID}", handler.HandleDismiss).Methods("POST")
}

var checkoutTemplate = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.MerchantName}} checkout</title>
<script src="{{.ScriptURL}}"></script>
</head>
<body>
<p>Opening payment for {{.Description}}...</p>
<form id="result" method="POST" action="/callback">
<input type="hidden" name="order_id" value="{{.OrderID}}">
<input type="hidden" name="nonce" value="{{.Nonce}}">
<input type="hidden" name="razorpay_order_id">
<input type="hidden" name="razorpay_payment_id">
<input type="hidden" name="razorpay_signature">
</form>
<script>
var form = document.getElementById("result");
var rzp = new Razorpay({
  key: {{.Key}},
  amount: {{.AmountMinor}},
  currency: {{.Currency}},
  name: {{.MerchantName}},
  description: {{.Description}},
  order_id: {{.OrderID}},
  prefill: {email: {{.Email}}},
  handler: function (resp) {
    form.razorpay_order_id.value = resp.razorpay_order_id || "";
    form.razorpay_payment_id.value = resp.razorpay_payment_id || "";
    form.razorpay_signature.value = resp.razorpay_signature || "";
    form.submit();
  },
  modal: {
    ondismiss: function () {
      fetch("/dismiss/" + encodeURIComponent({{.OrderID}}) + "?nonce=" + encodeURIComponent({{.Nonce}}), {method: "POST"})
        .then(function () { document.body.innerHTML = "<p>Payment cancelled. You can close this window.</p>"; });
    }
  }
});
rzp.open();
</script>
</body>
</html>
`))

var doneTemplate = template.Must(template.New("done").Parse(`<!DOCTYPE html>
<html><body><p>Payment received. You can close this window and return to the terminal.</p></body></html>
`))
