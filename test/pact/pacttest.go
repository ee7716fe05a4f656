//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "rental-portal"

	StateOrdersBaseline = "orders baseline"
	StateOrderExists    = "order order-101 exists"
	StateOrderMissing   = "no order with id order-404"
)

const (
	ExistingOrderID     = "order-101"
	ExistingOrderNumber = "ORD-73001"
	MissingOrderID      = "order-404"

	BuyerID  = "buyer-pact"
	SellerID = "seller-pact"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the rental portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePlaceOrderPayload provides stable test data for pact interactions.
func ExamplePlaceOrderPayload() map[string]any {
	return map[string]any{
		"buyerId":  BuyerID,
		"sellerId": SellerID,
		"items": []map[string]any{{
			"productId": "prod-pact-1",
			"name":      "Pact Tuxedo",
			"quantity":  1,
			"unitPrice": "60",
		}},
		"shippingAddress": map[string]any{
			"recipient":  "Pact Buyer",
			"line1":      "1 Contract Way",
			"city":       "Seoul",
			"postalCode": "04524",
		},
		"amounts": map[string]any{
			"subtotal":    "60",
			"tax":         "6",
			"totalAmount": "66",
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
