package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/shopspring/decimal"

	"cotizador/internal/domain"
	"cotizador/internal/services"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuotationToOrderOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, "POST", "/api/v1/quotations", map[string]any{
		"jurisdiction": "mx",
		"lines": []map[string]any{
			{"component_id": "gpu-rtx4060", "quantity": 9},
			{"component_id": "ssd-1tb", "quantity": 10},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quotation: %d %s", resp.StatusCode, body)
	}
	var q domain.Quotation
	if err := json.Unmarshal(body, &q); err != nil {
		t.Fatal(err)
	}
	// 9 x 666.67 + 10 x 95.00
	if !q.Subtotal.Equal(dec("6950.03")) || q.Jurisdiction != "MX" {
		t.Fatalf("bad quotation: %+v", q)
	}
	if !q.Total.Equal(q.Subtotal.Add(q.Tax)) {
		t.Fatalf("total %s != subtotal %s + tax %s", q.Total, q.Subtotal, q.Tax)
	}

	resp, body = doJSON(t, app, "POST", "/api/v1/quotations/"+q.ID+"/orders", map[string]any{
		"supplier_key":        "PROV-NORTE",
		"fulfillment_percent": 50,
		"emission_date":       "2026-03-01",
		"delivery_date":       "2026-03-15",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("generate order: %d %s", resp.StatusCode, body)
	}
	var o domain.Order
	if err := json.Unmarshal(body, &o); err != nil {
		t.Fatal(err)
	}
	// 4 x 666.67 + 5 x 95.00
	if !o.Total.Equal(dec("3141.68")) || o.Lines[0].Quantity != 4 || o.Status != domain.OrderActive {
		t.Fatalf("bad order: %+v", o)
	}

	resp, _ = doJSON(t, app, "POST", "/api/v1/quotations/"+q.ID+"/orders", map[string]any{
		"supplier_key": "PROV-NORTE", "fulfillment_percent": 50,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate order: want 409, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, app, "GET", "/api/v1/quotations/"+q.ID+"/orders", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), o.ID) {
		t.Fatalf("list orders: %d %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, "GET", "/orders/"+o.ID, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "3141.68") || !strings.Contains(string(body), "Distribuidora Norte") {
		t.Fatalf("print order: %d %s", resp.StatusCode, body)
	}
	resp, body = doJSON(t, app, "GET", "/quotations/"+q.ID, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "6950.03") {
		t.Fatalf("print quotation: %d %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, app, "POST", "/api/v1/orders/"+o.ID+"/cancel", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: want 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "POST", "/api/v1/orders/"+o.ID+"/cancel", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second cancel: want 409, got %d", resp.StatusCode)
	}
}

func TestComponentPreview(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, "GET", "/api/v1/components/ssd-1tb?qty=50", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview: %d %s", resp.StatusCode, body)
	}
	var out struct {
		Component domain.Component `json:"component"`
		Price     services.Preview `json:"price"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Price.UnitNetPrice.Equal(dec("85")) || out.Component.ID != "ssd-1tb" {
		t.Fatalf("bad preview: %+v", out)
	}

	resp, _ = doJSON(t, app, "GET", "/api/v1/components/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/v1/components?category=gpu", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: want 200, got %d", resp.StatusCode)
	}
}

func TestPromotionEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, "POST", "/api/v1/promotions", map[string]any{
		"id":   "PROMO-RAM",
		"name": "RAM por volumen",
		"tiers": []map[string]any{
			{"min_quantity": 1, "discount_percent": "0"},
			{"min_quantity": 4, "discount_percent": "10"},
		},
		"component_ids": []string{"ram-16"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create promotion: %d %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, "GET", "/api/v1/components/ram-16?qty=4", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview: %d %s", resp.StatusCode, body)
	}
	var out struct {
		Price services.Preview `json:"price"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	// 45.50 * 0.90 = 40.95
	if !out.Price.UnitNetPrice.Equal(dec("40.95")) {
		t.Fatalf("want 40.95, got %s", out.Price.UnitNetPrice)
	}

	resp, _ = doJSON(t, app, "POST", "/api/v1/promotions", map[string]any{
		"id":   "PROMO-BAD",
		"name": "bad tiers",
		"tiers": []map[string]any{
			{"min_quantity": 10, "discount_percent": "5"},
			{"min_quantity": 5, "discount_percent": "10"},
		},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("non-monotonic tiers: want 422, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, app, "GET", "/api/v1/promotions/PROMO-GABINETE-20", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "case-atx") {
		t.Fatalf("get promotion: %d %s", resp.StatusCode, body)
	}
}

func TestValidationBadInputs(t *testing.T) {
	app, _ := newTestApp(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad qty", "GET", "/api/v1/components/ssd-1tb?qty=abc", nil, http.StatusBadRequest},
		{"zero qty", "GET", "/api/v1/components/ssd-1tb?qty=0", nil, http.StatusBadRequest},
		{"bad date", "GET", "/api/v1/components/ssd-1tb?date=tomorrow", nil, http.StatusBadRequest},
		{"bad jurisdiction", "POST", "/api/v1/quotations", map[string]any{"jurisdiction": "M3X"}, http.StatusBadRequest},
		{"empty quotation", "POST", "/api/v1/quotations", map[string]any{"jurisdiction": "MX"}, http.StatusUnprocessableEntity},
		{"unknown jurisdiction", "POST", "/api/v1/quotations", map[string]any{
			"jurisdiction": "AR", "lines": []map[string]any{{"component_id": "ram-16", "quantity": 1}},
		}, http.StatusUnprocessableEntity},
		{"unknown component", "POST", "/api/v1/quotations", map[string]any{
			"jurisdiction": "MX", "lines": []map[string]any{{"component_id": "nope", "quantity": 1}},
		}, http.StatusUnprocessableEntity},
		{"zero line quantity", "POST", "/api/v1/quotations", map[string]any{
			"jurisdiction": "MX", "lines": []map[string]any{{"component_id": "ram-16", "quantity": 0}},
		}, http.StatusUnprocessableEntity},
		{"huge line quantity", "POST", "/api/v1/quotations", map[string]any{
			"jurisdiction": "MX", "lines": []map[string]any{{"component_id": "ram-16", "quantity": 200000000000000000}},
		}, http.StatusBadRequest},
		{"quantity over cap", "POST", "/api/v1/quotations", map[string]any{
			"jurisdiction": "MX", "lines": []map[string]any{{"component_id": "ram-16", "quantity": 100001}},
		}, http.StatusBadRequest},
		{"bad component id", "POST", "/api/v1/quotations", map[string]any{
			"jurisdiction": "MX", "lines": []map[string]any{{"component_id": "<script>", "quantity": 1}},
		}, http.StatusBadRequest},
		{"missing quotation", "POST", "/api/v1/quotations/nope/orders", map[string]any{"supplier_key": "PROV-NORTE"}, http.StatusNotFound},
		{"missing order", "GET", "/api/v1/orders/nope", nil, http.StatusNotFound},
		{"missing supplier", "GET", "/api/v1/suppliers/PROV-NADA/availability", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		resp, body := doJSON(t, app, tc.method, tc.path, tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: want %d, got %d body=%s", tc.name, tc.want, resp.StatusCode, body)
		}
	}
}

func TestOrderValidation(t *testing.T) {
	app, _ := newTestApp(t)

	_, body := doJSON(t, app, "POST", "/api/v1/quotations", map[string]any{
		"jurisdiction": "US",
		"lines":        []map[string]any{{"component_id": "ram-16", "quantity": 2}},
	})
	var q domain.Quotation
	if err := json.Unmarshal(body, &q); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"pct over 100", map[string]any{"supplier_key": "PROV-CENTRO", "fulfillment_percent": 101}, http.StatusBadRequest},
		{"negative pct", map[string]any{"supplier_key": "PROV-CENTRO", "fulfillment_percent": -5}, http.StatusBadRequest},
		{"unknown supplier", map[string]any{"supplier_key": "PROV-NADA"}, http.StatusNotFound},
		{"delivery before emission", map[string]any{
			"supplier_key": "PROV-CENTRO", "emission_date": "2026-05-10", "delivery_date": "2026-05-01",
		}, http.StatusUnprocessableEntity},
		{"zero fulfillment", map[string]any{"supplier_key": "PROV-CENTRO", "fulfillment_percent": 0}, http.StatusCreated},
		{"default fulfillment", map[string]any{"supplier_key": "PROV-CENTRO"}, http.StatusCreated},
	}
	for _, tc := range cases {
		resp, body := doJSON(t, app, "POST", "/api/v1/quotations/"+q.ID+"/orders", tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: want %d, got %d body=%s", tc.name, tc.want, resp.StatusCode, body)
		}
	}
}

func TestSupplierAvailability(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, "GET", "/api/v1/suppliers/PROV-NORTE/availability?component=ssd-1tb", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("availability: %d %s", resp.StatusCode, body)
	}
	var a domain.Availability
	if err := json.Unmarshal(body, &a); err != nil {
		t.Fatal(err)
	}
	if a.Status != "LOW_STOCK" || a.Qty != 3 {
		t.Fatalf("want LOW_STOCK(3), got %+v", a)
	}

	resp, body = doJSON(t, app, "GET", "/api/v1/suppliers", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "PROV-CENTRO") {
		t.Fatalf("suppliers: %d %s", resp.StatusCode, body)
	}
}

func TestSupplierStockUpdate(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, "PUT", "/api/v1/suppliers/PROV-NORTE/stock/ssd-1tb", map[string]any{"qty": 25})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set stock: %d %s", resp.StatusCode, body)
	}

	_, body = doJSON(t, app, "GET", "/api/v1/suppliers/PROV-NORTE/availability?component=ssd-1tb", nil)
	var a domain.Availability
	if err := json.Unmarshal(body, &a); err != nil {
		t.Fatal(err)
	}
	if a.Status != "IN_STOCK" || a.Qty != 25 {
		t.Fatalf("want IN_STOCK(25), got %+v", a)
	}

	cases := []struct {
		name string
		path string
		body any
		want int
	}{
		{"negative qty", "/api/v1/suppliers/PROV-NORTE/stock/ssd-1tb", map[string]any{"qty": -1}, http.StatusBadRequest},
		{"missing qty", "/api/v1/suppliers/PROV-NORTE/stock/ssd-1tb", map[string]any{}, http.StatusBadRequest},
		{"unknown supplier", "/api/v1/suppliers/PROV-NADA/stock/ssd-1tb", map[string]any{"qty": 1}, http.StatusNotFound},
		{"unknown component", "/api/v1/suppliers/PROV-NORTE/stock/nope", map[string]any{"qty": 1}, http.StatusNotFound},
	}
	for _, tc := range cases {
		resp, body := doJSON(t, app, "PUT", tc.path, tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: want %d, got %d body=%s", tc.name, tc.want, resp.StatusCode, body)
		}
	}
}

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})
	app.Get("/api/v1/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})

	for _, path := range []string{"/boom", "/api/v1/boom"} {
		var resp *http.Response
		var body []byte
		entries := captureLogs(t, func() {
			resp, body = doJSON(t, app, "GET", path, nil)
		})
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, resp.StatusCode)
		}
		s := string(body)
		if !strings.Contains(s, "Something went wrong") {
			t.Fatalf("%s: friendly message missing; body=%s", path, s)
		}
		if strings.Contains(s, "db timeout") || strings.Contains(s, "secret") {
			t.Fatalf("%s: internal details leaked; body=%s", path, s)
		}
		if !hasAction(entries, "server.error") {
			t.Fatalf("%s: server.error not logged", path)
		}
	}
}

func TestAuditAndValidationLogs(t *testing.T) {
	app, _ := newTestApp(t)

	entries := captureLogs(t, func() {
		doJSON(t, app, "POST", "/api/v1/quotations", map[string]any{
			"jurisdiction": "MX",
			"lines":        []map[string]any{{"component_id": "cpu-r5", "quantity": 1}},
		})
		doJSON(t, app, "GET", "/api/v1/components/cpu-r5?qty=-1", nil)
	})
	if !hasAction(entries, "quotation.create") {
		t.Fatal("expected quotation.create audit log")
	}
	if !hasAction(entries, "validation.fail") {
		t.Fatal("expected validation.fail log")
	}
}

func TestRateLimits(t *testing.T) {
	app, _ := newTestApp(t, limiter.New(limiter.Config{Max: 3, Expiration: time.Second}))

	for i := 0; i < 4; i++ {
		resp, _ := doJSON(t, app, "GET", "/api/v1/suppliers", nil)
		if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("hit rate limit too early at %d", i)
		}
		if i == 3 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	app, _ := newTestApp(t)

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/api/v1/quotations", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	// Fiber returns an error instead of a response when body too large; treat that as pass
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(body))
	}
}
