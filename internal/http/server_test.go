package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"acconti/internal/services"
	"acconti/internal/storage"
)

func newTestServer(t *testing.T, requestsPerMinute int) *Server {
	t.Helper()

	store := storage.NewMemoryStore()
	notifier := services.NewChangeNotifier()
	service := services.NewDepositService(store, nil, notifier)

	s := NewServer(Options{
		Service:           service,
		Notifier:          notifier,
		FrameInterval:     5 * time.Millisecond,
		AnimationDuration: 40 * time.Millisecond,
		RequestsPerMinute: requestsPerMinute,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, 100)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestCreateDeposit(t *testing.T) {
	s := newTestServer(t, 100)

	rec := doJSON(t, s, http.MethodPost, "/api/invoices/inv-1/deposits",
		`{"amount": "150.00", "date": "2025-01-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var resp depositResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID == "" {
		t.Error("expected generated deposit ID")
	}
	if resp.InvoiceID != "inv-1" {
		t.Errorf("invoice_id = %q, want inv-1", resp.InvoiceID)
	}
	if resp.Amount != "150.00" {
		t.Errorf("amount = %q, want 150.00", resp.Amount)
	}
	if resp.Date != "2025-01-01" {
		t.Errorf("date = %q, want 2025-01-01", resp.Date)
	}
}

func TestCreateDepositRejectsBadInput(t *testing.T) {
	s := newTestServer(t, 100)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed JSON", `{"amount":`, http.StatusBadRequest},
		{"invalid amount", `{"amount": "abc", "date": "2025-01-01"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"amount": "-5", "date": "2025-01-01"}`, http.StatusUnprocessableEntity},
		{"invalid date", `{"amount": "10", "date": "01/05/2025"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/invoices/inv-1/deposits", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestListDeposits(t *testing.T) {
	s := newTestServer(t, 100)

	// Insert out of date order; the list must come back date-ordered.
	for _, body := range []string{
		`{"amount": "25", "date": "2025-01-10"}`,
		`{"amount": "150", "date": "2025-01-01"}`,
	} {
		if rec := doJSON(t, s, http.MethodPost, "/api/invoices/inv-1/deposits", body); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/invoices/inv-1/deposits", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp depositListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Deposits) != 2 {
		t.Fatalf("len = %d, want 2", len(resp.Deposits))
	}
	if resp.Deposits[0].Date != "2025-01-01" || resp.Deposits[1].Date != "2025-01-10" {
		t.Errorf("dates = %s, %s, want 2025-01-01, 2025-01-10",
			resp.Deposits[0].Date, resp.Deposits[1].Date)
	}
	if resp.Count != 2 || resp.Total != "175.00" {
		t.Errorf("summary = %d/%s, want 2/175.00", resp.Count, resp.Total)
	}

	other := doJSON(t, s, http.MethodGet, "/api/invoices/inv-2/deposits", "")
	var otherResp depositListResponse
	if err := json.Unmarshal(other.Body.Bytes(), &otherResp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(otherResp.Deposits) != 0 {
		t.Errorf("other invoice has %d deposits, want 0", len(otherResp.Deposits))
	}
}

func TestChartEmptyInvoice(t *testing.T) {
	s := newTestServer(t, 100)

	rec := doJSON(t, s, http.MethodGet, "/api/invoices/inv-1/chart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp chartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Chart != nil {
		t.Error("expected null chart for empty invoice")
	}
	if resp.Message != "no deposits yet" {
		t.Errorf("message = %q, want 'no deposits yet'", resp.Message)
	}
}

func TestChartSingleDateIsAbsent(t *testing.T) {
	s := newTestServer(t, 100)

	for _, body := range []string{
		`{"amount": "150", "date": "2025-01-01"}`,
		`{"amount": "25", "date": "2025-01-01"}`,
	} {
		doJSON(t, s, http.MethodPost, "/api/invoices/inv-1/deposits", body)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/invoices/inv-1/chart", "")
	var resp chartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Chart != nil {
		t.Error("one distinct date cannot draw a line, expected null chart")
	}
}

func TestChartTwoDates(t *testing.T) {
	s := newTestServer(t, 100)

	for _, body := range []string{
		`{"amount": "150", "date": "2025-01-01"}`,
		`{"amount": "25", "date": "2025-01-10"}`,
	} {
		if rec := doJSON(t, s, http.MethodPost, "/api/invoices/inv-1/deposits", body); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/invoices/inv-1/chart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp chartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Chart == nil {
		t.Fatal("expected a drawable chart")
	}

	// Default canvas is 600x300 with margins 10/10/30/10. Totals run 150
	// to 175, niced to [150, 176], so the last step lands at y=20.
	if resp.Chart.Path != "M10,270L590,270L590,20" {
		t.Errorf("path = %q", resp.Chart.Path)
	}
	if resp.Chart.YAxisLabels[0].Label != "$150.00" || resp.Chart.YAxisLabels[1].Label != "$175.00" {
		t.Errorf("y labels = %q, %q", resp.Chart.YAxisLabels[0].Label, resp.Chart.YAxisLabels[1].Label)
	}
	if resp.Chart.XAxisLabels[0].Label != "Jan 1" || resp.Chart.XAxisLabels[1].Label != "Jan 10" {
		t.Errorf("x labels = %q, %q", resp.Chart.XAxisLabels[0].Label, resp.Chart.XAxisLabels[1].Label)
	}
	if len(resp.Chart.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(resp.Chart.Points))
	}
	if resp.Chart.Points[0].Label != "Jan 1 - $150.00" {
		t.Errorf("point label = %q", resp.Chart.Points[0].Label)
	}
}

func TestChartCacheInvalidatedOnCreate(t *testing.T) {
	s := newTestServer(t, 100)

	for _, body := range []string{
		`{"amount": "150", "date": "2025-01-01"}`,
		`{"amount": "25", "date": "2025-01-10"}`,
	} {
		doJSON(t, s, http.MethodPost, "/api/invoices/inv-1/deposits", body)
	}

	first := doJSON(t, s, http.MethodGet, "/api/invoices/inv-1/chart", "")
	var before chartResponse
	if err := json.Unmarshal(first.Body.Bytes(), &before); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	doJSON(t, s, http.MethodPost, "/api/invoices/inv-1/deposits",
		`{"amount": "100", "date": "2025-01-20"}`)

	second := doJSON(t, s, http.MethodGet, "/api/invoices/inv-1/chart", "")
	var after chartResponse
	if err := json.Unmarshal(second.Body.Bytes(), &after); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if after.Chart == nil || before.Chart == nil {
		t.Fatal("expected drawable charts")
	}
	if after.Chart.Path == before.Chart.Path {
		t.Error("chart path unchanged after new deposit, cache not invalidated")
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, 100)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestSuspiciousRequestRejected(t *testing.T) {
	s := newTestServer(t, 100)

	rec := doJSON(t, s, http.MethodGet, "/api/invoices/.git/chart", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	s := newTestServer(t, 2)

	var got429 bool
	for i := 0; i < 3; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/invoices/inv-1/deposits",
			`{"amount": "10", "date": "2025-01-01"}`)
		if rec.Code == http.StatusTooManyRequests {
			got429 = true
		}
	}
	if !got429 {
		t.Error("expected third write to be rate limited")
	}

	// Reads are not rate limited.
	rec := doJSON(t, s, http.MethodGet, "/api/invoices/inv-1/deposits", "")
	if rec.Code != http.StatusOK {
		t.Errorf("read status = %d, want 200", rec.Code)
	}
}
