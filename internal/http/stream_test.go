package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"acconti/internal/chart"
	"acconti/internal/core"
	"acconti/internal/services"
	"acconti/internal/storage"

	"github.com/shopspring/decimal"
)

type sseEvent struct {
	name string
	data string
}

// readEvent reads one server-sent event from the stream.
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if ev.name != "" || ev.data != "" {
				return ev
			}
		}
	}
}

func streamSetup(t *testing.T) (*services.DepositService, *bufio.Reader, func()) {
	t.Helper()

	store := storage.NewMemoryStore()
	notifier := services.NewChangeNotifier()
	service := services.NewDepositService(store, nil, notifier)

	s := NewServer(Options{
		Service:           service,
		Notifier:          notifier,
		FrameInterval:     5 * time.Millisecond,
		AnimationDuration: 40 * time.Millisecond,
		RequestsPerMinute: 1000,
	})

	ts := httptest.NewServer(s.Server.Handler)

	ctx, cancelCtx := context.WithTimeout(context.Background(), 10*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		ts.URL+"/api/invoices/inv-1/chart/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", got)
	}

	cleanup := func() {
		resp.Body.Close()
		cancelCtx()
		ts.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}
	return service, bufio.NewReader(resp.Body), cleanup
}

func addDeposit(t *testing.T, service *services.DepositService, amount string, y, m, d int) {
	t.Helper()
	date := core.NewDate(y, m, d)
	_, err := service.CreateDeposit(context.Background(), core.Deposit{
		InvoiceID: "inv-1",
		Amount:    decimal.RequireFromString(amount),
		Date:      date,
	})
	if err != nil {
		t.Fatalf("CreateDeposit: %v", err)
	}
}

func TestChartStreamInitialEventEmptyInvoice(t *testing.T) {
	_, reader, cleanup := streamSetup(t)
	defer cleanup()

	ev := readEvent(t, reader)
	if ev.name != "chart" {
		t.Fatalf("first event = %q, want chart", ev.name)
	}

	var resp chartResponse
	if err := json.Unmarshal([]byte(ev.data), &resp); err != nil {
		t.Fatalf("unmarshal chart event: %v", err)
	}
	if resp.Chart != nil {
		t.Error("expected null chart for empty invoice")
	}
	if resp.Message != "no deposits yet" {
		t.Errorf("message = %q, want 'no deposits yet'", resp.Message)
	}
}

func TestChartStreamEmitsChartWhenDrawable(t *testing.T) {
	service, reader, cleanup := streamSetup(t)
	defer cleanup()

	// Consume the initial absence event.
	readEvent(t, reader)

	addDeposit(t, service, "150", 2025, 1, 1)
	addDeposit(t, service, "25", 2025, 1, 10)

	// Change signals may coalesce; keep reading chart events until one
	// carries a drawable description.
	for {
		ev := readEvent(t, reader)
		if ev.name != "chart" {
			continue
		}
		var resp chartResponse
		if err := json.Unmarshal([]byte(ev.data), &resp); err != nil {
			t.Fatalf("unmarshal chart event: %v", err)
		}
		if resp.Chart == nil {
			continue
		}
		if resp.Chart.Path == "" {
			t.Error("drawable chart has empty path")
		}
		if len(resp.Chart.Points) != 2 {
			t.Errorf("points = %d, want 2", len(resp.Chart.Points))
		}
		return
	}
}

func TestChartStreamAnimatesOnChange(t *testing.T) {
	service, reader, cleanup := streamSetup(t)
	defer cleanup()

	readEvent(t, reader)

	addDeposit(t, service, "150", 2025, 1, 1)
	addDeposit(t, service, "25", 2025, 1, 10)

	// Wait for the first drawable chart so the animator exists.
	var target string
	for {
		ev := readEvent(t, reader)
		if ev.name != "chart" {
			continue
		}
		var resp chartResponse
		if err := json.Unmarshal([]byte(ev.data), &resp); err != nil {
			t.Fatalf("unmarshal chart event: %v", err)
		}
		if resp.Chart != nil {
			break
		}
	}

	// A further deposit triggers interpolated frames ending in an idle
	// frame at the exact new path.
	addDeposit(t, service, "100", 2025, 1, 20)

	sawTransition := false
	for {
		ev := readEvent(t, reader)
		switch ev.name {
		case "chart":
			var resp chartResponse
			if err := json.Unmarshal([]byte(ev.data), &resp); err != nil {
				t.Fatalf("unmarshal chart event: %v", err)
			}
			if resp.Chart != nil {
				target = resp.Chart.Path
			}
		case "frame":
			var f chart.Frame
			if err := json.Unmarshal([]byte(ev.data), &f); err != nil {
				t.Fatalf("unmarshal frame event: %v", err)
			}
			if f.Phase == chart.PhaseTransitioning {
				sawTransition = true
			}
			if f.Phase == chart.PhaseIdle {
				if !sawTransition {
					t.Error("idle frame arrived without any transitioning frames")
				}
				if target != "" && f.Path != target {
					t.Errorf("idle frame path = %q, want %q", f.Path, target)
				}
				return
			}
		}
	}
}
