package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"acconti/internal/chart"
	"acconti/internal/core"
	applog "acconti/internal/log"
)

type depositRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

type depositResponse struct {
	ID        string `json:"id"`
	InvoiceID string `json:"invoice_id"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
}

type depositListResponse struct {
	Deposits []depositResponse `json:"deposits"`
	Count    int               `json:"count"`
	Total    string            `json:"total"`
}

type chartResponse struct {
	Chart   *chart.Description `json:"chart"`
	Message string             `json:"message,omitempty"`
}

func toDepositResponse(d core.Deposit) depositResponse {
	return depositResponse{
		ID:        d.ID,
		InvoiceID: d.InvoiceID,
		Amount:    d.Amount.StringFixed(2),
		Date:      d.Date.Format("2006-01-02"),
	}
}

func (s *Server) handleCreateDeposit(w http.ResponseWriter, r *http.Request) {
	invoiceID := sanitizeInput(r.PathValue("id"))

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := core.ParseAmount(sanitizeInput(req.Amount))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	date, err := parseDate(sanitizeInput(req.Date))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	deposit := core.Deposit{
		InvoiceID: invoiceID,
		Amount:    amount,
		Date:      date,
	}

	saved, err := s.service.CreateDeposit(r.Context(), deposit)
	if err != nil {
		if errors.Is(err, core.ErrEmptyInvoiceID) || errors.Is(err, core.ErrInvalidAmount) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logs.LogError(r.Context(), "Failed to create deposit", err,
			applog.ComponentDeposit, applog.OpCreate,
			applog.NewFields().WithDeposit("", invoiceID, req.Amount, req.Date))
		respondError(w, http.StatusInternalServerError, "failed to save deposit")
		return
	}

	s.chartCache.Delete(invoiceID)
	s.logs.LogDepositCreated(r.Context(), saved.ID, saved.InvoiceID,
		saved.Amount.StringFixed(2), saved.Date.Format("2006-01-02"))

	respondJSON(w, http.StatusCreated, toDepositResponse(saved))
}

func (s *Server) handleListDeposits(w http.ResponseWriter, r *http.Request) {
	invoiceID := sanitizeInput(r.PathValue("id"))

	deposits, err := s.service.ListDeposits(r.Context(), invoiceID)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list deposits",
			applog.FieldInvoiceID, invoiceID, applog.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list deposits")
		return
	}

	summary := core.Summarize(invoiceID, deposits)
	resp := depositListResponse{
		Deposits: make([]depositResponse, len(deposits)),
		Count:    summary.Count,
		Total:    summary.Total.StringFixed(2),
	}
	for i, d := range deposits {
		resp.Deposits[i] = toDepositResponse(d)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	invoiceID := sanitizeInput(r.PathValue("id"))

	desc, ok, err := s.chartFor(r.Context(), invoiceID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build chart",
			"invoice_id", invoiceID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build chart")
		return
	}

	if !ok {
		respondJSON(w, http.StatusOK, chartResponse{Message: "no deposits yet"})
		return
	}
	respondJSON(w, http.StatusOK, chartResponse{Chart: &desc})
}

// handleChartStream serves the chart over server-sent events. The client
// gets the full chart description on connect and after every data change,
// plus interpolated path frames while the line animates between states.
func (s *Server) handleChartStream(w http.ResponseWriter, r *http.Request) {
	invoiceID := sanitizeInput(r.PathValue("id"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher := http.NewResponseController(w)
	if err := flusher.Flush(); err != nil {
		slog.ErrorContext(r.Context(), "Streaming unsupported by response writer", "error", err)
		return
	}

	changes, unsubscribe := s.notifier.Subscribe(invoiceID)
	defer unsubscribe()

	ctx := r.Context()

	desc, drawable, err := s.chartFor(ctx, invoiceID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build chart for stream",
			"invoice_id", invoiceID, "error", err)
		writeSSE(w, flusher, "error", errorResponse{Error: "failed to build chart"})
		return
	}
	s.writeChartEvent(w, flusher, desc, drawable)

	var anim *chart.Animator
	if drawable {
		anim = s.newAnimator(desc.Path)
	}

	// The animator's onFrame runs on the scheduler goroutine; frames are
	// handed to the response writer through this channel. Dropping frames
	// under backpressure is fine, the settle frame carries the exact
	// target path.
	frames := make(chan chart.Frame, 128)
	onFrame := func(f chart.Frame) {
		select {
		case frames <- f:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-changes:
			s.chartCache.Delete(invoiceID)
			next, ok, err := s.chartFor(ctx, invoiceID)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to rebuild chart",
					"invoice_id", invoiceID, "error", err)
				continue
			}

			s.writeChartEvent(w, flusher, next, ok)
			if !ok {
				anim = nil
				continue
			}
			if anim == nil {
				anim = s.newAnimator(next.Path)
				continue
			}
			anim.Animate(next.Path, onFrame)

		case f := <-frames:
			writeSSE(w, flusher, "frame", f)
		}
	}
}

func (s *Server) newAnimator(initialPath string) *chart.Animator {
	return chart.NewAnimator(initialPath, chart.NewTickerScheduler(s.frameInterval), s.animDuration)
}

func (s *Server) writeChartEvent(w http.ResponseWriter, flusher *http.ResponseController, desc chart.Description, drawable bool) {
	if !drawable {
		writeSSE(w, flusher, "chart", chartResponse{Message: "no deposits yet"})
		return
	}
	writeSSE(w, flusher, "chart", chartResponse{Chart: &desc})
}

func writeSSE(w http.ResponseWriter, flusher *http.ResponseController, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal SSE payload", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	_ = flusher.Flush()
}
