package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/iqbalbaharum/market-account-poller/internal/poller"
	"github.com/iqbalbaharum/market-account-poller/internal/utils"
)

type Status struct {
	Address   string         `json:"address"`
	Outcome   poller.Outcome `json:"outcome"`
	Bytes     int            `json:"bytes"`
	Slot      uint64         `json:"slot"`
	Lamports  uint64         `json:"lamports"`
	Owner     string         `json:"owner,omitempty"`
	Error     string         `json:"error,omitempty"`
	FetchedAt time.Time      `json:"fetchedAt"`
	TookMs    int64          `json:"tookMs"`
}

// StatusReporter keeps the latest poll outcome for the /status endpoint.
type StatusReporter struct {
	mu     sync.RWMutex
	status *Status
}

func NewStatusReporter() *StatusReporter {
	return &StatusReporter{}
}

func (s *StatusReporter) Report(_ context.Context, res poller.Result) error {
	status := &Status{
		Address:   res.Address.String(),
		Outcome:   res.Outcome,
		Bytes:     len(res.Data),
		Slot:      res.Slot,
		Lamports:  res.Lamports,
		Owner:     res.Owner,
		Error:     res.ErrorMessage(),
		FetchedAt: res.FetchedAt,
		TookMs:    res.Duration.Milliseconds(),
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	return nil
}

func (s *StatusReporter) Latest() (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status == nil {
		return Status{}, false
	}
	return *s.status, true
}

type statusHandler struct {
	reporter *StatusReporter
}

func (h *statusHandler) Get(w http.ResponseWriter, r *http.Request) {
	status, ok := h.reporter.Latest()
	if !ok {
		utils.Encode(w, r, http.StatusServiceUnavailable, map[string]string{"status": "pending"})
		return
	}

	utils.Encode(w, r, http.StatusOK, status)
}
