package handler

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/market-account-poller/internal/storage"
	"github.com/iqbalbaharum/market-account-poller/internal/utils"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type snapshotHandler struct {
	client  *redis.Client
	address solana.PublicKey
}

func (h *snapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		http.Error(w, ErrSnapshotDisabled, http.StatusNotImplemented)
		return
	}

	ctx := r.Context()
	snapshot, err := storage.GetSnapshot(ctx, h.client, h.address)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	utils.Encode(w, r, http.StatusOK, snapshot)
}
