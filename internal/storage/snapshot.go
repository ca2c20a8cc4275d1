package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/market-account-poller/internal/poller"
	"github.com/iqbalbaharum/market-account-poller/internal/types"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func SetSnapshot(ctx context.Context, client *redis.Client, snapshot *types.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	if err := client.HSet(ctx, KEY_MARKET_SNAPSHOT, snapshot.Address, data).Err(); err != nil {
		return errors.Wrap(err, "failed to store snapshot")
	}

	return nil
}

func GetSnapshot(ctx context.Context, client *redis.Client, address solana.PublicKey) (*types.Snapshot, error) {
	data, err := client.HGet(ctx, KEY_MARKET_SNAPSHOT, address.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSnapshotNotFound
		}
		return nil, errors.Wrap(err, "failed to load snapshot")
	}

	var snapshot types.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func NewSnapshot(res poller.Result, baseMint, quoteMint solana.PublicKey) *types.Snapshot {
	snapshot := &types.Snapshot{
		Address:   res.Address.String(),
		Outcome:   res.Outcome.String(),
		Length:    len(res.Data),
		Slot:      res.Slot,
		Lamports:  res.Lamports,
		Owner:     res.Owner,
		Error:     res.ErrorMessage(),
		FetchedAt: res.FetchedAt.Unix(),
	}

	if !baseMint.IsZero() {
		snapshot.BaseMint = baseMint.String()
	}
	if !quoteMint.IsZero() {
		snapshot.QuoteMint = quoteMint.String()
	}

	if res.OK() {
		sum := sha256.Sum256(res.Data)
		snapshot.Sha256 = hex.EncodeToString(sum[:])
	}

	return snapshot
}

// SnapshotReporter overwrites the account's snapshot after every poll.
type SnapshotReporter struct {
	client    *redis.Client
	baseMint  solana.PublicKey
	quoteMint solana.PublicKey
}

func NewSnapshotReporter(client *redis.Client, baseMint, quoteMint solana.PublicKey) *SnapshotReporter {
	return &SnapshotReporter{
		client:    client,
		baseMint:  baseMint,
		quoteMint: quoteMint,
	}
}

func (r *SnapshotReporter) Report(ctx context.Context, res poller.Result) error {
	return SetSnapshot(ctx, r.client, NewSnapshot(res, r.baseMint, r.quoteMint))
}
