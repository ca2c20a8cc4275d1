package storage

import "github.com/pkg/errors"

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
