package poller

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

var ErrAccountNotFound = errors.New("account not found")

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFound
	OutcomeUnexpectedEncoding
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUnexpectedEncoding:
		return "unexpected_encoding"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the outcome of a single fetch. Data is set only for OutcomeSuccess,
// Err only for the other outcomes.
type Result struct {
	Outcome   Outcome
	Address   solana.PublicKey
	Data      []byte
	Slot      uint64
	Lamports  uint64
	Owner     string
	Err       error
	FetchedAt time.Time
	Duration  time.Duration
}

func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
