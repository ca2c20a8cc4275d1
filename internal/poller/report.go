package poller

import (
	"context"

	"github.com/iqbalbaharum/market-account-poller/internal/logger"
)

// LogReporter writes one human-readable line per poll.
type LogReporter struct {
	log *logger.Logger
}

func NewLogReporter(log *logger.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(_ context.Context, res Result) error {
	fields := []logger.Field{
		logger.Stringer("account", res.Address),
		logger.Duration("took", res.Duration),
	}

	switch res.Outcome {
	case OutcomeSuccess:
		r.log.Info("received raw account data",
			append(fields,
				logger.Int("bytes", len(res.Data)),
				logger.Uint64("slot", res.Slot),
				logger.Uint64("lamports", res.Lamports),
				logger.String("owner", res.Owner),
			)...)
	case OutcomeNotFound:
		r.log.Warn("account not found", append(fields, logger.Uint64("slot", res.Slot))...)
	case OutcomeUnexpectedEncoding:
		r.log.Warn("unexpected raw data format", append(fields, logger.Error(res.Err))...)
	default:
		r.log.Error("poll failed", append(fields, logger.Error(res.Err))...)
	}

	return nil
}
