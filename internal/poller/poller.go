package poller

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/iqbalbaharum/market-account-poller/internal/logger"
	"github.com/iqbalbaharum/market-account-poller/internal/rpc"
	"github.com/pkg/errors"
)

type Fetcher interface {
	GetAccountInfo(ctx context.Context, publicKey solana.PublicKey, dataSlice *solanarpc.DataSlice, commitment solanarpc.CommitmentType) (*rpc.AccountInfo, error)
}

type Reporter interface {
	Report(ctx context.Context, res Result) error
}

type ReporterFunc func(ctx context.Context, res Result) error

func (f ReporterFunc) Report(ctx context.Context, res Result) error {
	return f(ctx, res)
}

type Options struct {
	Address    solana.PublicKey
	Commitment solanarpc.CommitmentType
	Interval   time.Duration
	// zero or anything <= Interval keeps the fixed interval on errors
	MaxBackoff time.Duration
	Reporters  []Reporter
	// each receive ends the current delay early
	Wake   <-chan struct{}
	Logger *logger.Logger
}

type Poller struct {
	fetcher    Fetcher
	address    solana.PublicKey
	commitment solanarpc.CommitmentType
	interval   time.Duration
	maxBackoff time.Duration
	reporters  []Reporter
	wake       <-chan struct{}
	log        *logger.Logger
}

func NewPoller(fetcher Fetcher, opts Options) (*Poller, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is nil")
	}
	if opts.Address.IsZero() {
		return nil, errors.New("account address is empty")
	}
	if opts.Interval <= 0 {
		return nil, errors.Errorf("poll interval must be positive, got %s", opts.Interval)
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Poller{
		fetcher:    fetcher,
		address:    opts.Address,
		commitment: opts.Commitment,
		interval:   opts.Interval,
		maxBackoff: opts.MaxBackoff,
		reporters:  opts.Reporters,
		wake:       opts.Wake,
		log:        log.Named("poller"),
	}, nil
}

// FetchAccountBytes issues one getAccountInfo call and classifies the response.
// It never retries and never panics.
func (p *Poller) FetchAccountBytes(ctx context.Context) (res Result) {
	start := time.Now()
	res = Result{Address: p.address, FetchedAt: start}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeTransportError
			res.Data = nil
			res.Err = errors.Errorf("panic during fetch: %v", r)
		}
		res.Duration = time.Since(start)
	}()

	info, err := p.fetcher.GetAccountInfo(ctx, p.address, nil, p.commitment)
	if err != nil {
		res.Outcome = OutcomeTransportError
		res.Err = err
		return res
	}

	if info == nil || info.Value == nil {
		res.Outcome = OutcomeNotFound
		res.Err = errors.Wrap(ErrAccountNotFound, p.address.String())
		if info != nil {
			res.Slot = info.Context.Slot
		}
		return res
	}

	res.Slot = info.Context.Slot
	res.Lamports = info.Value.Lamports
	res.Owner = info.Value.Owner

	data, err := info.Value.DecodeData()
	if err != nil {
		res.Outcome = OutcomeUnexpectedEncoding
		res.Err = err
		return res
	}

	res.Outcome = OutcomeSuccess
	res.Data = data

	return res
}

// Run polls until ctx is cancelled and returns ctx.Err(). Fetch failures are
// reported and never end the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("poll loop started",
		logger.Stringer("account", p.address),
		logger.Duration("interval", p.interval),
		logger.Duration("max_backoff", p.maxBackoff))

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			p.log.Info("poll loop stopped")
			return err
		}

		res := p.FetchAccountBytes(ctx)
		if ctx.Err() != nil {
			p.log.Info("poll loop stopped")
			return ctx.Err()
		}

		p.report(ctx, res)

		if res.OK() {
			failures = 0
		} else {
			failures++
		}

		if err := p.sleep(ctx, p.delay(failures)); err != nil {
			p.log.Info("poll loop stopped")
			return err
		}
	}
}

func (p *Poller) report(ctx context.Context, res Result) {
	for _, r := range p.reporters {
		if err := r.Report(ctx, res); err != nil {
			p.log.Warn("reporter failed", logger.Error(err))
		}
	}
}

func (p *Poller) delay(failures int) time.Duration {
	d := p.interval
	if failures == 0 || p.maxBackoff <= p.interval {
		return d
	}

	for i := 1; i < failures && d < p.maxBackoff; i++ {
		d *= 2
	}

	if d > p.maxBackoff {
		d = p.maxBackoff
	}

	return d
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case _, ok := <-p.wake:
			if !ok {
				p.wake = nil
				continue
			}
			return nil
		}
	}
}
