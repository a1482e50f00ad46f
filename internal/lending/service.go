package lending

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"lendingdesk/internal/platform/metrics"
	"lendingdesk/internal/platform/retry"
)

// -------------- Clock & ID --------------

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }

// ulidGen shares one monotonic source so ids minted in the same millisecond still sort.
type ulidGen struct {
	mu      sync.Mutex
	entropy io.Reader
}

func newULIDGen() *ulidGen {
	return &ulidGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ulidGen) NewULID(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

// -------------- Service --------------

type Service struct {
	store     Store
	clock     Clock
	id        IDGen
	log       *zap.Logger
	metrics   *metrics.Lending
	policy    Policy
	retryOpts []retry.Option
}

type Option func(*Service)

func WithClock(c Clock) Option              { return func(s *Service) { s.clock = c } }
func WithIDGen(g IDGen) Option              { return func(s *Service) { s.id = g } }
func WithLogger(l *zap.Logger) Option       { return func(s *Service) { s.log = l } }
func WithMetrics(m *metrics.Lending) Option { return func(s *Service) { s.metrics = m } }
func WithPolicy(p Policy) Option            { return func(s *Service) { s.policy = p } }

// WithRetryOptions tunes the backoff used for serialization failures.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(s *Service) { s.retryOpts = append(s.retryOpts, opts...) }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		clock:  realClock{},
		id:     newULIDGen(),
		log:    zap.NewNop(),
		policy: DefaultPolicy(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ping checks the store, for health probes.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// now is truncated to what DATETIME(6) keeps, so memory and MySQL agree.
func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// update runs fn as one transaction, retrying serialization failures.
func (s *Service) update(ctx context.Context, op string, fn func(ctx context.Context, tx Tx) error) error {
	opts := append([]retry.Option{}, s.retryOpts...)
	opts = append(opts,
		retry.WithRetryIf(func(err error) bool { return errors.Is(err, ErrSerialization) }),
		retry.OnRetry(func(attempt int, err error) {
			s.log.Warn("retrying transaction", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
			s.metrics.Retried(op)
		}),
	)
	err := retry.Do(ctx, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, fn)
	}, opts...)
	return s.classify(op, err)
}

func (s *Service) view(ctx context.Context, op string, fn func(ctx context.Context, tx Tx) error) error {
	return s.classify(op, s.store.ReadOnly(ctx, fn))
}

// classify is the transaction boundary: domain errors pass through, store
// failures become PersistenceFailure.
func (s *Service) classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var api *APIError
	switch {
	case errors.As(err, &api):
	case errors.Is(err, ErrDuplicate):
		api = ErrConflict("already exists")
	case errors.Is(err, ErrReferenced):
		api = ErrRefIntegrity("loan records still reference this entry")
	case errors.Is(err, ErrOutOfRange):
		api = ErrInvalid("value does not fit the store")
	default:
		api = ErrPersistence(err)
	}

	if api.Code == CodePersistenceFailure {
		s.log.Error("transaction failed", zap.String("op", op), zap.Error(err))
	} else {
		s.log.Debug("operation rejected", zap.String("op", op), zap.String("code", string(api.Code)), zap.String("reason", api.Message))
	}
	s.metrics.Failed(op, string(api.Code))
	return api
}

// notFound turns ErrRecordNotFound into a NOT_FOUND error, and leaves others alone.
func notFound(err error, msg string) error {
	if errors.Is(err, ErrRecordNotFound) {
		return ErrNotFound(msg)
	}
	return err
}
