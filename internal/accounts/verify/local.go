package verify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	defaultLocalTTL       = 10 * time.Minute
	defaultLocalMaxChecks = 5
	defaultLocalIssuer    = "accounts"
)

// Dispatcher delivers a freshly minted code. LocalGateway uses it in place of
// a real SMS carrier.
type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.VerificationRequest, code string) error
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, req domain.VerificationRequest, code string) error

func (f DispatchFunc) Dispatch(ctx context.Context, req domain.VerificationRequest, code string) error {
	return f(ctx, req, code)
}

// LogDispatcher "sends" codes by logging them. Development only.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d LogDispatcher) Dispatch(_ context.Context, req domain.VerificationRequest, code string) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("local verification code", "to", req.Destination, "channel", req.Channel, "code", code)
	return nil
}

// LocalGateway is an in-process verification provider for development and
// tests. Each issuance mints an HOTP code from a per-destination secret and
// counter, so issuing again invalidates the previous code. It behaves like the
// hosted provider: codes expire after TTL and a verification is discarded once
// approved or after MaxChecks wrong guesses. The zero value with a Dispatcher
// is usable; unset fields take the NewLocalGateway defaults.
type LocalGateway struct {
	Dispatcher Dispatcher
	Issuer     string
	TTL        time.Duration
	MaxChecks  int

	mu      sync.Mutex
	pending map[string]*localVerification
	now     func() time.Time
}

type localVerification struct {
	secret    string
	counter   uint64
	checks    int
	expiresAt time.Time
}

var localOpts = hotp.ValidateOpts{
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// NewLocalGateway returns a LocalGateway that hands codes to d.
func NewLocalGateway(d Dispatcher) *LocalGateway {
	return &LocalGateway{
		Dispatcher: d,
		Issuer:     defaultLocalIssuer,
		TTL:        defaultLocalTTL,
		MaxChecks:  defaultLocalMaxChecks,
		pending:    make(map[string]*localVerification),
		now:        time.Now,
	}
}

// IssueCode mints and dispatches a new code for destination.
func (g *LocalGateway) IssueCode(ctx context.Context, destination string) error {
	if g.Dispatcher == nil {
		return &IssueError{
			Destination: destination,
			Reason:      "no dispatcher configured",
			Err:         ErrNotConfigured,
		}
	}

	g.mu.Lock()
	if g.pending == nil {
		g.pending = make(map[string]*localVerification)
	}
	issuer := g.Issuer
	if issuer == "" {
		issuer = defaultLocalIssuer
	}
	ttl := g.TTL
	if ttl <= 0 {
		ttl = defaultLocalTTL
	}

	v, ok := g.pending[destination]
	if !ok {
		key, err := hotp.Generate(hotp.GenerateOpts{
			Issuer:      issuer,
			AccountName: destination,
			Digits:      localOpts.Digits,
			Algorithm:   localOpts.Algorithm,
		})
		if err != nil {
			g.mu.Unlock()
			return &IssueError{Destination: destination, Reason: "failed to mint code", Err: err}
		}
		v = &localVerification{secret: key.Secret()}
		g.pending[destination] = v
	} else {
		v.counter++
	}
	v.checks = 0
	v.expiresAt = g.clock().Add(ttl)

	code, err := hotp.GenerateCodeCustom(v.secret, v.counter, localOpts)
	g.mu.Unlock()
	if err != nil {
		return &IssueError{Destination: destination, Reason: "failed to mint code", Err: err}
	}

	req := domain.VerificationRequest{Destination: destination, Channel: domain.ChannelSMS}
	if err := g.Dispatcher.Dispatch(ctx, req, code); err != nil {
		g.forget(destination)
		return &IssueError{
			Destination: destination,
			Reason:      "failed to deliver code",
			Err:         fmt.Errorf("dispatch: %w", err),
		}
	}
	return nil
}

// CheckCode validates code against the live verification for destination.
func (g *LocalGateway) CheckCode(ctx context.Context, destination, code string) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, &CheckError{Destination: destination, Reason: "request cancelled", Err: err}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.pending[destination]
	if !ok || !g.clock().Before(v.expiresAt) {
		delete(g.pending, destination)
		return domain.Outcome{Verdict: domain.Denied, Status: domain.StatusExpired}, nil
	}

	// Malformed input (wrong length) comes back as an error and counts as a
	// wrong code.
	valid, err := hotp.ValidateCustom(code, v.counter, v.secret, localOpts)
	if err == nil && valid {
		delete(g.pending, destination)
		return domain.OutcomeFromStatus(domain.StatusApproved), nil
	}

	v.checks++
	if g.MaxChecks > 0 && v.checks >= g.MaxChecks {
		delete(g.pending, destination)
	}
	return domain.OutcomeFromStatus(domain.StatusPending), nil
}

func (g *LocalGateway) clock() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

func (g *LocalGateway) forget(destination string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, destination)
}
