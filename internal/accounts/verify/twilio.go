package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/sony/gobreaker"
	twilioclient "github.com/twilio/twilio-go/client"
	verifyv2 "github.com/twilio/twilio-go/rest/verify/v2"
)

const (
	DefaultTwilioBaseURL = "https://verify.twilio.com"

	defaultTimeout      = 15 * time.Second
	defaultMaxFailures  = 5
	defaultOpenDuration = 30 * time.Second
)

// TwilioConfig holds the Verify v2 credentials. All three identifiers are
// required; a missing one surfaces on the first call, not at construction.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	ServiceSID string
	BaseURL    string // Optional: scheme and host that replace DefaultTwilioBaseURL

	HTTPClient *http.Client // Optional: defaults to a client with a 15s timeout
	Logger     *slog.Logger // Optional: used for breaker state changes

	// Breaker settings. After MaxFailures consecutive transport or 5xx
	// failures the breaker opens and calls fail fast for OpenTimeout.
	MaxFailures uint32
	OpenTimeout time.Duration
}

// TwilioGateway implements Gateway with the twilio-go Verify v2 client.
type TwilioGateway struct {
	accountSID string
	authToken  string
	serviceSID string
	baseURL    *url.URL
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// NewTwilioGateway returns a gateway for the given Verify service.
func NewTwilioGateway(cfg TwilioConfig) *TwilioGateway {
	var baseURL *url.URL
	if raw := strings.TrimSpace(cfg.BaseURL); raw != "" && raw != DefaultTwilioBaseURL {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			baseURL = u
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultOpenDuration
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "twilio-verify",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A 4xx is the provider answering; only transport failures and 5xx
		// count against the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var restErr *twilioclient.TwilioRestError
			return errors.As(err, &restErr) && restErr.Status > 0 && restErr.Status < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &TwilioGateway{
		accountSID: strings.TrimSpace(cfg.AccountSID),
		authToken:  strings.TrimSpace(cfg.AuthToken),
		serviceSID: strings.TrimSpace(cfg.ServiceSID),
		baseURL:    baseURL,
		httpClient: httpClient,
		cb:         cb,
	}
}

// IssueCode starts an SMS verification for destination.
func (g *TwilioGateway) IssueCode(ctx context.Context, destination string) error {
	log := slogx.FromContext(ctx)

	if !g.configured() {
		return &IssueError{
			Destination: destination,
			Reason:      "verification provider is not configured",
			Err:         ErrNotConfigured,
		}
	}

	req := domain.VerificationRequest{Destination: destination, Channel: domain.ChannelSMS}
	params := &verifyv2.CreateVerificationParams{}
	params.SetTo(req.Destination)
	params.SetChannel(req.Channel)

	_, err := g.execute(ctx, func(svc *verifyv2.ApiService) (any, error) {
		return svc.CreateVerification(g.serviceSID, params)
	})
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			log.Warn("twilio: verification rejected",
				"to", MaskDestination(destination),
				"status", restErr.Status,
				"code", restErr.Code,
			)
			return &IssueError{
				Destination: destination,
				Reason:      describe(restErr),
				Err:         fmt.Errorf("%w: status=%d", ErrProviderRejected, restErr.Status),
			}
		}
		log.Warn("twilio: verification request failed", "to", MaskDestination(destination), "err", err)
		return &IssueError{Destination: destination, Reason: reasonFor(err), Err: err}
	}

	log.Debug("twilio: verification sent", "to", MaskDestination(destination))
	return nil
}

// CheckCode submits code for destination and maps the verdict.
func (g *TwilioGateway) CheckCode(ctx context.Context, destination, code string) (domain.Outcome, error) {
	log := slogx.FromContext(ctx)

	if !g.configured() {
		return domain.Outcome{}, &CheckError{
			Destination: destination,
			Reason:      "verification provider is not configured",
			Err:         ErrNotConfigured,
		}
	}

	params := &verifyv2.CreateVerificationCheckParams{}
	params.SetTo(destination)
	params.SetCode(code)

	res, err := g.execute(ctx, func(svc *verifyv2.ApiService) (any, error) {
		return svc.CreateVerificationCheck(g.serviceSID, params)
	})
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		switch {
		case errors.As(err, &restErr) && restErr.Status == http.StatusNotFound:
			// No pending verification: expired, already approved, or max checks hit.
			return domain.Outcome{Verdict: domain.Denied, Status: domain.StatusExpired}, nil
		case errors.As(err, &restErr):
			log.Warn("twilio: verification check rejected",
				"to", MaskDestination(destination),
				"status", restErr.Status,
				"code", restErr.Code,
			)
			return domain.Outcome{}, &CheckError{
				Destination: destination,
				Reason:      describe(restErr),
				Err:         fmt.Errorf("%w: status=%d", ErrProviderRejected, restErr.Status),
			}
		default:
			log.Warn("twilio: verification check failed", "to", MaskDestination(destination), "err", err)
			return domain.Outcome{}, &CheckError{Destination: destination, Reason: reasonFor(err), Err: err}
		}
	}

	check, _ := res.(*verifyv2.VerifyV2VerificationCheck)
	if check == nil || check.Status == nil {
		return domain.Outcome{}, &CheckError{
			Destination: destination,
			Reason:      "unreadable provider response",
			Err:         errors.New("verification check has no status"),
		}
	}
	return domain.OutcomeFromStatus(*check.Status), nil
}

func (g *TwilioGateway) configured() bool {
	return g.accountSID != "" && g.authToken != "" && g.serviceSID != ""
}

// execute runs fn under the circuit breaker with a Verify client bound to ctx.
func (g *TwilioGateway) execute(ctx context.Context, fn func(svc *verifyv2.ApiService) (any, error)) (any, error) {
	res, err := g.cb.Execute(func() (any, error) {
		return fn(g.service(ctx))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return res, err
}

// service builds a Verify API client for one call. twilio-go has no
// per-request context, so ctx and the base URL override ride on the
// transport.
func (g *TwilioGateway) service(ctx context.Context) *verifyv2.ApiService {
	c := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(g.accountSID, g.authToken),
		HTTPClient: &http.Client{
			Timeout:   g.httpClient.Timeout,
			Transport: &routeTransport{ctx: ctx, base: g.baseURL, next: g.httpClient.Transport},
		},
	}
	c.SetAccountSid(g.accountSID)
	return verifyv2.NewApiServiceWithClient(c)
}

// routeTransport attaches the caller's context to every request and, when
// base is set, sends it to base's scheme and host instead of Twilio's.
type routeTransport struct {
	ctx  context.Context
	base *url.URL
	next http.RoundTripper
}

func (t *routeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(t.ctx)
	if t.base != nil {
		out.URL.Scheme = t.base.Scheme
		out.URL.Host = t.base.Host
		out.Host = ""
	}

	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(out)
}

func describe(e *twilioclient.TwilioRestError) string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("provider returned status %d", e.Status)
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		return "verification provider is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "verification provider timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	default:
		return "verification provider unreachable"
	}
}
