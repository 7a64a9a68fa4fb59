package verify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

// outbox captures dispatched codes per destination.
type outbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (o *outbox) Dispatch(_ context.Context, req domain.VerificationRequest, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.codes == nil {
		o.codes = make(map[string]string)
	}
	o.codes[req.Destination] = code
	return nil
}

func (o *outbox) last(dest string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codes[dest]
}

const phone = "+15550000001"

func TestLocalGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	box := &outbox{}
	gw := NewLocalGateway(box)

	require.NoError(t, gw.IssueCode(ctx, phone))
	code := box.last(phone)
	require.Len(t, code, 6)

	outcome, err := gw.CheckCode(ctx, phone, wrongCode(code))
	require.NoError(t, err)
	require.False(t, outcome.Approved())
	require.Equal(t, domain.StatusPending, outcome.Status)

	outcome, err = gw.CheckCode(ctx, phone, code)
	require.NoError(t, err)
	require.True(t, outcome.Approved())

	// Approved verifications are consumed.
	outcome, err = gw.CheckCode(ctx, phone, code)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, outcome.Status)
}

func TestLocalGatewayReissueInvalidatesPreviousCode(t *testing.T) {
	ctx := context.Background()
	box := &outbox{}
	gw := NewLocalGateway(box)

	require.NoError(t, gw.IssueCode(ctx, phone))
	first := box.last(phone)
	require.NoError(t, gw.IssueCode(ctx, phone))
	second := box.last(phone)
	require.NotEqual(t, first, second)

	outcome, err := gw.CheckCode(ctx, phone, first)
	require.NoError(t, err)
	require.False(t, outcome.Approved())

	outcome, err = gw.CheckCode(ctx, phone, second)
	require.NoError(t, err)
	require.True(t, outcome.Approved())
}

func TestLocalGatewayExpiry(t *testing.T) {
	ctx := context.Background()
	box := &outbox{}
	gw := NewLocalGateway(box)

	now := time.Unix(1700000000, 0)
	gw.now = func() time.Time { return now }

	require.NoError(t, gw.IssueCode(ctx, phone))
	code := box.last(phone)

	now = now.Add(gw.TTL)
	outcome, err := gw.CheckCode(ctx, phone, code)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, outcome.Status)
}

func TestLocalGatewayMaxChecks(t *testing.T) {
	ctx := context.Background()
	box := &outbox{}
	gw := NewLocalGateway(box)
	gw.MaxChecks = 2

	require.NoError(t, gw.IssueCode(ctx, phone))
	code := box.last(phone)

	for range 2 {
		outcome, err := gw.CheckCode(ctx, phone, wrongCode(code))
		require.NoError(t, err)
		require.Equal(t, domain.StatusPending, outcome.Status)
	}

	outcome, err := gw.CheckCode(ctx, phone, code)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, outcome.Status)
}

func TestLocalGatewayMalformedCode(t *testing.T) {
	ctx := context.Background()
	box := &outbox{}
	gw := NewLocalGateway(box)

	require.NoError(t, gw.IssueCode(ctx, phone))

	outcome, err := gw.CheckCode(ctx, phone, "12")
	require.NoError(t, err)
	require.False(t, outcome.Approved())
}

func TestLocalGatewayDispatchFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("carrier down")
	gw := NewLocalGateway(DispatchFunc(func(context.Context, domain.VerificationRequest, string) error {
		return boom
	}))

	err := gw.IssueCode(ctx, phone)
	var issueErr *IssueError
	require.ErrorAs(t, err, &issueErr)
	require.ErrorIs(t, err, boom)

	// Nothing is left pending after a failed delivery.
	outcome, err := gw.CheckCode(ctx, phone, "123456")
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, outcome.Status)
}

func TestLocalGatewayWithoutDispatcher(t *testing.T) {
	gw := NewLocalGateway(nil)
	err := gw.IssueCode(context.Background(), phone)
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestLocalGatewayLiteral(t *testing.T) {
	ctx := context.Background()
	box := &outbox{}
	gw := &LocalGateway{Dispatcher: box, Issuer: "dev"}

	require.NoError(t, gw.IssueCode(ctx, phone))
	code := box.last(phone)
	require.Len(t, code, 6)

	outcome, err := gw.CheckCode(ctx, phone, code)
	require.NoError(t, err)
	require.True(t, outcome.Approved())

	outcome, err = (&LocalGateway{Dispatcher: box}).CheckCode(ctx, phone, code)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, outcome.Status)
}

// wrongCode returns a six digit code that differs from code.
func wrongCode(code string) string {
	b := []byte(code)
	if b[0] == '9' {
		b[0] = '0'
	} else {
		b[0]++
	}
	return string(b)
}
