package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/stretchr/testify/require"
)

// stubGateway approves codes listed in accept and denies the rest.
type stubGateway struct {
	mu       sync.Mutex
	accept   map[string]bool
	issueErr error
	checkErr error
	issued   []string
	checked  []string
}

func newStubGateway(accept ...string) *stubGateway {
	g := &stubGateway{accept: make(map[string]bool)}
	for _, c := range accept {
		g.accept[c] = true
	}
	return g
}

func (g *stubGateway) IssueCode(_ context.Context, destination string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued = append(g.issued, destination)
	return g.issueErr
}

func (g *stubGateway) CheckCode(_ context.Context, destination, code string) (domain.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checked = append(g.checked, code)
	if g.checkErr != nil {
		return domain.Outcome{}, g.checkErr
	}
	if g.accept[code] {
		return domain.OutcomeFromStatus(domain.StatusApproved), nil
	}
	return domain.OutcomeFromStatus(domain.StatusPending), nil
}

func (g *stubGateway) calls() (issued, checked int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.issued), len(g.checked)
}

func (g *stubGateway) setCheckErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkErr = err
}

func issueFailure() error {
	return &verify.IssueError{Destination: "+15550000001", Reason: "provider rejected", Err: verify.ErrProviderRejected}
}

func checkFailure() error {
	return &verify.CheckError{Destination: "+15550000001", Reason: "verification provider unreachable", Err: verify.ErrProviderUnavailable}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s store.Store, username, password, phone string) {
	t.Helper()

	reg := &RegistrationService{Store: s}
	_, err := reg.Register(context.Background(), username, password, phone)
	require.NoError(t, err)
}

// scriptedPrompter answers prompts from a fixed list, then closes the
// prompt. It records every prompt it was shown.
type scriptedPrompter struct {
	codes   []string
	prompts []Prompt
}

func (p *scriptedPrompter) PromptCode(_ context.Context, prompt Prompt) (string, bool) {
	p.prompts = append(p.prompts, prompt)
	if len(p.codes) == 0 {
		return "", false
	}
	code := p.codes[0]
	p.codes = p.codes[1:]
	return code, true
}
