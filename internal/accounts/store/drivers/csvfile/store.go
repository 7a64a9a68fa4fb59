// Package csvfile stores the user directory in a flat CSV file with a
// "username,password,phone" header, the format the account manager has
// always used. Every write rewrites the whole file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
)

const (
	colUsername = "username"
	colPassword = "password"
	colPhone    = "phone"

	lockRetryInterval = 25 * time.Millisecond
	staleLockAge      = 30 * time.Second
)

var header = []string{colUsername, colPassword, colPhone}

var ErrMalformed = errors.New("csvfile: malformed user file")

type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore returns a store backed by the file at path. The file is created
// by ApplyMigrations if it does not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Users() store.Users { return &usersRepo{s: s} }

// ApplyMigrations creates the file with its header row if it is missing or
// empty. Existing content is left alone.
func (s *Store) ApplyMigrations() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to stat user file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create user file directory: %w", err)
		}
	}
	return s.writeAll(nil)
}

func (s *Store) Close() error { return nil }

// Ping checks the user file is present and readable.
func (s *Store) Ping(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	return f.Close()
}

// readAll parses the whole file. Columns are located by header name so
// extra or reordered columns are tolerated.
func (s *Store) readAll() ([]domain.User, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open user file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	idx := make(map[string]int, len(head))
	for i, name := range head {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range header {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", ErrMalformed, col)
		}
	}

	var users []domain.User
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		users = append(users, domain.User{
			Username: field(rec, idx[colUsername]),
			Password: rawField(rec, idx[colPassword]),
			Phone:    field(rec, idx[colPhone]),
		})
	}
	return users, nil
}

// writeAll replaces the file with users via a temp file and rename, so a
// reader never sees a half-written file.
func (s *Store) writeAll(users []domain.User) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, u := range users {
		if err := w.Write([]string{u.Username, u.Password, u.Phone}); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to flush records: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace user file: %w", err)
	}
	return nil
}

// lock takes the cross-process lock file, retrying until ctx is done. A lock
// older than staleLockAge is assumed to belong to a dead process.
func (s *Store) lock(ctx context.Context) (func(), error) {
	lockPath := s.path + ".lock"
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > staleLockAge {
			_ = os.Remove(lockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock on user file: %w", ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

func field(rec []string, i int) string {
	return strings.TrimSpace(rawField(rec, i))
}

// rawField is used for passwords, which are compared byte for byte.
func rawField(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
