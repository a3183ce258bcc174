package test

import (
	"context"
	"fmt"
	"github.com/susom/smartdata-worker/token"
	"sync"
	"sync/atomic"
	"time"
)

type Issuer struct {
	Err   error
	Delay time.Duration

	calls atomic.Int32
}

var _ token.Issuer = &Issuer{}

func NewTestIssuer() *Issuer {
	return &Issuer{}
}

// Authenticate returns a distinct token on every call
func (i *Issuer) Authenticate(ctx context.Context) (string, error) {
	n := i.calls.Add(1)
	if i.Delay > 0 {
		select {
		case <-time.After(i.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if i.Err != nil {
		return "", i.Err
	}
	return fmt.Sprintf("token-%d", n), nil
}

func (i *Issuer) Calls() int {
	return int(i.calls.Load())
}

type Store struct {
	mu       sync.Mutex
	Token    *token.CachedToken
	GetErr   error
	SetErr   error
	SetCalls int
}

var _ token.Store = &Store{}

func NewTestStore() *Store {
	return &Store{}
}

func (s *Store) Get(_ context.Context) (*token.CachedToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	if s.Token == nil {
		return nil, nil
	}
	t := *s.Token
	return &t, nil
}

func (s *Store) Set(_ context.Context, t token.CachedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetCalls++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.Token = &t
	return nil
}
