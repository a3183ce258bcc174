package test

import (
	"context"
	"github.com/susom/smartdata-worker/audit"
	"sync"
)

type AuditSink struct {
	mu      sync.Mutex
	entries []audit.Entry
	Err     error
}

var _ audit.Sink = &AuditSink{}

func NewTestAuditSink() *AuditSink {
	return &AuditSink{}
}

func (a *AuditSink) Record(_ context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return a.Err
}

func (a *AuditSink) Entries() []audit.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]audit.Entry, len(a.entries))
	copy(result, a.entries)
	return result
}
