// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"lightwork/internal/models"
	"lightwork/internal/store"
)

// memOptions is an in-memory option store using the same JSON encoding
// as the database-backed one.
type memOptions struct {
	mu   sync.Mutex
	vals map[string][]byte
	err  error
}

func newMemOptions() *memOptions { return &memOptions{vals: map[string][]byte{}} }

func (m *memOptions) Get(key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.vals[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memOptions) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.vals[key] = raw
	return nil
}

type countingJob struct {
	mu   sync.Mutex
	runs int
}

func (j *countingJob) Run(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return nil
}

func flag(t *testing.T, opts *memOptions) (bool, bool) {
	t.Helper()
	var active bool
	found, err := opts.Get(store.OptionBatchUpdate, &active)
	if err != nil {
		t.Fatalf("read flag: %v", err)
	}
	return active, found
}

func TestSchedulerDefaultsInactive(t *testing.T) {
	s := New(newMemOptions(), &countingJob{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	if s.Active() {
		t.Error("scheduler should be inactive without a persisted flag")
	}
	if s.NextRun() != nil {
		t.Error("NextRun() should be nil while inactive")
	}
}

func TestSchedulerActivateDeactivate(t *testing.T) {
	opts := newMemOptions()
	s := New(opts, &countingJob{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	if err := s.Activate(); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	if err := s.Activate(); err != nil {
		t.Fatalf("second Activate() error: %v", err)
	}
	if !s.Active() {
		t.Fatal("scheduler should be active")
	}
	if len(s.cron.Entries()) != 1 {
		t.Errorf("entries = %d, want exactly 1", len(s.cron.Entries()))
	}
	if s.NextRun() == nil {
		t.Error("NextRun() should be set while active")
	}
	if active, found := flag(t, opts); !found || !active {
		t.Errorf("persisted flag = %v (found %v), want true", active, found)
	}

	if err := s.Deactivate(); err != nil {
		t.Fatalf("Deactivate() error: %v", err)
	}
	if s.Active() || len(s.cron.Entries()) != 0 {
		t.Error("scheduler should have no entries after Deactivate")
	}
	if active, _ := flag(t, opts); active {
		t.Error("persisted flag should be false after Deactivate")
	}
}

func TestSchedulerResumesPersistedState(t *testing.T) {
	opts := newMemOptions()
	if err := opts.Set(store.OptionBatchUpdate, true); err != nil {
		t.Fatal(err)
	}

	s := New(opts, &countingJob{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	if !s.Active() {
		t.Error("scheduler should re-register the job on start")
	}
}

func TestSchedulerActivatePersistFailure(t *testing.T) {
	opts := newMemOptions()
	opts.err = errors.New("db down")
	s := New(opts, &countingJob{})

	if err := s.Activate(); err == nil {
		t.Fatal("Activate() should fail when the flag cannot be saved")
	}
	if s.Active() {
		t.Error("job should not be registered when persisting failed")
	}
}

func TestSchedulerRunInvokesJob(t *testing.T) {
	job := &countingJob{}
	s := New(newMemOptions(), job)
	s.run()
	s.run()
	if job.runs != 2 {
		t.Errorf("runs = %d, want 2", job.runs)
	}
}

// --- Batch ---

type fakeTypes struct {
	types []models.ContentType
	err   error
}

func (f fakeTypes) List() ([]models.ContentType, error) { return f.types, f.err }

type overwrite struct {
	typ   string
	names []string
	value string
}

type fakeRecords struct {
	calls []overwrite
	n     int64
	err   error
}

func (f *fakeRecords) OverwriteFields(typ string, names []string, value string) (int64, error) {
	f.calls = append(f.calls, overwrite{typ, names, value})
	return f.n, f.err
}

func TestBatchRun(t *testing.T) {
	types := []models.ContentType{
		{Slug: "book", Fields: []models.Field{{Name: "author"}, {Name: "isbn"}}},
		{Slug: "empty"},
		{Slug: "film", Fields: []models.Field{{Name: "director"}}},
	}
	recs := &fakeRecords{n: 3}
	var purged bool
	b := &Batch{Types: fakeTypes{types: types}, Records: recs, After: func(context.Context) { purged = true }}

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(recs.calls) != 2 {
		t.Fatalf("calls = %d, want 2 (types without fields skipped)", len(recs.calls))
	}
	if c := recs.calls[0]; c.typ != "book" || len(c.names) != 2 || c.value != BatchValue {
		t.Errorf("first call = %+v", c)
	}
	if recs.calls[1].typ != "film" {
		t.Errorf("second call type = %q, want film", recs.calls[1].typ)
	}
	if !purged {
		t.Error("After hook should run when values were written")
	}
}

func TestBatchRunErrors(t *testing.T) {
	t.Run("list failure", func(t *testing.T) {
		b := &Batch{Types: fakeTypes{err: errors.New("boom")}, Records: &fakeRecords{}}
		if err := b.Run(context.Background()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("overwrite failure skips hook", func(t *testing.T) {
		called := false
		b := &Batch{
			Types:   fakeTypes{types: []models.ContentType{{Slug: "book", Fields: []models.Field{{Name: "a"}}}}},
			Records: &fakeRecords{err: errors.New("boom")},
			After:   func(context.Context) { called = true },
		}
		if err := b.Run(context.Background()); err == nil {
			t.Error("expected error")
		}
		if called {
			t.Error("After should not run on failure")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		recs := &fakeRecords{}
		b := &Batch{Types: fakeTypes{types: []models.ContentType{{Slug: "book", Fields: []models.Field{{Name: "a"}}}}}, Records: recs}
		if err := b.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
		if len(recs.calls) != 0 {
			t.Error("no writes expected after cancellation")
		}
	})
}
