// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler runs the hourly batch update. Activation is persisted
// as an option so a restart re-registers the job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"lightwork/internal/store"
)

// Schedule is the cron expression of the batch update.
const Schedule = "@hourly"

// Options persists the activation flag.
type Options interface {
	Get(key string, dst any) (bool, error)
	Set(key string, value any) error
}

// Job is the work run on every tick.
type Job interface {
	Run(ctx context.Context) error
}

// Scheduler owns the cron runner and the single batch entry.
type Scheduler struct {
	cron    *cron.Cron
	options Options
	job     Job

	mu    sync.Mutex
	entry cron.EntryID // zero when not registered
	ctx   context.Context
}

// New creates a stopped scheduler. Call Start to resume the persisted state.
func New(options Options, job Job) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(
			cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn)),
		))),
		options: options,
		job:     job,
	}
}

// Start begins the cron runner and registers the job when the persisted
// flag says it is active. ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	var active bool
	if _, err := s.options.Get(store.OptionBatchUpdate, &active); err != nil {
		return fmt.Errorf("load batch flag: %w", err)
	}

	s.mu.Lock()
	s.ctx = ctx
	if active {
		if err := s.register(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	s.cron.Start()
	slog.Info("scheduler started", "batch_update", active)
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Activate registers the job (once) and persists the flag.
func (s *Scheduler) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.options.Set(store.OptionBatchUpdate, true); err != nil {
		return fmt.Errorf("persist batch flag: %w", err)
	}
	return s.register()
}

// Deactivate removes the job and persists the flag.
func (s *Scheduler) Deactivate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.options.Set(store.OptionBatchUpdate, false); err != nil {
		return fmt.Errorf("persist batch flag: %w", err)
	}
	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
	return nil
}

// Active reports whether the job is registered.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry != 0
}

// NextRun returns the next scheduled run, or nil when inactive or not
// started yet.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == 0 {
		return nil
	}
	next := s.cron.Entry(s.entry).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// register must be called with mu held.
func (s *Scheduler) register() error {
	if s.entry != 0 {
		return nil
	}
	id, err := s.cron.AddFunc(Schedule, s.run)
	if err != nil {
		return fmt.Errorf("schedule batch update: %w", err)
	}
	s.entry = id
	return nil
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	if err := s.job.Run(ctx); err != nil {
		slog.Error("batch update failed", "error", err)
		return
	}
	slog.Info("batch update finished", "duration", time.Since(start).String())
}
