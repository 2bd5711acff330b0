// Package scheduler runs the ledger's periodic jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"pawnloan-ledger/internal/usecase/due"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = time.Minute

// Sweeper marks overdue installments; a zero asOf means today.
type Sweeper interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (*due.SweepDTO, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

// New accepts five-field specs, six-field specs with seconds, and descriptors
// such as @daily. Specs are evaluated in loc.
func New(loc *time.Location, log logrus.FieldLogger) *Scheduler {
	cl := cronLogger{log: log.WithField("component", "cron")}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// AddOverdueSweep registers the pending → overdue sweep.
func (s *Scheduler) AddOverdueSweep(spec string, sw Sweeper) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() { s.sweep(sw) })
	if err != nil {
		return 0, fmt.Errorf("overdue sweep schedule %q: %w", spec, err)
	}
	s.log.WithFields(logrus.Fields{"job": "overdue_sweep", "spec": spec}).Info("job scheduled")
	return id, nil
}

func (s *Scheduler) sweep(sw Sweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	out, err := sw.MarkOverdue(ctx, time.Time{})
	entry := s.log.WithFields(logrus.Fields{"job": "overdue_sweep", "took_ms": time.Since(start).Milliseconds()})
	if err != nil {
		entry.WithError(err).Error("job failed")
		return
	}
	entry.WithFields(logrus.Fields{"as_of": out.AsOf, "marked": out.Marked}).Info("job finished")
}

// Entry exposes a scheduled job, mainly for running it on demand.
func (s *Scheduler) Entry(id cron.EntryID) cron.Entry { return s.cron.Entry(id) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs or for ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

type cronLogger struct{ log logrus.FieldLogger }

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.WithFields(fields(kv)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.WithFields(fields(kv)).WithError(err).Error(msg)
}

func fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
