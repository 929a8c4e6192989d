package sampler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ericogr/upsplus-logger/pkg/output"
	"github.com/ericogr/upsplus-logger/pkg/record"
	"github.com/ericogr/upsplus-logger/pkg/sensor"
)

// Source is the part of a sensor.Sensor the loop reads from.
type Source interface {
	ReadSnapshot() (record.Snapshot, error)
	ReadTelemetry() (sensor.Reading, error)
}

// Config is the immutable runtime config of one run.
type Config struct {
	Session     string
	Interval    time.Duration
	RunOnce     bool
	StopOnError bool
}

// Stats counts iterations of a run.
type Stats struct {
	Written int
	Skipped int
}

// Sampler reads, decodes and publishes one sample per interval. It is not
// safe for concurrent use.
type Sampler struct {
	cfg   Config
	src   Source
	outs  []output.Output
	wait  func(context.Context, time.Duration) bool
	stats Stats
}

// New creates a sampler. Outputs receive each sample in the order given.
func New(cfg Config, src Source, outs ...output.Output) (*Sampler, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("sampler: interval must be > 0")
	}
	if src == nil {
		return nil, errors.New("sampler: source required")
	}
	if len(outs) == 0 {
		return nil, errors.New("sampler: at least one output required")
	}
	return &Sampler{cfg: cfg, src: src, outs: outs, wait: sleep}, nil
}

func (s *Sampler) Stats() Stats { return s.stats }

// SampleOnce performs exactly one iteration. All-or-nothing: a failed read
// publishes nothing. Returned errors are *Fault.
func (s *Sampler) SampleOnce() (record.Sample, error) {
	snap, err := s.src.ReadSnapshot()
	if err != nil {
		return record.Sample{}, Classify(err)
	}
	tel, err := s.src.ReadTelemetry()
	if err != nil {
		return record.Sample{}, Classify(err)
	}
	sample := record.Decode(&snap, tel.MainPowerMilliWatts, tel.BatteryCurrentMilliAmps, s.cfg.Session)
	for _, o := range s.outs {
		if err := o.Publish(sample); err != nil {
			return sample, &Fault{Kind: PersistenceFault, Err: err}
		}
	}
	return sample, nil
}

// Run samples until ctx is cancelled, a run-once sample succeeds, or a fatal
// fault occurs. Cancellation returns nil; a fatal fault is returned as
// *Fault. The interval is measured from the end of each iteration.
func (s *Sampler) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		_, err := s.SampleOnce()
		if err != nil {
			f := Classify(err)
			if !f.Transient() || s.cfg.StopOnError {
				return f
			}
			s.stats.Skipped++
			log.Printf("sample skipped: %v", f)
		} else {
			s.stats.Written++
			if s.cfg.RunOnce {
				return nil
			}
		}
		if !s.wait(ctx, s.cfg.Interval) {
			return nil
		}
	}
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
