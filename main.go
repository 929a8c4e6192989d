package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ericogr/upsplus-logger/pkg/config"
	"github.com/ericogr/upsplus-logger/pkg/output"
	"github.com/ericogr/upsplus-logger/pkg/output/console"
	"github.com/ericogr/upsplus-logger/pkg/output/csvlog"
	"github.com/ericogr/upsplus-logger/pkg/sampler"
	"github.com/ericogr/upsplus-logger/pkg/sensor"
)

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	log.Printf("starting: session=%s runonce=%v csvfile=%s sensor=%s", cfg.Session, cfg.RunOnce, cfg.CSVFile, cfg.SensorType)

	s, err := newSensor(cfg)
	if err != nil {
		return fmt.Errorf("sensor: %w", err)
	}
	defer s.Close()

	outs, err := initOutputs(cfg)
	if err != nil {
		return fmt.Errorf("outputs: %w", err)
	}
	defer func() {
		for _, o := range outs {
			_ = o.Close()
		}
	}()

	smp, err := sampler.New(samplerConfig(cfg), s, outs...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = smp.Run(ctx)
	st := smp.Stats()
	log.Printf("stopped: %d samples written, %d skipped", st.Written, st.Skipped)
	if err != nil {
		return fmt.Errorf("sampling stopped: %w", err)
	}
	return nil
}

func newSensor(cfg config.Config) (sensor.Sensor, error) {
	switch cfg.SensorType {
	case config.SensorSimulation:
		return sensor.NewFakeSensor(cfg)
	default:
		return sensor.NewBoard(cfg)
	}
}

// initOutputs returns the console (unless quiet) followed by the CSV log, so
// each record is shown before it is persisted.
func initOutputs(cfg config.Config) ([]output.Output, error) {
	var outs []output.Output
	if !cfg.Quiet {
		outs = append(outs, console.NewConsole())
	}
	l, err := csvlog.New(cfg.CSVFile)
	if err != nil {
		return nil, err
	}
	return append(outs, l), nil
}

func samplerConfig(cfg config.Config) sampler.Config {
	return sampler.Config{
		Session:     cfg.Session,
		Interval:    cfg.Interval(),
		RunOnce:     cfg.RunOnce,
		StopOnError: cfg.StopOnError,
	}
}
