package sensor

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ericogr/upsplus-logger/pkg/config"
	"github.com/ericogr/upsplus-logger/pkg/ina219"
	"github.com/ericogr/upsplus-logger/pkg/record"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Telemetry wraps the main rail and battery rail sense channels.
type Telemetry struct {
	Main    Channel
	Battery Channel
}

// Read takes main rail power, then battery rail current.
func (t *Telemetry) Read() (Reading, error) {
	p, err := t.Main.Power()
	if err != nil {
		return Reading{}, channelError("main rail", "power", err)
	}
	c, err := t.Battery.Current()
	if err != nil {
		return Reading{}, channelError("battery rail", "current", err)
	}
	return Reading{
		MainPowerMilliWatts:     float64(p) / float64(physic.MilliWatt),
		BatteryCurrentMilliAmps: float64(c) / float64(physic.MilliAmpere),
	}, nil
}

func channelError(rail, op string, err error) error {
	if errors.Is(err, ina219.ErrOverflow) {
		return &RangeError{Rail: rail, Err: err}
	}
	return &BusError{Device: rail, Op: op, Err: err}
}

// Board is a UPS Plus v5: the register block plus two INA219 channels.
type Board struct {
	UPS       *UPS
	Telemetry *Telemetry
	closer    io.Closer
}

// NewBoard initializes the host drivers, opens the configured bus and
// programs both INA219 channels.
func NewBoard(cfg config.Config) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	b, err := newBoard(bus, cfg)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	b.closer = bus
	return b, nil
}

func newBoard(bus i2c.Bus, cfg config.Config) (*Board, error) {
	mainOpts, battOpts := channelOpts(cfg)
	main, err := openChannel(bus, "main rail", &mainOpts)
	if err != nil {
		return nil, err
	}
	batt, err := openChannel(bus, "battery rail", &battOpts)
	if err != nil {
		return nil, err
	}
	return &Board{
		UPS:       NewUPS(NewBus(bus), uint16(cfg.UPSAddress)),
		Telemetry: &Telemetry{Main: main, Battery: batt},
	}, nil
}

// openChannel programs one INA219 and logs its bus voltage so a miswired rail
// shows up at startup.
func openChannel(bus i2c.Bus, rail string, opts *ina219.Opts) (*ina219.Dev, error) {
	d, err := ina219.New(bus, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rail, err)
	}
	v, err := d.BusVoltage()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rail, err)
	}
	log.Printf("%s: %s bus=%s", rail, d, v)
	return d, nil
}

func (b *Board) ReadSnapshot() (record.Snapshot, error) { return b.UPS.ReadSnapshot() }

func (b *Board) ReadTelemetry() (Reading, error) { return b.Telemetry.Read() }

func (b *Board) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}
