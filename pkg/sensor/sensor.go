package sensor

import (
	"fmt"

	"github.com/ericogr/upsplus-logger/pkg/record"
	"periph.io/x/conn/v3/physic"
)

// Reading is one pair of telemetry values taken in the same iteration.
type Reading struct {
	MainPowerMilliWatts     float64
	BatteryCurrentMilliAmps float64
}

// Sensor is the UPS board as seen by the sampling loop.
type Sensor interface {
	ReadSnapshot() (record.Snapshot, error)
	ReadTelemetry() (Reading, error)
	Close() error
}

// RegisterReader reads a single register byte from a device.
type RegisterReader interface {
	ReadRegister(addr uint16, reg byte) (byte, error)
}

// Channel is one current-sense channel.
type Channel interface {
	Power() (physic.Power, error)
	Current() (physic.ElectricCurrent, error)
}

// BusError reports a failed bus transaction: NACK, timeout or arbitration
// loss.
type BusError struct {
	Device string
	Op     string
	Err    error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bus error: %s %s: %v", e.Device, e.Op, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// RangeError reports a sense channel measurement outside the shunt's range.
type RangeError struct {
	Rail string
	Err  error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range error: %s: %v", e.Rail, e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }
