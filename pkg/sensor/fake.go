package sensor

import (
	"math/rand"
	"sync"

	"github.com/ericogr/upsplus-logger/pkg/config"
	"github.com/ericogr/upsplus-logger/pkg/record"
	"periph.io/x/conn/v3/physic"
)

// fakeRegisters simulates the UPS register block during a discharge. The
// state advances each time register 1 is read, i.e. once per snapshot.
type fakeRegisters struct {
	mu        sync.Mutex
	regs      record.Snapshot
	uptime    uint32
	millivolt uint16
	remaining uint16
	stepSecs  uint32
}

func (f *fakeRegisters) ReadRegister(_ uint16, reg byte) (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reg == 1 {
		f.advance()
	}
	return f.regs[reg], nil
}

func (f *fakeRegisters) advance() {
	f.uptime += f.stepSecs
	if f.millivolt > 6000 {
		f.millivolt -= uint16(1 + rand.Intn(3))
	}
	// 8400mV full, 6000mV empty
	if f.millivolt >= 6000 {
		f.remaining = uint16((uint32(f.millivolt) - 6000) * 100 / 2400)
	}
	put(&f.regs, record.FieldUptime, f.uptime)
	put(&f.regs, record.FieldVoltage, uint32(f.millivolt))
	put(&f.regs, record.FieldRemaining, uint32(f.remaining))
	put(&f.regs, record.FieldTemperature, uint32(28+rand.Intn(3)))
}

func put(s *record.Snapshot, f record.Field, v uint32) {
	b := s[f.Offset : f.Offset+f.Width]
	if f.Width == 4 {
		f.Order.PutUint32(b, v)
		return
	}
	f.Order.PutUint16(b, uint16(v))
}

// FakeChannel returns a fixed reading with optional uniform jitter.
type FakeChannel struct {
	PowerMilliWatts  float64
	CurrentMilliAmps float64
	Jitter           float64
	Err              error
	mu               sync.Mutex
}

func (c *FakeChannel) Power() (physic.Power, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return physic.Power(c.jitter(c.PowerMilliWatts) * float64(physic.MilliWatt)), nil
}

func (c *FakeChannel) Current() (physic.ElectricCurrent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return physic.ElectricCurrent(c.jitter(c.CurrentMilliAmps) * float64(physic.MilliAmpere)), nil
}

func (c *FakeChannel) jitter(v float64) float64 {
	if c.Jitter == 0 {
		return v
	}
	return v + (rand.Float64()*2-1)*c.Jitter
}

// NewFakeSensor returns a Board backed by a simulated discharge, for running
// without I²C hardware.
func NewFakeSensor(cfg config.Config) (Sensor, error) {
	step := uint32(cfg.IntervalMs / 1000)
	if step == 0 {
		step = 1
	}
	regs := &fakeRegisters{millivolt: 8400, remaining: 100, stepSecs: step}
	return &Board{
		UPS:       NewUPS(regs, uint16(cfg.UPSAddress)),
		Telemetry: &Telemetry{
			Main:    &FakeChannel{PowerMilliWatts: 4500, Jitter: 250},
			Battery: &FakeChannel{CurrentMilliAmps: -550, Jitter: 40},
		},
	}, nil
}
