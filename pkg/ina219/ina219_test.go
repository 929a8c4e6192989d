package ina219

import (
	"errors"
	"math"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

const addr uint16 = 0x40

const shunt = 7250 * physic.MicroOhm

// initOps are the writes New issues: calibration 4194 (0x1062), then config.
func initOps(a uint16) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: a, W: []byte{regCalibration, 0x10, 0x62}},
		{Addr: a, W: []byte{regConfig, 0x39, 0x9F}},
	}
}

func currentLSB(ohms float64) float64 {
	return shuntVoltsMax / ohms / currentLSBFactor
}

func TestNewWritesCalibration(t *testing.T) {
	tests := []struct {
		addr  uint16
		shunt physic.ElectricResistance
	}{
		{0x40, 7250 * physic.MicroOhm},
		{0x45, 5 * physic.MilliOhm},
	}
	for _, tt := range tests {
		pb := &i2ctest.Playback{Ops: initOps(tt.addr), DontPanic: true}
		d, err := New(pb, &Opts{Address: tt.addr, SenseResistor: tt.shunt})
		if err != nil {
			t.Fatalf("New(0x%02X): %v", tt.addr, err)
		}
		if d.calibration != 0x1062 {
			t.Errorf("calibration: got %#x want 0x1062", d.calibration)
		}
		if err := pb.Close(); err != nil {
			t.Error(err)
		}
	}
}

func TestNewInvalidOpts(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	if _, err := New(pb, nil); err != errOptsMissing {
		t.Errorf("nil opts: got %v want %v", err, errOptsMissing)
	}
	if _, err := New(pb, &Opts{Address: 0x17, SenseResistor: shunt}); err != errAddressOutOfRange {
		t.Errorf("address: got %v want %v", err, errAddressOutOfRange)
	}
	if _, err := New(pb, &Opts{Address: addr}); err != errSenseResistorInvalid {
		t.Errorf("resistor: got %v want %v", err, errSenseResistorInvalid)
	}
}

func TestPower(t *testing.T) {
	ops := append(initOps(addr),
		i2ctest.IO{Addr: addr, W: []byte{regBusVoltage}, R: []byte{0x5D, 0x72}},
		i2ctest.IO{Addr: addr, W: []byte{regPower}, R: []byte{0x01, 0x00}},
	)
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	d, err := New(pb, &Opts{Address: addr, SenseResistor: shunt})
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.Power()
	if err != nil {
		t.Fatal(err)
	}
	want := 256 * powerLSBFactor * currentLSB(0.00725) * 1000
	got := float64(p) / float64(physic.MilliWatt)
	if math.Abs(got-want) > 0.001 {
		t.Fatalf("power: got %.4f mW want %.4f mW", got, want)
	}
}

func TestCurrentSigned(t *testing.T) {
	ops := append(initOps(addr),
		i2ctest.IO{Addr: addr, W: []byte{regBusVoltage}, R: []byte{0x5D, 0x72}},
		i2ctest.IO{Addr: addr, W: []byte{regCurrent}, R: []byte{0xFF, 0x00}},
	)
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	d, err := New(pb, &Opts{Address: addr, SenseResistor: shunt})
	if err != nil {
		t.Fatal(err)
	}
	c, err := d.Current()
	if err != nil {
		t.Fatal(err)
	}
	want := -256 * currentLSB(0.00725) * 1000
	got := float64(c) / float64(physic.MilliAmpere)
	if math.Abs(got-want) > 0.001 {
		t.Fatalf("current: got %.4f mA want %.4f mA", got, want)
	}
}

func TestOverflow(t *testing.T) {
	ops := append(initOps(addr),
		i2ctest.IO{Addr: addr, W: []byte{regBusVoltage}, R: []byte{0x5D, 0x73}},
		i2ctest.IO{Addr: addr, W: []byte{regBusVoltage}, R: []byte{0x5D, 0x73}},
	)
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	d, err := New(pb, &Opts{Address: addr, SenseResistor: shunt})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Power(); !errors.Is(err, ErrOverflow) {
		t.Errorf("power: got %v want %v", err, ErrOverflow)
	}
	if _, err := d.Current(); !errors.Is(err, ErrOverflow) {
		t.Errorf("current: got %v want %v", err, ErrOverflow)
	}
}

func TestBusVoltage(t *testing.T) {
	ops := append(initOps(addr),
		i2ctest.IO{Addr: addr, W: []byte{regBusVoltage}, R: []byte{0x5D, 0x72}},
	)
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	d, err := New(pb, &Opts{Address: addr, SenseResistor: shunt})
	if err != nil {
		t.Fatal(err)
	}
	v, err := d.BusVoltage()
	if err != nil {
		t.Fatal(err)
	}
	if v != 11960*physic.MilliVolt {
		t.Errorf("bus voltage: got %s want 11.96V", v)
	}
}

func TestReadErrorWrapped(t *testing.T) {
	pb := &i2ctest.Playback{Ops: initOps(addr), DontPanic: true}
	d, err := New(pb, &Opts{Address: addr, SenseResistor: shunt})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Power(); err == nil {
		t.Fatal("expected error from exhausted playback")
	} else if errors.Is(err, ErrOverflow) {
		t.Fatalf("bus failure reported as overflow: %v", err)
	}
}

func TestString(t *testing.T) {
	pb := &i2ctest.Playback{Ops: initOps(addr), DontPanic: true}
	defer pb.Close()
	d, err := New(pb, &Opts{Address: addr, SenseResistor: shunt})
	if err != nil {
		t.Fatal(err)
	}
	if s := d.String(); s != "INA219{addr:0x40, shunt:0.00725Ω}" {
		t.Errorf("String: got %q", s)
	}
}
