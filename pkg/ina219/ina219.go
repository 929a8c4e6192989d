// Package ina219 reads power and current from a Texas Instruments INA219
// high-side current monitor over I²C.
//
// The device is programmed for a 32V bus range and a ±320mV shunt range
// (PGA /8). A reading whose shunt voltage exceeds that range sets the
// overflow flag and is reported as ErrOverflow rather than a value.
//
// Datasheet: https://www.ti.com/lit/ds/symlink/ina219.pdf
package ina219

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	regConfig      uint8 = 0x00
	regBusVoltage  uint8 = 0x02
	regPower       uint8 = 0x03
	regCurrent     uint8 = 0x04
	regCalibration uint8 = 0x05
)

const (
	// 32V bus range, PGA /8, 12-bit bus and shunt ADC, continuous shunt+bus.
	configValue uint16 = 0x399F

	shuntVoltsMax     = 0.32
	calibrationFactor = 0.04096
	currentLSBFactor  = 32770
	maxCalibration    = 0xFFFE
	powerLSBFactor    = 20

	flagOverflow uint16 = 0x0001
)

// ErrOverflow is returned when the measured shunt voltage is outside the
// configured range, i.e. the current is too large for the sense resistor.
var ErrOverflow = errors.New("ina219: measurement out of range")

var (
	errOptsMissing          = errors.New("ina219: options are required")
	errAddressOutOfRange    = errors.New("ina219: address must be in 0x40..0x4F")
	errSenseResistorInvalid = errors.New("ina219: sense resistor must be > 0")
)

// Opts holds the bus address and sense resistor of one device.
type Opts struct {
	Address       uint16
	SenseResistor physic.ElectricResistance
}

// Dev is a configured INA219.
type Dev struct {
	c           i2c.Dev
	shunt       float64 // ohms
	currentLSB  float64 // amperes per bit
	powerLSB    float64 // watts per bit
	calibration uint16
}

// New programs the calibration and configuration registers and returns the
// device.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		return nil, errOptsMissing
	}
	if opts.Address < 0x40 || opts.Address > 0x4F {
		return nil, errAddressOutOfRange
	}
	if opts.SenseResistor <= 0 {
		return nil, errSenseResistorInvalid
	}
	d := &Dev{
		c:     i2c.Dev{Bus: bus, Addr: opts.Address},
		shunt: float64(opts.SenseResistor) / float64(physic.Ohm),
	}
	d.calibrate()
	if err := d.writeRegister(regCalibration, d.calibration); err != nil {
		return nil, err
	}
	if err := d.writeRegister(regConfig, configValue); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("INA219{addr:0x%02X, shunt:%gΩ}", d.c.Addr, d.shunt)
}

// Power returns the power drawn through the shunt.
func (d *Dev) Power() (physic.Power, error) {
	if err := d.checkOverflow(); err != nil {
		return 0, err
	}
	raw, err := d.readRegister(regPower)
	if err != nil {
		return 0, err
	}
	return physic.Power(float64(raw) * d.powerLSB * float64(physic.Watt)), nil
}

// Current returns the signed current through the shunt.
func (d *Dev) Current() (physic.ElectricCurrent, error) {
	if err := d.checkOverflow(); err != nil {
		return 0, err
	}
	raw, err := d.readRegister(regCurrent)
	if err != nil {
		return 0, err
	}
	return physic.ElectricCurrent(float64(int16(raw)) * d.currentLSB * float64(physic.Ampere)), nil
}

// BusVoltage returns the voltage on the load side of the shunt.
func (d *Dev) BusVoltage() (physic.ElectricPotential, error) {
	raw, err := d.readRegister(regBusVoltage)
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(raw>>3) * 4 * physic.MilliVolt, nil
}

// calibrate derives the register LSBs from the shunt value. The current LSB
// covers the full ±320mV range but is never finer than the calibration
// register can express.
func (d *Dev) calibrate() {
	maxAmps := shuntVoltsMax / d.shunt
	d.currentLSB = maxAmps / currentLSBFactor
	if minLSB := calibrationFactor / (d.shunt * maxCalibration); d.currentLSB < minLSB {
		d.currentLSB = minLSB
	}
	d.powerLSB = d.currentLSB * powerLSBFactor
	d.calibration = uint16(math.Trunc(calibrationFactor / (d.currentLSB * d.shunt)))
}

func (d *Dev) checkOverflow() error {
	v, err := d.readRegister(regBusVoltage)
	if err != nil {
		return err
	}
	if v&flagOverflow != 0 {
		return ErrOverflow
	}
	return nil
}

func (d *Dev) readRegister(reg uint8) (uint16, error) {
	b := make([]byte, 2)
	if err := d.c.Tx([]byte{reg}, b); err != nil {
		return 0, fmt.Errorf("ina219: read register 0x%02X: %w", reg, err)
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Dev) writeRegister(reg uint8, v uint16) error {
	if err := d.c.Tx([]byte{reg, byte(v >> 8), byte(v)}, nil); err != nil {
		return fmt.Errorf("ina219: write register 0x%02X: %w", reg, err)
	}
	return nil
}
