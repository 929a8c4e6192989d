package sensor

import (
	"fmt"

	"github.com/ericogr/upsplus-logger/pkg/record"
	"periph.io/x/conn/v3/i2c"
)

// Bus performs SMBus "read byte data" transactions. It holds no state
// besides the bus handle and never retries.
type Bus struct {
	bus i2c.Bus
}

func NewBus(bus i2c.Bus) *Bus { return &Bus{bus: bus} }

func (b *Bus) ReadRegister(addr uint16, reg byte) (byte, error) {
	var buf [1]byte
	if err := b.bus.Tx(addr, []byte{reg}, buf[:]); err != nil {
		return 0, &BusError{Device: fmt.Sprintf("0x%02X", addr), Op: fmt.Sprintf("read reg 0x%02X", reg), Err: err}
	}
	return buf[0], nil
}

// UPS reads the register block of the UPS Plus microcontroller.
type UPS struct {
	r    RegisterReader
	addr uint16
}

func NewUPS(r RegisterReader, addr uint16) *UPS { return &UPS{r: r, addr: addr} }

// ReadSnapshot reads registers 1..254 in order. Any failed read discards the
// whole snapshot.
func (u *UPS) ReadSnapshot() (record.Snapshot, error) {
	var snap record.Snapshot
	for reg := 1; reg < record.SnapshotSize; reg++ {
		v, err := u.r.ReadRegister(u.addr, byte(reg))
		if err != nil {
			return record.Snapshot{}, err
		}
		snap[reg] = v
	}
	return snap, nil
}
