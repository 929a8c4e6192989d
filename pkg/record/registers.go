package record

import "encoding/binary"

// SnapshotSize is the number of register slots read from the UPS. Slot 0 is
// reserved; registers 1..254 are read sequentially.
const SnapshotSize = 255

// Snapshot is one full read of the UPS register space.
type Snapshot [SnapshotSize]byte

// Field locates a multi-byte value inside a Snapshot.
type Field struct {
	Name   string
	Offset int
	Width  int
	Order  binary.ByteOrder
}

// Register layout of the UPS Plus v5 firmware. These offsets are defined by
// the board and must not change.
var (
	FieldVoltage     = Field{Name: "voltage_mv", Offset: 5, Width: 2, Order: binary.LittleEndian}
	FieldTemperature = Field{Name: "battery_temp", Offset: 11, Width: 2, Order: binary.LittleEndian}
	FieldRemaining   = Field{Name: "remaining_pct", Offset: 19, Width: 2, Order: binary.LittleEndian}
	FieldUptime      = Field{Name: "uptime_s", Offset: 36, Width: 4, Order: binary.LittleEndian}
)

// RegisterMap lists every decoded field by name.
var RegisterMap = map[string]Field{
	FieldVoltage.Name:     FieldVoltage,
	FieldTemperature.Name: FieldTemperature,
	FieldRemaining.Name:   FieldRemaining,
	FieldUptime.Name:      FieldUptime,
}

// Uint returns the field value from s. Width 2 and 4 are supported.
func (f Field) Uint(s *Snapshot) uint32 {
	b := s[f.Offset : f.Offset+f.Width]
	if f.Width == 4 {
		return f.Order.Uint32(b)
	}
	return uint32(f.Order.Uint16(b))
}
