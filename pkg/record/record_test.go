package record

import (
	"testing"
)

func TestDecodeSixteenBitByteOrder(t *testing.T) {
	fields := []Field{FieldVoltage, FieldRemaining, FieldTemperature}
	for _, f := range fields {
		for lo := 0; lo < 256; lo++ {
			for hi := 0; hi < 256; hi++ {
				var snap Snapshot
				snap[f.Offset] = byte(lo)
				snap[f.Offset+1] = byte(hi)
				want := uint32(hi*256 + lo)
				if got := f.Uint(&snap); got != want {
					t.Fatalf("%s lo=%d hi=%d: got %d want %d", f.Name, lo, hi, got, want)
				}
			}
		}
	}
}

func TestDecodeFields(t *testing.T) {
	var snap Snapshot
	snap[5], snap[6] = 0xBB, 0x1F   // 8123
	snap[11], snap[12] = 0xEA, 0x00 // 234
	snap[19], snap[20] = 0x57, 0x00 // 87
	snap[36], snap[37] = 0xD2, 0x04 // 1234
	snap[38], snap[39] = 0x01, 0x00 // + 65536

	s := Decode(&snap, 4500.4, -320.2, "2024-01-01_120000")
	want := Sample{
		Timestamp:               "2024-01-01_120000",
		UptimeSeconds:           1234 + 65536,
		VoltageMilliVolts:       8123,
		PowerMilliWatts:         4500,
		RemainingPercent:        87,
		BatteryCurrentMilliAmps: -320,
		BatteryTempRaw:          234,
	}
	if s != want {
		t.Fatalf("decode mismatch:\n got: %+v\nwant: %+v", s, want)
	}
}

func TestDecodeUptimeAllBytes(t *testing.T) {
	var snap Snapshot
	snap[36], snap[37], snap[38], snap[39] = 0x78, 0x56, 0x34, 0x12
	if got := Decode(&snap, 0, 0, "").UptimeSeconds; got != 0x12345678 {
		t.Fatalf("uptime: got %#x want 0x12345678", got)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	var snap Snapshot
	for i := range snap {
		snap[i] = byte(i * 7)
	}
	a := Decode(&snap, 12345.6, -321.2, "s")
	b := Decode(&snap, 12345.6, -321.2, "s")
	if a != b {
		t.Fatalf("decode not deterministic: %+v vs %+v", a, b)
	}
}

func TestDecodeRounding(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{12345.6, 12346},
		{-321.2, -321},
		{0.5, 0},
		{1.5, 2},
		{-2.5, -2},
		{-0.4, 0},
	}
	var snap Snapshot
	for _, tt := range tests {
		s := Decode(&snap, tt.in, tt.in, "")
		if s.PowerMilliWatts != tt.want || s.BatteryCurrentMilliAmps != tt.want {
			t.Errorf("round(%v): got %d/%d want %d", tt.in, s.PowerMilliWatts, s.BatteryCurrentMilliAmps, tt.want)
		}
	}
}

func TestRegisterMapWithinSnapshot(t *testing.T) {
	for name, f := range RegisterMap {
		if f.Name != name {
			t.Errorf("map key %q holds field %q", name, f.Name)
		}
		if f.Offset < 1 || f.Offset+f.Width > SnapshotSize {
			t.Errorf("%s: offset %d width %d outside populated registers", name, f.Offset, f.Width)
		}
		if f.Width != 2 && f.Width != 4 {
			t.Errorf("%s: unsupported width %d", name, f.Width)
		}
	}
}
