package record

import "math"

// Sample is one logged record.
type Sample struct {
	Timestamp               string
	UptimeSeconds           uint32
	VoltageMilliVolts       uint16
	PowerMilliWatts         int64
	RemainingPercent        uint16
	BatteryCurrentMilliAmps int64
	BatteryTempRaw          uint16
}

// Decode builds a Sample from one snapshot and the telemetry read in the same
// iteration. Values are not range checked: the remaining percentage is known
// to be wrong while the board is charging.
func Decode(snap *Snapshot, mainPowerMW, battCurrentMA float64, session string) Sample {
	return Sample{
		Timestamp:               session,
		UptimeSeconds:           FieldUptime.Uint(snap),
		VoltageMilliVolts:       uint16(FieldVoltage.Uint(snap)),
		PowerMilliWatts:         round(mainPowerMW),
		RemainingPercent:        uint16(FieldRemaining.Uint(snap)),
		BatteryCurrentMilliAmps: round(battCurrentMA),
		BatteryTempRaw:          uint16(FieldTemperature.Uint(snap)),
	}
}

// round matches printf's %.0f, which rounds halves to even.
func round(v float64) int64 {
	return int64(math.RoundToEven(v))
}
