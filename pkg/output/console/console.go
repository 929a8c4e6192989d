package console

import (
	"fmt"

	"github.com/ericogr/upsplus-logger/pkg/output"
	"github.com/ericogr/upsplus-logger/pkg/record"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(s record.Sample) error {
	fmt.Printf("%s uptime=%ds voltage=%dmV power=%dmW remaining=%d%% battery_current=%dmA battery_temp=%d\n",
		s.Timestamp, s.UptimeSeconds, s.VoltageMilliVolts, s.PowerMilliWatts, s.RemainingPercent, s.BatteryCurrentMilliAmps, s.BatteryTempRaw)
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
