package sensor

import (
	"math"

	"github.com/ericogr/upsplus-logger/pkg/config"
	"github.com/ericogr/upsplus-logger/pkg/ina219"
	"periph.io/x/conn/v3/physic"
)

// channelOpts extracts the INA219 settings of both rails from the config.
func channelOpts(cfg config.Config) (main, batt ina219.Opts) {
	main = ina219.Opts{Address: uint16(cfg.MainRail.Address), SenseResistor: ohms(cfg.MainRail.ShuntOhms)}
	batt = ina219.Opts{Address: uint16(cfg.BatteryRail.Address), SenseResistor: ohms(cfg.BatteryRail.ShuntOhms)}
	return
}

func ohms(v float64) physic.ElectricResistance {
	return physic.ElectricResistance(math.Round(v * float64(physic.Ohm)))
}
