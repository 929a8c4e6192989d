package sampler

import (
	"errors"
	"fmt"

	"github.com/ericogr/upsplus-logger/pkg/sensor"
)

// FaultKind tells which failures the loop may skip.
type FaultKind int

const (
	// Defect is any error the loop does not know how to recover from.
	Defect FaultKind = iota
	// BusFault is a failed register or telemetry transaction.
	BusFault
	// RangeFault is a sense channel reading outside its shunt range.
	RangeFault
	// PersistenceFault is a failed write to an output. Never retried.
	PersistenceFault
)

var faultNames = map[FaultKind]string{
	Defect:           "defect",
	BusFault:         "bus fault",
	RangeFault:       "range fault",
	PersistenceFault: "persistence fault",
}

func (k FaultKind) String() string {
	if n, ok := faultNames[k]; ok {
		return n
	}
	return "unknown"
}

// Fault is an error tagged with its kind.
type Fault struct {
	Kind FaultKind
	Err  error
}

func (f *Fault) Error() string { return fmt.Sprintf("%s: %v", f.Kind, f.Err) }

func (f *Fault) Unwrap() error { return f.Err }

// Transient reports whether the fault may be skipped.
func (f *Fault) Transient() bool { return f.Kind == BusFault || f.Kind == RangeFault }

// Classify tags err. Errors already tagged keep their kind; anything that is
// not a sensor bus or range error is a Defect.
func Classify(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	var rangeErr *sensor.RangeError
	if errors.As(err, &rangeErr) {
		return &Fault{Kind: RangeFault, Err: err}
	}
	var busErr *sensor.BusError
	if errors.As(err, &busErr) {
		return &Fault{Kind: BusFault, Err: err}
	}
	return &Fault{Kind: Defect, Err: err}
}
