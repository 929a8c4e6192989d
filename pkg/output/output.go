package output

import "github.com/ericogr/upsplus-logger/pkg/record"

// Output receives every decoded sample. Outputs are called in order and an
// error from any of them stops the run.
type Output interface {
	Publish(record.Sample) error
	Close() error
}

// helper constructors are in subpackages
