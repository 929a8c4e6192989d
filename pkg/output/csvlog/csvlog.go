// Package csvlog persists samples to an append-only CSV file.
//
// Every field of every row, header included, is written as a double-quoted
// string with embedded quotes doubled, and rows end in CRLF. Files written by
// earlier versions of the logger use the same layout, so they can be
// appended to.
package csvlog

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ericogr/upsplus-logger/pkg/config"
	"github.com/ericogr/upsplus-logger/pkg/output"
	"github.com/ericogr/upsplus-logger/pkg/record"
)

// Header is the fixed column row written once when the file is created.
var Header = []string{
	"RegisterTimestamp",
	"Uptime (s)",
	"Volts (mV)",
	"Power (mW)",
	"Remaining %",
	"Battery Current (mA)",
	"Batt. Temp (ºC)",
}

// ErrUnrecognizedLog is returned when a file exists at the log path but does
// not carry the .csv extension.
var ErrUnrecognizedLog = errors.New("csvlog: existing file is not a .csv log")

// EnsureLog creates the file at path and writes the header. An existing .csv
// file is treated as initialized; its content is not inspected.
func EnsureLog(path string) error {
	fi, err := os.Stat(path)
	switch {
	case err == nil:
		if fi.Mode().IsRegular() && config.HasCSVExtension(path) {
			log.Printf("csv file already exists: %s", path)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnrecognizedLog, path)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("csvlog: stat %s: %w", path, err)
	}

	log.Printf("creating file: %s", path)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("csvlog: create %s: %w", path, err)
	}
	return writeClose(f, Header)
}

// Append writes one row for s. The file is opened and closed on every call
// so a crash loses at most the row being written. Append never creates the
// file; a missing file is an error.
func Append(path string, s record.Sample) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("csvlog: open %s: %w", path, err)
	}
	return writeClose(f, Row(s))
}

// Row returns the fields of s in column order.
func Row(s record.Sample) []string {
	return []string{
		s.Timestamp,
		strconv.FormatUint(uint64(s.UptimeSeconds), 10),
		strconv.FormatUint(uint64(s.VoltageMilliVolts), 10),
		strconv.FormatInt(s.PowerMilliWatts, 10),
		strconv.FormatUint(uint64(s.RemainingPercent), 10),
		strconv.FormatInt(s.BatteryCurrentMilliAmps, 10),
		strconv.FormatUint(uint64(s.BatteryTempRaw), 10),
	}
}

func encodeRow(fields []string) []byte {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}

func writeClose(f *os.File, fields []string) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("csvlog: close %s: %w", f.Name(), cerr)
		}
	}()
	if _, err := f.Write(encodeRow(fields)); err != nil {
		return fmt.Errorf("csvlog: write %s: %w", f.Name(), err)
	}
	return nil
}

// Log is an output.Output appending every sample to one file.
type Log struct {
	path string
}

// New ensures the log exists and returns an output writing to it.
func New(path string) (output.Output, error) {
	if err := EnsureLog(path); err != nil {
		return nil, err
	}
	return &Log{path: path}, nil
}

func (l *Log) Publish(s record.Sample) error { return Append(l.path, s) }

func (l *Log) Close() error { return nil }
