// Package jet defines the decode boundary for desktop-database containers.
//
// Actual file-format parsing (page layout, column decoding, index
// structures) lives behind the [Driver] interface, registered in the
// style of database/sql. jetview itself only consumes the [Reader] and
// [TableHandle] views of a decoded file.
package jet

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownFormat is returned by Open when no registered driver
// recognizes the file bytes.
var ErrUnknownFormat = errors.New("jet: unrecognized database format")

// Reader is a session over one decoded database file. It owns the table
// handles it produces and lives until the file is replaced or closed.
type Reader interface {
	// ListTables returns table names in enumeration order. The order is
	// stable for the lifetime of the reader; no sort is implied.
	ListTables() []string
	// Table returns the handle for the named table. May fail per-table
	// without invalidating the reader.
	Table(name string) (TableHandle, error)
	Close() error
}

// TableHandle is a per-table accessor. Handles are cached and shared
// read-only across components for the life of the Reader.
type TableHandle interface {
	Name() string
	// RowCount returns the total number of rows.
	RowCount() (int, error)
	// Columns returns column names in declaration order, stable for the
	// table's lifetime.
	Columns() []string
	// Rows returns up to limit rows starting at offset. Requests past the
	// end return the remaining rows, possibly none.
	Rows(offset, limit int) ([]Row, error)
}

// Driver decodes one container format.
type Driver interface {
	// Name identifies the driver, unique across registrations.
	Name() string
	// Sniff reports whether the bytes look like this driver's format.
	// It must be cheap: magic numbers, not a full parse.
	Sniff(data []byte) bool
	// Open decodes the file. Only called when Sniff returned true.
	Open(data []byte) (Reader, error)
}

var (
	driversMu sync.RWMutex
	drivers   []Driver
)

// Register makes a driver available to Open. It panics if a driver with
// the same name is already registered.
func Register(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	for _, existing := range drivers {
		if existing.Name() == d.Name() {
			panic(fmt.Sprintf("jet: driver %q registered twice", d.Name()))
		}
	}
	drivers = append(drivers, d)
}

// Open decodes data with the first registered driver whose Sniff accepts
// it. name is the original file name, used only for error reporting.
//
// Returns ErrUnknownFormat when no driver accepts the bytes, or the
// driver's decode error wrapped with the file name.
func Open(name string, data []byte) (Reader, error) {
	driversMu.RLock()
	candidates := make([]Driver, len(drivers))
	copy(candidates, drivers)
	driversMu.RUnlock()

	for _, d := range candidates {
		if !d.Sniff(data) {
			continue
		}
		r, err := d.Open(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s with driver %s: %w", name, d.Name(), err)
		}
		return r, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnknownFormat)
}
