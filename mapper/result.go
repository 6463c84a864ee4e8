// Package mapper demultiplexes the flat results array of a batch response
// into typed per-item outcomes, and provides typed access to row values.
package mapper

import (
	"time"

	"github.com/dan-strohschein/websql-driver/protocol"
)

// Item is the typed outcome of one sub-request. Exactly one of ResultSet,
// RowsUpdated, RowsUpdatedBatch or Err is populated, mirroring whichever
// field the server set on the wire record; the server is the source of truth
// and the mapper passes records through without cross-validation.
type Item struct {
	// Success reports whether the sub-request succeeded.
	Success bool

	// ResultSet holds the rows of a successful query, nil otherwise.
	ResultSet []Row

	// RowsUpdated holds the update count of a successful non-batched
	// statement, nil otherwise.
	RowsUpdated *int64

	// RowsUpdatedBatch holds one update count per batch element for a
	// successful batched statement, nil otherwise.
	RowsUpdatedBatch []int64

	// Err holds the server-reported message when Success is false.
	Err string
}

// FromRecords maps decoded wire records into items, preserving order and
// count exactly as received.
func FromRecords(records []protocol.ResultRecord) []Item {
	items := make([]Item, len(records))
	for i, rec := range records {
		items[i] = Item{
			Success:          rec.Success,
			RowsUpdated:      rec.RowsUpdated,
			RowsUpdatedBatch: rec.RowsUpdatedBatch,
			Err:              rec.Error,
		}
		if rec.ResultSet != nil {
			rows := make([]Row, len(rec.ResultSet))
			for j, r := range rec.ResultSet {
				rows[j] = Row(r)
			}
			items[i].ResultSet = rows
		}
	}
	return items
}

// Row is one record of a query result set, mapping column name to value.
type Row map[string]interface{}

// Has reports whether the row contains the named column.
func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// GetString returns the column value coerced to a string; absent or nil
// values yield "".
func (r Row) GetString(column string) string {
	return ToString(r[column])
}

// GetInt returns the column value coerced to an int64.
func (r Row) GetInt(column string) (int64, error) {
	return ToInt(r[column])
}

// GetFloat returns the column value coerced to a float64.
func (r Row) GetFloat(column string) (float64, error) {
	return ToFloat(r[column])
}

// GetBool returns the column value coerced to a bool.
func (r Row) GetBool(column string) (bool, error) {
	return ToBool(r[column])
}

// GetTime returns the column value coerced to a time.Time.
func (r Row) GetTime(column string) (time.Time, error) {
	return ToTime(r[column])
}
