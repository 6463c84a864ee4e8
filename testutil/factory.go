package testutil

import (
	"github.com/dan-strohschein/websql-driver/protocol"
)

// NewResultSetRecord builds a successful query record with the given rows.
// Zero rows yields an empty (non-nil) result set, matching a query that
// matched nothing.
func NewResultSetRecord(rows ...map[string]interface{}) protocol.ResultRecord {
	set := make([]map[string]interface{}, 0, len(rows))
	set = append(set, rows...)
	return protocol.ResultRecord{
		Success:   true,
		ResultSet: set,
	}
}

// NewRowsUpdatedRecord builds a successful non-batched statement record.
func NewRowsUpdatedRecord(n int64) protocol.ResultRecord {
	return protocol.ResultRecord{
		Success:     true,
		RowsUpdated: &n,
	}
}

// NewRowsUpdatedBatchRecord builds a successful batched statement record with
// one update count per batch element.
func NewRowsUpdatedBatchRecord(counts ...int64) protocol.ResultRecord {
	return protocol.ResultRecord{
		Success:          true,
		RowsUpdatedBatch: append([]int64(nil), counts...),
	}
}

// NewErrorRecord builds a failed item record, as produced for a noFail
// statement that errored server-side.
func NewErrorRecord(message string) protocol.ResultRecord {
	return protocol.ResultRecord{
		Success: false,
		Error:   message,
	}
}
