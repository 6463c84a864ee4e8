package mapper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dan-strohschein/websql-driver/protocol"
)

func int64Ptr(v int64) *int64 { return &v }

func TestFromRecords_PreservesOrderAndCount(t *testing.T) {
	records := []protocol.ResultRecord{
		{Success: true, ResultSet: []map[string]interface{}{{"ID": float64(1)}}},
		{Success: true, RowsUpdated: int64Ptr(3)},
		{Success: false, Error: "constraint violated"},
		{Success: true, RowsUpdatedBatch: []int64{1, 1}},
	}

	items := FromRecords(records)
	require.Len(t, items, 4)

	require.True(t, items[0].Success)
	require.Len(t, items[0].ResultSet, 1)
	require.Nil(t, items[0].RowsUpdated)

	require.NotNil(t, items[1].RowsUpdated)
	require.EqualValues(t, 3, *items[1].RowsUpdated)
	require.Nil(t, items[1].ResultSet)

	require.False(t, items[2].Success)
	require.Equal(t, "constraint violated", items[2].Err)

	require.Equal(t, []int64{1, 1}, items[3].RowsUpdatedBatch)
}

func TestFromRecords_EmptyResultSetStaysNonNil(t *testing.T) {
	items := FromRecords([]protocol.ResultRecord{
		{Success: true, ResultSet: []map[string]interface{}{}},
	})
	require.NotNil(t, items[0].ResultSet)
	require.Empty(t, items[0].ResultSet)
}

func TestFromRecords_Empty(t *testing.T) {
	require.Empty(t, FromRecords(nil))
	require.Empty(t, FromRecords([]protocol.ResultRecord{}))
}

func TestRow_TypedAccess(t *testing.T) {
	// Values carry the types encoding/json produces.
	row := Row{
		"NAME":    "alice",
		"AGE":     float64(42),
		"BALANCE": float64(12.5),
		"ACTIVE":  true,
		"NOTE":    nil,
	}

	require.True(t, row.Has("NAME"))
	require.False(t, row.Has("MISSING"))
	require.True(t, row.Has("NOTE"))

	require.Equal(t, "alice", row.GetString("NAME"))
	require.Equal(t, "42", row.GetString("AGE"))
	require.Equal(t, "12.5", row.GetString("BALANCE"))
	require.Equal(t, "", row.GetString("NOTE"))
	require.Equal(t, "", row.GetString("MISSING"))

	age, err := row.GetInt("AGE")
	require.NoError(t, err)
	require.EqualValues(t, 42, age)

	balance, err := row.GetFloat("BALANCE")
	require.NoError(t, err)
	require.Equal(t, 12.5, balance)

	active, err := row.GetBool("ACTIVE")
	require.NoError(t, err)
	require.True(t, active)

	_, err = row.GetInt("NOTE")
	require.Error(t, err)
}

func TestRow_GetTime(t *testing.T) {
	row := Row{
		"CREATED": "2024-03-01 10:30:00",
		"UPDATED": "2024-03-01T10:30:00Z",
		"EPOCH":   float64(1709288100),
		"BAD":     "not a date",
	}

	created, err := row.GetTime("CREATED")
	require.NoError(t, err)
	require.Equal(t, 2024, created.Year())

	updated, err := row.GetTime("UPDATED")
	require.NoError(t, err)
	require.Equal(t, 10, updated.Hour())

	epoch, err := row.GetTime("EPOCH")
	require.NoError(t, err)
	require.EqualValues(t, 1709288100, epoch.Unix())

	_, err = row.GetTime("BAD")
	require.Error(t, err)
}
