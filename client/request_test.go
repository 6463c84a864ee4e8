package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// RequestBuilder state machine
// ============================================================================

func TestRequestBuilder_ItemCountAndOrder(t *testing.T) {
	req, err := NewRequestBuilder().
		AddQuery("SELECT 1").
		AddStatement("INSERT INTO T VALUES (1)").
		AddQuery("SELECT 2").
		Build()
	require.NoError(t, err)
	require.Equal(t, 3, req.Len())

	require.Equal(t, "SELECT 1", req.items[0].Query)
	require.Empty(t, req.items[0].Statement)
	require.Equal(t, "INSERT INTO T VALUES (1)", req.items[1].Statement)
	require.Empty(t, req.items[1].Query)
	require.Equal(t, "SELECT 2", req.items[2].Query)
}

func TestRequestBuilder_EmptyTextRejected(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Request, error)
	}{
		{"empty query", func() (*Request, error) { return NewRequestBuilder().AddQuery("").Build() }},
		{"blank query", func() (*Request, error) { return NewRequestBuilder().AddQuery("   ").Build() }},
		{"empty statement", func() (*Request, error) { return NewRequestBuilder().AddStatement("").Build() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, "INVALID_ARGUMENT", verr.Code)
		})
	}
}

func TestRequestBuilder_EmptyRequestFails(t *testing.T) {
	_, err := NewRequestBuilder().Build()
	var serr *StateError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "INVALID_STATE", serr.Code)
	require.Contains(t, serr.Message, "no requests")
}

func TestRequestBuilder_ReuseAfterBuildFails(t *testing.T) {
	b := NewRequestBuilder().AddQuery("SELECT 1")
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	var serr *StateError
	require.ErrorAs(t, err, &serr)

	_, err = b.AddQuery("SELECT 2").Build()
	require.ErrorAs(t, err, &serr)
}

func TestRequestBuilder_FirstErrorIsLatched(t *testing.T) {
	b := NewRequestBuilder().
		AddQuery("SELECT 1").
		WithNoFail().             // first violation: noFail on a query
		AddStatement("").         // would be a different violation
		WithEncoder("", "COL_A"). // and another
		AddQuery("SELECT 2")

	_, err := b.Build()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Message, "noFail")
	require.Same(t, err, b.Err())
}

// ============================================================================
// Parameter binding
// ============================================================================

func TestRequestBuilder_SingleBinding(t *testing.T) {
	req, err := NewRequestBuilder().
		AddQuery("SELECT * FROM T WHERE ID = :id").
		WithValuesMap(NewMapBuilder().Add("id", 1)).
		Build()
	require.NoError(t, err)

	item := req.items[0]
	require.Equal(t, map[string]interface{}{"id": 1}, item.Values)
	require.Nil(t, item.ValuesBatch)
}

func TestRequestBuilder_SecondBindingOnQueryFails(t *testing.T) {
	_, err := NewRequestBuilder().
		AddQuery("SELECT * FROM T WHERE ID = :id").
		WithValues(map[string]interface{}{"id": 1}).
		WithValues(map[string]interface{}{"id": 2}).
		Build()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Message, "batch for a query")
}

func TestRequestBuilder_StatementBatchPromotion(t *testing.T) {
	req, err := NewRequestBuilder().
		AddStatement("INSERT INTO T (ID) VALUES (:id)").
		WithValues(map[string]interface{}{"id": 1}).
		WithValues(map[string]interface{}{"id": 2}).
		Build()
	require.NoError(t, err)

	item := req.items[0]
	require.Nil(t, item.Values)
	require.Len(t, item.ValuesBatch, 2)
	require.Equal(t, map[string]interface{}{"id": 1}, item.ValuesBatch[0])
	require.Equal(t, map[string]interface{}{"id": 2}, item.ValuesBatch[1])
}

func TestRequestBuilder_ThirdBindingAppendsToBatch(t *testing.T) {
	req, err := NewRequestBuilder().
		AddStatement("INSERT INTO T (ID) VALUES (:id)").
		WithValues(map[string]interface{}{"id": 1}).
		WithValues(map[string]interface{}{"id": 2}).
		WithValues(map[string]interface{}{"id": 3}).
		Build()
	require.NoError(t, err)

	item := req.items[0]
	require.Len(t, item.ValuesBatch, 3)
	require.Equal(t, map[string]interface{}{"id": 3}, item.ValuesBatch[2])
}

func TestRequestBuilder_BindingWithNoOpenSubRequestFails(t *testing.T) {
	_, err := NewRequestBuilder().
		WithValues(map[string]interface{}{"id": 1}).
		Build()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRequestBuilder_ValuesCopiedOnAttach(t *testing.T) {
	values := map[string]interface{}{"id": 1}
	req, err := NewRequestBuilder().
		AddStatement("INSERT INTO T (ID) VALUES (:id)").
		WithValues(values).
		Build()
	require.NoError(t, err)

	values["id"] = 99
	require.Equal(t, 1, req.items[0].Values["id"])
}

// ============================================================================
// noFail / encoder / decoder placement
// ============================================================================

func TestRequestBuilder_NoFail(t *testing.T) {
	req, err := NewRequestBuilder().
		AddStatement("INSERT INTO T VALUES (1)").
		WithNoFail().
		Build()
	require.NoError(t, err)
	require.True(t, req.items[0].NoFail)
}

func TestRequestBuilder_NoFailOnQueryFails(t *testing.T) {
	_, err := NewRequestBuilder().
		AddQuery("SELECT 1").
		WithNoFail().
		Build()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRequestBuilder_NoFailWithoutOpenSubRequestFails(t *testing.T) {
	_, err := NewRequestBuilder().
		WithNoFail().
		Build()

	var serr *StateError
	require.ErrorAs(t, err, &serr)
}

func TestRequestBuilder_EncoderOnStatement(t *testing.T) {
	req, err := NewRequestBuilder().
		AddStatement("INSERT INTO T (SECRET) VALUES (:v)").
		WithEncoder("hunter2", "SECRET").
		Build()
	require.NoError(t, err)

	enc := req.items[0].Encoder
	require.NotNil(t, enc)
	require.Equal(t, "hunter2", enc.Password)
	require.Equal(t, []string{"SECRET"}, enc.Columns)
	require.Zero(t, enc.CompressionLevel)
	require.Nil(t, req.items[0].Decoder)
}

func TestRequestBuilder_EncoderOnQueryFails(t *testing.T) {
	_, err := NewRequestBuilder().
		AddQuery("SELECT 1").
		WithEncoder("hunter2", "SECRET").
		Build()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRequestBuilder_DecoderOnQuery(t *testing.T) {
	req, err := NewRequestBuilder().
		AddQuery("SELECT SECRET FROM T").
		WithDecoder("hunter2", "SECRET").
		Build()
	require.NoError(t, err)

	dec := req.items[0].Decoder
	require.NotNil(t, dec)
	require.Equal(t, "hunter2", dec.Password)
	require.Equal(t, []string{"SECRET"}, dec.Columns)
	require.Nil(t, req.items[0].Encoder)
}

func TestRequestBuilder_DecoderOnStatementFails(t *testing.T) {
	_, err := NewRequestBuilder().
		AddStatement("INSERT INTO T VALUES (1)").
		WithDecoder("hunter2", "SECRET").
		Build()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRequestBuilder_CompressionLevelBounds(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		wantErr bool
	}{
		{"below range", 0, true},
		{"lower bound", 1, false},
		{"upper bound", 19, false},
		{"above range", 20, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequestBuilder().
				AddStatement("INSERT INTO T (SECRET) VALUES (:v)").
				WithEncoderAndCompression("hunter2", tt.level, "SECRET").
				Build()
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.level, req.items[0].Encoder.CompressionLevel)
		})
	}
}

func TestRequestBuilder_EmptyPasswordOrColumnsFail(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Request, error)
	}{
		{"encoder empty password", func() (*Request, error) {
			return NewRequestBuilder().AddStatement("S").WithEncoder("", "A").Build()
		}},
		{"encoder empty columns", func() (*Request, error) {
			return NewRequestBuilder().AddStatement("S").WithEncoder("pw").Build()
		}},
		{"decoder empty password", func() (*Request, error) {
			return NewRequestBuilder().AddQuery("Q").WithDecoder("", "A").Build()
		}},
		{"decoder empty columns", func() (*Request, error) {
			return NewRequestBuilder().AddQuery("Q").WithDecoder("pw").Build()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}
