package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dan-strohschein/websql-driver/protocol"
)

func post(t *testing.T, url string, req *protocol.Request) (*http.Response, []byte) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func TestSimulate_PerItemOutcomes(t *testing.T) {
	srv := NewServer(ServerOptions{})
	defer srv.Close()

	resp, body := post(t, srv.URL(), &protocol.Request{
		Transaction: []protocol.SubRequest{
			{Query: "SELECT * FROM TEMP"},
			{Statement: "INSERT INTO TEMP (ID) VALUES (1)"},
			{Statement: "INSERT INTO TEMP (ID) VALUES (:id)", ValuesBatch: []map[string]interface{}{
				{"id": 1}, {"id": 2}, {"id": 3},
			}},
			{Statement: "THIS WILL FAIL", NoFail: true},
		},
	})
	require.Equal(t, 200, resp.StatusCode)

	var payload protocol.ResponsePayload
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Results, 4)
	require.NotEmpty(t, payload.Results[0].ResultSet)
	require.NotNil(t, payload.Results[1].RowsUpdated)
	require.Len(t, payload.Results[2].RowsUpdatedBatch, 3)
	require.False(t, payload.Results[3].Success)
	require.Equal(t, 1, srv.Requests())
}

func TestSimulate_FailureAbortsBatch(t *testing.T) {
	srv := NewServer(ServerOptions{})
	defer srv.Close()

	resp, body := post(t, srv.URL(), &protocol.Request{
		Transaction: []protocol.SubRequest{
			{Statement: "INSERT INTO TEMP (ID) VALUES (1)"},
			{Statement: "THIS WILL FAIL"},
		},
	})
	require.Equal(t, 500, resp.StatusCode)

	var payload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, 1, payload.ReqIdx)
	require.Equal(t, 500, payload.Code)
}

func TestServer_BasicAuthChallenge(t *testing.T) {
	srv := NewServer(ServerOptions{BasicUser: "u", BasicPassword: "p"})
	defer srv.Close()

	resp, body := post(t, srv.URL(), &protocol.Request{
		Transaction: []protocol.SubRequest{{Query: "SELECT 1"}},
	})
	require.Equal(t, 401, resp.StatusCode)
	// Challenge body is intentionally not the service's JSON error shape.
	require.Error(t, json.Unmarshal(body, &protocol.ErrorPayload{}))
}

func TestServer_InlineAuthError(t *testing.T) {
	srv := NewServer(ServerOptions{InlineUser: "u", InlinePassword: "p"})
	defer srv.Close()

	resp, body := post(t, srv.URL(), &protocol.Request{
		Transaction: []protocol.SubRequest{{Query: "SELECT 1"}},
		Credentials: &protocol.Credentials{User: "u", Password: "wrong"},
	})
	require.Equal(t, 401, resp.StatusCode)

	var payload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, -1, payload.ReqIdx)
	require.Equal(t, "wrong credentials", payload.Error)
}
