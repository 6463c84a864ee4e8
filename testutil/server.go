// Package testutil provides an in-process fake of the WebSQL batch service
// for driver tests, plus factories for wire records.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	"github.com/dan-strohschein/websql-driver/protocol"
)

// Reply is what the fake server returns for one exchange.
type Reply struct {
	// Status is the HTTP status code; 0 means 200.
	Status int

	// Results is the payload for a 200 reply.
	Results []protocol.ResultRecord

	// Err is the payload for a non-200 reply. Ignored when Status is 200.
	Err *protocol.ErrorPayload
}

// ServerOptions configures the fake server.
type ServerOptions struct {
	// BasicUser/BasicPassword, when set, require HTTP Basic credentials on
	// every request; a mismatch yields a bare 401 with a non-JSON body, like
	// a real Basic-Auth challenge.
	BasicUser     string
	BasicPassword string

	// InlineUser/InlinePassword, when set, require matching inline
	// credentials in the request body; a mismatch yields the service's JSON
	// error shape with reqIdx -1.
	InlineUser     string
	InlinePassword string

	// Respond maps a decoded request to a reply. When nil, Simulate is used.
	Respond func(req *protocol.Request) Reply
}

// Server is an httptest-backed fake batch endpoint.
type Server struct {
	opts     ServerOptions
	srv      *httptest.Server
	requests atomic.Int32
}

// NewServer starts a fake batch server. Callers must Close it.
func NewServer(opts ServerOptions) *Server {
	s := &Server{opts: opts}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the endpoint URL of the fake server.
func (s *Server) URL() string {
	return s.srv.URL
}

// Requests returns how many requests the server has handled.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	if s.opts.BasicUser != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.opts.BasicUser || pass != s.opts.BasicPassword {
			w.Header().Set("WWW-Authenticate", `Basic realm="websql"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized\n"))
			return
		}
	}

	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &protocol.ErrorPayload{Error: "malformed request body", ReqIdx: -1, Code: 400})
		return
	}

	if s.opts.InlineUser != "" {
		creds := req.Credentials
		if creds == nil || creds.User != s.opts.InlineUser || creds.Password != s.opts.InlinePassword {
			writeError(w, &protocol.ErrorPayload{Error: "wrong credentials", ReqIdx: -1, Code: 401})
			return
		}
	}

	if len(req.Transaction) == 0 {
		writeError(w, &protocol.ErrorPayload{Error: "empty transaction", ReqIdx: -1, Code: 400})
		return
	}

	var reply Reply
	if s.opts.Respond != nil {
		reply = s.opts.Respond(&req)
	} else {
		reply = Simulate(&req)
	}

	if reply.Status != 0 && reply.Status != 200 {
		err := reply.Err
		if err == nil {
			err = &protocol.ErrorPayload{Error: "error", ReqIdx: -1, Code: reply.Status}
		}
		err.Code = reply.Status
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.ResponsePayload{Results: reply.Results})
}

func writeError(w http.ResponseWriter, payload *protocol.ErrorPayload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(payload.Code)
	json.NewEncoder(w).Encode(payload)
}

// Simulate produces a plausible per-item outcome for each sub-request:
// queries yield a one-row result set, statements a single update count,
// batched statements one count per batch element. A statement whose text
// contains "FAIL" fails; with noFail set it fails as an item, otherwise it
// aborts the whole batch with its index.
func Simulate(req *protocol.Request) Reply {
	results := make([]protocol.ResultRecord, 0, len(req.Transaction))

	for i, sr := range req.Transaction {
		switch {
		case sr.Query != "":
			row := map[string]interface{}{"ID": float64(1), "VAL": "ONE"}
			results = append(results, NewResultSetRecord(row))
		case strings.Contains(sr.Statement, "FAIL"):
			if !sr.NoFail {
				return Reply{
					Status: 500,
					Err:    &protocol.ErrorPayload{Error: "statement failed", ReqIdx: i, Code: 500},
				}
			}
			results = append(results, NewErrorRecord("statement failed"))
		case len(sr.ValuesBatch) > 0:
			counts := make([]int64, len(sr.ValuesBatch))
			for j := range counts {
				counts[j] = 1
			}
			results = append(results, NewRowsUpdatedBatchRecord(counts...))
		default:
			results = append(results, NewRowsUpdatedRecord(1))
		}
	}

	return Reply{Results: results}
}
