// Package protocol defines the wire payload shapes and JSON codec for the
// WebSQL batch execution service.
package protocol

// Request is the top-level wire request: an ordered transaction of
// sub-requests, plus inline credentials when the client is configured for
// inline authentication.
type Request struct {
	Transaction []SubRequest `json:"transaction"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

// Credentials carries the inline authentication pair.
type Credentials struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// SubRequest is one item of the batch. Exactly one of Query/Statement is set,
// and exactly one of Values/ValuesBatch (or neither). Encoder is legal only on
// statements, Decoder only on queries; the client builder enforces both rules
// before a SubRequest is ever created.
type SubRequest struct {
	Query       string                   `json:"query,omitempty"`
	Statement   string                   `json:"statement,omitempty"`
	NoFail      bool                     `json:"noFail,omitempty"`
	Values      map[string]interface{}   `json:"values,omitempty"`
	ValuesBatch []map[string]interface{} `json:"valuesBatch,omitempty"`
	Encoder     *Encoder                 `json:"encoder,omitempty"`
	Decoder     *Decoder                 `json:"decoder,omitempty"`
}

// Encoder is the column encryption/compression directive for a statement.
// CompressionLevel 0 means no compression; otherwise it must be in [1,19].
type Encoder struct {
	Password         string   `json:"pwd"`
	CompressionLevel int      `json:"compressionLevel,omitempty"`
	Columns          []string `json:"columns"`
}

// Decoder is the column decryption directive for a query.
type Decoder struct {
	Password string   `json:"pwd"`
	Columns  []string `json:"columns"`
}

// ResponsePayload is the body of a successful (HTTP 200) exchange.
type ResponsePayload struct {
	Results []ResultRecord `json:"results"`
}

// ResultRecord is one element of the results array. The server populates
// exactly one of ResultSet/RowsUpdated/RowsUpdatedBatch/Error according to the
// originating sub-request and its outcome; the client passes the record
// through without cross-validation.
type ResultRecord struct {
	Success          bool                     `json:"success"`
	RowsUpdated      *int64                   `json:"rowsUpdated,omitempty"`
	RowsUpdatedBatch []int64                  `json:"rowsUpdatedBatch,omitempty"`
	ResultSet        []map[string]interface{} `json:"resultSet,omitempty"`
	Error            string                   `json:"error,omitempty"`
}

// ErrorPayload is the body of a non-200 response. ReqIdx is the 0-based index
// of the failing sub-request, or -1 for a failure not attributable to a single
// sub-request.
type ErrorPayload struct {
	Error  string `json:"error"`
	ReqIdx int    `json:"reqIdx"`
	Code   int    `json:"code"`
}
