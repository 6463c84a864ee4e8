package client

import (
	"strings"

	"github.com/dan-strohschein/websql-driver/protocol"
)

// subRequestKind tags the variant of the currently open sub-request. The kind
// is fixed when the sub-request is started and determines which later options
// are legal.
type subRequestKind int

const (
	kindQuery subRequestKind = iota
	kindStatement
)

// String returns the string representation of the kind.
func (k subRequestKind) String() string {
	if k == kindStatement {
		return "statement"
	}
	return "query"
}

// openItem is the mutable state of the one sub-request currently being built.
// Starting a new sub-request or calling Build closes it permanently.
type openItem struct {
	kind    subRequestKind
	text    string
	noFail  bool
	values  map[string]interface{}
	batch   []map[string]interface{}
	encoder *protocol.Encoder
	decoder *protocol.Decoder
}

// Request is an ordered, non-empty batch of finalized sub-requests, produced
// by RequestBuilder.Build. It is immutable and safe to send concurrently.
type Request struct {
	items []protocol.SubRequest
}

// Len returns the number of sub-requests in the batch.
func (r *Request) Len() int {
	return len(r.items)
}

// wire returns a fresh top-level payload referencing the request's items.
// Each Send gets its own payload struct so credentials injection never
// mutates shared state.
func (r *Request) wire() *protocol.Request {
	return &protocol.Request{Transaction: r.items}
}

// RequestBuilder accumulates a batch of queries and statements. It is a
// single-use, single-goroutine builder: the first validation failure is
// latched and every later call is a no-op until Build returns that error.
//
// Usage:
//
//	req, err := client.NewRequestBuilder().
//		AddQuery("SELECT * FROM TEMP WHERE ID = :id").
//		WithValuesMap(client.NewMapBuilder().Add("id", 1)).
//		AddStatement("INSERT INTO TEMP (ID, VAL) VALUES (:id, :val)").
//		WithValuesMap(client.NewMapBuilder().Add("id", 2).Add("val", "b")).
//		Build()
type RequestBuilder struct {
	items []protocol.SubRequest
	open  *openItem
	err   error
	built bool
}

// NewRequestBuilder creates an empty request builder.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{}
}

// fail latches the first error; subsequent calls keep the original.
func (b *RequestBuilder) fail(err error) *RequestBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the latched validation error, if any. Build returns the same
// error; Err allows inspection mid-chain.
func (b *RequestBuilder) Err() error {
	return b.err
}

// AddQuery closes any open sub-request and opens a new read query.
func (b *RequestBuilder) AddQuery(query string) *RequestBuilder {
	return b.add(kindQuery, query)
}

// AddStatement closes any open sub-request and opens a new write statement.
func (b *RequestBuilder) AddStatement(statement string) *RequestBuilder {
	return b.add(kindStatement, statement)
}

func (b *RequestBuilder) add(kind subRequestKind, text string) *RequestBuilder {
	if b.err != nil {
		return b
	}
	if b.built {
		return b.fail(errInvalidState("add", "builder already consumed by Build"))
	}
	if strings.TrimSpace(text) == "" {
		return b.fail(errInvalidArgument("cannot specify an empty "+kind.String(), nil))
	}
	b.closeOpen()
	b.open = &openItem{kind: kind, text: text}
	return b
}

// WithNoFail marks the open statement so its failure does not abort the whole
// batch; the server then reports it as a failed item inside a 200 response.
func (b *RequestBuilder) WithNoFail() *RequestBuilder {
	if b.err != nil {
		return b
	}
	if b.open == nil {
		return b.fail(errInvalidState("WithNoFail", "no open sub-request"))
	}
	if b.open.kind == kindQuery {
		return b.fail(errInvalidArgument("cannot specify noFail for a query", nil))
	}
	b.open.noFail = true
	return b
}

// WithValues binds one parameter map to the open sub-request. A second call on
// a statement promotes the binding to a batch (the existing map becomes batch
// element 0) and further calls append; a second call on a query fails, since a
// query may carry at most one parameter map. The map is copied on attach.
func (b *RequestBuilder) WithValues(values map[string]interface{}) *RequestBuilder {
	if b.err != nil {
		return b
	}
	if values == nil {
		return b.fail(errInvalidArgument("cannot specify nil values", nil))
	}
	if b.open == nil {
		return b.fail(errInvalidArgument("cannot specify values with no open sub-request", nil))
	}
	if b.open.kind == kindQuery && (b.open.values != nil || b.open.batch != nil) {
		return b.fail(errInvalidArgument("cannot specify a batch for a query", nil))
	}

	attached := make(map[string]interface{}, len(values))
	for k, v := range values {
		attached[k] = v
	}

	switch {
	case b.open.batch != nil:
		b.open.batch = append(b.open.batch, attached)
	case b.open.values != nil:
		b.open.batch = []map[string]interface{}{b.open.values, attached}
		b.open.values = nil
	default:
		b.open.values = attached
	}
	return b
}

// WithValuesMap binds the map accumulated by a MapBuilder.
func (b *RequestBuilder) WithValuesMap(values *MapBuilder) *RequestBuilder {
	if b.err != nil {
		return b
	}
	if values == nil {
		return b.fail(errInvalidArgument("cannot specify a nil map builder", nil))
	}
	return b.WithValues(values.Build())
}

// WithEncoder attaches a column encryption directive to the open statement.
func (b *RequestBuilder) WithEncoder(password string, columns ...string) *RequestBuilder {
	return b.encoder(password, 0, columns)
}

// WithEncoderAndCompression attaches a column encryption directive with ZStd
// compression. The level must be in [1,19].
func (b *RequestBuilder) WithEncoderAndCompression(password string, compressionLevel int, columns ...string) *RequestBuilder {
	if b.err != nil {
		return b
	}
	if compressionLevel < 1 || compressionLevel > 19 {
		return b.fail(errInvalidArgument("compressionLevel must be between 1 and 19", map[string]interface{}{
			"compressionLevel": compressionLevel,
		}))
	}
	return b.encoder(password, compressionLevel, columns)
}

func (b *RequestBuilder) encoder(password string, compressionLevel int, columns []string) *RequestBuilder {
	if b.err != nil {
		return b
	}
	if b.open == nil {
		return b.fail(errInvalidState("WithEncoder", "no open sub-request"))
	}
	if b.open.kind == kindQuery {
		return b.fail(errInvalidArgument("cannot specify an encoder for a query", nil))
	}
	if password == "" {
		return b.fail(errInvalidArgument("cannot specify an empty password", nil))
	}
	if len(columns) == 0 {
		return b.fail(errInvalidArgument("cannot specify an empty column list", nil))
	}

	b.open.encoder = &protocol.Encoder{
		Password:         password,
		CompressionLevel: compressionLevel,
		Columns:          append([]string(nil), columns...),
	}
	return b
}

// WithDecoder attaches a column decryption directive to the open query.
func (b *RequestBuilder) WithDecoder(password string, columns ...string) *RequestBuilder {
	if b.err != nil {
		return b
	}
	if b.open == nil {
		return b.fail(errInvalidState("WithDecoder", "no open sub-request"))
	}
	if b.open.kind == kindStatement {
		return b.fail(errInvalidArgument("cannot specify a decoder for a statement", nil))
	}
	if password == "" {
		return b.fail(errInvalidArgument("cannot specify an empty password", nil))
	}
	if len(columns) == 0 {
		return b.fail(errInvalidArgument("cannot specify an empty column list", nil))
	}

	b.open.decoder = &protocol.Decoder{
		Password: password,
		Columns:  append([]string(nil), columns...),
	}
	return b
}

// Build closes the open sub-request and returns the finalized Request. A
// builder with zero started sub-requests fails, as does reuse after Build.
func (b *RequestBuilder) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, errInvalidState("Build", "builder already consumed by Build")
	}
	b.closeOpen()
	if len(b.items) == 0 {
		return nil, errInvalidState("Build", "there are no requests")
	}
	b.built = true
	return &Request{items: b.items}, nil
}

// closeOpen finalizes the open sub-request into its wire form and appends it
// to the batch. A single binding serializes as "values", two or more as
// "valuesBatch", never both.
func (b *RequestBuilder) closeOpen() {
	if b.open == nil {
		return
	}

	sr := protocol.SubRequest{}
	switch b.open.kind {
	case kindQuery:
		sr.Query = b.open.text
		sr.Decoder = b.open.decoder
	case kindStatement:
		sr.Statement = b.open.text
		sr.NoFail = b.open.noFail
		sr.Encoder = b.open.encoder
	}
	if len(b.open.batch) > 0 {
		sr.ValuesBatch = b.open.batch
	} else if b.open.values != nil {
		sr.Values = b.open.values
	}

	b.items = append(b.items, sr)
	b.open = nil
}
