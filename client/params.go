package client

// MapBuilder accumulates named parameter bindings for one execution of one
// sub-request. Adding the same name twice overwrites the earlier value.
//
// Usage:
//
//	b.WithValuesMap(NewMapBuilder().Add("id", 1).Add("val", "a"))
type MapBuilder struct {
	values map[string]interface{}
}

// NewMapBuilder creates an empty parameter map builder.
func NewMapBuilder() *MapBuilder {
	return &MapBuilder{values: make(map[string]interface{})}
}

// Add sets one named parameter and returns the builder for chaining.
func (b *MapBuilder) Add(name string, value interface{}) *MapBuilder {
	b.values[name] = value
	return b
}

// Build returns a copy of the accumulated map, so the builder can keep being
// used without mutating what was already attached to a sub-request.
func (b *MapBuilder) Build() map[string]interface{} {
	out := make(map[string]interface{}, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}
