package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrMalformedEnvelope is returned when a backend response is not a JSON object.
var ErrMalformedEnvelope = errors.New("backend response is not a JSON object")

// Envelope is a backend's result set exactly as the backend produced it.
// Raw is written to API callers untouched; NumFound and Returned are read
// from it for logs and metrics.
type Envelope struct {
	Raw      json.RawMessage
	NumFound int
	Returned int
}

// NewEnvelope wraps a raw response object. Counts are read best effort:
// a numFound or docs value of an unexpected shape leaves the count at zero.
func NewEnvelope(raw json.RawMessage) (*Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrMalformedEnvelope
	}

	env := &Envelope{Raw: trimmed}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, ErrMalformedEnvelope
	}
	var numFound int
	if json.Unmarshal(fields["numFound"], &numFound) == nil {
		env.NumFound = numFound
	}
	var docs []json.RawMessage
	if json.Unmarshal(fields["docs"], &docs) == nil {
		env.Returned = len(docs)
	}
	return env, nil
}

// EnvelopeOf encodes a typed result set, for backends that build their results field by field.
func EnvelopeOf(rs *ResultSet) (*Envelope, error) {
	if rs == nil {
		rs = &ResultSet{}
	}
	if rs.Docs == nil {
		rs.Docs = []Restaurant{}
	}
	raw, err := json.Marshal(rs)
	if err != nil {
		return nil, err
	}
	return &Envelope{Raw: raw, NumFound: rs.NumFound, Returned: len(rs.Docs)}, nil
}
