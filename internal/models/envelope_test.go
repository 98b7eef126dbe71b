package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	tests := []struct {
		name             string
		raw              string
		expectedFound    int
		expectedReturned int
		expectedErr      error
	}{
		{
			name:             "solr response object",
			raw:              `{"numFound":2,"start":0,"numFoundExact":true,"docs":[{"id":"rest1"},{"id":"rest2","extra":[1]}]}`,
			expectedFound:    2,
			expectedReturned: 2,
		},
		{
			name:             "odd field values are kept, counts default to zero",
			raw:              `{"numFound":"many","docs":{"id":"rest1"}}`,
			expectedFound:    0,
			expectedReturned: 0,
		},
		{
			name:        "array is not an envelope",
			raw:         `[{"id":"rest1"}]`,
			expectedErr: ErrMalformedEnvelope,
		},
		{
			name:        "truncated object",
			raw:         `{"numFound":1,"docs":[`,
			expectedErr: ErrMalformedEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := NewEnvelope(json.RawMessage(tt.raw))
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, string(env.Raw))
			assert.Equal(t, tt.expectedFound, env.NumFound)
			assert.Equal(t, tt.expectedReturned, env.Returned)
		})
	}
}

func TestEnvelopeOf(t *testing.T) {
	env, err := EnvelopeOf(&ResultSet{NumFound: 1, Docs: []Restaurant{{ID: "rest1", Name: "The Italian Kitchen"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, env.NumFound)
	assert.Equal(t, 1, env.Returned)
	assert.Contains(t, string(env.Raw), `"id":"rest1"`)

	empty, err := EnvelopeOf(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"numFound":0,"start":0,"docs":[]}`, string(empty.Raw))
}
