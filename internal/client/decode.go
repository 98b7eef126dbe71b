package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"geosearch-api/internal/models"
)

// decodeDoc maps a result document onto a Restaurant. Schemaless Solr cores store
// single values as one-element arrays and may return numbers as strings, so both
// shapes are accepted. A document needs an id and a usable position.
func decodeDoc(raw map[string]json.RawMessage) (models.Restaurant, error) {
	var doc models.Restaurant
	var err error

	fields := []struct {
		key string
		dst *string
	}{
		{"id", &doc.ID},
		{"name", &doc.Name},
		{"address", &doc.Address},
		{"type", &doc.Type},
		{"description", &doc.Description},
		{"location", &doc.Location},
		{"[explain]", &doc.Explain},
	}
	for _, f := range fields {
		if *f.dst, err = stringField(raw[f.key]); err != nil {
			return doc, fmt.Errorf("field %s: %w", f.key, err)
		}
	}
	if doc.ID == "" {
		return doc, errors.New("document has no id")
	}

	if len(raw["lat"]) == 0 || len(raw["lng"]) == 0 {
		return doc, errors.New("document has no position")
	}
	if doc.Lat, err = floatField(raw["lat"]); err != nil {
		return doc, fmt.Errorf("field lat: %w", err)
	}
	if doc.Lng, err = floatField(raw["lng"]); err != nil {
		return doc, fmt.Errorf("field lng: %w", err)
	}
	if doc.Score, err = floatField(raw["score"]); err != nil {
		return doc, fmt.Errorf("field score: %w", err)
	}
	return doc, nil
}

func unwrapSingle(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return trimmed, nil
	}
	var values []json.RawMessage
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

func stringField(raw json.RawMessage) (string, error) {
	v, err := unwrapSingle(raw)
	if err != nil || len(v) == 0 || string(v) == "null" {
		return "", err
	}
	if v[0] != '"' {
		// explain output and numeric ids arrive unquoted
		return string(v), nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", err
	}
	return s, nil
}

func floatField(raw json.RawMessage) (float64, error) {
	v, err := unwrapSingle(raw)
	if err != nil || len(v) == 0 || string(v) == "null" {
		return 0, err
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, err
	}
	return f, nil
}
