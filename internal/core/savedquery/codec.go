package savedquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/satishbabariya/querydeck/internal/core/savedquery/domain"
	"gopkg.in/yaml.v3"
)

// Format is an interchange serialization.
type Format string

const (
	// FormatJSON is the default interchange format.
	FormatJSON Format = "json"
	// FormatYAML writes the same document as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// envelopeKeys are the document keys that may hold the list of queries, in lookup order.
var envelopeKeys = []string{"queries", "savedQueries", "items", "data"}

// exportDocument is the envelope written by Export and by repository persistence.
type exportDocument struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Queries    []domain.SavedQuery `json:"queries"`
}

// encode renders the document in the requested format.
func encode(doc exportDocument, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode queries: %w", err)
	}
	if format != FormatYAML {
		return data, nil
	}

	// YAML goes through the JSON form so both formats share key names.
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to encode queries: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("failed to encode queries as yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode queries as yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten parses a JSON or YAML document and returns its raw candidates.
// It accepts a list, a single object, or an envelope holding a list under a known key.
func flatten(payload []byte) ([]json.RawMessage, error) {
	data, err := toJSON(payload)
	if err != nil {
		return nil, err
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: expected a list or an object", domain.ErrInvalidPayload)
	}
	for _, key := range envelopeKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %q is not a list", domain.ErrInvalidPayload, key)
		}
		return list, nil
	}
	return []json.RawMessage{data}, nil
}

// toJSON normalises the payload to JSON, converting from YAML when needed.
func toJSON(payload []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidPayload)
	}
	if json.Valid(trimmed) {
		return trimmed, nil
	}

	var generic interface{}
	if err := yaml.Unmarshal(trimmed, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	data, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return data, nil
}

// decodeCandidate decodes one raw entry; undecodable entries are reported as invalid.
func decodeCandidate(raw json.RawMessage) (*domain.SavedQuery, bool) {
	var q domain.SavedQuery
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, false
	}
	return &q, true
}
