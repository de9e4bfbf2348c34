// Package ingest loads transaction records from files on disk.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/model"
)

// JSONParser reads a JSON array of transaction records.
type JSONParser struct{}

// ParseFile implements service.RecordParser.
func (JSONParser) ParseFile(_ context.Context, reader io.Reader) ([]*model.TransactionRecord, error) {
	return DecodeJSON(reader)
}

// DecodeJSON decodes a JSON document into records.
//
// Only a top-level array yields records; any other well-formed document (object,
// string, number, null) yields no records and no error, since that is simply
// nothing to analyze. Array elements that are not objects become nil entries so
// that positions are preserved. Malformed JSON is an error.
func DecodeJSON(reader io.Reader) ([]*model.TransactionRecord, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON input: %w", err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: malformed JSON", common.ErrInvalidInput)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	records := make([]*model.TransactionRecord, len(elements))
	for i, raw := range elements {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		var record model.TransactionRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			continue
		}
		records[i] = &record
	}

	return records, nil
}
