// Package model defines the transaction records the rest of the application works with.
package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Transaction types accepted by the analyzer.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// TransactionRecord is a single transaction as it arrives from a source.
//
// Records are untrusted. Every field is optional, and fields that carry the wrong
// kind of value are treated as absent rather than rejected, so a noisy export
// never prevents the remaining records from being analyzed.
type TransactionRecord struct {
	Amount   *float64 `json:"amount,omitempty"` // nil when absent or not a number
	ID       string   `json:"id,omitempty"`
	Type     string   `json:"type,omitempty"` // "credit" or "debit"
	To       string   `json:"to,omitempty"`   // Counterparty label
	Category string   `json:"category,omitempty"`
	Date     string   `json:"date,omitempty"` // Opaque, carried through
}

// Valid reports whether the record takes part in analysis: its type must be
// exactly credit or debit and its amount a number strictly greater than zero.
// A nil record is never valid.
func (r *TransactionRecord) Valid() bool {
	if r == nil {
		return false
	}
	if r.Type != TypeCredit && r.Type != TypeDebit {
		return false
	}
	// NaN compares false, so it falls out here as well.
	return r.Amount != nil && *r.Amount > 0
}

// AmountValue returns the amount, or zero when it is absent.
func (r *TransactionRecord) AmountValue() float64 {
	if r == nil || r.Amount == nil {
		return 0
	}
	return *r.Amount
}

// Clone returns a deep copy of the record.
func (r *TransactionRecord) Clone() *TransactionRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Amount != nil {
		amount := *r.Amount
		c.Amount = &amount
	}
	return &c
}

// GenerateHash creates a stable hash for duplicate detection.
func (r *TransactionRecord) GenerateHash() string {
	amount := "-"
	if r.Amount != nil && !math.IsNaN(*r.Amount) {
		amount = strconv.FormatFloat(*r.Amount, 'f', -1, 64)
	}
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		r.ID,
		r.Type,
		amount,
		r.To,
		r.Category,
		r.Date)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Float returns a pointer to v, for building records by hand.
func Float(v float64) *float64 {
	return &v
}

// UnmarshalJSON decodes a record without failing on mistyped fields.
// The surrounding value must be a JSON object.
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("transaction record must be an object: %w", err)
	}

	*r = TransactionRecord{
		ID:       stringField(fields["id"]),
		Type:     stringField(fields["type"]),
		To:       stringField(fields["to"]),
		Category: stringField(fields["category"]),
		Date:     stringField(fields["date"]),
		Amount:   numberField(fields["amount"]),
	}
	return nil
}

// stringField decodes raw as a string, returning "" for anything else.
func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// numberField decodes raw as a JSON number. Strings that look numeric are not
// numbers. A number too large for float64 becomes an infinity of its sign.
func numberField(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) || !json.Valid(raw) {
		return nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	return &f
}

// MarshalJSON encodes the record. A non-finite amount has no JSON form and is
// written as null.
func (r TransactionRecord) MarshalJSON() ([]byte, error) {
	type plain TransactionRecord
	if r.Amount == nil || isFinite(*r.Amount) {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		Amount *float64 `json:"amount"`
		plain
	}{plain: plain(r)})
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
