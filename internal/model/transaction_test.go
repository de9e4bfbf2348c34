package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRecord_Valid(t *testing.T) {
	tests := []struct {
		record *TransactionRecord
		name   string
		want   bool
	}{
		{name: "nil record", record: nil, want: false},
		{name: "credit positive", record: &TransactionRecord{Type: TypeCredit, Amount: Float(10)}, want: true},
		{name: "debit fractional", record: &TransactionRecord{Type: TypeDebit, Amount: Float(0.01)}, want: true},
		{name: "zero amount", record: &TransactionRecord{Type: TypeDebit, Amount: Float(0)}, want: false},
		{name: "negative amount", record: &TransactionRecord{Type: TypeCredit, Amount: Float(-5)}, want: false},
		{name: "missing amount", record: &TransactionRecord{Type: TypeCredit}, want: false},
		{name: "NaN amount", record: &TransactionRecord{Type: TypeCredit, Amount: Float(math.NaN())}, want: false},
		{name: "unknown type", record: &TransactionRecord{Type: "refund", Amount: Float(10)}, want: false},
		{name: "type is case sensitive", record: &TransactionRecord{Type: "Credit", Amount: Float(10)}, want: false},
		{name: "missing type", record: &TransactionRecord{Amount: Float(10)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Valid())
		})
	}
}

func TestTransactionRecord_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		check func(t *testing.T, r TransactionRecord)
		name  string
		input string
	}{
		{
			name:  "well formed",
			input: `{"id":"T1","type":"credit","amount":5000,"to":"Salary","category":"income","date":"2025-01-01"}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				assert.Equal(t, "T1", r.ID)
				assert.Equal(t, TypeCredit, r.Type)
				require.NotNil(t, r.Amount)
				assert.InDelta(t, 5000, *r.Amount, 0)
				assert.Equal(t, "Salary", r.To)
				assert.Equal(t, "income", r.Category)
				assert.Equal(t, "2025-01-01", r.Date)
				assert.True(t, r.Valid())
			},
		},
		{
			name:  "numeric-looking string amount is not a number",
			input: `{"type":"debit","amount":"500","to":"A"}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				assert.Nil(t, r.Amount)
				assert.False(t, r.Valid())
			},
		},
		{
			name:  "null amount",
			input: `{"type":"debit","amount":null}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				assert.Nil(t, r.Amount)
			},
		},
		{
			name:  "mistyped labels decode as empty",
			input: `{"type":"debit","amount":12.5,"to":42,"category":["x"],"id":true}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				assert.Empty(t, r.To)
				assert.Empty(t, r.Category)
				assert.Empty(t, r.ID)
				assert.True(t, r.Valid())
			},
		},
		{
			name:  "number beyond float64 range is infinite",
			input: `{"type":"credit","amount":1e400}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				require.NotNil(t, r.Amount)
				assert.True(t, math.IsInf(*r.Amount, 1))
				assert.True(t, r.Valid())
			},
		},
		{
			name:  "negative overflow is not valid",
			input: `{"type":"credit","amount":-1e400}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				require.NotNil(t, r.Amount)
				assert.True(t, math.IsInf(*r.Amount, -1))
				assert.False(t, r.Valid())
			},
		},
		{
			name:  "underflow is zero",
			input: `{"type":"credit","amount":1e-400}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				require.NotNil(t, r.Amount)
				assert.Zero(t, *r.Amount)
				assert.False(t, r.Valid())
			},
		},
		{
			name:  "spelled-out infinity is not a number",
			input: `{"type":"credit","amount":"Infinity"}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				assert.Nil(t, r.Amount)
			},
		},
		{
			name:  "unknown fields ignored",
			input: `{"type":"credit","amount":1,"memo":"hi"}`,
			check: func(t *testing.T, r TransactionRecord) {
				t.Helper()
				assert.True(t, r.Valid())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r TransactionRecord
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			tt.check(t, r)
		})
	}
}

func TestTransactionRecord_UnmarshalJSON_NotObject(t *testing.T) {
	var r TransactionRecord
	assert.Error(t, json.Unmarshal([]byte(`"credit"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
}

func TestTransactionRecord_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(&TransactionRecord{ID: "T1", Type: TypeCredit, Amount: Float(12.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"T1","type":"credit","amount":12.5}`, string(data))

	data, err = json.Marshal(&TransactionRecord{ID: "T2", Type: TypeCredit, Amount: Float(math.Inf(1))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"T2","type":"credit","amount":null}`, string(data))
}

func TestTransactionRecord_Clone(t *testing.T) {
	orig := &TransactionRecord{ID: "T1", Type: TypeDebit, Amount: Float(20)}
	clone := orig.Clone()

	require.NotNil(t, clone)
	*clone.Amount = 99
	clone.ID = "changed"

	assert.InDelta(t, 20, *orig.Amount, 0)
	assert.Equal(t, "T1", orig.ID)
	assert.Nil(t, (*TransactionRecord)(nil).Clone())
}

func TestTransactionRecord_GenerateHash(t *testing.T) {
	a := &TransactionRecord{ID: "T1", Type: TypeDebit, Amount: Float(20), To: "Shop"}
	b := &TransactionRecord{ID: "T1", Type: TypeDebit, Amount: Float(20), To: "Shop"}
	c := &TransactionRecord{ID: "T1", Type: TypeDebit, Amount: Float(21), To: "Shop"}
	missing := &TransactionRecord{ID: "T1", Type: TypeDebit, To: "Shop"}

	assert.Equal(t, a.GenerateHash(), b.GenerateHash())
	assert.NotEqual(t, a.GenerateHash(), c.GenerateHash())
	assert.NotEqual(t, a.GenerateHash(), missing.GenerateHash())
	assert.Len(t, a.GenerateHash(), 64)
}

func TestTransactionRecord_AmountValue(t *testing.T) {
	assert.InDelta(t, 0, (*TransactionRecord)(nil).AmountValue(), 0)
	assert.InDelta(t, 0, (&TransactionRecord{}).AmountValue(), 0)
	assert.InDelta(t, 3.5, (&TransactionRecord{Amount: Float(3.5)}).AmountValue(), 0)
}
