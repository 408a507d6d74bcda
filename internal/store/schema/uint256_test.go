package schema

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/domain"
)

func TestUint256_Arithmetic(t *testing.T) {
	a := NewUint256(10)
	b := NewUint256(4)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "14", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "6", diff.String())

	prod, err := a.Mul(b)
	require.NoError(t, err)
	assert.Equal(t, "40", prod.String())

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, domain.ErrUnderflow)

	zero, err := a.Sub(a)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestUint256_Overflow(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	m, err := Uint256FromBig(max)
	require.NoError(t, err)

	_, err = m.Add(NewUint256(1))
	assert.ErrorIs(t, err, domain.ErrOverflow)

	_, err = m.Mul(NewUint256(2))
	assert.ErrorIs(t, err, domain.ErrOverflow)

	_, err = Uint256FromBig(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.ErrorIs(t, err, domain.ErrOverflow)

	_, err = Uint256FromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, domain.ErrUnderflow)
}

func TestUint256_Scan(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
		wantErr  bool
	}{
		{name: "string", value: "12345", expected: "12345"},
		{name: "bytes", value: []byte("987"), expected: "987"},
		{name: "int64", value: int64(42), expected: "42"},
		{name: "nil", value: nil, expected: "0"},
		{name: "negative", value: int64(-1), wantErr: true},
		{name: "garbage", value: "abc", wantErr: true},
		{name: "unsupported", value: 1.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUint256(7)
			err := u.Scan(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, u.String())
		})
	}
}

func TestUint256_ValueAndJSON(t *testing.T) {
	u := NewUint256(500)

	v, err := u.Value()
	require.NoError(t, err)
	assert.Equal(t, "500", v)

	data, err := json.Marshal(struct {
		Amount Uint256 `json:"amount"`
	}{Amount: u})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"500"}`, string(data))

	var decoded Uint256
	require.NoError(t, json.Unmarshal([]byte(`"500"`), &decoded))
	assert.True(t, decoded.Eq(u))
}
