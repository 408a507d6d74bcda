package schema

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"

	"github.com/feral-file/ff-projector/internal/domain"
)

// Uint256 is an unsigned 256-bit quantity (balances, supplies, prices, volumes).
// Arithmetic never wraps: overflow and underflow are reported as errors.
type Uint256 struct {
	v uint256.Int
}

// NewUint256 returns n as a Uint256
func NewUint256(n uint64) Uint256 {
	var u Uint256
	u.v.SetUint64(n)
	return u
}

// Uint256FromBig converts a big integer, rejecting negative and oversized values
func Uint256FromBig(b *big.Int) (Uint256, error) {
	if b == nil {
		return Uint256{}, nil
	}
	if b.Sign() < 0 {
		return Uint256{}, fmt.Errorf("%w: negative quantity %s", domain.ErrUnderflow, b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Uint256{}, fmt.Errorf("%w: quantity %s exceeds 256 bits", domain.ErrOverflow, b)
	}
	return Uint256{v: *v}, nil
}

// ParseUint256 parses a base-10 string
func ParseUint256(s string) (Uint256, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Uint256{}, fmt.Errorf("invalid uint256 %q: %w", s, err)
	}
	return Uint256{v: *v}, nil
}

// Add returns u + o
func (u Uint256) Add(o Uint256) (Uint256, error) {
	var r Uint256
	if _, overflow := r.v.AddOverflow(&u.v, &o.v); overflow {
		return Uint256{}, fmt.Errorf("%w: %s + %s", domain.ErrOverflow, u, o)
	}
	return r, nil
}

// Sub returns u - o
func (u Uint256) Sub(o Uint256) (Uint256, error) {
	var r Uint256
	if _, underflow := r.v.SubOverflow(&u.v, &o.v); underflow {
		return Uint256{}, fmt.Errorf("%w: %s - %s", domain.ErrUnderflow, u, o)
	}
	return r, nil
}

// Mul returns u * o
func (u Uint256) Mul(o Uint256) (Uint256, error) {
	var r Uint256
	if _, overflow := r.v.MulOverflow(&u.v, &o.v); overflow {
		return Uint256{}, fmt.Errorf("%w: %s * %s", domain.ErrOverflow, u, o)
	}
	return r, nil
}

// IsZero reports whether u is zero
func (u Uint256) IsZero() bool {
	return u.v.IsZero()
}

// Cmp compares u and o and returns -1, 0 or +1
func (u Uint256) Cmp(o Uint256) int {
	return u.v.Cmp(&o.v)
}

// Eq reports whether u equals o
func (u Uint256) Eq(o Uint256) bool {
	return u.v.Eq(&o.v)
}

// Big returns u as a big integer
func (u Uint256) Big() *big.Int {
	return u.v.ToBig()
}

// String returns the base-10 representation
func (u Uint256) String() string {
	return u.v.Dec()
}

// Value implements driver.Valuer. Quantities are stored as decimal strings.
func (u Uint256) Value() (driver.Value, error) {
	return u.v.Dec(), nil
}

// Scan implements sql.Scanner
func (u *Uint256) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		u.v.Clear()
		return nil
	case string:
		return u.setDecimal(v)
	case []byte:
		return u.setDecimal(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("%w: negative quantity %d", domain.ErrUnderflow, v)
		}
		u.v.SetUint64(uint64(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Uint256", value)
	}
}

func (u *Uint256) setDecimal(s string) error {
	parsed, err := ParseUint256(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// GormDBDataType picks the column type per dialect
func (Uint256) GormDBDataType(db *gorm.DB, field *gormschema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "numeric(78,0)"
	}
	return "text"
}

// MarshalJSON renders the quantity as a quoted decimal string
func (u Uint256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.v.Dec())
}

// UnmarshalJSON accepts a quoted decimal string
func (u *Uint256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return u.setDecimal(s)
}
