package domain

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Fields holds the decoded parameters of an event keyed by ABI parameter name.
//
// Values are normalized by the decoder: addresses are lower-case hex strings,
// integers are *big.Int, byte arrays are 0x hex strings, arrays are []interface{}
// and tuples are map[string]interface{} keyed by component name.
type Fields map[string]interface{}

func (f Fields) lookup(name string) (interface{}, error) {
	v, ok := f[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: field %q is missing", ErrMalformedEvent, name)
	}
	return v, nil
}

// Address returns the named field as a normalized address
func (f Fields) Address(name string) (string, error) {
	v, err := f.lookup(name)
	if err != nil {
		return "", err
	}
	return toAddress(name, v)
}

// BigInt returns the named field as an unsigned integer
func (f Fields) BigInt(name string) (*big.Int, error) {
	v, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	return toBigInt(name, v)
}

// Bool returns the named field as a boolean
func (f Fields) Bool(name string) (bool, error) {
	v, err := f.lookup(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: field %q is %T, want bool", ErrMalformedEvent, name, v)
	}
	return b, nil
}

// String returns the named field as a string
func (f Fields) String(name string) (string, error) {
	v, err := f.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrMalformedEvent, name, v)
	}
	return s, nil
}

// Hex returns the named byte-array field as a lower-case 0x hex string
func (f Fields) Hex(name string) (string, error) {
	v, err := f.lookup(name)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		if !strings.HasPrefix(t, "0x") {
			return "", fmt.Errorf("%w: field %q is not hex", ErrMalformedEvent, name)
		}
		return strings.ToLower(t), nil
	case []byte:
		return hexutil.Encode(t), nil
	}

	// fixed size arrays such as [4]byte
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return hexutil.Encode(b), nil
	}
	return "", fmt.Errorf("%w: field %q is %T, want bytes", ErrMalformedEvent, name, v)
}

// Tuple returns the named struct field
func (f Fields) Tuple(name string) (Fields, error) {
	v, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	return toFields(name, v)
}

// Tuples returns the named array-of-struct field
func (f Fields) Tuples(name string) ([]Fields, error) {
	items, err := f.list(name)
	if err != nil {
		return nil, err
	}
	out := make([]Fields, 0, len(items))
	for i, item := range items {
		t, err := toFields(fmt.Sprintf("%s[%d]", name, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// BigInts returns the named array-of-integer field
func (f Fields) BigInts(name string) ([]*big.Int, error) {
	items, err := f.list(name)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, 0, len(items))
	for i, item := range items {
		n, err := toBigInt(fmt.Sprintf("%s[%d]", name, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Addresses returns the named array-of-address field
func (f Fields) Addresses(name string) ([]string, error) {
	items, err := f.list(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		a, err := toAddress(fmt.Sprintf("%s[%d]", name, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (f Fields) list(name string) ([]interface{}, error) {
	v, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	if items, ok := v.([]interface{}); ok {
		return items, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: field %q is %T, want array", ErrMalformedEvent, name, v)
	}
	items := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func toAddress(name string, v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		if !common.IsHexAddress(t) {
			return "", fmt.Errorf("%w: field %q is not an address", ErrMalformedEvent, name)
		}
		return NormalizeAddress(t), nil
	case common.Address:
		return strings.ToLower(t.Hex()), nil
	default:
		return "", fmt.Errorf("%w: field %q is %T, want address", ErrMalformedEvent, name, v)
	}
}

func toBigInt(name string, v interface{}) (*big.Int, error) {
	switch t := v.(type) {
	case *big.Int:
		if t == nil {
			return nil, fmt.Errorf("%w: field %q is nil", ErrMalformedEvent, name)
		}
		return new(big.Int).Set(t), nil
	case big.Int:
		return new(big.Int).Set(&t), nil
	case string:
		n, ok := new(big.Int).SetString(t, 0)
		if !ok {
			return nil, fmt.Errorf("%w: field %q is not an integer", ErrMalformedEvent, name)
		}
		return n, nil
	case int:
		return big.NewInt(int64(t)), nil
	case int64:
		return big.NewInt(t), nil
	case uint64:
		return new(big.Int).SetUint64(t), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(t)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(t)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(t)), nil
	default:
		return nil, fmt.Errorf("%w: field %q is %T, want integer", ErrMalformedEvent, name, v)
	}
}

func toFields(name string, v interface{}) (Fields, error) {
	switch t := v.(type) {
	case Fields:
		return t, nil
	case map[string]interface{}:
		return Fields(t), nil
	default:
		return nil, fmt.Errorf("%w: field %q is %T, want tuple", ErrMalformedEvent, name, v)
	}
}
