package ethereum

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/feral-file/ff-projector/internal/domain"
)

// Decoder turns raw logs into named events with normalized fields
type Decoder struct {
	events map[common.Hash]abi.Event
	topics []common.Hash
}

// NewDecoder creates a decoder for every projected event
func NewDecoder() *Decoder {
	d := &Decoder{events: make(map[common.Hash]abi.Event, len(eventsABI.Events))}
	for _, ev := range eventsABI.Events {
		d.events[ev.ID] = ev
		d.topics = append(d.topics, ev.ID)
	}
	sort.Slice(d.topics, func(i, j int) bool {
		return d.topics[i].Hex() < d.topics[j].Hex()
	})
	return d
}

// Topics returns the signature hashes of every decodable event
func (d *Decoder) Topics() []common.Hash {
	return d.topics
}

// Decode decodes a log. An unknown signature yields an empty name and no error.
func (d *Decoder) Decode(vLog types.Log) (string, domain.Fields, error) {
	if len(vLog.Topics) == 0 {
		return "", nil, nil
	}
	ev, ok := d.events[vLog.Topics[0]]
	if !ok {
		return "", nil, nil
	}

	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(vLog.Topics)-1 != len(indexed) {
		return "", nil, fmt.Errorf("%w: %s has %d topics, want %d", domain.ErrMalformedEvent, ev.Name, len(vLog.Topics)-1, len(indexed))
	}

	raw := make(map[string]interface{}, len(ev.Inputs))
	if err := ev.Inputs.UnpackIntoMap(raw, vLog.Data); err != nil {
		return "", nil, fmt.Errorf("%w: failed to unpack %s data: %v", domain.ErrMalformedEvent, ev.Name, err)
	}
	if err := abi.ParseTopicsIntoMap(raw, indexed, vLog.Topics[1:]); err != nil {
		return "", nil, fmt.Errorf("%w: failed to parse %s topics: %v", domain.ErrMalformedEvent, ev.Name, err)
	}

	fields := make(domain.Fields, len(raw))
	for name, value := range raw {
		fields[name] = normalize(reflect.ValueOf(value))
	}
	return ev.Name, fields, nil
}

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// normalize converts abi output into the value shapes domain.Fields expects
func normalize(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	if v.Type() == bigIntType {
		return v.Interface()
	}
	if addr, ok := v.Interface().(common.Address); ok {
		return strings.ToLower(addr.Hex())
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return normalize(v.Elem())
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return hexutil.Encode(b)
		}
		return normalizeList(v)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return hexutil.Encode(v.Bytes())
		}
		return normalizeList(v)
	case reflect.Struct:
		out := make(map[string]interface{}, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			field := v.Type().Field(i)
			name := field.Tag.Get("json")
			if name == "" {
				name = strings.ToLower(field.Name[:1]) + field.Name[1:]
			}
			out[name] = normalize(v.Field(i))
		}
		return out
	default:
		return v.Interface()
	}
}

func normalizeList(v reflect.Value) []interface{} {
	out := make([]interface{}, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = normalize(v.Index(i))
	}
	return out
}
