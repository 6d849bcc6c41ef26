// Package encoding converts between ql2 datums and Go values.
//
// Encoding turns Go values into datum trees for embedding in query terms;
// decoding maps response datums onto user types through mapstructure, the
// same way stored documents are rehydrated in document stores. Struct fields
// use the `reql` tag.
package encoding

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/pior/reql/ql2"
)

// ToDatum converts a Go value to a datum tree.
//
// Supported inputs: nil, booleans, all integer and float types, strings,
// slices and arrays, maps with string keys, structs (through their `reql`
// tags), pointers and interfaces to any of these, and *ql2.Datum verbatim.
// Map entries are emitted in sorted key order so encoding is deterministic.
func ToDatum(v any) (*ql2.Datum, error) {
	if v == nil {
		return ql2.Null(), nil
	}
	if d, ok := v.(*ql2.Datum); ok {
		return d, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ql2.Null(), nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return ql2.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ql2.Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ql2.Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return ql2.Number(rv.Float()), nil
	case reflect.String:
		return ql2.String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		elems := make([]*ql2.Datum, rv.Len())
		for i := range elems {
			d, err := ToDatum(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			elems[i] = d
		}
		return ql2.Array(elems...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("encoding: map key type %s is not a string", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		keyType := rv.Type().Key()
		pairs := make([]ql2.DatumPair, 0, len(keys))
		for _, k := range keys {
			d, err := ToDatum(rv.MapIndex(reflect.ValueOf(k).Convert(keyType)).Interface())
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, ql2.DatumPair{Key: k, Val: d})
		}
		return ql2.Object(pairs...), nil
	case reflect.Struct:
		fields := map[string]any{}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: TagName,
			Result:  &fields,
		})
		if err != nil {
			return nil, fmt.Errorf("encoding: %w", err)
		}
		if err := dec.Decode(rv.Interface()); err != nil {
			return nil, fmt.Errorf("encoding: %w", err)
		}
		return ToDatum(fields)
	default:
		return nil, fmt.Errorf("encoding: unsupported type %s", rv.Type())
	}
}
