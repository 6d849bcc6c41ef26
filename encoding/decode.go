package encoding

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/pior/reql/ql2"
)

// TagName is the struct tag consulted when mapping object keys to fields.
const TagName = "reql"

// ToNative converts a datum tree to plain Go values: nil, bool, float64,
// string, []any and map[string]any.
func ToNative(d *ql2.Datum) (any, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Type {
	case ql2.DatumNull:
		return nil, nil
	case ql2.DatumBool:
		return d.Bool, nil
	case ql2.DatumNumber:
		return d.Num, nil
	case ql2.DatumString:
		return d.Str, nil
	case ql2.DatumArray:
		elems := make([]any, len(d.Array))
		for i, elem := range d.Array {
			v, err := ToNative(elem)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil
	case ql2.DatumObject:
		fields := make(map[string]any, len(d.Object))
		for _, p := range d.Object {
			v, err := ToNative(p.Val)
			if err != nil {
				return nil, err
			}
			fields[p.Key] = v
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("encoding: unknown datum type %d", d.Type)
	}
}

// Decoder maps datums onto user values. The zero value is ready to use.
type Decoder struct {
	// Hooks are appended to the default decode hooks (string to uuid.UUID).
	Hooks []mapstructure.DecodeHookFunc
}

// Decode maps a datum onto out, which must be a non-nil pointer. Numeric
// fields accept the wire's float64 representation, and string fields of type
// uuid.UUID are parsed (generated keys arrive as UUID strings).
func (dec *Decoder) Decode(d *ql2.Datum, out any) error {
	native, err := ToNative(d)
	if err != nil {
		return err
	}
	hooks := append([]mapstructure.DecodeHookFunc{stringToUUIDHook}, dec.Hooks...)
	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
	})
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if err := md.Decode(native); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	return nil
}

func stringToUUIDHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(uuid.UUID{}) {
		return data, nil
	}
	return uuid.Parse(data.(string))
}
