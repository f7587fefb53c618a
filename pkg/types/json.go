//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// extnValue renders the single-argument extension escape,
// {"__extn": {"fn": ..., "arg": ...}}.
type extnValue struct {
	Fn  string
	Arg string
}

func (e extnValue) MarshalJSON() ([]byte, error) {
	type inner struct {
		Fn  string `json:"fn"`
		Arg string `json:"arg"`
	}
	return json.Marshal(map[string]inner{
		"__extn": {Fn: e.Fn, Arg: e.Arg},
	})
}

// extnCall is the multi-argument extension escape body, used by offset,
// {"fn": ..., "args": [...]}.
type extnCall struct {
	Fn   string  `json:"fn"`
	Args []Value `json:"args"`
}

// DecodeValue parses the JSON interchange encoding of a Value. The encoding
// carries no type tag; the variant is recovered from the shape of the JSON:
//
//   - an object whose sole key is "__entity" is an EntityUID
//   - an object whose sole key is "__extn" is an extension value, selected
//     by its "fn" field
//   - any other object is a Record
//   - an array is a Set
//   - a number is a Long (integral only)
//   - a bool is a Bool and a string is a String
//
// An object that mixes "__entity" or "__extn" with other keys is rejected
// rather than silently treated as a Record.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, deserializationErrorf("invalid value JSON: %v", err)
	}
	return decodeRaw(raw)
}

func decodeRaw(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return nil, deserializationErrorf("expected an integral number, got %q", v.String())
		}
		return Long(n), nil
	case []interface{}:
		elems := make([]Value, 0, len(v))
		for _, e := range v {
			ev, err := decodeRaw(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ev)
		}
		return NewSet(elems...)
	case map[string]interface{}:
		return decodeObject(v)
	case nil:
		return nil, deserializationErrorf("null is not a valid value")
	default:
		return nil, deserializationErrorf("unsupported JSON shape %T", raw)
	}
}

func decodeObject(obj map[string]interface{}) (Value, error) {
	if ent, ok := obj["__entity"]; ok {
		if len(obj) != 1 {
			return nil, deserializationErrorf("object mixes __entity with other keys")
		}
		return decodeEntityEscape(ent)
	}
	if ext, ok := obj["__extn"]; ok {
		if len(obj) != 1 {
			return nil, deserializationErrorf("object mixes __extn with other keys")
		}
		return decodeExtnEscape(ext)
	}
	entries := make(map[string]Value, len(obj))
	for k, e := range obj {
		ev, err := decodeRaw(e)
		if err != nil {
			return nil, err
		}
		entries[k] = ev
	}
	return NewRecord(entries)
}

func decodeEntityEscape(raw interface{}) (Value, error) {
	body, ok := raw.(map[string]interface{})
	if !ok {
		return nil, deserializationErrorf("__entity body must be an object")
	}
	typ, ok := body["type"].(string)
	if !ok {
		return nil, deserializationErrorf("__entity is missing a string \"type\" field")
	}
	id, ok := body["id"].(string)
	if !ok {
		return nil, deserializationErrorf("__entity is missing a string \"id\" field")
	}
	uid, err := NewEntityUID(typ, id)
	if err != nil {
		return nil, deserializationErrorf("invalid __entity escape: %v", err)
	}
	return uid, nil
}

func decodeExtnEscape(raw interface{}) (Value, error) {
	body, ok := raw.(map[string]interface{})
	if !ok {
		return nil, deserializationErrorf("__extn body must be an object")
	}
	fn, ok := body["fn"].(string)
	if !ok {
		return nil, deserializationErrorf("__extn is missing a string \"fn\" field")
	}
	if fn == "offset" {
		return decodeOffsetCall(body)
	}
	arg, ok := body["arg"].(string)
	if !ok {
		return nil, deserializationErrorf("__extn %q is missing a string \"arg\" field", fn)
	}
	var (
		v   Value
		err error
	)
	switch fn {
	case "decimal":
		v, err = NewDecimal(arg)
	case "ip":
		v, err = NewIPAddr(arg)
	case "datetime":
		v, err = NewDatetime(arg)
	case "duration":
		v, err = NewDuration(arg)
	case "unknown":
		v, err = NewUnknown(arg)
	default:
		return nil, deserializationErrorf("unrecognized extension function %q", fn)
	}
	if err != nil {
		return nil, deserializationErrorf("invalid %s value %q: %v", fn, arg, err)
	}
	return v, nil
}

func decodeOffsetCall(body map[string]interface{}) (Value, error) {
	args, ok := body["args"].([]interface{})
	if !ok || len(args) != 2 {
		return nil, deserializationErrorf("offset requires an \"args\" array of two values")
	}
	first, err := decodeRaw(args[0])
	if err != nil {
		return nil, err
	}
	second, err := decodeRaw(args[1])
	if err != nil {
		return nil, err
	}
	dt, ok := first.(Datetime)
	if !ok {
		return nil, deserializationErrorf("offset base must be a datetime")
	}
	dur, ok := second.(Duration)
	if !ok {
		return nil, deserializationErrorf("offset amount must be a duration")
	}
	return NewOffset(dt, dur)
}
