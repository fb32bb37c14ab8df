// Package payload provides tolerant access to untrusted JSON bodies.
//
// A Value never fails on navigation: Get on a missing key or on a scalar
// yields a missing Value. Failures surface only when a typed accessor
// (AsString, AsInt, ...) is asked for something the payload does not hold.
// Callers that must never fail pair an accessor with Or to fall back to a
// default and log why.
package payload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON = errors.New("payload: invalid json")
	ErrMissing     = errors.New("payload: missing value")
)

type Kind int

const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "missing"
	}
}

// TypeError reports a value present at Path but of the wrong kind.
type TypeError struct {
	Path string
	Want string
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("payload: %s is %s, want %s", e.Path, e.Got, e.Want)
}

// Value is a JSON value of unknown shape together with the path it was
// reached by.
type Value struct {
	res  gjson.Result
	path string
}

// Parse validates body and wraps it as the root Value.
func Parse(body []byte) (Value, error) {
	if !gjson.ValidBytes(body) {
		return Value{}, ErrInvalidJSON
	}
	return Value{res: gjson.ParseBytes(body)}, nil
}

// Get navigates a dotted path ("issue.project.name", "items.0.id").
func (v Value) Get(path string) Value {
	full := path
	if v.path != "" {
		full = v.path + "." + path
	}
	if !v.res.Exists() || !(v.res.IsObject() || v.res.IsArray()) {
		return Value{path: full}
	}
	return Value{res: v.res.Get(path), path: full}
}

// Path returns the dotted path from the root, "" for the root itself.
func (v Value) Path() string {
	return v.path
}

func (v Value) Exists() bool {
	return v.res.Exists()
}

func (v Value) Kind() Kind {
	if !v.res.Exists() {
		return KindMissing
	}
	switch v.res.Type {
	case gjson.Null:
		return KindNull
	case gjson.True, gjson.False:
		return KindBool
	case gjson.Number:
		return KindNumber
	case gjson.String:
		return KindString
	case gjson.JSON:
		if v.res.IsArray() {
			return KindArray
		}
		return KindObject
	}
	return KindMissing
}

// Raw returns the raw JSON text of the value.
func (v Value) Raw() string {
	return v.res.Raw
}

func (v Value) missing() error {
	return fmt.Errorf("%w: %s", ErrMissing, v.displayPath())
}

func (v Value) displayPath() string {
	if v.path == "" {
		return "<root>"
	}
	return v.path
}

// AsString returns the string held by v. Null is a type error.
func (v Value) AsString() (string, error) {
	switch v.Kind() {
	case KindString:
		return v.res.Str, nil
	case KindMissing:
		return "", v.missing()
	default:
		return "", &TypeError{Path: v.displayPath(), Want: "string", Got: v.Kind()}
	}
}

// AsNullableString returns the string held by v, or ok=false when v is null.
func (v Value) AsNullableString() (s string, ok bool, err error) {
	if v.Kind() == KindNull {
		return "", false, nil
	}
	s, err = v.AsString()
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// AsInt returns the integer held by v. Fractional numbers, numeric strings
// and booleans are type errors.
func (v Value) AsInt() (int64, error) {
	switch v.Kind() {
	case KindNumber:
		n, err := strconv.ParseInt(strings.TrimSpace(v.res.Raw), 10, 64)
		if err != nil {
			return 0, &TypeError{Path: v.displayPath(), Want: "integer", Got: KindNumber}
		}
		return n, nil
	case KindMissing:
		return 0, v.missing()
	default:
		return 0, &TypeError{Path: v.displayPath(), Want: "integer", Got: v.Kind()}
	}
}

// AsObject returns v itself when it is an object.
func (v Value) AsObject() (Value, error) {
	switch v.Kind() {
	case KindObject:
		return v, nil
	case KindMissing:
		return Value{}, v.missing()
	default:
		return Value{}, &TypeError{Path: v.displayPath(), Want: "object", Got: v.Kind()}
	}
}
