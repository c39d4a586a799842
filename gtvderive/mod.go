// Package gtvderive maps ordinary Go values onto gtv.Value trees by
// reflection, so callers can build operation arguments from domain
// structs instead of hand-assembling gtv.Value constructors field by
// field. It depends on package gtv; nothing in gtv or txn depends on
// it back.
//
// A struct field tag of the form `gtv:"name,option"` controls how a
// field is mapped: the name segment renames the resulting dict key
// (defaulting to the Go field name), and the option segment resolves
// an ambiguous mapping — "bigint" forces an integer field through
// gtv.BigInt instead of gtv.Int, and "decimal" forces a string field
// through gtv.Decimal instead of gtv.Text. A tag of "-" skips the
// field entirely. Any other option token, or combining "bigint" and
// "decimal" on the same field, is rejected with ErrInvalidTag.
package gtvderive

import (
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"go.chromia.dev/postchain/gtv"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

type tagOptions struct {
	name    string
	bigint  bool
	decimal bool
	skip    bool
}

func parseTag(raw string, fieldName string) (tagOptions, error) {
	opts := tagOptions{name: fieldName}
	if raw == "" {
		return opts, nil
	}
	if raw == "-" {
		opts.skip = true
		return opts, nil
	}
	parts := strings.Split(raw, ",")
	if parts[0] != "" {
		opts.name = parts[0]
	}
	for _, p := range parts[1:] {
		switch p {
		case "bigint":
			opts.bigint = true
		case "decimal":
			opts.decimal = true
		default:
			return tagOptions{}, xerrors.Errorf("field %s: unknown option %q: %w", fieldName, p, ErrInvalidTag)
		}
	}
	if opts.bigint && opts.decimal {
		return tagOptions{}, xerrors.Errorf("field %s: \"bigint\" and \"decimal\" are mutually exclusive: %w", fieldName, ErrInvalidTag)
	}
	return opts, nil
}

// ToValue converts v into a gtv.Value: nil and nil pointers become Null,
// bool becomes Boolean, signed integers become Integer, unsigned integers
// become Integer (BigInteger above the int64 range), *big.Int becomes
// BigInteger, floats become Decimal, strings become Text, byte slices
// become ByteArray, other slices and arrays become Array, string-keyed
// maps and structs become Dict. Any other type is rejected with
// ErrUnsupportedType. See the package doc comment for how struct tags
// adjust the mapping of struct fields.
func ToValue(v interface{}) (gtv.Value, error) {
	if v == nil {
		return gtv.Null(), nil
	}
	return toValue(reflect.ValueOf(v), tagOptions{})
}

// ToArgs builds a positional-argument GTV Array from values, suitable
// for gtv.Operation's Args field.
func ToArgs(values ...interface{}) (gtv.Value, error) {
	elems := make([]gtv.Value, len(values))
	for i, v := range values {
		val, err := ToValue(v)
		if err != nil {
			return gtv.Value{}, xerrors.Errorf("argument %d: %w", i, err)
		}
		elems[i] = val
	}
	return gtv.NewArray(elems...), nil
}

// ToOperation builds a gtv.Operation named name with positional
// arguments derived from args via ToArgs.
func ToOperation(name string, args ...interface{}) (gtv.Operation, error) {
	argsValue, err := ToArgs(args...)
	if err != nil {
		return gtv.Operation{}, xerrors.Errorf("couldn't build operation %q: %w", name, err)
	}
	return gtv.NewOperation(name, argsValue.Elements()...), nil
}

func toValue(rv reflect.Value, opt tagOptions) (gtv.Value, error) {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return gtv.Null(), nil
		}
		return toValue(rv.Elem(), opt)
	}

	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return gtv.Null(), nil
		}
		if rv.Type() == bigIntType {
			return gtv.BigInt(rv.Interface().(*big.Int)), nil
		}
		return toValue(rv.Elem(), opt)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return gtv.Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if opt.bigint {
			return gtv.BigInt(big.NewInt(n)), nil
		}
		return gtv.Int(n), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if !opt.bigint && u <= 1<<63-1 {
			return gtv.Int(int64(u)), nil
		}
		return gtv.BigInt(new(big.Int).SetUint64(u)), nil

	case reflect.Float32, reflect.Float64:
		bitSize := 64
		if rv.Kind() == reflect.Float32 {
			bitSize = 32
		}
		s := strconv.FormatFloat(rv.Float(), 'f', -1, bitSize)
		return gtv.Decimal(s)

	case reflect.String:
		s := rv.String()
		if opt.decimal {
			return gtv.Decimal(s)
		}
		return gtv.Text(s), nil

	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return gtv.Bytes(rv.Bytes()), nil
		}
		elems := make([]gtv.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			val, err := toValue(rv.Index(i), tagOptions{})
			if err != nil {
				return gtv.Value{}, xerrors.Errorf("element %d: %w", i, err)
			}
			elems[i] = val
		}
		return gtv.NewArray(elems...), nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return gtv.Value{}, ErrNonStringMapKey
		}
		entries := make([]gtv.DictEntry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			val, err := toValue(iter.Value(), tagOptions{})
			if err != nil {
				return gtv.Value{}, xerrors.Errorf("key %q: %w", iter.Key().String(), err)
			}
			entries = append(entries, gtv.DictEntry{Key: iter.Key().String(), Value: val})
		}
		dict, err := gtv.NewDict(entries...)
		if err != nil {
			return gtv.Value{}, xerrors.Errorf("%w", err)
		}
		return dict, nil

	case reflect.Struct:
		return structToValue(rv)

	default:
		return gtv.Value{}, xerrors.Errorf("%v: %w", rv.Type(), ErrUnsupportedType)
	}
}

func structToValue(rv reflect.Value) (gtv.Value, error) {
	t := rv.Type()
	entries := make([]gtv.DictEntry, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		opt, err := parseTag(field.Tag.Get("gtv"), field.Name)
		if err != nil {
			return gtv.Value{}, err
		}
		if opt.skip {
			continue
		}
		val, err := toValue(rv.Field(i), opt)
		if err != nil {
			return gtv.Value{}, xerrors.Errorf("field %s: %w", field.Name, err)
		}
		entries = append(entries, gtv.DictEntry{Key: opt.name, Value: val})
	}
	dict, err := gtv.NewDict(entries...)
	if err != nil {
		return gtv.Value{}, xerrors.Errorf("%w", err)
	}
	return dict, nil
}
