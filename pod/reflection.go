package pod

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
)

var ErrShortBuffer = errors.New("buffer shorter than record extent")

// Decode reads a T from data field by field. Only the bytes named by the
// layout are looked at; padding may hold anything.
func Decode[T any](data []byte) (T, error) {
	var out T
	l, err := LayoutOf[T]()
	if err != nil {
		return out, err
	}
	if err := decodeInto(l, data, reflect.ValueOf(&out).Elem()); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeArray decodes count records laid out Stride bytes apart
func DecodeArray[T any](data []byte, count int) ([]T, error) {
	l, err := LayoutOf[T]()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("negative record count %d", count)
	}
	if count > 0 {
		need := uintptr(count-1)*l.Stride + l.Extent
		if uintptr(len(data)) < need {
			return nil, fmt.Errorf("%w: %s[%d] needs %d bytes, have %d", ErrShortBuffer, l.Name, count, need, len(data))
		}
	}

	out := make([]T, count)
	for i := range out {
		start := uintptr(i) * l.Stride
		if err := decodeInto(l, data[start:], reflect.ValueOf(&out[i]).Elem()); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", l.Name, i, err)
		}
	}
	return out, nil
}

func decodeInto(l *Layout, data []byte, rv reflect.Value) error {
	if uintptr(len(data)) < l.Extent {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrShortBuffer, l.Name, l.Extent, len(data))
	}

	for _, f := range l.Fields {
		field := rv.Field(f.Index)
		raw := data[f.Offset:f.End()]

		switch f.Kind {
		case KindI32:
			field.SetInt(int64(int32(binary.LittleEndian.Uint32(raw))))
		case KindU32, KindPtr32:
			field.SetUint(uint64(binary.LittleEndian.Uint32(raw)))
		case KindBool8:
			// only the low byte belongs to the flag
			field.SetBool(raw[0] != 0)
		}
	}
	return nil
}

// EncodeInto writes the fields of v into dst. Bytes not covered by a field
// are left as they are.
func EncodeInto[T any](dst []byte, v T) error {
	l, err := LayoutOf[T]()
	if err != nil {
		return err
	}
	if uintptr(len(dst)) < l.Extent {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrShortBuffer, l.Name, l.Extent, len(dst))
	}

	rv := reflect.ValueOf(v)
	for _, f := range l.Fields {
		field := rv.Field(f.Index)
		raw := dst[f.Offset:f.End()]

		switch f.Kind {
		case KindI32:
			binary.LittleEndian.PutUint32(raw, uint32(int32(field.Int())))
		case KindU32, KindPtr32:
			binary.LittleEndian.PutUint32(raw, uint32(field.Uint()))
		case KindBool8:
			raw[0] = 0
			if field.Bool() {
				raw[0] = 1
			}
		}
	}
	return nil
}

// Encode returns v as Extent bytes with zeroed padding
func Encode[T any](v T) ([]byte, error) {
	l, err := LayoutOf[T]()
	if err != nil {
		return nil, err
	}
	out := make([]byte, l.Extent)
	if err := EncodeInto(out, v); err != nil {
		return nil, err
	}
	return out, nil
}
