// Package pod describes and decodes fixed binary records copied out of another
// process. Every decoded field carries an explicit offset and wire kind in its
// struct tag, so the Go layout of a type never has to match the foreign one.
//
//	type Item struct {
//		ID        int32 `pod:"0,i32"`
//		Integrity int32 `pod:"4,i32"`
//		Equipped  bool  `pod:"8,bool8"`
//	}
//
// Fields without a pod tag are ignored. Trailing padding past the last field
// is never read.
package pod

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Kind is the wire representation of one field
type Kind uint8

const (
	KindI32 Kind = iota + 1
	KindU32
	KindPtr32
	KindBool8
)

var kindNames = map[string]Kind{
	"i32":   KindI32,
	"u32":   KindU32,
	"ptr32": KindPtr32,
	"bool8": KindBool8,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Size returns the number of bytes the kind occupies
func (k Kind) Size() uintptr {
	if k == KindBool8 {
		return 1
	}
	return 4
}

// Ptr32 is a pointer inside a 32-bit process
type Ptr32 uint32

func (p Ptr32) IsNull() bool {
	return p == 0
}

func (p Ptr32) String() string {
	return fmt.Sprintf("0x%08X", uint32(p))
}

var ErrBadLayout = errors.New("bad pod layout")

// Field is one decoded member of a record
type Field struct {
	Name   string
	Index  int
	Offset uintptr
	Kind   Kind
}

// End returns the offset just past the field
func (f Field) End() uintptr {
	return f.Offset + f.Kind.Size()
}

// Layout is the byte layout of a record type
type Layout struct {
	Name   string
	Fields []Field // sorted by offset

	// Extent covers the member bytes only; Stride is the array step,
	// Extent rounded up to the widest member.
	Extent uintptr
	Stride uintptr
}

var layoutCache sync.Map // reflect.Type -> *Layout

// LayoutOf returns the validated layout of T
func LayoutOf[T any]() (*Layout, error) {
	var zero T
	return layoutFor(reflect.TypeOf(zero))
}

// MustLayout is LayoutOf for package level record types; it panics on a bad layout
func MustLayout[T any]() *Layout {
	l, err := LayoutOf[T]()
	if err != nil {
		panic(err)
	}
	return l
}

func layoutFor(rt reflect.Type) (*Layout, error) {
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrBadLayout, rt)
	}
	if cached, ok := layoutCache.Load(rt); ok {
		return cached.(*Layout), nil
	}

	l := &Layout{Name: rt.Name()}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag, ok := sf.Tag.Lookup("pod")
		if !ok || tag == "-" {
			continue
		}
		offset, kind, err := parsePodTag(tag)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrBadLayout, rt.Name(), sf.Name, err)
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: %s.%s is not exported", ErrBadLayout, rt.Name(), sf.Name)
		}
		if !kindFits(kind, sf.Type.Kind()) {
			return nil, fmt.Errorf("%w: %s.%s has Go type %v, cannot hold %v", ErrBadLayout, rt.Name(), sf.Name, sf.Type, kind)
		}
		l.Fields = append(l.Fields, Field{Name: sf.Name, Index: i, Offset: offset, Kind: kind})
	}

	if err := l.validate(); err != nil {
		return nil, err
	}

	actual, _ := layoutCache.LoadOrStore(rt, l)
	return actual.(*Layout), nil
}

// parsePodTag parses "offset,kind"
func parsePodTag(tag string) (uintptr, Kind, error) {
	parts := strings.Split(tag, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("tag %q is not offset,kind", tag)
	}
	offset, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("tag %q: bad offset: %v", tag, err)
	}
	kind, ok := kindNames[strings.TrimSpace(parts[1])]
	if !ok {
		return 0, 0, fmt.Errorf("tag %q: unknown kind", tag)
	}
	return uintptr(offset), kind, nil
}

func kindFits(kind Kind, goKind reflect.Kind) bool {
	switch kind {
	case KindI32:
		return goKind == reflect.Int32
	case KindU32, KindPtr32:
		return goKind == reflect.Uint32
	case KindBool8:
		return goKind == reflect.Bool
	}
	return false
}

// validate checks alignment and overlap, then fills Extent and Stride
func (l *Layout) validate() error {
	if len(l.Fields) == 0 {
		return fmt.Errorf("%w: %s has no pod fields", ErrBadLayout, l.Name)
	}
	sort.Slice(l.Fields, func(i, j int) bool { return l.Fields[i].Offset < l.Fields[j].Offset })

	align := uintptr(1)
	for i, f := range l.Fields {
		size := f.Kind.Size()
		if f.Offset%size != 0 {
			return fmt.Errorf("%w: %s.%s at offset %d is not %d byte aligned", ErrBadLayout, l.Name, f.Name, f.Offset, size)
		}
		if i > 0 && l.Fields[i-1].End() > f.Offset {
			return fmt.Errorf("%w: %s.%s overlaps %s", ErrBadLayout, l.Name, f.Name, l.Fields[i-1].Name)
		}
		align = max(align, size)
	}

	l.Extent = l.Fields[len(l.Fields)-1].End()
	l.Stride = (l.Extent + align - 1) / align * align
	return nil
}
