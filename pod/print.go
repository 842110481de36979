package pod

import (
	"fmt"
	"io"
	"reflect"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Fprint writes one decoded record as a table of field, offset, kind and value
func Fprint(w io.Writer, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	l, err := layoutFor(rv.Type())
	if err != nil {
		return err
	}

	table := NewTable(
		ColumnSpec{Header: "Field", MinWidth: 16},
		ColumnSpec{Header: "Offset", FormatFunc: func(s string) string { return coloransi.Foreground(coloransi.Cyan, s) }},
		ColumnSpec{Header: "Kind"},
		ColumnSpec{Header: "Value", FormatFunc: NullPointerFormatter},
	)
	for _, f := range l.Fields {
		table.AddRow(f.Name, fmt.Sprintf("+0x%02X", f.Offset), f.Kind.String(), formatValue(rv.Field(f.Index)))
	}
	table.AddSeparator()
	table.AddRow(l.Name, fmt.Sprintf("%d/%d", l.Extent, l.Stride), "extent/stride", "")

	return table.Render(w)
}

func formatValue(v reflect.Value) string {
	if s, ok := tryStringer(v); ok {
		if v.Kind() == reflect.Int32 {
			return fmt.Sprintf("%s (%d)", s, v.Int())
		}
		return s
	}
	return fmt.Sprint(v.Interface())
}

func tryStringer(v reflect.Value) (string, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return "", false
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}
	return "", false
}
