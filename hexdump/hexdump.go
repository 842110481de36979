// Package hexdump prints raw record bytes next to the fields that own them
package hexdump

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode"

	"wizmind/pod"
	"wizmind/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Annotation labels the bytes [Offset, Offset+Size) of a dump
type Annotation struct {
	Offset uintptr
	Size   uintptr
	Label  string
}

// Options customizes the dump
type Options struct {
	// BytesPerLine should be a multiple of 4 so 32-bit words stay on one line
	BytesPerLine int

	// StartAddress is printed in the address column for the first byte
	StartAddress uint64

	AddressColor      coloransi.ColorCode
	HexColor          coloransi.ColorCode
	ASCIIColor        coloransi.ColorCode
	NonPrintableColor coloransi.ColorCode
	ZeroColor         coloransi.ColorCode
	PointerColor      coloransi.ColorCode

	// Annotations color the bytes of each field and name the fields
	// starting on a line at the end of that line
	Annotations []Annotation

	// MemoryMap, when set, marks aligned words pointing at a whole word of
	// mapped memory
	MemoryMap []memory_map.MemoryMapItem

	// MaxLines stops the dump early; 0 prints everything
	MaxLines int
}

func DefaultOptions() Options {
	return Options{
		BytesPerLine:      16,
		AddressColor:      coloransi.Cyan,
		HexColor:          coloransi.Green,
		ASCIIColor:        coloransi.White,
		NonPrintableColor: coloransi.BrightBlack,
		ZeroColor:         coloransi.BrightBlack,
		PointerColor:      coloransi.Yellow,
	}
}

// fieldColors cycle over consecutive annotations
var fieldColors = []coloransi.ColorCode{
	coloransi.ColorLimeGreen,
	coloransi.ColorTeal,
	coloransi.Yellow,
	coloransi.BrightBlue,
}

// FromLayout annotates every field of a record layout
func FromLayout(l *pod.Layout) []Annotation {
	out := make([]Annotation, 0, len(l.Fields))
	for _, f := range l.Fields {
		out = append(out, Annotation{Offset: f.Offset, Size: f.Kind.Size(), Label: f.Name})
	}
	return out
}

// Dump returns the dump of data as a string
func Dump(data []byte, options Options) string {
	var sb strings.Builder
	Fdump(&sb, data, options)
	return sb.String()
}

// Fdump writes a dump of data to w
func Fdump(w io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	owner := make([]int, len(data))
	for i := range owner {
		owner[i] = -1
	}
	for i, a := range options.Annotations {
		for off := a.Offset; off < a.Offset+a.Size && off < uintptr(len(data)); off++ {
			owner[off] = i
		}
	}

	lines := 0
	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		if options.MaxLines > 0 && lines >= options.MaxLines {
			fmt.Fprintf(w, "... %d more bytes\n", len(data)-offset)
			return
		}
		end := min(offset+options.BytesPerLine, len(data))
		writeLine(w, data, offset, end, owner, options)
		lines++
	}
}

func writeLine(w io.Writer, data []byte, start, end int, owner []int, options Options) {
	fmt.Fprint(w, coloransi.Foreground(options.AddressColor, fmt.Sprintf("%08x", options.StartAddress+uint64(start))), "  ")

	half := start + options.BytesPerLine/2
	for i := start; i < start+options.BytesPerLine; i++ {
		if i == half {
			fmt.Fprint(w, "| ")
		}
		if i >= end {
			fmt.Fprint(w, "   ")
			continue
		}
		fmt.Fprint(w, coloransi.Foreground(byteColor(data[i], owner[i], options), fmt.Sprintf("%02x", data[i])), " ")
	}

	fmt.Fprint(w, "| ")
	for i := start; i < end; i++ {
		fmt.Fprint(w, asciiFor(data[i], options))
	}

	var notes []string
	for _, a := range options.Annotations {
		if a.Offset >= uintptr(start) && a.Offset < uintptr(end) {
			notes = append(notes, fmt.Sprintf("+%02x %s", a.Offset, a.Label))
		}
	}
	for i := start; i+4 <= end; i += 4 {
		word := binary.LittleEndian.Uint32(data[i : i+4])
		if word != 0 && memory_map.Contains(uint64(word), 4, options.MemoryMap) {
			notes = append(notes, coloransi.Foreground(options.PointerColor, fmt.Sprintf("+%02x->0x%08x", i, word)))
		}
	}
	if len(notes) > 0 {
		fmt.Fprint(w, strings.Repeat(" ", options.BytesPerLine-(end-start)), "  ", strings.Join(notes, ", "))
	}
	fmt.Fprintln(w)
}

func byteColor(b byte, owner int, options Options) coloransi.ColorCode {
	switch {
	case owner >= 0:
		return fieldColors[owner%len(fieldColors)]
	case b == 0:
		return options.ZeroColor
	}
	return options.HexColor
}

func asciiFor(b byte, options Options) string {
	c := rune(b)
	switch {
	case b == 0:
		return coloransi.Foreground(options.ZeroColor, ".")
	case c > unicode.MaxASCII || !unicode.IsPrint(c):
		return coloransi.Foreground(options.NonPrintableColor, ".")
	}
	return coloransi.Foreground(options.ASCIIColor, string(c))
}
