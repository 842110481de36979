// Package definitions loads the id to name tables the game writes to its
// luigiAi directory.
package definitions

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// UnknownCell is the cell id of tiles the player has never seen
const UnknownCell = -1

var ErrMalformedLine = errors.New("malformed definition line")

var (
	plainLine  = regexp.MustCompile(`^ *(\d+) (.*)$`)
	taggedLine = regexp.MustCompile(`^ *(\d+) +(.+)  (.+)$`)
)

// Definition is one row of a name table. Tag is empty for the plain tables.
type Definition struct {
	ID   int32
	Tag  string
	Name string
}

// Table resolves ids to names and back
type Table struct {
	name   string
	byID   map[int32]Definition
	byName map[string]Definition
}

func newTable(name string) *Table {
	return &Table{
		name:   name,
		byID:   make(map[int32]Definition),
		byName: make(map[string]Definition),
	}
}

// Add inserts or replaces def. A later duplicate name wins the name lookup.
func (t *Table) Add(def Definition) {
	t.byID[def.ID] = def
	t.byName[def.Name] = def
}

func (t *Table) Len() int {
	return len(t.byID)
}

func (t *Table) Lookup(id int32) (Definition, bool) {
	def, ok := t.byID[id]
	return def, ok
}

func (t *Table) ByName(name string) (Definition, bool) {
	def, ok := t.byName[name]
	return def, ok
}

// Name returns the name for id, or Unknown(id)
func (t *Table) Name(id int32) string {
	if def, ok := t.byID[id]; ok {
		return def.Name
	}
	return fmt.Sprintf("Unknown(%d)", id)
}

// ParsePlain reads "id name" lines. Every line must match.
func ParsePlain(r io.Reader, file string) (*Table, error) {
	t := newTable(filepath.Base(file))
	err := scanLines(r, file, 0, func(line string) (bool, error) {
		m := plainLine.FindStringSubmatch(line)
		if m == nil {
			return false, nil
		}
		id, err := parseID(m[1])
		if err != nil {
			return false, err
		}
		t.Add(Definition{ID: id, Name: m[2]})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ParseTagged reads "id tag  name" lines after a single header line
func ParseTagged(r io.Reader, file string) (*Table, error) {
	t := newTable(filepath.Base(file))
	err := scanLines(r, file, 1, func(line string) (bool, error) {
		m := taggedLine.FindStringSubmatch(line)
		if m == nil {
			return false, nil
		}
		id, err := parseID(m[1])
		if err != nil {
			return false, err
		}
		t.Add(Definition{ID: id, Tag: m[2], Name: m[3]})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func parseID(s string) (int32, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

// scanLines calls parse for every line after skip header lines. A line parse
// rejects is reported with its file and line number.
func scanLines(r io.Reader, file string, skip int, parse func(string) (bool, error)) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= skip {
			continue
		}
		line := trimCR(scanner.Text())
		ok, err := parse(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w: %v", file, lineNo, ErrMalformedLine, err)
		}
		if !ok {
			return fmt.Errorf("%s:%d: %w: %q", file, lineNo, ErrMalformedLine, line)
		}
	}
	return scanner.Err()
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}

// Definitions holds the four name tables of one game install
type Definitions struct {
	Cells    *Table
	Items    *Table
	Entities *Table
	Props    *Table
}

// Load reads cellID.txt, itemID.txt, entityID.txt and propID.txt from the
// luigiAi directory under gameDir
func Load(gameDir string) (*Definitions, error) {
	log := logger.NewLogger(coloransi.Color(coloransi.ColorTeal, coloransi.Black, "definitions"))
	dir := filepath.Join(gameDir, "luigiAi")

	d := &Definitions{}
	for _, src := range []struct {
		file  string
		parse func(io.Reader, string) (*Table, error)
		dst   **Table
	}{
		{"cellID.txt", ParsePlain, &d.Cells},
		{"itemID.txt", ParsePlain, &d.Items},
		{"entityID.txt", ParseTagged, &d.Entities},
		{"propID.txt", ParseTagged, &d.Props},
	} {
		path := filepath.Join(dir, src.file)
		table, err := parseFile(path, src.parse)
		if err != nil {
			return nil, err
		}
		*src.dst = table
		log.Debugln("Loaded", table.Len(), "definitions from", path)
	}

	d.Cells.Add(Definition{ID: UnknownCell, Name: "UNKNOWN"})
	return d, nil
}

func parseFile(path string, parse func(io.Reader, string) (*Table, error)) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open definitions: %w", err)
	}
	defer f.Close()
	return parse(f, path)
}

// Empty returns definitions with no names, so every id resolves to Unknown(id)
func Empty() *Definitions {
	d := &Definitions{
		Cells:    newTable("cellID.txt"),
		Items:    newTable("itemID.txt"),
		Entities: newTable("entityID.txt"),
		Props:    newTable("propID.txt"),
	}
	d.Cells.Add(Definition{ID: UnknownCell, Name: "UNKNOWN"})
	return d
}

func (d *Definitions) CellName(id int32) string   { return d.Cells.Name(id) }
func (d *Definitions) ItemName(id int32) string   { return d.Items.Name(id) }
func (d *Definitions) EntityName(id int32) string { return d.Entities.Name(id) }
func (d *Definitions) PropName(id int32) string   { return d.Props.Name(id) }

// ItemID returns the id of the named item
func (d *Definitions) ItemID(name string) (int32, bool) {
	def, ok := d.Items.ByName(name)
	return def.ID, ok
}
