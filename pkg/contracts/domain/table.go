package domain

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrUnknownColumn is returned when a column lookup fails
var ErrUnknownColumn = errors.New("unknown column")

// ErrRowWidth is returned when a row does not match the table width
var ErrRowWidth = errors.New("row width mismatch")

// Table is an ordered collection of uniformly shaped records.
// Columns are addressed by name; rows keep insertion order.
//
// Each column is a gota series whose type is the promoted kind of its
// present values: Int and Float mix into Float, any other mix is String.
// Missing cells are NA elements.
type Table struct {
	columns []string
	index   map[string]int
	series  []series.Series
	nrows   int
}

// NewTable creates an empty table with the given column names
func NewTable(columns ...string) (*Table, error) {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
		series:  make([]series.Series, 0, len(columns)),
	}
	for _, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("column name cannot be empty")
		}
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
		t.series = append(t.series, newSeries(c, nil, series.String))
	}
	return t, nil
}

// NewTableFromFrame wraps a gota DataFrame. The frame's column types are
// kept as they are.
func NewTableFromFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	t, err := NewTable(df.Names()...)
	if err != nil {
		return nil, err
	}
	t.nrows = df.Nrow()
	for i, name := range t.columns {
		t.series[i] = df.Col(name)
	}
	return t, nil
}

// MustTable builds a table from Go scalars and panics on malformed input.
// Intended for fixtures and literals.
func MustTable(columns []string, rows ...[]any) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	cols := make([][]Value, len(columns))
	for ri, r := range rows {
		if len(r) != len(columns) {
			panic(fmt.Errorf("%w: row %d has %d values, want %d", ErrRowWidth, ri, len(r), len(columns)))
		}
		for ci, x := range r {
			cols[ci] = append(cols[ci], ValueOf(x))
		}
	}
	t.nrows = len(rows)
	for ci, name := range t.columns {
		t.series[ci] = newSeries(name, cols[ci], series.String)
	}
	return t
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int { return t.nrows }

// Width returns the number of columns
func (t *Table) Width() int { return len(t.columns) }

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a column
func (t *Table) ColumnIndex(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return i, nil
}

// Series returns a copy of the gota series backing a column
func (t *Table) Series(name string) (series.Series, error) {
	ci, err := t.ColumnIndex(name)
	if err != nil {
		return series.Series{}, err
	}
	return t.series[ci].Copy(), nil
}

// Column returns a copy of a column's values
func (t *Table) Column(name string) ([]Value, error) {
	ci, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	return seriesValues(t.series[ci]), nil
}

// Row returns a copy of row i
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.series))
	for ci, s := range t.series {
		out[ci] = elemValue(s.Elem(i))
	}
	return out
}

// At returns the value at row i of the named column
func (t *Table) At(i int, column string) (Value, error) {
	ci, err := t.ColumnIndex(column)
	if err != nil {
		return Null(), err
	}
	return elemValue(t.series[ci].Elem(i)), nil
}

// Set replaces the value at row i of the named column. The column is
// retyped when v does not fit its current type.
func (t *Table) Set(i int, column string, v Value) error {
	ci, err := t.ColumnIndex(column)
	if err != nil {
		return err
	}
	if i < 0 || i >= t.nrows {
		return fmt.Errorf("row %d out of range [0, %d)", i, t.nrows)
	}
	vals := seriesValues(t.series[ci])
	vals[i] = v
	t.series[ci] = newSeries(column, vals, t.series[ci].Type())
	return nil
}

// AppendRow adds a row. The row must have one value per column.
func (t *Table) AppendRow(vals ...Value) error {
	if len(vals) != len(t.columns) {
		return fmt.Errorf("%w: got %d values, want %d", ErrRowWidth, len(vals), len(t.columns))
	}
	for ci, name := range t.columns {
		col := append(seriesValues(t.series[ci]), vals[ci])
		t.series[ci] = newSeries(name, col, t.series[ci].Type())
	}
	t.nrows++
	return nil
}

// SetColumn replaces an existing column or appends a new one
func (t *Table) SetColumn(name string, vals []Value) error {
	if len(vals) != t.nrows {
		return fmt.Errorf("%w: column %s has %d values, table has %d rows", ErrRowWidth, name, len(vals), t.nrows)
	}
	if ci, ok := t.index[name]; ok {
		t.series[ci] = newSeries(name, vals, t.series[ci].Type())
		return nil
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	t.series = append(t.series, newSeries(name, vals, series.String))
	return nil
}

// DropColumn removes a column in place
func (t *Table) DropColumn(name string) error {
	ci, err := t.ColumnIndex(name)
	if err != nil {
		return err
	}
	t.columns = append(t.columns[:ci:ci], t.columns[ci+1:]...)
	t.series = append(t.series[:ci:ci], t.series[ci+1:]...)
	t.reindex()
	return nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	c := &Table{
		columns: t.Columns(),
		series:  make([]series.Series, len(t.series)),
		nrows:   t.nrows,
	}
	for i, s := range t.series {
		c.series[i] = s.Copy()
	}
	c.reindex()
	return c
}

// SelectRows returns a new table holding copies of the given rows in the
// given order. Indices may repeat.
func (t *Table) SelectRows(indices []int) *Table {
	c := &Table{
		columns: t.Columns(),
		series:  make([]series.Series, len(t.series)),
		nrows:   len(indices),
	}
	for ci, s := range t.series {
		vals := make([]Value, len(indices))
		for k, i := range indices {
			vals[k] = elemValue(s.Elem(i))
		}
		c.series[ci] = newSeries(c.columns[ci], vals, s.Type())
	}
	c.reindex()
	return c
}

// ColumnKind reports the type of a column. All-null columns report
// KindNull; mixed numeric columns report KindFloat; any other mix
// reports KindString.
func (t *Table) ColumnKind(name string) (Kind, error) {
	ci, err := t.ColumnIndex(name)
	if err != nil {
		return KindNull, err
	}
	s := t.series[ci]
	present := false
	for i := 0; i < s.Len(); i++ {
		if !s.Elem(i).IsNA() {
			present = true
			break
		}
	}
	if !present {
		return KindNull, nil
	}
	return kindOf(s.Type()), nil
}

// IsNumeric reports whether every non-null value of the column is numeric
// and at least one value is present
func (t *Table) IsNumeric(name string) bool {
	k, err := t.ColumnKind(name)
	return err == nil && (k == KindInt || k == KindFloat)
}

// Records returns the rows rendered as strings, header excluded
func (t *Table) Records() [][]string {
	out := make([][]string, t.nrows)
	for i := range out {
		rec := make([]string, len(t.series))
		for j, s := range t.series {
			rec[j] = elemValue(s.Elem(i)).String()
		}
		out[i] = rec
	}
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		t.index[c] = i
	}
}

// newSeries builds a gota series typed after the promoted kind of vals.
// fallback is used when no value is present.
func newSeries(name string, vals []Value, fallback series.Type) series.Series {
	typ := fallback
	if k := PromoteKinds(vals); k != KindNull {
		typ = SeriesType(k)
	}
	elems := make([]interface{}, len(vals))
	for i, v := range vals {
		elems[i] = elemInput(v, typ)
	}
	return series.New(elems, typ, name)
}

// PromoteKinds returns the common kind of the non-null values: Int and
// Float promote to Float, any other mix is String, none at all is Null.
func PromoteKinds(vals []Value) Kind {
	kind := KindNull
	for _, v := range vals {
		switch {
		case v.IsNull():
		case kind == KindNull:
			kind = v.Kind()
		case kind == v.Kind():
		case (kind == KindInt && v.Kind() == KindFloat) || (kind == KindFloat && v.Kind() == KindInt):
			kind = KindFloat
		default:
			return KindString
		}
	}
	return kind
}

// SeriesType maps a kind onto the gota element type storing it
func SeriesType(k Kind) series.Type {
	switch k {
	case KindInt:
		return series.Int
	case KindFloat:
		return series.Float
	case KindBool:
		return series.Bool
	default:
		return series.String
	}
}

func kindOf(t series.Type) Kind {
	switch t {
	case series.Int:
		return KindInt
	case series.Float:
		return KindFloat
	case series.Bool:
		return KindBool
	default:
		return KindString
	}
}

// elemInput converts v into the Go value a gota element of type typ
// accepts. nil sets the element to NA.
func elemInput(v Value, typ series.Type) interface{} {
	if v.IsNull() {
		return nil
	}
	switch typ {
	case series.Int:
		i, _ := v.Int64()
		return int(i)
	case series.Float:
		f, _ := v.Float64()
		return f
	case series.Bool:
		b, _ := v.BoolValue()
		return b
	default:
		return v.String()
	}
}

func elemValue(e series.Element) Value {
	if e.IsNA() {
		return Null()
	}
	switch e.Type() {
	case series.Int:
		i, err := e.Int()
		if err != nil {
			return Null()
		}
		return Int(int64(i))
	case series.Float:
		return Float(e.Float())
	case series.Bool:
		b, err := e.Bool()
		if err != nil {
			return Null()
		}
		return Bool(b)
	default:
		return String(e.String())
	}
}

func seriesValues(s series.Series) []Value {
	out := make([]Value, s.Len())
	for i := range out {
		out[i] = elemValue(s.Elem(i))
	}
	return out
}
