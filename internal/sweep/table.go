package sweep

import (
	"github.com/san-kum/vsrbench/internal/dynamo"
)

// Row is an ordered record: static keys first, then episode fields.
type Row []dynamo.Field

func (r Row) Keys() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Name
	}
	return out
}

func (r Row) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Table is a header plus records whose cells line up with it. Missing cells
// are nil.
type Table struct {
	Header  []string
	Records [][]any
}

// NewTable takes its header from the first row. Later rows are matched by
// name; keys absent from the header are dropped.
func NewTable(rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, dynamo.ErrNoResults
	}
	header := rows[0].Keys()
	index := make(map[string]int, len(header))
	for i, k := range header {
		index[k] = i
	}

	t := &Table{Header: header, Records: make([][]any, len(rows))}
	for r, row := range rows {
		rec := make([]any, len(header))
		for _, f := range row {
			if i, ok := index[f.Name]; ok {
				rec[i] = f.Value
			}
		}
		t.Records[r] = rec
	}
	return t, nil
}

// Frame is a set of named columns that may grow at different rates.
type Frame struct {
	names []string
	cols  map[string][]any
	rows  int
}

func NewFrame() *Frame {
	return &Frame{cols: make(map[string][]any)}
}

// AppendSeries adds every sample of s as a row, with static repeated on each.
// Columns seen for the first time are padded with nil for earlier rows.
func (f *Frame) AppendSeries(s *dynamo.Series, static []dynamo.Field) {
	n := s.Len()
	if n == 0 {
		return
	}
	seen := make(map[string]bool)
	for _, name := range s.Names() {
		seen[name] = true
		col := s.Column(name)
		vals := make([]any, n)
		for i := range vals {
			if i < len(col) {
				vals[i] = col[i]
			}
		}
		f.extend(name, vals)
	}
	for _, k := range static {
		if seen[k.Name] {
			continue
		}
		seen[k.Name] = true
		vals := make([]any, n)
		for i := range vals {
			vals[i] = k.Value
		}
		f.extend(k.Name, vals)
	}
	f.rows += n
	for _, name := range f.names {
		if len(f.cols[name]) < f.rows {
			f.cols[name] = append(f.cols[name], make([]any, f.rows-len(f.cols[name]))...)
		}
	}
}

func (f *Frame) extend(name string, vals []any) {
	col, ok := f.cols[name]
	if !ok {
		f.names = append(f.names, name)
		col = make([]any, f.rows, f.rows+len(vals))
	}
	f.cols[name] = append(col, vals...)
}

func (f *Frame) Len() int { return f.rows }

// Table returns the frame row by row, or ErrNoResults when it is empty.
func (f *Frame) Table() (*Table, error) {
	if f.rows == 0 {
		return nil, dynamo.ErrNoResults
	}
	t := &Table{Header: append([]string(nil), f.names...), Records: make([][]any, f.rows)}
	for r := 0; r < f.rows; r++ {
		rec := make([]any, len(f.names))
		for c, name := range f.names {
			rec[c] = f.cols[name][r]
		}
		t.Records[r] = rec
	}
	return t, nil
}
