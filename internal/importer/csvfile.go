package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	ColEstudianteID = "estudiante_id"
	ColGrupoCursoID = "grupo_curso_id"
)

// RawRow is one decoded CSV line, keyed by header column name.
type RawRow struct {
	Line   int
	Fields map[string]string
}

func (r RawRow) Get(name string) string {
	return r.Fields[name]
}

// RowReader is a single-pass reader over one CSV file. It is not restartable.
type RowReader struct {
	r       *csv.Reader
	closeFn func() error
	idx     map[string]int
}

// OpenRows opens path, strips a UTF-8 BOM if present and validates that the
// header carries both required identifier columns. Extra columns are
// tolerated.
func OpenRows(path string) (*RowReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	stripUTF8BOM(br)

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := requireHeader(header, []string{ColEstudianteID, ColGrupoCursoID}); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &RowReader{
		r:       r,
		closeFn: f.Close,
		idx:     headerIndex(header),
	}, nil
}

// Next returns the next data row, or io.EOF after the last one. Line is the
// physical line the record starts on, so it stays accurate across blank
// lines and quoted multi-line fields.
func (rr *RowReader) Next() (RawRow, error) {
	for {
		rec, err := rr.r.Read()
		if err != nil {
			if err == io.EOF {
				return RawRow{}, io.EOF
			}
			return RawRow{}, err
		}
		if len(rec) == 0 {
			continue
		}
		line, _ := rr.r.FieldPos(0)

		fields := make(map[string]string, len(rr.idx))
		for name, i := range rr.idx {
			if i < len(rec) {
				fields[name] = rec[i]
			}
		}
		return RawRow{Line: line, Fields: fields}, nil
	}
}

func (rr *RowReader) Close() error {
	return rr.closeFn()
}

func stripUTF8BOM(r *bufio.Reader) {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	for i := range h {
		h[i] = strings.TrimSpace(h[i])
		if !utf8.ValidString(h[i]) {
			return nil, fmt.Errorf("invalid header encoding")
		}
	}
	return h, nil
}

func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		m[name] = i
	}
	return m
}

func requireHeader(header []string, required []string) error {
	hset := make(map[string]struct{}, len(header))
	for _, h := range header {
		hset[h] = struct{}{}
	}
	for _, req := range required {
		if _, ok := hset[req]; !ok {
			return fmt.Errorf("missing required header column: %s", req)
		}
	}
	return nil
}
