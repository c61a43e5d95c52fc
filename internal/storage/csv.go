package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type csvSink struct {
	out    io.WriteCloser
	w      *csv.Writer
	header []string
	flush  func() error
}

func newCSVSink(out io.WriteCloser) *csvSink {
	return &csvSink{out: out, w: csv.NewWriter(out)}
}

func newZstdCSVSink(f *os.File) (*csvSink, error) {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	buf := bufio.NewWriterSize(enc, 128*1024)
	s := &csvSink{out: f, w: csv.NewWriter(buf)}
	s.flush = func() error {
		if err := buf.Flush(); err != nil {
			return err
		}
		return enc.Close()
	}
	return s, nil
}

func (s *csvSink) Write(header []string, records [][]any) error {
	if s.header == nil {
		s.header = append([]string(nil), header...)
		if err := s.w.Write(s.header); err != nil {
			return err
		}
	} else if !sameHeader(s.header, header) {
		return fmt.Errorf("storage: header changed from %v to %v", s.header, header)
	}

	row := make([]string, len(header))
	for _, rec := range records {
		for i := range row {
			row[i] = ""
			if i < len(rec) {
				row[i] = FormatCell(rec[i])
			}
		}
		if err := s.w.Write(row); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *csvSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.flush != nil {
		if ferr := s.flush(); err == nil {
			err = ferr
		}
	}
	if cerr := s.out.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadCSV loads a file written by a CSV sink, decompressing .zst files.
func ReadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		defer dec.Close()
		r = dec
	}

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}
