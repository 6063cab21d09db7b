package datasource

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// DefaultMaxLineSize bounds a single JSONL line (10MB).
const DefaultMaxLineSize = 1024 * 1024 * 10

// Stdin is the path that reads records from standard input.
const Stdin = "-"

// JSONL is a file holding one JSON record per line.
type JSONL struct {
	path    string
	log     logrus.FieldLogger
	maxLine int
	stdin   io.Reader
}

// NewJSONL returns a source for path. The path "-" reads standard input
// and cannot be written back.
func NewJSONL(path string, log logrus.FieldLogger) *JSONL {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &JSONL{path: path, log: log, maxLine: DefaultMaxLineSize, stdin: os.Stdin}
}

func (j *JSONL) Path() string { return j.path }

func (j *JSONL) Close() error { return nil }

func (j *JSONL) warn(msg string) {
	j.log.WithField("path", j.path).Warn(msg)
}

// Load reads every well-formed record. Malformed and invalid lines are
// skipped with a warning.
func (j *JSONL) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if j.path == Stdin {
		return ParseRecords(j.stdin, j.maxLine, j.warn)
	}
	f, err := os.Open(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", j.path, ErrNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", j.path, err)
	}
	defer f.Close()
	return ParseRecords(f, j.maxLine, j.warn)
}

// ParseRecords reads JSONL records from r. Lines longer than maxLine
// bytes are skipped; maxLine <= 0 means DefaultMaxLineSize.
func ParseRecords(r io.Reader, maxLine int, warn func(string)) ([]Record, error) {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineSize
	}
	if warn == nil {
		warn = func(string) {}
	}
	reader := bufio.NewReaderSize(r, maxLine)

	var records []Record
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading records at line %d: %w", lineNum, err)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxLine))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, fmt.Errorf("skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		if lineNum == 1 {
			line = bytes.TrimPrefix(line, []byte("\xef\xbb\xbf"))
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		if err := rec.Validate(); err != nil {
			warn(fmt.Sprintf("skipping invalid record on line %d: %v", lineNum, err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes records to w, one per line.
func WriteRecords(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %q: %w", r.ID, err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Delete rewrites the file without the deleted records. The new content
// is written to a sibling file and renamed over the old one.
func (j *JSONL) Delete(ctx context.Context, ids []string) error {
	if j.path == Stdin {
		return ErrReadOnly
	}
	if len(ids) == 0 {
		return nil
	}
	records, err := j.Load(ctx)
	if err != nil {
		return err
	}
	kept, err := prune(records, ids)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(j.path), "."+filepath.Base(j.path)+".*")
	if err != nil {
		return fmt.Errorf("rewriting %s: %w", j.path, err)
	}
	defer os.Remove(tmp.Name())
	if info, err := os.Stat(j.path); err == nil {
		tmp.Chmod(info.Mode().Perm())
	}
	if err := WriteRecords(tmp, kept); err != nil {
		tmp.Close()
		return fmt.Errorf("rewriting %s: %w", j.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("rewriting %s: %w", j.path, err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		return fmt.Errorf("rewriting %s: %w", j.path, err)
	}
	j.log.WithFields(logrus.Fields{"path": j.path, "removed": len(records) - len(kept)}).Debug("records deleted")
	return nil
}
