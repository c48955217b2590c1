package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink accepts the final record set of a scrape.
type Sink interface {
	Write(ctx context.Context, records []CanonicalRecord) error
}

// WriteJSON writes v as indented json without escaping html characters so
// the output stays readable.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func ReadJSON[T any](r io.Reader) ([]T, error) {
	var out []T
	err := json.NewDecoder(r).Decode(&out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func writeJSONFile(path string, v any) error {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = WriteJSON(f, v)
	return errors.Join(err, f.Close())
}

// JSONFile is a Sink writing the records as a json array to a file.
type JSONFile struct {
	Path string
}

func (s JSONFile) Write(ctx context.Context, records []CanonicalRecord) error {
	if records == nil {
		records = []CanonicalRecord{}
	}
	err := writeJSONFile(s.Path, records)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	return nil
}

// WriteRawFile dumps raw records so they can be normalized again offline.
func WriteRawFile(path string, raws []RawRecord) error {
	if raws == nil {
		raws = []RawRecord{}
	}
	return writeJSONFile(path, raws)
}

func ReadRawFile(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON[RawRecord](f)
}

// MultiSink writes to every sink, a failing sink does not stop the others.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, records []CanonicalRecord) error {
	var errs []error
	for _, s := range m {
		err := s.Write(ctx, records)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
