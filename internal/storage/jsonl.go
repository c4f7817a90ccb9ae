// Package storage persists papers and computed layouts in SQLite, and reads
// and writes paper lists as JSONL.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/matsen/coviz/internal/reference"
)

// maxPaperLine bounds one JSONL record. Papers with hundreds of authors run
// to tens of kilobytes.
const maxPaperLine = 1 << 20

// ReadPapers loads a paper list, one reference per line. Blank lines are
// ignored and a missing file is an empty list.
func ReadPapers(path string) ([]reference.Reference, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening paper list: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxPaperLine)

	var papers []reference.Reference
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var p reference.Reference
		if err := json.Unmarshal(sc.Bytes(), &p); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		papers = append(papers, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading paper list %s: %w", path, err)
	}
	return papers, nil
}

// WritePapers replaces path with papers, one per line, in a form ReadPapers
// and `coviz author --papers` accept.
func WritePapers(path string, papers []reference.Reference) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating paper list: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing paper list: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, p := range papers {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding paper %s: %w", p.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing paper list: %w", err)
	}
	return nil
}
