// Package lint checks JSON locale files for duplicate keys.
//
// JSON parsers silently keep only the last occurrence of a duplicated
// key, so a duplicated translation key is invisible at runtime: the
// earlier value is just gone. This lint scans the raw token stream
// instead of decoding to a map, tracking keys per object so duplicates
// can be reported with their position.
package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DefaultLocalesGlob matches the locale files checked when no paths are
// given on the command line.
const DefaultLocalesGlob = "src/i18n/locales/*.json"

// DuplicateKey is one duplicated key within a single JSON object.
type DuplicateKey struct {
	// File is the path of the file containing the duplicate.
	File string

	// Key is the duplicated object key.
	Key string

	// Line is the line of the first repeated occurrence.
	Line int

	// Count is how many times the key appears in its object.
	Count int
}

func (d DuplicateKey) String() string {
	return fmt.Sprintf("%s:%d: duplicate key %q (%d occurrences)", d.File, d.Line, d.Key, d.Count)
}

// CheckFile scans one JSON file for duplicate keys.
//
// Parameters:
//   - path: The file to check.
//
// Returns:
//   - []DuplicateKey: All duplicates found, in document order.
//   - error: Read or parse failures. A file with duplicates but valid
//     JSON is not an error.
func CheckFile(path string) ([]DuplicateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	dupes, err := Check(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range dupes {
		dupes[i].File = path
	}
	return dupes, nil
}

// CheckGlob expands a glob pattern and checks every matching file.
//
// Returns:
//   - []DuplicateKey: Duplicates across all matched files.
//   - []string: The files that were checked.
//   - error: Glob, read, or parse failures.
func CheckGlob(pattern string) ([]DuplicateKey, []string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("bad glob %q: %w", pattern, err)
	}
	sort.Strings(files)

	var all []DuplicateKey
	for _, f := range files {
		dupes, err := CheckFile(f)
		if err != nil {
			return nil, files, err
		}
		all = append(all, dupes...)
	}
	return all, files, nil
}

// objectFrame tracks key occurrences for one JSON object being scanned.
type objectFrame struct {
	isObject  bool
	expectKey bool
	seen      map[string]*DuplicateKey
	order     []*DuplicateKey
}

// Check scans raw JSON for duplicate keys at any nesting depth.
//
// Parameters:
//   - data: The JSON document.
//
// Returns:
//   - []DuplicateKey: Duplicates in document order, File left empty.
//   - error: A parse error annotated with its line number.
func Check(data []byte) ([]DuplicateKey, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var stack []*objectFrame
	var dupes []*DuplicateKey

	top := func() *objectFrame {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid JSON at line %d: %w", lineAt(data, dec.InputOffset()), err)
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				stack = append(stack, &objectFrame{
					isObject:  true,
					expectKey: true,
					seen:      make(map[string]*DuplicateKey),
				})
			case '[':
				stack = append(stack, &objectFrame{})
			case '}', ']':
				frame := top()
				if frame != nil && frame.isObject {
					for _, d := range frame.order {
						if d.Count > 1 {
							dupes = append(dupes, d)
						}
					}
				}
				stack = stack[:len(stack)-1]
				// The closed value completes a key/value pair in an
				// enclosing object, if any.
				if parent := top(); parent != nil && parent.isObject {
					parent.expectKey = true
				}
			}
		case string:
			frame := top()
			if frame != nil && frame.isObject && frame.expectKey {
				if d, ok := frame.seen[t]; ok {
					d.Count++
					if d.Count == 2 {
						d.Line = lineAt(data, dec.InputOffset())
					}
				} else {
					d := &DuplicateKey{Key: t, Count: 1}
					frame.seen[t] = d
					frame.order = append(frame.order, d)
				}
				frame.expectKey = false
				continue
			}
			// A string value completes a pair.
			if frame != nil && frame.isObject {
				frame.expectKey = true
			}
		default:
			// Number, bool, or null value completes a pair.
			if frame := top(); frame != nil && frame.isObject {
				frame.expectKey = true
			}
		}
	}

	var out []DuplicateKey
	for _, d := range dupes {
		out = append(out, *d)
	}
	return out, nil
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return 1 + bytes.Count(data[:offset], []byte("\n"))
}
