// Package override maintains the local settings override file consumed
// by the downstream analyzer.
//
// The override is a line-oriented Python-syntax settings file holding one
// key this tool owns (the engine artifact path) plus arbitrary other
// lines it must never touch. Patching is modeled as a structured
// line-wise transform rather than a pattern substitution: the file is
// split into opaque lines plus recognized key-value lines, only the
// recognized target line is rewritten, and everything else is
// reserialized byte for byte. The result is written to a temporary file
// and renamed into place so a crash mid-write never exposes a truncated
// or half-patched file.
package override

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissing is returned when neither the override file nor the upstream
// template exists, leaving nothing to patch.
var ErrMissing = errors.New("override file and template both missing")

// ErrKeyNotFound is returned when the file exists but contains no line
// assigning the target key.
var ErrKeyNotFound = errors.New("target key not found")

// Patcher rewrites one key of the override file.
type Patcher struct {
	// Path is the override file. It is created on first run and
	// rewritten in place (atomically) on every later run.
	Path string

	// TemplatePath is the upstream template read when Path does not
	// exist yet. Never written.
	TemplatePath string

	// Key is the name of the assigned key to rewrite, e.g. "simc_path".
	Key string
}

// Apply points Key at value, preserving every other line byte for byte.
// The rewritten value keeps the raw-string quoting convention of the
// original value. Applying the same value twice yields the same file.
func (p *Patcher) Apply(value string) error {
	data, err := p.read()
	if err != nil {
		return err
	}

	patched, matched := patchLines(splitLines(data), p.Key, value)
	if matched == 0 {
		return fmt.Errorf("%w: %q in %s", ErrKeyNotFound, p.Key, p.sourcePath())
	}

	return writeAtomic(p.Path, bytes.Join(patched, nil))
}

// Missing reports whether err means no override or template file exists.
func (p *Patcher) Missing(err error) bool {
	return errors.Is(err, ErrMissing)
}

// read loads the override file, falling back to the template on first run.
func (p *Patcher) read() ([]byte, error) {
	data, err := os.ReadFile(p.Path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading override: %w", err)
	}
	data, err = os.ReadFile(p.TemplatePath)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return nil, fmt.Errorf("%w: %s, %s", ErrMissing, p.Path, p.TemplatePath)
}

// sourcePath names the file the patch input came from, for diagnostics.
func (p *Patcher) sourcePath() string {
	if _, err := os.Stat(p.Path); err == nil {
		return p.Path
	}
	return p.TemplatePath
}

// splitLines splits data into lines, each retaining its terminator.
// A final line without a trailing newline is kept as-is, so joining the
// slices reproduces the input exactly.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, data)
			break
		}
		lines = append(lines, data[:i+1])
		data = data[i+1:]
	}
	return lines
}

// patchLines rewrites every line assigning key and reports how many
// lines matched. Non-matching lines are passed through untouched.
func patchLines(lines [][]byte, key, value string) ([][]byte, int) {
	matched := 0
	out := make([][]byte, len(lines))
	for i, line := range lines {
		if rewritten, ok := rewriteLine(line, key, value); ok {
			out[i] = rewritten
			matched++
		} else {
			out[i] = line
		}
	}
	return out, matched
}

// rewriteLine rewrites a single `key = value` line. The portion of the
// line up to and including the equals sign is preserved verbatim; the
// value is replaced with a raw string literal wrapping the new path,
// keeping the quote character of the original value.
func rewriteLine(line []byte, key, value string) ([]byte, bool) {
	eq := bytes.IndexByte(line, '=')
	if eq < 0 {
		return nil, false
	}
	name := strings.TrimSpace(string(line[:eq]))
	if name != key {
		return nil, false
	}

	oldValue, terminator := splitTerminator(line[eq+1:])
	quote := quoteChar(strings.TrimSpace(string(oldValue)))

	var buf bytes.Buffer
	buf.Write(line[:eq+1])
	buf.WriteByte(' ')
	buf.WriteByte('r')
	buf.WriteByte(quote)
	buf.WriteString(value)
	buf.WriteByte(quote)
	buf.Write(terminator)
	return buf.Bytes(), true
}

// splitTerminator separates a line's trailing newline (with optional
// carriage return) from its content.
func splitTerminator(line []byte) (content, terminator []byte) {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n], line[n:]
}

// quoteChar returns the quote character of an existing raw-string value,
// defaulting to a single quote.
func quoteChar(old string) byte {
	if strings.HasPrefix(old, `r"`) || strings.HasPrefix(old, `"`) {
		return '"'
	}
	return '\''
}

// writeAtomic writes data to path via a temporary file in the same
// directory followed by a rename, so readers never observe a partial
// write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
