// Package logtail reads the tail of the njtstatus log file for the in-app
// log overlay.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns the last maxLines lines of the file at path, oldest first.
// A non-positive maxLines returns every line. A missing file is not an error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var out []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		out = append(out, scanner.Text())
		if maxLines > 0 && len(out) > 2*maxLines {
			out = append(out[:0], out[len(out)-maxLines:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if maxLines > 0 && len(out) > maxLines {
		out = out[len(out)-maxLines:]
	}
	return out, nil
}

// Level extracts the level from a slog text line ("level=WARN ..."), or
// returns "" when the line carries none.
func Level(line string) string {
	for _, field := range strings.Fields(line) {
		if v, ok := strings.CutPrefix(field, "level="); ok {
			return strings.ToUpper(v)
		}
	}
	return ""
}
