package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadTargets reads one target per line from path. Blank lines are
// skipped; UTF-8 and UTF-16 files with a byte order mark are decoded.
func ReadTargets(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target list: %w", err)
	}
	defer file.Close()

	targets, err := ParseTargets(file)
	if err != nil {
		return nil, fmt.Errorf("read target list %s: %w", path, err)
	}
	return targets, nil
}

// ParseTargets is ReadTargets for an already open reader.
func ParseTargets(r io.Reader) ([]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var targets []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return targets, nil
}
