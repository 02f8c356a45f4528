package alphabet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Example is one line of an example file.
type Example struct {
	Line  int
	Pairs []Pair
}

// String returns the example as normalized pair symbols.
func (e Example) String() string {
	return FormatPairs(e.Pairs)
}

// Rejected is an example line that could not be used.
type Rejected struct {
	Line   int
	Text   string
	Reason string
}

// ExampleSet is the parsed content of an example file. Duplicate
// examples are kept once, in order of first appearance.
type ExampleSet struct {
	Source   string
	Examples []Example
	Rejected []Rejected
}

// LoadExamples reads an example file.
func LoadExamples(path string) (*ExampleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open examples: %w", err)
	}
	defer f.Close()

	set, err := ReadExamples(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	set.Source = path
	return set, nil
}

// ReadExamples parses examples from r. Text after '!' is a comment.
// Lines containing an invalid pair symbol are recorded in Rejected and
// skipped; only I/O failures are returned as errors.
func ReadExamples(r io.Reader) (*ExampleSet, error) {
	set := &ExampleSet{}
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		text := raw
		if i := strings.IndexByte(text, '!'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		ex, reason := parseExample(lineNo, fields)
		if reason != "" {
			set.Rejected = append(set.Rejected, Rejected{
				Line:   lineNo,
				Text:   strings.TrimSpace(raw),
				Reason: reason,
			})
			continue
		}
		key := ex.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		set.Examples = append(set.Examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func parseExample(lineNo int, fields []string) (Example, string) {
	ex := Example{Line: lineNo, Pairs: make([]Pair, 0, len(fields))}
	for _, f := range fields {
		p, err := ParsePairSymbol(f)
		if err != nil {
			return Example{}, "example contains an invalid pair symbol: " + err.Error()
		}
		if IsReserved(p.In) || IsReserved(p.Out) {
			return Example{}, fmt.Sprintf("example uses reserved symbol in %q", f)
		}
		ex.Pairs = append(ex.Pairs, p)
	}
	return ex, ""
}
