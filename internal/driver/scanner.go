package driver

import (
	"bufio"
	"io"
	"strings"
)

// Statement is the text of one statement and the lines it spans.
type Statement struct {
	// Text keeps the statement's line structure, so parser positions
	// can be mapped back to the file.
	Text      string
	FirstLine int
	LastLine  int

	// Unterminated is set for text left over at the end of the file
	// without a closing ';'.
	Unterminated bool
}

// Display returns the statement on a single line.
func (s Statement) Display() string {
	return strings.Join(strings.Fields(s.Text), " ")
}

type scanState int

const (
	scanning scanState = iota
	accumulating
)

// Scan splits a rule file into statements. A statement ends at a line
// whose text, after removing the comment, ends in ';'. A line containing
// only STOP starts a region that is skipped up to a line containing only
// START.
func Scan(r io.Reader) ([]Statement, error) {
	var (
		out   []Statement
		state = scanning
		skip  bool
		lines []string
		first int
		blank int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(scanner.Text()))

		use := false
		switch {
		case line == "START":
			skip = false
		case line == "STOP":
			skip = true
		case skip, line == "":
		default:
			use = true
		}
		if !use {
			// unused lines inside a statement keep their place
			if state == accumulating {
				blank++
			}
			continue
		}

		if state == scanning {
			first = lineNo
			lines = nil
			blank = 0
			state = accumulating
		}
		for ; blank > 0; blank-- {
			lines = append(lines, "")
		}
		lines = append(lines, line)

		if strings.HasSuffix(line, ";") {
			out = append(out, Statement{
				Text:      strings.Join(lines, "\n"),
				FirstLine: first,
				LastLine:  lineNo,
			})
			state = scanning
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state == accumulating {
		out = append(out, Statement{
			Text:         strings.Join(lines, "\n"),
			FirstLine:    first,
			LastLine:     lineNo - blank,
			Unterminated: true,
		})
	}
	return out, nil
}

// stripComment removes everything from the first unescaped '!'.
func stripComment(line string) string {
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '%':
			escaped = true
		case r == '!':
			return line[:i]
		}
	}
	return line
}
