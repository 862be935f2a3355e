package parser

import (
	"bufio"
	"errors"
	"io"
)

// ReadLines calls fn with every line of r, chomped, until r is exhausted or
// fn returns an error. Lines have no length limit and a final line without a
// newline is still delivered.
func ReadLines(r io.Reader, fn func(line string) error) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if ferr := fn(Chomp(line)); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Chomp strips trailing control characters such as \r from a line of process output
func Chomp(s string) string {
	n := len(s)
	for n > 0 && s[n-1] < ' ' {
		n--
	}
	return s[:n]
}
