package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/streampf/mem/prefetch"
)

// A TraceReader reads accesses from a text trace. Each line has the form
// "<pc> <address> <type>", where the numbers can be decimal or prefixed with
// 0x, and the type is one of LD, ST, IFETCH, ATOMIC, RMW_Read and RMW_Write.
// The type can be omitted, in which case the access is a load. Empty lines
// and lines starting with # are skipped.
type TraceReader struct {
	scanner *bufio.Scanner
	lineNum int
	err     error
}

// NewTraceReader creates a TraceReader.
func NewTraceReader(r io.Reader) *TraceReader {
	return &TraceReader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next access in the trace. It returns false at the end of
// the trace or at the first malformed line. Err tells the two cases apart.
func (t *TraceReader) Next() (Access, bool) {
	if t.err != nil {
		return Access{}, false
	}

	for t.scanner.Scan() {
		t.lineNum++

		line := strings.TrimSpace(t.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		a, err := parseTraceLine(line)
		if err != nil {
			t.err = fmt.Errorf("trace line %d: %w", t.lineNum, err)
			return Access{}, false
		}

		return a, true
	}

	if err := t.scanner.Err(); err != nil {
		t.err = fmt.Errorf("reading trace: %w", err)
	}

	return Access{}, false
}

// Err returns the error that stops the reader, if any.
func (t *TraceReader) Err() error {
	return t.err
}

func parseTraceLine(line string) (Access, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return Access{}, fmt.Errorf("expected 2 or 3 fields, got %d",
			len(fields))
	}

	pc, err := strconv.ParseUint(fields[0], 0, 64)
	if err != nil {
		return Access{}, fmt.Errorf("parsing pc: %w", err)
	}

	addr, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return Access{}, fmt.Errorf("parsing address: %w", err)
	}

	t := prefetch.RequestTypeLoad
	if len(fields) == 3 {
		t, err = prefetch.ParseRequestType(fields[2])
		if err != nil {
			return Access{}, err
		}
	}

	return Access{PC: pc, Address: addr, Type: t}, nil
}
