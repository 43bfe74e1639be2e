package genai

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// eventReader splits a text/event-stream body into event payloads. Only
// data lines matter here; event names, ids, retry hints and comments are
// dropped. Multiple data lines in one event are joined with "\n".
type eventReader struct {
	reader *bufio.Reader
	data   string
	err    error
}

func newEventReader(r io.Reader) *eventReader {
	return &eventReader{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Next advances to the next event with a payload. It returns false at the
// end of the body or on a read error; Err tells the two apart.
func (e *eventReader) Next() bool {
	if e.err != nil {
		return false
	}

	var lines []string
	for {
		line, err := e.reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if value, ok := strings.CutPrefix(line, "data:"); ok {
			lines = append(lines, strings.TrimPrefix(value, " "))
		}

		if err != nil {
			e.err = err
			if len(lines) > 0 {
				e.data = strings.Join(lines, "\n")
				return true
			}
			return false
		}

		if line == "" && len(lines) > 0 {
			e.data = strings.Join(lines, "\n")
			return true
		}
	}
}

func (e *eventReader) Data() string {
	return e.data
}

func (e *eventReader) Err() error {
	if errors.Is(e.err, io.EOF) {
		return nil
	}
	return e.err
}
