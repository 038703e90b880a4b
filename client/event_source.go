package client

import (
	"bufio"
	"chat-rooms/domain/event"
	"io"
	"strings"
)

// Stream yields the envelopes of one open event stream.
type Stream interface {
	Next() (event.Envelope, error)
	Close() error
}

// EventSource parses a server-sent events body. Only data fields are used,
// multi-line data is joined with newlines and comments are skipped.
type EventSource struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func NewEventSource(body io.ReadCloser) *EventSource {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &EventSource{body: body, scanner: scanner}
}

// Next blocks until a complete event is read. It returns io.EOF when the
// server ends the stream.
func (s *EventSource) Next() (event.Envelope, error) {
	var data []string
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			if len(data) == 0 {
				continue
			}
			return event.Decode([]byte(strings.Join(data, "\n")))
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		if field == "data" {
			data = append(data, strings.TrimPrefix(value, " "))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (s *EventSource) Close() error {
	return s.body.Close()
}
