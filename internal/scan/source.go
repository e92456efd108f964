package scan

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// BarcodeSource yields decoded barcode text, one code per call. It returns
// io.EOF once no more codes will come.
type BarcodeSource interface {
	Next(ctx context.Context) (string, error)
}

type lineResult struct {
	code string
	err  error
}

// LineSource reads newline-terminated codes from r. HID scanners present
// as keyboards, so a device node or stdin both work. Blank lines are
// skipped.
type LineSource struct {
	lines chan lineResult
}

func NewLineSource(r io.Reader) *LineSource {
	s := &LineSource{lines: make(chan lineResult)}
	go s.read(r)
	return s
}

func (s *LineSource) read(r io.Reader) {
	defer close(s.lines)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		code := strings.TrimSpace(strings.TrimRight(sc.Text(), "\r"))
		if code == "" {
			continue
		}
		s.lines <- lineResult{code: code}
	}
	if err := sc.Err(); err != nil {
		s.lines <- lineResult{err: err}
	}
}

func (s *LineSource) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return res.code, res.err
	}
}

// ChanSource adapts a channel of codes, e.g. from a scanner SDK callback.
// Closing the channel ends the source.
type ChanSource <-chan string

func (c ChanSource) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case code, ok := <-c:
		if !ok {
			return "", io.EOF
		}
		return code, nil
	}
}
