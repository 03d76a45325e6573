package filter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/robotwatch/pkg/logger"
)

const (
	readBufferSize = 64 * 1024
	maxLineSize    = 1 << 20
)

// RunStats summarizes a Run.
type RunStats struct {
	Events  int // lines read
	Invalid int // lines passed through because they were not JSON objects or were too long
	Failed  int // events whose lookup failed
}

// Run reads newline-delimited JSON events from r, applies the filter and
// writes every event to w in input order. Lines that are not JSON objects,
// lines longer than 1 MiB and events whose lookup fails are written
// unchanged. Everything processed before Run returns, including on
// cancellation, reaches w.
func (f *Filter) Run(ctx context.Context, r io.Reader, w io.Writer) (st RunStats, err error) {
	br := bufio.NewReaderSize(r, readBufferSize)
	bw := bufio.NewWriter(w)
	defer func() {
		if ferr := bw.Flush(); ferr != nil && !errors.Is(err, ferr) {
			err = errors.Join(err, ferr)
		}
	}()

	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	var buf []byte
	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		raw, tooLong, err := readLine(br, bw, buf[:0])
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		if err != nil {
			return st, err
		}
		if tooLong {
			st.Events++
			st.Invalid++
			f.logger.WarnContext(ctx, "passing through oversized event", slog.Int("line", st.Events), slog.Int("max_bytes", maxLineSize))
			continue
		}
		buf = raw

		line := trimEOL(raw)
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		st.Events++

		ev, err := decodeEvent(line)
		if err != nil {
			st.Invalid++
			f.logger.WarnContext(ctx, "passing through invalid event", slog.Int("line", st.Events), logger.Error(err))
			if _, err := bw.Write(line); err != nil {
				return st, err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return st, err
			}
			continue
		}

		if err := f.Apply(ctx, ev); err != nil {
			st.Failed++
		}
		if err := enc.Encode(ev); err != nil {
			return st, fmt.Errorf("encode event %d: %w", st.Events, err)
		}
	}
}

// readLine appends the next line of br, terminator included, to buf. Once a
// line outgrows maxLineSize it is copied to spill as-is, newline terminated,
// and reported as tooLong with a nil line. io.EOF means no data was left.
func readLine(br *bufio.Reader, spill io.Writer, buf []byte) (line []byte, tooLong bool, err error) {
	for {
		chunk, rerr := br.ReadSlice('\n')
		if !tooLong && len(buf)+len(chunk) > maxLineSize {
			tooLong = true
			if _, err := spill.Write(buf); err != nil {
				return nil, true, err
			}
		}
		if tooLong {
			if _, err := spill.Write(chunk); err != nil {
				return nil, true, err
			}
		} else {
			buf = append(buf, chunk...)
		}

		switch {
		case rerr == nil:
			if tooLong {
				return nil, true, nil
			}
			return buf, false, nil
		case errors.Is(rerr, bufio.ErrBufferFull):
			continue
		case errors.Is(rerr, io.EOF):
			if tooLong {
				_, err := spill.Write([]byte{'\n'})
				return nil, true, err
			}
			if len(buf) == 0 {
				return nil, false, io.EOF
			}
			return buf, false, nil
		default:
			return nil, tooLong, rerr
		}
	}
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte{'\n'})
	return bytes.TrimSuffix(b, []byte{'\r'})
}

func decodeEvent(line []byte) (MapEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var ev MapEvent
	if err := dec.Decode(&ev); err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("not a json object")
	}
	return ev, nil
}
