package codec

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ssargent/rollbook/pkg/record"
)

// Mode selects how a line is split into fields on decode
type Mode string

const (
	// ModeNaive splits on every comma and never un-quotes a field
	ModeNaive Mode = "naive"
	// ModeQuoted honours the double-quote escaping written by the encoder
	ModeQuoted Mode = "quoted"
)

// fieldsPerLine is the number of fields in a persisted record line
const fieldsPerLine = 3

// MalformedRecordLine is wrapped by every LineError
var MalformedRecordLine = errors.New("malformed record line")

// LineError describes a persisted line that was skipped during decode
type LineError struct {
	Line   int    // 1-based line number
	Text   string // the trimmed line
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *LineError) Unwrap() error {
	return MalformedRecordLine
}

// Result holds the outcome of decoding a whole stream
type Result struct {
	Records   []record.Record
	Skipped   []*LineError
	LinesRead int
}

// LineCodec converts records to and from the line-oriented text format
type LineCodec struct {
	mode   Mode
	logger *slog.Logger
}

// ParseMode validates a decoder mode name. An empty name selects ModeNaive.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeNaive:
		return ModeNaive, nil
	case ModeQuoted:
		return ModeQuoted, nil
	default:
		return "", fmt.Errorf("unknown decoder %q (want %q or %q)", name, ModeNaive, ModeQuoted)
	}
}

// NewLineCodec creates a codec decoding in the given mode. Skipped lines are
// reported as warnings on logger; a nil logger uses slog.Default().
func NewLineCodec(mode Mode, logger *slog.Logger) *LineCodec {
	if mode == "" {
		mode = ModeNaive
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LineCodec{mode: mode, logger: logger}
}

// Mode returns the decode mode of the codec
func (c *LineCodec) Mode() Mode {
	return c.mode
}

// EncodeLine renders one record without the trailing newline.
// Format: roll,name,marks with name quoted when it holds a comma or a quote.
func (c *LineCodec) EncodeLine(rec record.Record) string {
	name := rec.Name
	if strings.ContainsAny(name, `,"`) {
		name = `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return strconv.Itoa(rec.Roll) + "," + name + "," + record.FormatMarks(rec.Marks)
}

// Encode writes every record, one per line, in the order given. A name
// spanning more than one line cannot be represented and fails the whole
// encode before anything is written.
func (c *LineCodec) Encode(w io.Writer, recs []record.Record) error {
	for _, rec := range recs {
		if strings.ContainsAny(rec.Name, "\r\n") {
			return fmt.Errorf("%w: roll number %d: name must be a single line", record.ErrInvalidInput, rec.Roll)
		}
	}

	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		if _, err := bw.WriteString(c.EncodeLine(rec) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeLine parses a single trimmed, non-blank line
func (c *LineCodec) DecodeLine(line string) (record.Record, error) {
	fields, err := c.split(line)
	if err != nil {
		return record.Record{}, err
	}
	if len(fields) != fieldsPerLine {
		return record.Record{}, fmt.Errorf("expected %d fields, got %d", fieldsPerLine, len(fields))
	}

	roll, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return record.Record{}, fmt.Errorf("invalid roll number %q", fields[0])
	}

	name := strings.TrimSpace(fields[1])
	if name == "" {
		return record.Record{}, errors.New("empty name")
	}

	marks, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return record.Record{}, fmt.Errorf("invalid marks %q", fields[2])
	}
	if record.CheckMarks(marks) != nil {
		return record.Record{}, fmt.Errorf("non-finite marks %q", fields[2])
	}

	return record.Record{Roll: roll, Name: name, Marks: marks}, nil
}

// Decode reads records line by line. Blank lines are ignored and malformed
// lines are skipped with a warning; only a read failure is returned as an
// error.
func (c *LineCodec) Decode(r io.Reader) (*Result, error) {
	res := &Result{}
	br := bufio.NewReader(r)
	lineNo := 0

	for {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return res, fmt.Errorf("failed to read record line %d: %w", lineNo+1, readErr)
		}
		if readErr == io.EOF && raw == "" {
			break
		}
		lineNo++
		res.LinesRead = lineNo

		line := strings.TrimSpace(raw)
		if line != "" {
			rec, err := c.DecodeLine(line)
			if err != nil {
				lineErr := &LineError{Line: lineNo, Text: line, Reason: err.Error()}
				res.Skipped = append(res.Skipped, lineErr)
				c.logger.Warn("skipping record line",
					"line", lineNo, "reason", lineErr.Reason, "text", line)
			} else {
				res.Records = append(res.Records, rec)
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	return res, nil
}

func (c *LineCodec) split(line string) ([]string, error) {
	if c.mode != ModeQuoted {
		return strings.Split(line, ","), nil
	}

	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	fields, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("unparseable quoting: %v", err)
	}
	return fields, nil
}
