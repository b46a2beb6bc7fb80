// Package codec converts student records to and from the roll book's
// line-oriented text format.
//
// # Line Format
//
// Every record occupies one newline-terminated line:
//
//	<roll>,<name>,<marks>
//
// Fields:
//   - roll: base-10 integer
//   - name: free text; wrapped in double quotes, with inner quotes doubled,
//     when it contains a comma or a double quote
//   - marks: floating-point value in Go's shortest round-trip form
//
// Example:
//
//	101,"Smith, John",87.5
//
// The encoder always writes the whole store; callers replace the backing
// file with the output rather than appending to it.
//
// # Decoding
//
// Two decode modes exist:
//   - ModeNaive splits a line on every comma and never removes quoting. This
//     is the historical behaviour and the default. A name holding a comma
//     produces too many fields and the line is skipped; a name holding only
//     quotes is restored with its escaping still in place.
//   - ModeQuoted splits with CSV quoting rules, so anything the encoder wrote
//     is restored exactly.
//
// Both modes trim each line, ignore blank lines, and skip any line that does
// not have exactly three fields, has a non-integer roll, an empty name, or
// non-numeric marks. Skipped lines are logged as warnings and returned in
// Result.Skipped as *LineError values wrapping MalformedRecordLine. A bad
// line never aborts the decode; only a failing reader does.
//
// # Usage
//
//	c := codec.NewLineCodec(codec.ModeQuoted, logger)
//
//	var buf bytes.Buffer
//	if err := c.Encode(&buf, records); err != nil {
//	    return err
//	}
//
//	res, err := c.Decode(&buf)
//	if err != nil {
//	    return err
//	}
//	for _, skipped := range res.Skipped {
//	    fmt.Println(skipped)
//	}
//
// # Thread Safety
//
// LineCodec holds no mutable state and is safe for concurrent use.
package codec
