// Package record defines the student record held by the roll book and the
// parsing rules applied to user-supplied text before it reaches the store.
package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned when user-supplied text cannot be turned into a
// roll number, a name or a marks value.
var ErrInvalidInput = errors.New("invalid input")

// Record is a single student entry. Roll identifies the record and never
// changes once the record is created; Name and Marks may be updated.
type Record struct {
	Roll  int     `json:"roll"`
	Name  string  `json:"name"`
	Marks float64 `json:"marks"`
}

// New builds a record, trimming the name. An empty or multi-line name and
// non-finite marks are rejected.
func New(roll int, name string, marks float64) (Record, error) {
	name, err := ParseName(name)
	if err != nil {
		return Record{}, err
	}
	if err := CheckMarks(marks); err != nil {
		return Record{}, err
	}
	return Record{Roll: roll, Name: name, Marks: marks}, nil
}

// ParseRoll parses a roll number typed by a user.
func ParseRoll(text string) (int, error) {
	roll, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: roll number %q is not an integer", ErrInvalidInput, text)
	}
	return roll, nil
}

// ParseMarks parses a marks value typed by a user. No range is enforced,
// but NaN and infinities are rejected.
func ParseMarks(text string) (float64, error) {
	marks, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: marks %q is not a number", ErrInvalidInput, text)
	}
	if err := CheckMarks(marks); err != nil {
		return 0, err
	}
	return marks, nil
}

// CheckMarks rejects NaN and infinite marks
func CheckMarks(marks float64) error {
	if math.IsNaN(marks) || math.IsInf(marks, 0) {
		return fmt.Errorf("%w: marks must be a finite number", ErrInvalidInput)
	}
	return nil
}

// ParseName trims a name and rejects it if nothing is left or if it spans
// more than one line.
func ParseName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.ContainsAny(name, "\r\n") {
		return "", fmt.Errorf("%w: name must be a single line", ErrInvalidInput)
	}
	return name, nil
}

// String renders the record the way the console listing prints it.
func (r Record) String() string {
	return fmt.Sprintf("Roll Number: %d, Name: %s, Marks: %s", r.Roll, r.Name, FormatMarks(r.Marks))
}

// FormatMarks renders marks using the shortest text that parses back to the
// same value.
func FormatMarks(marks float64) string {
	return strconv.FormatFloat(marks, 'g', -1, 64)
}
