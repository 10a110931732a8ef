package serial

import "errors"

var ErrInvalidFormat = errors.New("serialized code must be exactly 24 numeric characters")

const (
	codeLen       = 24
	gameCodeEnd   = 4
	packNumberEnd = 11
	serialSegEnd  = 14
)

// Code is a decoded 24-digit serialized pack identifier. The layout is
// fixed-width: game code [0,4), pack number [4,11), serial segment [11,14).
// The trailing ten digits are a vendor identifier this engine ignores.
type Code struct {
	raw string
}

func ParseCode(raw string) (Code, error) {
	if len(raw) != codeLen || !isDigits(raw) {
		return Code{}, ErrInvalidFormat
	}
	return Code{raw: raw}, nil
}

func IsValidCode(raw string) bool {
	_, err := ParseCode(raw)
	return err == nil
}

func (c Code) GameCode() string {
	return c.raw[:gameCodeEnd]
}

func (c Code) PackNumber() string {
	return c.raw[gameCodeEnd:packNumberEnd]
}

func (c Code) Segment() Serial {
	// Always valid: the segment is three digits of an already-validated code.
	return Serial{value: c.raw[packNumberEnd:serialSegEnd]}
}

func (c Code) Raw() string {
	return c.raw
}
