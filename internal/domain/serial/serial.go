package serial

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidSerial = errors.New("serial must be a 3-digit numeric string")
)

const serialLen = 3

// Serial is the 3-digit zero-padded position of a ticket within a pack.
// It is stored and compared as a string so leading zeros survive round-trips.
type Serial struct {
	value string
}

func NewSerial(value string) (Serial, error) {
	if len(value) != serialLen || !isDigits(value) {
		return Serial{}, ErrInvalidSerial
	}
	return Serial{value: value}, nil
}

func SerialFromInt(n int) (Serial, error) {
	if n < 0 || n > 999 {
		return Serial{}, ErrInvalidSerial
	}
	return Serial{value: fmt.Sprintf("%03d", n)}, nil
}

// MustSerial panics on invalid input. Test fixtures only.
func MustSerial(value string) Serial {
	s, err := NewSerial(value)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Serial) String() string {
	return s.value
}

func (s Serial) Int() int {
	n, _ := strconv.Atoi(s.value)
	return n
}

func (s Serial) IsZero() bool {
	return s.value == ""
}

func (s Serial) Before(other Serial) bool {
	return s.Int() < other.Int()
}

func (s Serial) After(other Serial) bool {
	return s.Int() > other.Int()
}

// Advance returns the serial offset positions further into the pack.
func (s Serial) Advance(offset int) (Serial, error) {
	return SerialFromInt(s.Int() + offset)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
