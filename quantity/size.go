// Package quantity defines the scaled data-size and time magnitudes used to
// configure and report a simulation.
package quantity

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// SizeUnit is the scale of a data size. Units are ordered from the smallest
// to the largest.
type SizeUnit int

// Defines the units of data size.
const (
	B SizeUnit = iota
	KB
	MB
	GB
)

var sizeUnitNames = []string{"B", "KB", "MB", "GB"}

func (u SizeUnit) String() string {
	if u < B || u > GB {
		return "SizeUnit(" + strconv.Itoa(int(u)) + ")"
	}

	return sizeUnitNames[u]
}

// Bytes returns the number of bytes in one unit.
func (u SizeUnit) Bytes() uint64 {
	if u < B || u > GB {
		log.Panicf("invalid size unit %d", int(u))
	}

	return 1 << (10 * uint(u))
}

// Size is a data size expressed as a magnitude and a unit.
type Size struct {
	Value uint64
	Unit  SizeUnit
}

// NewSize creates a Size.
func NewSize(value uint64, unit SizeUnit) Size {
	return Size{Value: value, Unit: unit}
}

// Bytes returns the size in bytes.
func (s Size) Bytes() uint64 {
	return s.Value * s.Unit.Bytes()
}

// Compare returns -1, 0, or 1 if s is smaller than, equal to, or larger than
// o. The units are normalized before the magnitudes are compared.
func (s Size) Compare(o Size) int {
	a, b := s.Bytes(), o.Bytes()

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsZero returns true if the size has never been set or is zero bytes.
func (s Size) IsZero() bool {
	return s.Value == 0
}

func (s Size) String() string {
	return strconv.FormatUint(s.Value, 10) + s.Unit.String()
}

// ParseSize parses strings like "64B", "4KB", or "2 GB".
func ParseSize(str string) (Size, error) {
	value, unitStr, err := splitMagnitude(str)
	if err != nil {
		return Size{}, err
	}

	for i, name := range sizeUnitNames {
		if unitStr == name {
			return NewSize(value, SizeUnit(i)), nil
		}
	}

	return Size{}, fmt.Errorf(
		"unit %q of %q is not one of B, KB, MB, GB", unitStr, str)
}

// BlockCount returns how many lines of lineSize fit in size. It fails if the
// line is larger than the size it is divided into.
func BlockCount(size, lineSize Size) (uint64, error) {
	if lineSize.Bytes() == 0 {
		return 0, fmt.Errorf("line size %s must not be zero", lineSize)
	}

	if lineSize.Compare(size) > 0 {
		return 0, fmt.Errorf(
			"line size %s is larger than %s", lineSize, size)
	}

	return size.Bytes() / lineSize.Bytes(), nil
}

func splitMagnitude(str string) (uint64, string, error) {
	str = strings.TrimSpace(str)

	end := 0
	for end < len(str) && str[end] >= '0' && str[end] <= '9' {
		end++
	}

	if end == 0 {
		return 0, "", fmt.Errorf("%q does not start with a number", str)
	}

	value, err := strconv.ParseUint(str[:end], 10, 64)
	if err != nil {
		return 0, "", err
	}

	return value, strings.TrimSpace(str[end:]), nil
}
