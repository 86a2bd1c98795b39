package quantity

import (
	"fmt"
	"log"
	"strconv"
)

// TimeUnit is the scale of a time quantity. The order follows the
// configuration language, which lists microseconds first.
type TimeUnit int

// Defines the units of time.
const (
	US TimeUnit = iota
	NS
)

var timeUnitNames = []string{"us", "ns"}

func (u TimeUnit) String() string {
	if u < US || u > NS {
		return "TimeUnit(" + strconv.Itoa(int(u)) + ")"
	}

	return timeUnitNames[u]
}

// Nanoseconds returns the number of nanoseconds in one unit.
func (u TimeUnit) Nanoseconds() uint64 {
	switch u {
	case US:
		return 1000
	case NS:
		return 1
	default:
		log.Panicf("invalid time unit %d", int(u))
	}

	return 0
}

// Time is an amount of simulated time expressed as a magnitude and a unit.
type Time struct {
	Value uint64
	Unit  TimeUnit
}

// NewTime creates a Time.
func NewTime(value uint64, unit TimeUnit) Time {
	return Time{Value: value, Unit: unit}
}

// Nanoseconds returns the time in nanoseconds.
func (t Time) Nanoseconds() uint64 {
	return t.Value * t.Unit.Nanoseconds()
}

// In converts the time to the given unit. Converting to a coarser unit
// truncates.
func (t Time) In(unit TimeUnit) Time {
	return NewTime(t.Nanoseconds()/unit.Nanoseconds(), unit)
}

// Compare returns -1, 0, or 1 if t is shorter than, equal to, or longer than
// o.
func (t Time) Compare(o Time) int {
	a, b := t.Nanoseconds(), o.Nanoseconds()

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Mul returns the time repeated n times.
func (t Time) Mul(n uint64) Time {
	return NewTime(t.Value*n, t.Unit)
}

func (t Time) String() string {
	return strconv.FormatUint(t.Value, 10) + t.Unit.String()
}

// ParseTime parses strings like "5ns" or "2 us".
func ParseTime(str string) (Time, error) {
	value, unitStr, err := splitMagnitude(str)
	if err != nil {
		return Time{}, err
	}

	for i, name := range timeUnitNames {
		if unitStr == name {
			return NewTime(value, TimeUnit(i)), nil
		}
	}

	return Time{}, fmt.Errorf("unit %q of %q is not one of us, ns", unitStr, str)
}
