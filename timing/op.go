// Package timing aggregates the timed operations performed while serving one
// access.
package timing

import (
	"log"
	"strconv"
)

// Op is a kind of timed operation.
type Op int

// Defines the timed operations.
const (
	OpL2Hit Op = iota
	OpL2Miss
	OpL2Read
	OpL2Write
	OpL2Writeback
	OpL3Hit
	OpL3Miss
	OpL3Read
	OpL3Write
	OpL3Writeback
	OpMemRead
	OpReplace
	OpBroadcast
	numOps
)

var opNames = [numOps]string{
	OpL2Hit:       "L2hit",
	OpL2Miss:      "L2miss",
	OpL2Read:      "L2read",
	OpL2Write:     "L2write",
	OpL2Writeback: "L2writeback",
	OpL3Hit:       "L3hit",
	OpL3Miss:      "L3miss",
	OpL3Read:      "L3read",
	OpL3Write:     "L3write",
	OpL3Writeback: "L3writeback",
	OpMemRead:     "mem_read",
	OpReplace:     "replace",
	OpBroadcast:   "broadcast",
}

// String returns the name the operation is reported under.
func (o Op) String() string {
	if o < 0 || o >= numOps {
		return "Op(" + strconv.Itoa(int(o)) + ")"
	}

	return opNames[o]
}

// Ops lists every operation kind.
func Ops() []Op {
	ops := make([]Op, numOps)
	for i := range ops {
		ops[i] = Op(i)
	}

	return ops
}

func mustBeValidOp(o Op) {
	if o < 0 || o >= numOps {
		log.Panicf("unknown timed operation %d", int(o))
	}
}
