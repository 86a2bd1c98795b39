// Package report prints the outcome of each access in a compact one-line
// form, followed by a blank line.
//
//	L2idx=0&1 time(L2miss=5ns*2, mem_read=100ns*2, L2read=5ns*2, total=220ns) state=E&E
//
// With more than one chip the L3 slots are added and the states are reported
// per level.
//
//	L2idx=0 L3idx=0 time(L2miss=5ns, L3miss=20ns, ..., total=150ns) L2state=E L3state=E
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/mem/cache/coherence"
)

// OutOfRangeMessage is printed for accesses beyond the last memory page.
const OutOfRangeMessage = "Invalid address, out of memory pages range, ignore this command!"

// Reporter writes outcomes to a writer.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a Reporter that writes to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report writes the outcome followed by a blank line.
func (r *Reporter) Report(o coherence.Outcome) error {
	_, err := fmt.Fprintf(r.w, "%s\n\n", Format(o))
	return err
}

// Format returns the result line of an outcome.
func Format(o coherence.Outcome) string {
	if o.Rejected() {
		return rejectionMessage(o.RejectReason)
	}

	var b strings.Builder

	b.WriteString("L2idx=")
	b.WriteString(slots(o.L2))

	if o.HasL3 {
		b.WriteString(" L3idx=")
		b.WriteString(slots(o.L3))
	}

	b.WriteString(" time(")

	for _, e := range o.Events {
		b.WriteString(e.Op.String())
		b.WriteString("=")
		b.WriteString(e.Cost.String())

		if e.Count > 1 {
			b.WriteString("*")
			b.WriteString(strconv.FormatUint(e.Count, 10))
		}

		b.WriteString(", ")
	}

	b.WriteString("total=")
	b.WriteString(o.Total.String())
	b.WriteString(")")

	if o.HasL3 {
		b.WriteString(" L2state=")
		b.WriteString(states(o.L2))
		b.WriteString(" L3state=")
		b.WriteString(states(o.L3))
	} else {
		b.WriteString(" state=")
		b.WriteString(states(o.L2))
	}

	return b.String()
}

// LoadingLine describes the pages an access is about to touch.
func LoadingLine(o coherence.Outcome) string {
	first := uint64(0)
	if len(o.Pages) > 0 {
		first = o.Pages[0]
	}

	return fmt.Sprintf("loading page is %d,page size is %d", first, len(o.Pages))
}

func rejectionMessage(reason error) string {
	if errors.Is(reason, coherence.ErrAddressOutOfRange) {
		return OutOfRangeMessage
	}

	return fmt.Sprintf("Invalid request, %v, ignore this command!", reason)
}

func slots(lines []cache.LineRecord) string {
	s := make([]string, len(lines))
	for i, l := range lines {
		s[i] = strconv.Itoa(l.SlotID)
	}

	return strings.Join(s, "&")
}

func states(lines []cache.LineRecord) string {
	s := make([]string, len(lines))
	for i, l := range lines {
		s[i] = l.State.String()
	}

	return strings.Join(s, "&")
}
