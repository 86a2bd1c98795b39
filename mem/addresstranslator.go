// Package mem provides the memory-side helpers shared by the cache levels.
package mem

import (
	"errors"
	"fmt"

	"github.com/sarchlab/cohsim/quantity"
)

// ErrAddressOutOfRange is returned when an access starts beyond the last
// memory page.
var ErrAddressOutOfRange = errors.New("address out of memory pages range")

// AddressTranslator maps byte addresses to the indices of the cache lines
// (pages) that hold them.
type AddressTranslator struct {
	LineSize uint64
	NumPages uint64
}

// NewAddressTranslator creates a translator for a memory of the given size
// divided into lines of lineSize.
func NewAddressTranslator(
	memorySize, lineSize quantity.Size,
) (*AddressTranslator, error) {
	numPages, err := quantity.BlockCount(memorySize, lineSize)
	if err != nil {
		return nil, err
	}

	t := &AddressTranslator{
		LineSize: lineSize.Bytes(),
		NumPages: numPages,
	}

	return t, nil
}

// PageOf returns the index of the page that holds the address.
func (t *AddressTranslator) PageOf(address uint64) uint64 {
	return address / t.LineSize
}

// BlocksTouched returns the consecutive page indices covered by a transfer of
// the given size starting at address. A transfer always touches at least one
// page.
func (t *AddressTranslator) BlocksTouched(
	address uint64,
	size quantity.Size,
) ([]uint64, error) {
	first := t.PageOf(address)
	if first > t.NumPages {
		return nil, fmt.Errorf("%w: address 0x%x is in page %d, last page is %d",
			ErrAddressOutOfRange, address, first, t.NumPages)
	}

	count := t.blockCount(address, size.Bytes())

	pages := make([]uint64, count)
	for i := range pages {
		pages[i] = first + uint64(i)
	}

	return pages, nil
}

func (t *AddressTranslator) blockCount(address, byteSize uint64) uint64 {
	span := address%t.LineSize + byteSize

	count := span / t.LineSize
	if span%t.LineSize != 0 {
		count++
	}

	if count == 0 {
		count = 1
	}

	return count
}
