// Package script reads simulation scripts. A script is a list of calls, one
// per line, that first configure the memory system and then issue accesses.
//
//	# comments and blank lines are skipped
//	memorySize(4KB)
//	numOfChips(2)
//	numOfCores(2)
//	cacheLineSize(64B)
//	cacheSize(0, 256B)
//	cacheSize(1, 256B)
//	cacheSize(1KB)
//	cacheAccessSpeed(0, 5ns)
//	cacheAccessSpeed(1, 5ns)
//	cacheAccessSpeed(20ns)
//	replacementSpeed(2ns)
//	broadcastSpeed(3ns)
//	memoryAccessSpeed(1us)
//	read(1, 0, 0x40, 8B)
//	write(0, 40, 16B)
//
// The optional first argument of numOfCores, cacheSize, cacheAccessSpeed,
// read and write names a chip.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/cohsim/config"
	"github.com/sarchlab/cohsim/mem/cache/coherence"
	"github.com/sarchlab/cohsim/quantity"
)

// ErrSyntax is returned for lines that cannot be parsed.
var ErrSyntax = errors.New("syntax error")

var callPattern = regexp.MustCompile(`^([A-Za-z]+)\(([^)]*)\)`)

// A Statement is one parsed line. Exactly one of Command and Request is set,
// unless the function name is unknown.
type Statement struct {
	Line    int
	Text    string
	Name    string
	Command config.Command
	Request *coherence.Request
}

// Unknown returns true if the line calls a function that does not exist.
func (s Statement) Unknown() bool {
	return s.Command == nil && s.Request == nil
}

type argParser func(args []string) (Statement, error)

var argParsers = map[string]argParser{
	"memorySize":       parseMemorySize,
	"numOfChips":       parseChipCount,
	"numOfCores":       parseCoreCount,
	"cacheLineSize":    parseCacheLineSize,
	"cacheSize":        parseCacheSize,
	"cacheAccessSpeed": parseCacheAccessSpeed,
	"replacementSpeed": timeCommand(func(t quantity.Time) config.Command {
		return config.SetReplacementSpeed{Time: t}
	}),
	"broadcastSpeed": timeCommand(func(t quantity.Time) config.Command {
		return config.SetBroadcastSpeed{Time: t}
	}),
	"memoryAccessSpeed": timeCommand(func(t quantity.Time) config.Command {
		return config.SetMemoryAccessSpeed{Time: t}
	}),
	"read":  accessParser(coherence.Read),
	"write": accessParser(coherence.Write),
}

// Parser reads statements from a script.
type Parser struct {
	scanner *bufio.Scanner
	line    int
}

// NewParser creates a parser that reads from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{scanner: bufio.NewScanner(r)}
}

// Next returns the next statement. It returns io.EOF after the last one.
func (p *Parser) Next() (Statement, error) {
	for p.scanner.Scan() {
		p.line++

		text := strings.TrimRight(p.scanner.Text(), "\r")
		if isSkipped(text) {
			continue
		}

		return ParseLine(p.line, text)
	}

	if err := p.scanner.Err(); err != nil {
		return Statement{}, err
	}

	return Statement{}, io.EOF
}

func isSkipped(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// ParseLine parses one line of a script.
func ParseLine(lineNo int, text string) (Statement, error) {
	match := callPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return Statement{}, syntaxError(lineNo, text,
			"expected name(arguments)")
	}

	name := match[1]

	parse, found := argParsers[name]
	if !found {
		return Statement{Line: lineNo, Text: text, Name: name}, nil
	}

	s, err := parse(splitArgs(match[2]))
	if err != nil {
		return Statement{}, syntaxError(lineNo, text, err.Error())
	}

	s.Line = lineNo
	s.Text = text
	s.Name = name

	return s, nil
}

func syntaxError(lineNo int, text, msg string) error {
	return fmt.Errorf("%w: line %d %q: %s", ErrSyntax, lineNo, text, msg)
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	args := strings.Split(s, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}

	return args
}

func mustHaveArgs(args []string, counts ...int) error {
	for _, c := range counts {
		if len(args) == c {
			return nil
		}
	}

	return fmt.Errorf("got %d arguments, want %v", len(args), counts)
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not a number", s)
	}

	return n, nil
}

// splitChip extracts the optional leading chip argument. It returns
// config.AllChips when the call has only the required arguments.
func splitChip(args []string, required int) (int, []string, error) {
	if len(args) == required {
		return config.AllChips, args, nil
	}

	chipID, err := parseNumber(args[0])
	if err != nil {
		return 0, nil, err
	}

	return chipID, args[1:], nil
}

func parseMemorySize(args []string) (Statement, error) {
	if err := mustHaveArgs(args, 1); err != nil {
		return Statement{}, err
	}

	size, err := quantity.ParseSize(args[0])
	if err != nil {
		return Statement{}, err
	}

	return Statement{Command: config.SetMemorySize{Size: size}}, nil
}

func parseChipCount(args []string) (Statement, error) {
	if err := mustHaveArgs(args, 1); err != nil {
		return Statement{}, err
	}

	n, err := parseNumber(args[0])
	if err != nil {
		return Statement{}, err
	}

	return Statement{Command: config.SetChipCount{Count: n}}, nil
}

func parseCoreCount(args []string) (Statement, error) {
	if err := mustHaveArgs(args, 1, 2); err != nil {
		return Statement{}, err
	}

	chipID, rest, err := splitChip(args, 1)
	if err != nil {
		return Statement{}, err
	}

	n, err := parseNumber(rest[0])
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		Command: config.SetCoreCount{ChipID: chipID, Count: n},
	}, nil
}

func parseCacheLineSize(args []string) (Statement, error) {
	if err := mustHaveArgs(args, 1); err != nil {
		return Statement{}, err
	}

	size, err := quantity.ParseSize(args[0])
	if err != nil {
		return Statement{}, err
	}

	return Statement{Command: config.SetCacheLineSize{Size: size}}, nil
}

func parseCacheSize(args []string) (Statement, error) {
	if err := mustHaveArgs(args, 1, 2); err != nil {
		return Statement{}, err
	}

	chipID, rest, err := splitChip(args, 1)
	if err != nil {
		return Statement{}, err
	}

	size, err := quantity.ParseSize(rest[0])
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		Command: config.SetCacheSize{ChipID: chipID, Size: size},
	}, nil
}

func parseCacheAccessSpeed(args []string) (Statement, error) {
	if err := mustHaveArgs(args, 1, 2); err != nil {
		return Statement{}, err
	}

	chipID, rest, err := splitChip(args, 1)
	if err != nil {
		return Statement{}, err
	}

	t, err := quantity.ParseTime(rest[0])
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		Command: config.SetCacheAccessSpeed{ChipID: chipID, Time: t},
	}, nil
}

func timeCommand(build func(quantity.Time) config.Command) argParser {
	return func(args []string) (Statement, error) {
		if err := mustHaveArgs(args, 1); err != nil {
			return Statement{}, err
		}

		t, err := quantity.ParseTime(args[0])
		if err != nil {
			return Statement{}, err
		}

		return Statement{Command: build(t)}, nil
	}
}

func accessParser(kind coherence.AccessKind) argParser {
	return func(args []string) (Statement, error) {
		if err := mustHaveArgs(args, 3, 4); err != nil {
			return Statement{}, err
		}

		chipID, rest, err := splitChip(args, 3)
		if err != nil {
			return Statement{}, err
		}

		if chipID == config.AllChips {
			chipID = coherence.AnyChip
		}

		coreID, err := parseNumber(rest[0])
		if err != nil {
			return Statement{}, err
		}

		address, err := parseAddress(rest[1])
		if err != nil {
			return Statement{}, err
		}

		size, err := quantity.ParseSize(rest[2])
		if err != nil {
			return Statement{}, err
		}

		req := &coherence.Request{
			Kind:    kind,
			ChipID:  chipID,
			CoreID:  coreID,
			Address: address,
			Size:    size,
		}

		return Statement{Request: req}, nil
	}
}

// parseAddress parses a hexadecimal address, with or without the 0x prefix.
func parseAddress(s string) (uint64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	address, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a hexadecimal address", s)
	}

	return address, nil
}
