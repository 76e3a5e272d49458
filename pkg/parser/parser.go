// Package parser turns URCL source text into a compiled instruction list.
// It never stops at the first problem: every line is parsed independently
// and its errors/warnings accumulate into the Result, mirroring the
// accumulating style of the source format's original parser.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/urcl-project/urclvm/pkg/isa"
	"github.com/urcl-project/urclvm/pkg/operand"
)

// Diagnostic is a one-based line number paired with a message.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string { return fmt.Sprintf("%d: %s", d.Line, d.Message) }

// Result is the outcome of parsing one source stream.
type Result struct {
	Program  []isa.Instruction
	Errors   []Diagnostic
	Warnings []Diagnostic
	Labels   map[string]int64
}

// Ok reports whether parsing produced no errors.
func (r *Result) Ok() bool { return len(r.Errors) == 0 }

// unresolved tracks a label reference seen before its definition, so it can
// be patched once the defining line is reached.
type unresolved struct {
	label *operand.Label
	line  int
}

// Parse parses source text named name (used only for the instructions'
// Source annotations) into a Result.
func Parse(source string, name string) *Result {
	result := &Result{Labels: map[string]int64{}}
	unmarked := map[string][]unresolved{}

	lines := splitLines(source)
	for idx, raw := range lines {
		warnings := []string{}
		errs := parseLine(raw, result, unmarked, &warnings, idx, name)
		for _, e := range errs {
			result.Errors = append(result.Errors, Diagnostic{Line: idx + 1, Message: e})
		}
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, Diagnostic{Line: idx + 1, Message: w})
		}
	}
	for label, refs := range unmarked {
		for _, ref := range refs {
			result.Errors = append(result.Errors, Diagnostic{
				Line:    ref.line + 1,
				Message: fmt.Sprintf("%q is undefined.", label),
			})
		}
	}
	return result
}

func splitLines(source string) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.TrimSuffix(source, "\n")
	if source == "" {
		return nil
	}
	return strings.Split(source, "\n")
}

// separators matches one run of whitespace with an optional leading comma,
// so "ADD R1, R2, R3" and "ADD R1 R2 R3" normalize identically.
var separators = regexp.MustCompile(`,?\s+`)

func normalizeLine(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	return separators.ReplaceAllString(strings.TrimSpace(line), " ")
}

func parseLine(raw string, result *Result, unmarked map[string][]unresolved, warnings *[]string, lineIndex int, sourceName string) []string {
	line := normalizeLine(raw)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, ".") {
		if strings.Contains(line, " ") {
			return []string{"Invalid syntax."}
		}
		address := int64(len(result.Program))
		result.Labels[line] = address
		for _, ref := range unmarked[line] {
			ref.label.Address = address
		}
		delete(unmarked, line)
		return nil
	}

	parts := strings.Split(line, " ")
	opName := strings.ToUpper(parts[0])
	operandText := parts[1:]

	var errs []string
	var operands [3]operand.Operand
	for i, text := range operandText {
		if i >= 3 {
			break
		}
		o, err := parseOperand(text, result.Labels, unmarked, warnings, lineIndex, sourceName)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		operands[i] = o
	}

	spec, ok := isa.Lookup(opName)
	if !ok {
		return append(errs, fmt.Sprintf("Unknown operation %q.", opName))
	}

	given := len(operandText)
	if given > 3 {
		given = 3
	}
	for i := 0; i < 3; i++ {
		has := operands[i] != nil
		required := i < spec.NumOperands
		switch {
		case required && !has:
			errs = append(errs, fmt.Sprintf("Missing %s operand of %s.", ordinal(i), opName))
		case has && !required:
			errs = append(errs, fmt.Sprintf("%s takes %d operand(s) but %d were specified.", opName, spec.NumOperands, given))
		case has && required && !spec.Kinds[i].Matches(operands[i]):
			errs = append(errs, fmt.Sprintf("%s operand of %s must match the type of %s.", capitalize(ordinal(i)), opName, spec.Kinds[i]))
		}
	}
	if len(errs) != 0 {
		return errs
	}

	src := isa.Source{Name: sourceName, Line: lineIndex + 1}
	result.Program = append(result.Program, spec.New(operands[0], operands[1], operands[2], src))
	return nil
}

func ordinal(i int) string {
	switch i {
	case 0:
		return "first"
	case 1:
		return "second"
	default:
		return "third"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseOperand(text string, labels map[string]int64, unmarked map[string][]unresolved, warnings *[]string, lineIndex int, sourceName string) (operand.Operand, error) {
	if text == "" {
		return nil, fmt.Errorf("Empty operand.")
	}
	prefix := text[0]
	switch {
	case prefix == '.' && len(text) > 1:
		label := &operand.Label{Name: text, Address: -1}
		if address, ok := labels[text]; ok {
			label.Address = address
		} else {
			unmarked[text] = append(unmarked[text], unresolved{label: label, line: lineIndex})
		}
		return label, nil
	case prefix == '%' && len(text) > 1:
		return &operand.Port{Name: text[1:]}, nil
	case (prefix == 'R' || prefix == 'r' || prefix == '$') && len(text) > 1:
		if index, err := strconv.Atoi(text[1:]); err == nil && index >= 0 {
			return operand.Register{Index: index}, nil
		}
	case isDigit(prefix) || prefix == '-':
		if value, err := parseImmediate(text); err == nil {
			return &operand.Immediate{Value: value}, nil
		}
	case isAlpha(prefix):
		name := strings.ToUpper(text)
		if name != "PC" && name != "SP" {
			*warnings = append(*warnings, fmt.Sprintf("Use of non-standard register %q.", name))
		}
		return &operand.SpecialRegister{Name: name}, nil
	}
	return nil, fmt.Errorf("Invalid operand %q.", text)
}

func parseImmediate(text string) (uint64, error) {
	negative := strings.HasPrefix(text, "-")
	unsigned := strings.TrimPrefix(text, "-")
	upper := strings.ToUpper(unsigned)
	var value uint64
	var err error
	switch {
	case strings.HasPrefix(upper, "0X"):
		value, err = strconv.ParseUint(upper[2:], 16, 64)
	case strings.HasPrefix(upper, "0O"):
		value, err = strconv.ParseUint(upper[2:], 8, 64)
	case strings.HasPrefix(upper, "0B"):
		value, err = strconv.ParseUint(upper[2:], 2, 64)
	default:
		value, err = strconv.ParseUint(unsigned, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if negative {
		value = -value
	}
	return value, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
