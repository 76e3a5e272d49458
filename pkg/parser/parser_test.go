package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urcl-project/urclvm/pkg/isa"
	"github.com/urcl-project/urclvm/pkg/parser"
)

func TestParseBasicProgram(t *testing.T) {
	source := "IMM R1 5\nADD R2 R1 R1\nHLT\n"
	result := parser.Parse(source, "prog.urcl")
	require.True(t, result.Ok(), "errors: %v", result.Errors)
	require.Len(t, result.Program, 3)
	assert.IsType(t, &isa.IMM{}, result.Program[0])
	assert.IsType(t, &isa.ADD{}, result.Program[1])
	assert.IsType(t, &isa.HLT{}, result.Program[2])
}

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	source := "// a comment\n\nIMM R1 5 // trailing\n   \nHLT\n"
	result := parser.Parse(source, "prog.urcl")
	require.True(t, result.Ok())
	require.Len(t, result.Program, 2)
}

func TestParseCommaSeparatedOperands(t *testing.T) {
	source := "ADD R1, R2, R3\nMOV R1,\tR2\nHLT\n"
	result := parser.Parse(source, "prog.urcl")
	require.True(t, result.Ok(), "errors: %v", result.Errors)
	require.Len(t, result.Program, 3)
	assert.Equal(t, "ADD R1 R2 R3", result.Program[0].String())
}

func TestParseForwardLabelReference(t *testing.T) {
	source := "JMP .done\nHLT\n.done\nHLT\n"
	result := parser.Parse(source, "prog.urcl")
	require.True(t, result.Ok(), "errors: %v", result.Errors)
	require.Len(t, result.Program, 3)
	assert.Equal(t, int64(2), result.Labels[".done"])
}

func TestParseUndefinedLabelIsError(t *testing.T) {
	source := "JMP .nowhere\n"
	result := parser.Parse(source, "prog.urcl")
	require.False(t, result.Ok())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "nowhere")
}

func TestParseUnknownOpcode(t *testing.T) {
	result := parser.Parse("FROB R1\n", "prog.urcl")
	require.False(t, result.Ok())
	assert.Contains(t, result.Errors[0].Message, "Unknown operation")
}

func TestParseMissingOperand(t *testing.T) {
	result := parser.Parse("ADD R1 R2\n", "prog.urcl")
	require.False(t, result.Ok())
	assert.Contains(t, result.Errors[0].Message, "Missing")
}

func TestParseWrongKindOperand(t *testing.T) {
	result := parser.Parse("IMM 5 5\n", "prog.urcl")
	require.False(t, result.Ok())
}

func TestParseNonStandardSpecialRegisterWarns(t *testing.T) {
	result := parser.Parse("MOV R1 FOO\n", "prog.urcl")
	require.True(t, result.Ok(), "errors: %v", result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "non-standard")
}

func TestParseImmediateBases(t *testing.T) {
	result := parser.Parse("IMM R1 0x10\nIMM R2 0o17\nIMM R3 0b101\nIMM R4 -3\n", "prog.urcl")
	require.True(t, result.Ok(), "errors: %v", result.Errors)
	require.Len(t, result.Program, 4)
}

func TestParseInvalidLabelSyntax(t *testing.T) {
	result := parser.Parse(".foo bar\n", "prog.urcl")
	require.False(t, result.Ok())
	assert.Contains(t, result.Errors[0].Message, "Invalid syntax")
}
