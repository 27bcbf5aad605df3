package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bril/internal/ir"
)

func TestErrorReporterBasicFormatting(t *testing.T) {
	source := `@main(n: int) {
  x: int = const 5;
  ret;
}`

	reporter := NewErrorReporter("prog.json", source)

	err := CompilerError{
		Level:    Error,
		Code:     ErrorFuncNotFound,
		Message:  "function 'helper' is not defined in this program",
		Position: ir.Position{Line: 2, Column: 3},
		Length:   6,
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorFuncNotFound+"]")
	assert.Contains(t, formatted, "not defined in this program")
	assert.Contains(t, formatted, "prog.json:2:3")
}

func TestErrorReporterIncludesNotesAndHelp(t *testing.T) {
	source := "ret;"
	reporter := NewErrorReporter("prog.json", source)

	err := CompilerError{
		Level:    Error,
		Code:     ErrorNoMainFunction,
		Message:  "program has no function named main",
		Position: ir.Position{Line: 1, Column: 1},
		Length:   3,
		Notes:    []string{"entry point lookup searches for a function literally named 'main'"},
		HelpText: "add a @main function or rename an existing one",
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "note:")
	assert.Contains(t, formatted, "entry point lookup")
	assert.Contains(t, formatted, "help:")
	assert.Contains(t, formatted, "add a @main function")
}

func TestErrorReporterWarningFormatting(t *testing.T) {
	source := `@main {
  ret;
  x: int = const 1;
}`
	reporter := NewErrorReporter("prog.json", source)

	err := CompilerError{
		Level:    Warning,
		Code:     WarningUnreachableCode,
		Message:  GetErrorDescription(WarningUnreachableCode),
		Position: ir.Position{Line: 3, Column: 3},
		Length:   1,
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "warning["+WarningUnreachableCode+"]")
	assert.Contains(t, formatted, "unreachable")
}

func TestErrorMarkerCreation(t *testing.T) {
	source := `x: int = const 5;`
	reporter := NewErrorReporter("prog.json", source)

	marker := reporter.createMarker(5, 8, Error)

	spaces := strings.Count(marker, " ")
	assert.Equal(t, 4, spaces)
	carets := strings.Count(marker, "^")
	assert.Equal(t, 8, carets)
}

func TestErrorLevels(t *testing.T) {
	source := `test`
	reporter := NewErrorReporter("prog.json", source)
	pos := ir.Position{Line: 1, Column: 1}

	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	errorFormatted := reporter.FormatError(errorErr)
	warningFormatted := reporter.FormatError(warningErr)

	assert.Contains(t, errorFormatted, "error:")
	assert.Contains(t, warningFormatted, "warning:")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "Interpreter", GetErrorCategory(ErrorCannotAllocSize))
	assert.Equal(t, "Warning", GetErrorCategory(WarningUnreachableCode))
	assert.Equal(t, "Unknown", GetErrorCategory("Z999"))
}

func TestIsWarning(t *testing.T) {
	assert.True(t, IsWarning(WarningUnreachableCode))
	assert.False(t, IsWarning(ErrorIoError))
}
