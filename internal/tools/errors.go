package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is matched by UnknownToolError.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrValidation is matched by ValidationError.
	ErrValidation = errors.New("invalid tool arguments")
)

// UnknownToolError is returned when a call names a tool that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

// Is allows UnknownToolError to match ErrUnknownTool.
func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// ValidationError is returned when an argument does not match the declared
// parameter shape. No request is sent to the Admin API in that case.
type ValidationError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid arguments for %s: %s %s", e.Tool, e.Param, e.Reason)
}

// Is allows ValidationError to match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

const troubleshootingTips = "Troubleshooting tips:\n" +
	"1. Verify your Kong Admin API is accessible\n" +
	"2. Check that the parameters provided are valid\n" +
	"3. Ensure your network connection to the Kong Admin API is working properly"

// FormatError renders err as the text of an error-flagged tool result.
func FormatError(err error) string {
	return fmt.Sprintf("Error: %s\n\n%s", err.Error(), troubleshootingTips)
}
