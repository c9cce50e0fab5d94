// Error Codes Reference
//
// User-facing errors carry a code that can be quoted to support staff.
// Codes are grouped by where the failure happened.
//
// # Sheet Errors (SHEET001-SHEET099)
//
//	SHEET001 - Empty sheet: The specification sheet has no header row
//	           Action: Check that the first row of the sheet holds the column names
//	           Patterns: "empty table"
//
//	SHEET002 - Missing column: A required column is missing from the sheet
//	           Action: Restore the column header named in the error
//	           Patterns: "missing required column"
//
//	SHEET003 - No hierarchy: None of the hierarchy columns exist in the sheet
//	           Action: Check the layout profile against the sheet headers
//	           Patterns: "no hierarchy column"
//
//	SHEET004 - Unsupported file: The source file type is not supported
//	           Action: Use an .xlsx, .xlsm or .csv file
//	           Patterns: "unsupported source format"
//
//	SHEET005 - No source: The server was started without a source file
//	           Action: Set SHEET_PATH and restart
//	           Patterns: "reload disabled"
//
// # Path Errors (PATH001-PATH099)
//
//	PATH001 - Unknown series: The requested series does not exist
//	          Action: Pick a series from the catalog
//	          Patterns: "series not found"
//
//	PATH002 - Unknown column: The requested column does not exist
//	          Action: Use a header name or a column number from the tree
//	          Patterns: "column not found"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Export failed: The schema could not be encoded
//	         Action: Please try again or contact support
//	         Patterns: "encode series"
//
// # Store Errors (STORE001-STORE099)
//
//	STORE001 - Publishing disabled: No database is configured
//	           Action: Set DATABASE_URL and restart
//	           Patterns: "publishing disabled", "connection refused"
//
//	STORE002 - Not found: No active specification for this part code
//	           Action: Publish the series first
//	           Patterns: "part spec not found"
//
//	STORE003 - Missing code: The series has no part code
//	           Action: Add the series to the Name_Code sheet
//	           Patterns: "missing part code"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Bad request: The request could not be read
//	         Action: Check the request body and parameters
//	         Patterns: "bad request"
//
// # Server Errors (SRV001-SRV099)
//
//	SRV001 - Busy: Too many publish or reload requests are running
//	         Action: Wait a moment and try again
//	         Patterns: "too many concurrent writes"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins.

package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (lower case) to user messages.
// Specific patterns must come before general ones.
var errorPatterns = []errorPattern{
	// Sheet
	{
		pattern: "empty table",
		msg: UserMessage{
			Message: "The specification sheet has no header row",
			Action:  "Check that the first row of the sheet holds the column names",
			Code:    "SHEET001",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing from the sheet",
			Action:  "Restore the column header named in the error",
			Code:    "SHEET002",
		},
	},
	{
		pattern: "no hierarchy column",
		msg: UserMessage{
			Message: "None of the hierarchy columns exist in the sheet",
			Action:  "Check the layout profile against the sheet headers",
			Code:    "SHEET003",
		},
	},
	{
		pattern: "unsupported source format",
		msg: UserMessage{
			Message: "The source file type is not supported",
			Action:  "Use an .xlsx, .xlsm or .csv file",
			Code:    "SHEET004",
		},
	},
	{
		pattern: "reload disabled",
		msg: UserMessage{
			Message: "The server was started without a source file",
			Action:  "Set SHEET_PATH and restart",
			Code:    "SHEET005",
		},
	},

	// Path
	{
		pattern: "series not found",
		msg: UserMessage{
			Message: "The requested series does not exist",
			Action:  "Pick a series from the catalog",
			Code:    "PATH001",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "The requested column does not exist",
			Action:  "Use a header name or a column number from the tree",
			Code:    "PATH002",
		},
	},

	// Export
	{
		pattern: "encode series",
		msg: UserMessage{
			Message: "The schema could not be encoded",
			Action:  "Please try again or contact support",
			Code:    "EXP001",
		},
	},

	// Store
	{
		pattern: "publishing disabled",
		msg: UserMessage{
			Message: "No database is configured",
			Action:  "Set DATABASE_URL and restart",
			Code:    "STORE001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "No database is configured",
			Action:  "Set DATABASE_URL and restart",
			Code:    "STORE001",
		},
	},
	{
		pattern: "part spec not found",
		msg: UserMessage{
			Message: "No active specification for this part code",
			Action:  "Publish the series first",
			Code:    "STORE002",
		},
	},
	{
		pattern: "missing part code",
		msg: UserMessage{
			Message: "The series has no part code",
			Action:  "Add the series to the Name_Code sheet",
			Code:    "STORE003",
		},
	},

	// Request
	{
		pattern: "bad request",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the request body and parameters",
			Code:    "REQ001",
		},
	},

	// Server
	{
		pattern: "too many concurrent writes",
		msg: UserMessage{
			Message: "Too many publish or reload requests are running",
			Action:  "Wait a moment and try again",
			Code:    "SRV001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000). Check the
// logs for the technical error when users report it.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
