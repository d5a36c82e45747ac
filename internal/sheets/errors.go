package sheets

import "errors"

// Backend failures are infrastructure errors. They are surfaced to the
// operator via logs and metrics, never converted into user-facing messages.
var (
	ErrSpreadsheetDoesNotExist = errors.New("spreadsheet does not exist")
	ErrWorksheetDoesNotExist   = errors.New("worksheet does not exist")
	ErrWorksheetCreate         = errors.New("failed to create worksheet")
	ErrWorksheetRead           = errors.New("failed to read worksheet")
	ErrWorksheetWrite          = errors.New("failed to write worksheet")
)
