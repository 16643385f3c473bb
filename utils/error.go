package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Business-rule errors. Each aborts the surrounding transaction with no state
// change and is surfaced to the caller as-is; the engine never retries them.
var (
	ErrCeilingExceeded            = errors.New("document total exceeds the ceiling for its kind")
	ErrInsufficientFunds          = errors.New("center available funds are insufficient for this document")
	ErrFolderNotEditable          = errors.New("expense folder is not active; documents cannot be changed")
	ErrInvalidStateTransition     = errors.New("invalid expense folder state transition")
	ErrFolderNotAccepted          = errors.New("expense folder must be accepted before reimbursement")
	ErrDuplicateRemboursement     = errors.New("expense folder already has a reimbursement")
	ErrDuplicateEncaissement      = errors.New("reimbursement already has a receipt for this center")
	ErrInsufficientFundsToReverse = errors.New("center available funds are insufficient to reverse this receipt")
	ErrActiveFolderExists         = errors.New("center already has an active expense folder")
)

// IsBusinessRuleError reports whether err belongs to the business-rule
// taxonomy (as opposed to validation or infrastructure failures).
func IsBusinessRuleError(err error) bool {
	for _, target := range []error{
		ErrCeilingExceeded,
		ErrInsufficientFunds,
		ErrFolderNotEditable,
		ErrInvalidStateTransition,
		ErrFolderNotAccepted,
		ErrDuplicateRemboursement,
		ErrDuplicateEncaissement,
		ErrInsufficientFundsToReverse,
		ErrActiveFolderExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
