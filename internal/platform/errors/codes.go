// Package errors provides structured error handling for the arcade core.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Canvas errors
	CodeCoordinatesInvalid  Code = "COORDINATES_INVALID"
	CodeColorInvalid        Code = "COLOR_INVALID"
	CodePaymentInsufficient Code = "PAYMENT_INSUFFICIENT"
	CodeUserOnCooldown      Code = "USER_ON_COOLDOWN"
	CodePixelLocked         Code = "PIXEL_LOCKED"

	// Lottery errors
	CodeEntryFeeInvalid      Code = "ENTRY_FEE_INVALID"
	CodeAlreadyParticipated  Code = "ALREADY_PARTICIPATED"
	CodeRoundNotEnded        Code = "ROUND_NOT_ENDED"
	CodeRoundAlreadyComplete Code = "ROUND_ALREADY_COMPLETE"

	// Ledger errors
	CodeAmountInvalid Code = "AMOUNT_INVALID"

	// Construction errors
	CodeConfigInvalid Code = "CONFIG_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps arcade codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCoordinatesInvalid,
		CodeColorInvalid,
		CodeEntryFeeInvalid,
		CodeAmountInvalid,
		CodeConfigInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodePaymentInsufficient,
		CodeUserOnCooldown,
		CodePixelLocked,
		CodeRoundNotEnded,
		CodeRoundAlreadyComplete:
		return codes.FailedPrecondition

	// AlreadyExists - unique resource constraint
	case CodeAlreadyParticipated:
		return codes.AlreadyExists

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
