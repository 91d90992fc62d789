package fountain

import apperrors "github.com/pixelfount/arcade/internal/platform/errors"

var (
	// ErrEntryFeeInvalid indicates a toss that did not pay the exact entry fee.
	ErrEntryFeeInvalid = apperrors.New(apperrors.CodeEntryFeeInvalid, "payment must equal the entry fee exactly")
	// ErrAlreadyParticipated indicates a second toss by the same caller in one round.
	ErrAlreadyParticipated = apperrors.New(apperrors.CodeAlreadyParticipated, "caller already participated in this round")
	// ErrRoundNotEnded indicates a resolution attempt before the round's end time.
	ErrRoundNotEnded = apperrors.New(apperrors.CodeRoundNotEnded, "round has not ended yet")
	// ErrRoundAlreadyComplete indicates a resolution attempt against a round
	// another caller already resolved.
	ErrRoundAlreadyComplete = apperrors.New(apperrors.CodeRoundAlreadyComplete, "round is already complete")
	// ErrRoundNotFound indicates a query for an unknown round id.
	ErrRoundNotFound = apperrors.New(apperrors.CodeNotFound, "round not found")
)
