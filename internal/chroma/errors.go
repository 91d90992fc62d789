package chroma

import apperrors "github.com/pixelfount/arcade/internal/platform/errors"

var (
	// ErrCoordinatesInvalid indicates a coordinate outside the canvas.
	ErrCoordinatesInvalid = apperrors.New(apperrors.CodeCoordinatesInvalid, "coordinates are outside the canvas")
	// ErrColorInvalid indicates a color outside the 24-bit RGB range.
	ErrColorInvalid = apperrors.New(apperrors.CodeColorInvalid, "color must fit 24-bit RGB")
	// ErrPaymentInsufficient indicates the payment does not cover the current price.
	ErrPaymentInsufficient = apperrors.New(apperrors.CodePaymentInsufficient, "payment does not cover the required price")
	// ErrUserOnCooldown indicates the user acted again before the cooldown elapsed.
	ErrUserOnCooldown = apperrors.New(apperrors.CodeUserOnCooldown, "user is on cooldown")
	// ErrPixelLocked indicates the pixel is under an active lock.
	ErrPixelLocked = apperrors.New(apperrors.CodePixelLocked, "pixel is locked")
)
