package entitlement

import "errors"

var (
	// ErrInvalidICCID is returned when an ICCID is not a 19-20 digit string.
	ErrInvalidICCID = errors.New("invalid iccid")

	// ErrValidation is returned when a request fails field validation.
	ErrValidation = errors.New("validation failed")

	// ErrProfileNotFound is returned when the referenced profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrDeviceNotFound is returned when the referenced device is not registered.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrOperationNotFound is returned when a transfer operation does not exist.
	ErrOperationNotFound = errors.New("transfer operation not found")

	// ErrDeviceExists is returned when registering a device ID that is taken.
	ErrDeviceExists = errors.New("device already registered")

	// ErrInvalidProfileState is returned when the profile's current status does
	// not permit the requested operation.
	ErrInvalidProfileState = errors.New("invalid profile state")

	// ErrConflict is returned when another operation holds the profile lease or
	// a concurrent writer changed the profile underneath us.
	ErrConflict = errors.New("operation conflict")
)
