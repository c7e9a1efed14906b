package unlock

import (
	"errors"
	"fmt"
)

var (
	ErrBiometricUnavailable  = errors.New("biometric unlock is not available on this device")
	ErrToggleInFlight        = errors.New("a biometric unlock change is already in progress")
	ErrContinueDisabled      = errors.New("turn on at least one unlock method to continue")
	ErrSetUpLaterUnavailable = errors.New("unlock setup can only be deferred while creating an account")
	ErrClosed                = errors.New("unlock setup is closed")
)

// BiometricEnableFailedError reports a failed biometric round trip.
type BiometricEnableFailedError struct {
	Enable bool
	Reason error
}

func (e *BiometricEnableFailedError) Error() string {
	verb := "disable"
	if e.Enable {
		verb = "enable"
	}
	return fmt.Sprintf("failed to %s biometric unlock: %v", verb, e.Reason)
}

func (e *BiometricEnableFailedError) Unwrap() error {
	return e.Reason
}
