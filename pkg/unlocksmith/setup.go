package unlocksmith

import (
	"context"
	"errors"
	"fmt"

	"github.com/bonjoski/unlocksmith/pkg/unlock"
)

var ErrPINRequired = errors.New("a PIN is required to turn on PIN unlock")

// setupCompleter persists the PIN choice. The biometric choice is already
// saved by the time the setup completes.
type setupCompleter struct {
	app    *App
	prompt PINPrompt
}

func (s *setupCompleter) CompleteSetup(ctx context.Context, result unlock.Result) error {
	if result.Deferred {
		s.app.Logger.Info("unlock setup deferred")
		return nil
	}

	pinSet, err := s.app.PIN.IsPINSet(ctx)
	if err != nil {
		return err
	}

	switch {
	case result.PINUnlock && !pinSet:
		if s.prompt == nil {
			return ErrPINRequired
		}
		code, err := s.prompt(ctx)
		if err != nil {
			return fmt.Errorf("failed to read PIN: %w", err)
		}
		if err := s.app.PIN.SetPIN(code); err != nil {
			return err
		}
		s.app.Logger.Info("PIN unlock turned on")
	case !result.PINUnlock && pinSet:
		if err := s.app.PIN.Clear(); err != nil {
			return fmt.Errorf("failed to turn off PIN unlock: %w", err)
		}
		s.app.Logger.Info("PIN unlock turned off")
	}
	return nil
}
