package unlock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// BiometricsProvider reads and changes the device's biometric unlock state.
type BiometricsProvider interface {
	Status(ctx context.Context) (BiometricsStatus, error)
	SetEnabled(ctx context.Context, enabled bool) (BiometricsStatus, error)
}

// PINStatus reports whether a PIN is already configured.
type PINStatus interface {
	IsPINSet(ctx context.Context) (bool, error)
}

// Result is what the user chose when leaving the setup screen.
type Result struct {
	Flow            Flow
	BiometricUnlock bool
	PINUnlock       bool
	Deferred        bool
}

// Completer persists the result of the setup screen.
type Completer interface {
	CompleteSetup(ctx context.Context, result Result) error
}

// Notifier surfaces transient errors to the user.
type Notifier interface {
	NotifyError(err error)
}

// Options configures a Controller. Biometrics is required. OnChange
// receives states in the order they were made and must not call Toggle or
// LoadData.
type Options struct {
	Flow          Flow
	Biometrics    BiometricsProvider
	PIN           PINStatus
	Completer     Completer
	Notifier      Notifier
	Logger        *slog.Logger
	ToggleTimeout time.Duration
	OnChange      func(SetupState)
}

// Controller owns the state of one unlock setup screen.
//
// A biometric toggle runs its provider round trip on a goroutine. While it is
// pending, further biometric toggles are rejected with ErrToggleInFlight.
type Controller struct {
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	state   SetupState
	version uint64
	closed  bool

	publishMu sync.Mutex
	published uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewController(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		opts:   opts,
		log:    log.With("component", "unlock-setup", "flow", opts.Flow.String()),
		state:  NewSetupState(opts.Flow),
		ctx:    ctx,
		cancel: cancel,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() SetupState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LoadData refreshes the biometrics status and PIN flag from the providers.
func (c *Controller) LoadData(ctx context.Context) error {
	status, err := c.opts.Biometrics.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to load biometrics status: %w", err)
	}

	var pinSet bool
	if c.opts.PIN != nil {
		pinSet, err = c.opts.PIN.IsPINSet(ctx)
		if err != nil {
			return fmt.Errorf("failed to load pin status: %w", err)
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.state.biometricPending {
		c.state.BiometricsStatus = status
	}
	c.state.IsPinUnlockOn = pinSet
	c.version++
	state, version := c.state, c.version
	c.mu.Unlock()

	c.log.Debug("loaded unlock status", "biometrics", DescribeStatus(status), "pin", pinSet)
	c.publish(state, version)
	return nil
}

// Toggle requests m to be turned on or off.
//
// PIN toggles are applied before Toggle returns. Biometric toggles are
// applied once the provider answers; use Wait to block until then.
func (c *Controller) Toggle(m Method, value bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	next, err := Toggle(c.state, m, value)
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, ErrBiometricUnavailable) && c.opts.Notifier != nil {
			c.opts.Notifier.NotifyError(err)
		}
		return err
	}
	startRoundTrip := next.biometricPending && !c.state.biometricPending
	prior := c.state.BiometricsStatus
	c.state = next
	c.version++
	version := c.version
	if startRoundTrip {
		c.wg.Add(1)
	}
	c.mu.Unlock()

	c.publish(next, version)
	if startRoundTrip {
		c.log.Info("requesting biometric unlock change", "enable", value)
		go c.setBiometrics(value, prior)
	}
	return nil
}

func (c *Controller) setBiometrics(enable bool, prior BiometricsStatus) {
	defer c.wg.Done()

	ctx := c.ctx
	if c.opts.ToggleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ToggleTimeout)
		defer cancel()
	}

	status, err := c.opts.Biometrics.SetEnabled(ctx, enable)
	if err != nil {
		// Re-read the authoritative status; the provider may have changed
		// some of it before failing.
		refreshed, refreshErr := c.opts.Biometrics.Status(c.ctx)
		if refreshErr != nil {
			refreshed = prior
		}
		status = refreshed
		err = &BiometricEnableFailedError{Enable: enable, Reason: err}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("discarding biometric result after close")
		return
	}
	c.state = Settle(c.state, status)
	c.version++
	state, version := c.state, c.version
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("biometric unlock change failed", "enable", enable, "error", err)
		if c.opts.Notifier != nil {
			c.opts.Notifier.NotifyError(err)
		}
	} else {
		c.log.Info("biometric unlock changed", "status", DescribeStatus(status))
	}
	c.publish(state, version)
}

// Continue completes the setup with the current choices.
func (c *Controller) Continue(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	state := c.state
	c.mu.Unlock()

	if state.IsPending() || !state.IsContinueEnabled() {
		return ErrContinueDisabled
	}
	return c.complete(ctx, Result{
		Flow:            state.Flow,
		BiometricUnlock: state.IsBiometricUnlockOn(),
		PINUnlock:       state.IsPinUnlockOn,
	})
}

// SetUpLater leaves the create-account flow without choosing a method.
func (c *Controller) SetUpLater(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	state := c.state
	c.mu.Unlock()

	if !state.ShouldDisplaySetUpLater() {
		return ErrSetUpLaterUnavailable
	}
	return c.complete(ctx, Result{Flow: state.Flow, Deferred: true})
}

func (c *Controller) complete(ctx context.Context, result Result) error {
	if c.opts.Completer == nil {
		return nil
	}
	if err := c.opts.Completer.CompleteSetup(ctx, result); err != nil {
		c.log.Error("failed to complete unlock setup", "error", err)
		return err
	}
	c.log.Info("unlock setup completed",
		"biometrics", result.BiometricUnlock, "pin", result.PINUnlock, "deferred", result.Deferred)
	return nil
}

// Wait blocks until no biometric request is in flight.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close dismisses the screen. A pending biometric result is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

// publish hands state to OnChange unless a newer state was already
// delivered.
func (c *Controller) publish(state SetupState, version uint64) {
	if c.opts.OnChange == nil {
		return
	}
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if version <= c.published {
		return
	}
	c.published = version
	c.opts.OnChange(state)
}
