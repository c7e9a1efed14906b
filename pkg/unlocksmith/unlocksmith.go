package unlocksmith

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bonjoski/unlocksmith/pkg/biometrics"
	"github.com/bonjoski/unlocksmith/pkg/config"
	"github.com/bonjoski/unlocksmith/pkg/logging"
	"github.com/bonjoski/unlocksmith/pkg/native"
	"github.com/bonjoski/unlocksmith/pkg/notify"
	"github.com/bonjoski/unlocksmith/pkg/pin"
	"github.com/bonjoski/unlocksmith/pkg/unlock"
	"github.com/bonjoski/unlocksmith/pkg/vault"
)

const (
	DefaultService = "com.unlocksmith.keychain"
	Version        = "0.3.0"
)

// Notifier shows transient notices to the user.
type Notifier interface {
	NotifyError(err error)
	NotifyLocked()
}

// Services are the collaborators an App is built from. Zero fields get
// defaults that do nothing, except Keychain, Authenticator and VaultStore
// which are required.
type Services struct {
	Config        *config.Config
	Logger        *slog.Logger
	Notifier      Notifier
	Keychain      native.Store
	Authenticator native.Authenticator
	VaultStore    vault.Store
}

// App wires the unlock setup, the unlock methods and the vault together.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Notifier   Notifier
	Biometrics *biometrics.Service
	PIN        *pin.Service
	Vault      *vault.Vault
}

// New builds an App for this machine from ~/.unlocksmith/config.yml.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Vault files are encrypted with a key derived from the hardware id, so
	// they can only be read on this machine.
	deviceKey, err := native.DeviceKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive device key: %w", err)
	}
	dir, err := cfg.VaultDir()
	if err != nil {
		return nil, err
	}
	store, err := vault.NewDiskStore(dir, deviceKey)
	if err != nil {
		return nil, err
	}

	return NewWithServices(Services{
		Config:        cfg,
		Logger:        logging.New(os.Stderr, cfg.Log.Level),
		Notifier:      notify.New(cfg.Notifications.Method),
		Keychain:      native.NewStore(DefaultService),
		Authenticator: native.NewAuthenticator(),
		VaultStore:    store,
	})
}

func NewWithServices(s Services) (*App, error) {
	if s.Keychain == nil || s.Authenticator == nil || s.VaultStore == nil {
		return nil, fmt.Errorf("keychain, authenticator and vault store are required")
	}
	cfg := s.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	notifier := s.Notifier
	if notifier == nil {
		notifier = notify.New("silent")
	}

	timeout, err := cfg.VaultTimeout()
	if err != nil {
		return nil, err
	}

	bio := biometrics.New(s.Authenticator, s.Keychain)
	bio.Prompt = cfg.Biometrics.Prompt
	bio.Kind = cfg.Biometrics.Kind

	pins := pin.New(s.Keychain)
	pins.MinLength = cfg.PIN.MinLength
	pins.MaxAttempts = cfg.PIN.MaxAttempts

	app := &App{
		Config:     cfg,
		Logger:     logger,
		Notifier:   notifier,
		Biometrics: bio,
		PIN:        pins,
	}
	app.Vault = vault.New(s.VaultStore, vault.Options{
		PIN:        pins,
		Biometrics: bio,
		Timeout:    timeout,
		OnAutoLock: func() {
			logger.Info("vault locked after inactivity")
			notifier.NotifyLocked()
		},
	})
	return app, nil
}

// PINPrompt asks the user for a new PIN.
type PINPrompt func(ctx context.Context) (string, error)

// NewSetupController opens the unlock setup for flow. prompt is used when
// the user turns PIN unlock on; it may be nil when PIN cannot be chosen.
func (a *App) NewSetupController(flow unlock.Flow, prompt PINPrompt, onChange func(unlock.SetupState)) *unlock.Controller {
	toggleTimeout, _ := a.Config.ToggleTimeout()
	return unlock.NewController(unlock.Options{
		Flow:          flow,
		Biometrics:    a.Biometrics,
		PIN:           a.PIN,
		Completer:     &setupCompleter{app: a, prompt: prompt},
		Notifier:      a.Notifier,
		Logger:        a.Logger,
		ToggleTimeout: toggleTimeout,
		OnChange:      onChange,
	})
}

// Unlock unlocks the vault with method.
func (a *App) Unlock(ctx context.Context, method unlock.Method, pinCode string) error {
	if err := a.Vault.Unlock(ctx, method, pinCode); err != nil {
		a.Logger.Warn("vault unlock failed", "method", method.ID(), "error", err)
		return err
	}
	a.Logger.Info("vault unlocked", "method", method.ID())
	return nil
}

// ParseFlow parses "create-account" or "settings".
func ParseFlow(s string) (unlock.Flow, error) {
	switch s {
	case "create-account", "":
		return unlock.CreateAccount, nil
	case "settings":
		return unlock.Settings, nil
	default:
		return 0, fmt.Errorf("unknown setup flow: %q", s)
	}
}
