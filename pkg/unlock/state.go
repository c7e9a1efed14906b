package unlock

// Flow is the flow the unlock setup screen was opened from.
type Flow int

const (
	CreateAccount Flow = iota
	Settings
)

func (f Flow) String() string {
	if f == Settings {
		return "settings"
	}
	return "create-account"
}

// ToggleStatus is the status of a single unlock method's toggle.
type ToggleStatus int

const (
	Off ToggleStatus = iota
	Pending
	On
)

func (s ToggleStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case On:
		return "on"
	default:
		return "off"
	}
}

// SetupState is the state of the vault unlock setup screen.
//
// Only BiometricsStatus, IsPinUnlockOn and the pending biometric request are
// stored; every other flag is derived on read.
type SetupState struct {
	Flow             Flow
	BiometricsStatus BiometricsStatus
	IsPinUnlockOn    bool

	biometricPending bool
	biometricTarget  bool
}

func NewSetupState(flow Flow) SetupState {
	return SetupState{Flow: flow}
}

// IsBiometricUnlockOn reports whether biometric unlock is enabled with a valid
// integrity state.
func (s SetupState) IsBiometricUnlockOn() bool {
	switch status := s.BiometricsStatus.(type) {
	case Available:
		return status.Enabled && status.HasValidIntegrity
	case NotAvailable:
		return false
	default:
		return false
	}
}

func (s SetupState) IsContinueEnabled() bool {
	return s.IsBiometricUnlockOn() || s.IsPinUnlockOn
}

// Methods returns the unlock methods to offer, biometrics first.
func (s SetupState) Methods() []Method {
	status, ok := s.BiometricsStatus.(Available)
	if !ok {
		return []Method{PIN}
	}
	return []Method{Biometrics(status.Kind), PIN}
}

// IsLast reports whether m is the last offered method.
func (s SetupState) IsLast(m Method) bool {
	methods := s.Methods()
	return methods[len(methods)-1] == m
}

func (s SetupState) IsOn(m Method) bool {
	switch m.field() {
	case biometricUnlockField:
		return s.IsBiometricUnlockOn()
	default:
		return s.IsPinUnlockOn
	}
}

// Status returns the toggle status of m. Only biometrics can be pending.
func (s SetupState) Status(m Method) ToggleStatus {
	if m.field() == biometricUnlockField && s.biometricPending {
		return Pending
	}
	if s.IsOn(m) {
		return On
	}
	return Off
}

// IsPending reports whether a biometric request is in flight.
func (s SetupState) IsPending() bool {
	return s.biometricPending
}

// SwitchValue is the value a toggle for m shows: the requested value while a
// request is pending, the authoritative value otherwise.
func (s SetupState) SwitchValue(m Method) bool {
	if m.field() == biometricUnlockField && s.biometricPending {
		return s.biometricTarget
	}
	return s.IsOn(m)
}

func (s SetupState) ShouldDisplaySetUpLater() bool {
	return s.Flow == CreateAccount
}

func (s SetupState) NavigationTitle() string {
	if s.Flow == Settings {
		return "Set up unlock"
	}
	return "Account setup"
}

func AvailableMethods(s SetupState) []Method { return s.Methods() }

func IsOn(s SetupState, m Method) bool { return s.IsOn(m) }

func CanContinue(s SetupState) bool { return s.IsContinueEnabled() }

// WouldContinue reports whether Continue would be enabled once m is set to
// value. A biometric change is saved before Continue runs, so callers check
// this before turning a method off.
func WouldContinue(s SetupState, m Method, value bool) bool {
	if value {
		return true
	}
	switch m.field() {
	case pinUnlockField:
		return s.IsBiometricUnlockOn()
	default:
		return s.IsPinUnlockOn
	}
}

// Toggle applies a toggle request for m.
//
// A PIN toggle is applied directly and never fails. A biometric toggle is
// only recorded as pending; the caller resolves it with Settle once
// the biometrics provider answers. When value already matches the current
// state the returned state is unchanged and nothing is pending.
func Toggle(s SetupState, m Method, value bool) (SetupState, error) {
	switch m.field() {
	case pinUnlockField:
		s.IsPinUnlockOn = value
		return s, nil
	default:
		if _, ok := s.BiometricsStatus.(Available); !ok {
			return s, ErrBiometricUnavailable
		}
		if s.biometricPending {
			return s, ErrToggleInFlight
		}
		if s.IsBiometricUnlockOn() == value {
			return s, nil
		}
		s.biometricPending = true
		s.biometricTarget = value
		return s, nil
	}
}

// Settle resolves a pending biometric request with the provider's
// authoritative status.
func Settle(s SetupState, status BiometricsStatus) SetupState {
	s.BiometricsStatus = status
	s.biometricPending = false
	s.biometricTarget = false
	return s
}
