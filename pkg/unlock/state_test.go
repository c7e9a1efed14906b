package unlock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allStatuses() []BiometricsStatus {
	statuses := []BiometricsStatus{nil, NotAvailable{}}
	for _, kind := range []BiometricKind{FaceScan, FingerprintScan} {
		for _, enabled := range []bool{false, true} {
			for _, integrity := range []bool{false, true} {
				statuses = append(statuses, Available{Kind: kind, Enabled: enabled, HasValidIntegrity: integrity})
			}
		}
	}
	return statuses
}

func TestAvailableMethods(t *testing.T) {
	for _, status := range allStatuses() {
		t.Run(DescribeStatus(status), func(t *testing.T) {
			state := SetupState{BiometricsStatus: status}
			available, ok := status.(Available)
			if !ok {
				require.Equal(t, []Method{PIN}, AvailableMethods(state))
				return
			}
			require.Equal(t, []Method{Biometrics(available.Kind), PIN}, AvailableMethods(state))
		})
	}
}

func TestBiometricUnlockOnRequiresEnabledAndIntegrity(t *testing.T) {
	for _, status := range allStatuses() {
		for _, pin := range []bool{false, true} {
			state := SetupState{BiometricsStatus: status, IsPinUnlockOn: pin}
			available, ok := status.(Available)
			want := ok && available.Enabled && available.HasValidIntegrity
			require.Equal(t, want, state.IsBiometricUnlockOn(), DescribeStatus(status))
			require.Equal(t, want || pin, CanContinue(state), DescribeStatus(status))
		}
	}
}

func TestScenarios(t *testing.T) {
	face := Biometrics(FaceScan)

	t.Run("A: face scan enabled with valid integrity", func(t *testing.T) {
		state := SetupState{BiometricsStatus: Available{Kind: FaceScan, Enabled: true, HasValidIntegrity: true}}
		require.Equal(t, []Method{face, PIN}, AvailableMethods(state))
		require.True(t, IsOn(state, face))
		require.True(t, CanContinue(state))
	})

	t.Run("B: face scan enabled with invalid integrity", func(t *testing.T) {
		state := SetupState{BiometricsStatus: Available{Kind: FaceScan, Enabled: true, HasValidIntegrity: false}}
		require.False(t, IsOn(state, face))
		require.False(t, CanContinue(state))
	})

	t.Run("C: not available with pin on", func(t *testing.T) {
		state := SetupState{BiometricsStatus: NotAvailable{}, IsPinUnlockOn: true}
		require.Equal(t, []Method{PIN}, AvailableMethods(state))
		require.True(t, CanContinue(state))
	})

	t.Run("D: unknown status", func(t *testing.T) {
		state := SetupState{}
		require.Equal(t, []Method{PIN}, AvailableMethods(state))
		require.False(t, CanContinue(state))
	})

	t.Run("E: toggle pin on from D", func(t *testing.T) {
		state, err := Toggle(SetupState{}, PIN, true)
		require.NoError(t, err)
		require.True(t, state.IsPinUnlockOn)
		require.True(t, CanContinue(state))
		require.False(t, state.IsPending())
		require.Equal(t, On, state.Status(PIN))
	})
}

func TestTogglePinIsIdempotent(t *testing.T) {
	for _, pin := range []bool{false, true} {
		state := SetupState{BiometricsStatus: NotAvailable{}, IsPinUnlockOn: pin}
		next, err := Toggle(state, PIN, pin)
		require.NoError(t, err)
		require.Equal(t, state, next)
	}
}

func TestToggleBiometricsRequiresAvailableStatus(t *testing.T) {
	for _, status := range []BiometricsStatus{nil, NotAvailable{}} {
		state := SetupState{BiometricsStatus: status}
		next, err := Toggle(state, Biometrics(FingerprintScan), true)
		require.ErrorIs(t, err, ErrBiometricUnavailable)
		require.Equal(t, state, next)
	}
}

func TestToggleBiometricsIsPendingUntilSettled(t *testing.T) {
	fingerprint := Biometrics(FingerprintScan)
	state := SetupState{BiometricsStatus: Available{Kind: FingerprintScan, HasValidIntegrity: true}}

	pending, err := Toggle(state, fingerprint, true)
	require.NoError(t, err)
	require.Equal(t, Pending, pending.Status(fingerprint))
	require.True(t, pending.SwitchValue(fingerprint))
	require.False(t, pending.IsOn(fingerprint), "optimistic value must not count as on")

	_, err = Toggle(pending, fingerprint, false)
	require.ErrorIs(t, err, ErrToggleInFlight)

	settled := Settle(pending, Available{Kind: FingerprintScan, Enabled: true, HasValidIntegrity: true})
	require.Equal(t, On, settled.Status(fingerprint))
	require.False(t, settled.IsPending())
}

func TestToggleBiometricsToCurrentValueIsNoop(t *testing.T) {
	state := SetupState{BiometricsStatus: Available{Kind: FaceScan, Enabled: true, HasValidIntegrity: true}}
	next, err := Toggle(state, Biometrics(FaceScan), true)
	require.NoError(t, err)
	require.Equal(t, state, next)
}

func TestIsLast(t *testing.T) {
	state := SetupState{BiometricsStatus: Available{Kind: FaceScan}}
	require.False(t, state.IsLast(Biometrics(FaceScan)))
	require.True(t, state.IsLast(PIN))
}

func TestFlowPresentation(t *testing.T) {
	create := NewSetupState(CreateAccount)
	require.True(t, create.ShouldDisplaySetUpLater())
	require.Equal(t, "Account setup", create.NavigationTitle())

	settings := NewSetupState(Settings)
	require.False(t, settings.ShouldDisplaySetUpLater())
	require.Equal(t, "Set up unlock", settings.NavigationTitle())
}

func TestMethodIdentity(t *testing.T) {
	tests := []struct {
		method          Method
		id              string
		title           string
		accessibilityID string
	}{
		{Biometrics(FaceScan), "FaceScan", "Unlock with face scan", "UnlockWithBiometricsSwitch"},
		{Biometrics(FingerprintScan), "FingerprintScan", "Unlock with fingerprint", "UnlockWithBiometricsSwitch"},
		{PIN, "PIN", "Unlock with PIN", "UnlockWithPinSwitch"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			require.Equal(t, tt.id, tt.method.ID())
			require.Equal(t, tt.title, tt.method.Title())
			require.Equal(t, tt.accessibilityID, tt.method.AccessibilityID())

			parsed, err := ParseMethod(tt.id)
			require.NoError(t, err)
			require.Equal(t, tt.method, parsed)
		})
	}

	_, err := ParseMethod("Iris")
	require.Error(t, err)
}

func TestWouldContinue(t *testing.T) {
	face := Biometrics(FaceScan)
	biometricOnly := SetupState{BiometricsStatus: Available{Kind: FaceScan, Enabled: true, HasValidIntegrity: true}}
	pinOnly := SetupState{BiometricsStatus: Available{Kind: FaceScan, HasValidIntegrity: true}, IsPinUnlockOn: true}

	tests := []struct {
		name   string
		state  SetupState
		method Method
		value  bool
		want   bool
	}{
		{"turn off only biometric", biometricOnly, face, false, false},
		{"turn off only pin", pinOnly, PIN, false, false},
		{"turn off biometric with pin on", pinOnly, face, false, true},
		{"turn off pin with biometric on", biometricOnly, PIN, false, true},
		{"turn on from nothing", SetupState{}, PIN, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, WouldContinue(tt.state, tt.method, tt.value))
		})
	}
}
