package unlock

import "fmt"

// Method is a vault unlock method: biometrics of a given kind, or a PIN.
// Methods are comparable values.
type Method struct {
	biometric bool
	kind      BiometricKind
}

// PIN unlocks the vault with the user's PIN.
var PIN = Method{}

// Biometrics returns the biometric unlock method for kind.
func Biometrics(kind BiometricKind) Method {
	return Method{biometric: true, kind: kind}
}

func (m Method) IsBiometric() bool { return m.biometric }

// Kind returns the biometric kind; ok is false for PIN.
func (m Method) Kind() (kind BiometricKind, ok bool) {
	return m.kind, m.biometric
}

// ID is the stable identifier of the method.
func (m Method) ID() string {
	if !m.biometric {
		return "PIN"
	}
	return m.kind.String()
}

func (m Method) String() string { return m.ID() }

// Title is the label of the method's toggle.
func (m Method) Title() string {
	if !m.biometric {
		return "Unlock with PIN"
	}
	switch m.kind {
	case FaceScan:
		return "Unlock with face scan"
	case FingerprintScan:
		return "Unlock with fingerprint"
	default:
		return "Unlock with biometrics"
	}
}

func (m Method) AccessibilityID() string {
	if m.biometric {
		return "UnlockWithBiometricsSwitch"
	}
	return "UnlockWithPinSwitch"
}

// ParseMethod is the inverse of Method.ID.
func ParseMethod(id string) (Method, error) {
	switch id {
	case "PIN":
		return PIN, nil
	case "FaceScan":
		return Biometrics(FaceScan), nil
	case "FingerprintScan":
		return Biometrics(FingerprintScan), nil
	default:
		return Method{}, fmt.Errorf("unknown unlock method: %q", id)
	}
}

// field names the state flag a method controls.
type field int

const (
	biometricUnlockField field = iota
	pinUnlockField
)

func (m Method) field() field {
	if m.biometric {
		return biometricUnlockField
	}
	return pinUnlockField
}
