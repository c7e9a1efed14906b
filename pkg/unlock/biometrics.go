package unlock

import "fmt"

// BiometricKind is the kind of biometric sensor the device offers.
type BiometricKind int

const (
	FaceScan BiometricKind = iota
	FingerprintScan
)

func (k BiometricKind) String() string {
	switch k {
	case FaceScan:
		return "FaceScan"
	case FingerprintScan:
		return "FingerprintScan"
	default:
		return fmt.Sprintf("BiometricKind(%d)", int(k))
	}
}

// BiometricsStatus is the biometric unlock status reported by the device.
// It is either Available or NotAvailable. A nil status means the status has
// not been determined yet.
type BiometricsStatus interface {
	isBiometricsStatus()
}

// Available means the device has a usable biometric sensor.
type Available struct {
	Kind              BiometricKind
	Enabled           bool
	HasValidIntegrity bool
}

// NotAvailable means the device cannot offer biometric unlock.
type NotAvailable struct{}

func (Available) isBiometricsStatus()    {}
func (NotAvailable) isBiometricsStatus() {}

// DescribeStatus renders a status for logs and CLI output.
func DescribeStatus(status BiometricsStatus) string {
	switch s := status.(type) {
	case Available:
		return fmt.Sprintf("available (%s, enabled=%t, integrity=%t)", s.Kind, s.Enabled, s.HasValidIntegrity)
	case NotAvailable:
		return "not available"
	default:
		return "unknown"
	}
}
