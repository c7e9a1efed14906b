//go:build darwin
// +build darwin

package native

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework Foundation -framework LocalAuthentication
#import <Foundation/Foundation.h>
#import <LocalAuthentication/LocalAuthentication.h>
#include <stdlib.h>
#include <string.h>

// 0: none, 1: Touch ID, 2: Face ID
static int la_biometry_type(void) {
	LAContext *context = [[LAContext alloc] init];
	NSError *error = nil;
	if (![context canEvaluatePolicy:LAPolicyDeviceOwnerAuthenticationWithBiometrics error:&error]) {
		return 0;
	}
	if (context.biometryType == LABiometryTypeFaceID) {
		return 2;
	}
	if (context.biometryType == LABiometryTypeTouchID) {
		return 1;
	}
	return 0;
}

static void *la_domain_state(size_t *length) {
	LAContext *context = [[LAContext alloc] init];
	NSError *error = nil;
	*length = 0;
	if (![context canEvaluatePolicy:LAPolicyDeviceOwnerAuthenticationWithBiometrics error:&error]) {
		return NULL;
	}
	NSData *state = context.evaluatedPolicyDomainState;
	if (state == nil || state.length == 0) {
		return NULL;
	}
	void *buf = malloc(state.length);
	memcpy(buf, state.bytes, state.length);
	*length = state.length;
	return buf;
}

// Returns NULL on success, or an error message the caller must free.
static char *la_authenticate(const char *prompt) {
	LAContext *context = [[LAContext alloc] init];
	__block char *failure = NULL;
	dispatch_semaphore_t done = dispatch_semaphore_create(0);
	NSString *reason = [NSString stringWithUTF8String:prompt];
	[context evaluatePolicy:LAPolicyDeviceOwnerAuthenticationWithBiometrics
	        localizedReason:reason
	                  reply:^(BOOL success, NSError *error) {
		if (!success) {
			const char *message = error ? [[error localizedDescription] UTF8String] : "authentication failed";
			failure = strdup(message);
		}
		dispatch_semaphore_signal(done);
	}];
	dispatch_semaphore_wait(done, DISPATCH_TIME_FOREVER);
	return failure;
}
*/
import "C"
import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"unsafe"
)

// laAuthenticator uses LocalAuthentication (Touch ID / Face ID).
type laAuthenticator struct{}

func NewAuthenticator() Authenticator {
	return laAuthenticator{}
}

func (laAuthenticator) Biometry() Biometry {
	switch C.la_biometry_type() {
	case 1:
		return BiometryFingerprint
	case 2:
		return BiometryFace
	default:
		return BiometryNone
	}
}

func (laAuthenticator) DomainState() ([]byte, error) {
	var length C.size_t
	buf := C.la_domain_state(&length)
	if buf == nil {
		return nil, ErrNoBiometry
	}
	defer C.free(buf)
	return C.GoBytes(buf, C.int(length)), nil
}

func (laAuthenticator) Authenticate(ctx context.Context, prompt string) error {
	if prompt == "" {
		prompt = "Authentication required to unlock your vault"
	}

	done := make(chan error, 1)
	go func() {
		cPrompt := C.CString(prompt)
		defer C.free(unsafe.Pointer(cPrompt))

		res := C.la_authenticate(cPrompt)
		if res != nil {
			defer C.free(unsafe.Pointer(res))
			done <- fmt.Errorf("%w: %s", ErrAuthentication, C.GoString(res))
			return
		}
		done <- nil
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func machineID() (string, error) {
	// ioreg -d2 -c IOPlatformExpertDevice | awk -F\" '/IOPlatformUUID/ {print $(NF-1)}'
	cmd := exec.Command("ioreg", "-d2", "-c", "IOPlatformExpertDevice")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get hardware info: %w", err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "IOPlatformUUID") {
			parts := strings.Split(line, "\"")
			if len(parts) >= 4 {
				return parts[3], nil
			}
		}
	}
	return "", fmt.Errorf("failed to extract IOPlatformUUID")
}
