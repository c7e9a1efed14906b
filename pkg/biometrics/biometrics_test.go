package biometrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bonjoski/unlocksmith/pkg/native"
	"github.com/bonjoski/unlocksmith/pkg/native/nativetest"
	"github.com/bonjoski/unlocksmith/pkg/unlock"
)

func newService(biometry native.Biometry) (*Service, *nativetest.Authenticator, *nativetest.MemoryStore) {
	auth := &nativetest.Authenticator{Kind: biometry, State: []byte("enrollment-1")}
	store := nativetest.NewMemoryStore()
	return New(auth, store), auth, store
}

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("no sensor", func(t *testing.T) {
		svc, _, _ := newService(native.BiometryNone)
		status, err := svc.Status(ctx)
		require.NoError(t, err)
		require.Equal(t, unlock.NotAvailable{}, status)
	})

	t.Run("sensor without enrollment", func(t *testing.T) {
		svc, _, _ := newService(native.BiometryFace)
		status, err := svc.Status(ctx)
		require.NoError(t, err)
		require.Equal(t, unlock.Available{Kind: unlock.FaceScan, Enabled: false, HasValidIntegrity: true}, status)
	})

	t.Run("kind override", func(t *testing.T) {
		svc, _, _ := newService(native.BiometryFace)
		svc.Kind = "fingerprint"
		status, err := svc.Status(ctx)
		require.NoError(t, err)
		require.Equal(t, unlock.FingerprintScan, status.(unlock.Available).Kind)
	})

	t.Run("store error", func(t *testing.T) {
		svc, _, store := newService(native.BiometryFingerprint)
		store.Err = errors.New("locked keychain")
		_, err := svc.Status(ctx)
		require.Error(t, err)
	})
}

func TestSetEnabled(t *testing.T) {
	ctx := context.Background()
	svc, auth, _ := newService(native.BiometryFingerprint)

	status, err := svc.SetEnabled(ctx, true)
	require.NoError(t, err)
	require.Equal(t, unlock.Available{Kind: unlock.FingerprintScan, Enabled: true, HasValidIntegrity: true}, status)
	require.Len(t, auth.Prompts, 1)

	status, err = svc.SetEnabled(ctx, false)
	require.NoError(t, err)
	require.Equal(t, unlock.Available{Kind: unlock.FingerprintScan, Enabled: false, HasValidIntegrity: true}, status)
}

func TestSetEnabledFailsWhenAuthenticationFails(t *testing.T) {
	ctx := context.Background()
	svc, auth, _ := newService(native.BiometryFace)
	auth.SetErr(native.ErrAuthentication)

	_, err := svc.SetEnabled(ctx, true)
	require.ErrorIs(t, err, native.ErrAuthentication)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.(unlock.Available).Enabled)
}

func TestSetEnabledWithoutSensor(t *testing.T) {
	svc, auth, _ := newService(native.BiometryNone)
	_, err := svc.SetEnabled(context.Background(), true)
	require.ErrorIs(t, err, unlock.ErrBiometricUnavailable)
	require.Empty(t, auth.Prompts)
}

func TestIntegrityInvalidatedByReenrollment(t *testing.T) {
	ctx := context.Background()
	svc, auth, _ := newService(native.BiometryFingerprint)

	_, err := svc.SetEnabled(ctx, true)
	require.NoError(t, err)
	require.NoError(t, svc.Authenticate(ctx))

	auth.Reenroll([]byte("enrollment-2"))

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, unlock.Available{Kind: unlock.FingerprintScan, Enabled: true, HasValidIntegrity: false}, status)
	require.ErrorIs(t, svc.Authenticate(ctx), ErrIntegrityChanged)

	// Enabling again records the new enrollment.
	status, err = svc.SetEnabled(ctx, true)
	require.NoError(t, err)
	require.True(t, status.(unlock.Available).HasValidIntegrity)
}

func TestAuthenticateRequiresEnabled(t *testing.T) {
	svc, _, _ := newService(native.BiometryFace)
	require.ErrorIs(t, svc.Authenticate(context.Background()), ErrNotEnabled)

	none, _, _ := newService(native.BiometryNone)
	require.ErrorIs(t, none.Authenticate(context.Background()), unlock.ErrBiometricUnavailable)
}

func TestServiceDrivesController(t *testing.T) {
	svc, _, _ := newService(native.BiometryFace)
	c := unlock.NewController(unlock.Options{Biometrics: svc})
	defer c.Close()

	require.NoError(t, c.LoadData(context.Background()))
	require.NoError(t, c.Toggle(unlock.Biometrics(unlock.FaceScan), true))
	c.Wait()

	require.True(t, c.State().IsBiometricUnlockOn())
	require.True(t, c.State().IsContinueEnabled())
}
