package indi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterUniqueIdempotent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entry    RegistryEntry
		repeat   int
		wantErr  bool
	}{
		{
			name:   "repeated identical registration is a no-op success",
			entry:  RegistryEntry{Device: "CCD Simulator", Name: "CCD_EXPOSURE", Permission: PermRW, Type: TypeNumber},
			repeat: 5,
		},
		{
			name:    "empty device is rejected",
			entry:   RegistryEntry{Device: "", Name: "CCD_EXPOSURE", Permission: PermRW, Type: TypeNumber},
			wantErr: true,
		},
		{
			name:    "empty name is rejected",
			entry:   RegistryEntry{Device: "CCD Simulator", Name: "", Permission: PermRW, Type: TypeNumber},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reg := NewRegistry()
			var err error
			n := tt.repeat
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				err = reg.RegisterUnique(tt.entry)
			}
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			got, found := reg.Lookup(tt.entry.Device, tt.entry.Name)
			require.True(t, found)
			assert.Equal(t, tt.entry, got)
		})
	}
}

func TestRegistryRegisterUniqueFirstDefinitionWinsOnShapeMismatch(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterUnique(RegistryEntry{Device: "d", Name: "p", Permission: PermRO, Type: TypeNumber}))
	require.NoError(t, reg.RegisterUnique(RegistryEntry{Device: "d", Name: "p", Permission: PermRW, Type: TypeSwitch}))

	got, found := reg.Lookup("d", "p")
	require.True(t, found)
	assert.Equal(t, PermRO, got.Permission, "a later redefinition with different shape must not overwrite the first")
	assert.Equal(t, TypeNumber, got.Type)
}

func TestRegistryLookupUnknown(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	_, found := reg.Lookup("CCD Simulator", "CCD_EXPOSURE")
	assert.False(t, found)
}

func TestRegistryIsReadOnly(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterUnique(RegistryEntry{Device: "d", Name: "ro", Permission: PermRO, Type: TypeNumber}))
	require.NoError(t, reg.RegisterUnique(RegistryEntry{Device: "d", Name: "rw", Permission: PermRW, Type: TypeNumber}))

	assert.True(t, reg.IsReadOnly("d", "ro"))
	assert.False(t, reg.IsReadOnly("d", "rw"))
	assert.False(t, reg.IsReadOnly("d", "missing"))
}

func TestRegistryLookupReturnsCopyNotAlias(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterUnique(RegistryEntry{Device: "d", Name: "p", Permission: PermRW, Type: TypeText}))

	got, found := reg.Lookup("d", "p")
	require.True(t, found)
	got.Permission = PermRO

	got2, _ := reg.Lookup("d", "p")
	assert.Equal(t, PermRW, got2.Permission, "mutating a Lookup result must not affect the registry")
}

func TestRegistryConcurrentRegisterAndLookup(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = reg.RegisterUnique(RegistryEntry{Device: "d", Name: "p", Permission: PermRW, Type: TypeNumber})
		}(i)
		go func(i int) {
			defer wg.Done()
			reg.Lookup("d", "p")
		}(i)
	}
	wg.Wait()

	_, found := reg.Lookup("d", "p")
	assert.True(t, found)
}

func TestRegistryForget(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterUnique(RegistryEntry{Device: "d", Name: "p1", Permission: PermRW, Type: TypeNumber}))
	require.NoError(t, reg.RegisterUnique(RegistryEntry{Device: "d", Name: "p2", Permission: PermRW, Type: TypeNumber}))

	reg.Forget("d", "p1")
	_, found := reg.Lookup("d", "p1")
	assert.False(t, found)
	_, found = reg.Lookup("d", "p2")
	assert.True(t, found)

	reg.Forget("d", "")
	_, found = reg.Lookup("d", "p2")
	assert.False(t, found)
}
