package indiconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goindi/indidriver/pkg/indi"
)

func TestLocationPrecedence(t *testing.T) {
	t.Parallel()

	t.Run("explicit path wins over everything", func(t *testing.T) {
		t.Parallel()
		got, err := Location("CCD Simulator", "/tmp/explicit.xml")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/explicit.xml", got)
	})

	t.Run("INDICONFIG env wins over home default", func(t *testing.T) {
		t.Setenv("INDICONFIG", "/tmp/from-env.xml")
		got, err := Location("CCD Simulator", "")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/from-env.xml", got)
	})

	t.Run("falls back to HOME/.indi with spaces replaced", func(t *testing.T) {
		t.Setenv("INDICONFIG", "")
		t.Setenv("HOME", "/home/obs")
		got, err := Location("CCD Simulator", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/obs", ".indi", "CCD_Simulator_config.xml"), got)
	})
}

func TestSaveAsDefaultAndLoadAndApplyRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "dev_config.xml")
	store, err := Open("CCD Simulator", path)
	require.NoError(t, err)

	numbers := []*indi.NumberVector{{
		Device: "CCD Simulator", Name: "CCD_EXPOSURE",
		Members: []indi.NumberMember{{Name: "CCD_EXPOSURE_VALUE", Format: "%6.2f", Value: 2.5}},
	}}
	switches := []*indi.SwitchVector{{
		Device: "CCD Simulator", Name: "CONNECTION", Rule: indi.RuleOneOfMany,
		Members: []indi.SwitchMember{{Name: "CONNECT", State: indi.On}, {Name: "DISCONNECT", State: indi.Off}},
	}}

	require.NoError(t, store.SaveAsDefault(numbers, nil, switches))
	assert.FileExists(t, path)

	var gotNumberValue string
	var gotSwitchName string
	var messages []string
	dispatch := func(device string, el indi.Element) indi.DispatchResult {
		switch el.XMLName.Local {
		case "newNumberVector":
			gotNumberValue = el.Children[0].Chardata
		case "newSwitchVector":
			for _, c := range el.Children {
				if c.Chardata == "On" {
					gotSwitchName = c.Attr("name")
				}
			}
		}
		return indi.DispatchResult{Outcome: indi.OutcomeHandled}
	}
	err = store.LoadAndApply("CCD Simulator", nil, false, func(device, text string) {
		messages = append(messages, text)
	}, dispatch)
	require.NoError(t, err)
	assert.Equal(t, "  2.50", gotNumberValue)
	assert.Equal(t, "CONNECT", gotSwitchName)
	assert.Len(t, messages, 2, "expects start and end [INFO] messages")
}

func TestLoadAndApplyFiltersByPropertyAndStopsAfterFirstMatch(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dev_config.xml")
	store, err := Open("dev", path)
	require.NoError(t, err)

	numbers := []*indi.NumberVector{
		{Device: "dev", Name: "A", Members: []indi.NumberMember{{Name: "V", Format: "%g", Value: 1}}},
		{Device: "dev", Name: "B", Members: []indi.NumberMember{{Name: "V", Format: "%g", Value: 2}}},
	}
	require.NoError(t, store.SaveAsDefault(numbers, nil, nil))

	var seen []string
	property := "B"
	err = store.LoadAndApply("dev", &property, true, nil, func(device string, el indi.Element) indi.DispatchResult {
		seen = append(seen, el.Attr("name"))
		return indi.DispatchResult{Outcome: indi.OutcomeHandled}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, seen)
}

func TestLoadAndApplySilentSuppressesMessages(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dev_config.xml")
	store, err := Open("dev", path)
	require.NoError(t, err)
	require.NoError(t, store.SaveAsDefault([]*indi.NumberVector{
		{Device: "dev", Name: "A", Members: []indi.NumberMember{{Name: "V", Format: "%g", Value: 1}}},
	}, nil, nil))

	var messages []string
	err = store.LoadAndApply("dev", nil, true, func(device, text string) {
		messages = append(messages, text)
	}, func(device string, el indi.Element) indi.DispatchResult {
		return indi.DispatchResult{Outcome: indi.OutcomeHandled}
	})
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestLoadAndApplyIgnoresOtherDevices(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dev_config.xml")
	store, err := Open("dev", path)
	require.NoError(t, err)
	require.NoError(t, store.SaveAsDefault([]*indi.NumberVector{
		{Device: "other-dev", Name: "A", Members: []indi.NumberMember{{Name: "V", Format: "%g", Value: 1}}},
	}, nil, nil))

	called := false
	err = store.LoadAndApply("dev", nil, false, nil, func(device string, el indi.Element) indi.DispatchResult {
		called = true
		return indi.DispatchResult{Outcome: indi.OutcomeHandled}
	})
	require.NoError(t, err)
	assert.False(t, called, "elements for other devices must not be dispatched")
}

func TestLoadAndApplyMissingFileIsNotAnError(t *testing.T) {
	t.Parallel()
	store, err := Open("dev", filepath.Join(t.TempDir(), "missing.xml"))
	require.NoError(t, err)
	require.NoError(t, store.LoadAndApply("dev", nil, true, nil, func(device string, el indi.Element) indi.DispatchResult {
		return indi.DispatchResult{Outcome: indi.OutcomeHandled}
	}))
}

func TestLoadAndApplySimpleBypassesDispatcher(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dev_config.xml")
	store, err := Open("CCD Simulator", path)
	require.NoError(t, err)
	require.NoError(t, store.SaveAsDefault(nil, nil, []*indi.SwitchVector{{
		Device: "CCD Simulator", Name: "CONNECTION",
		Members: []indi.SwitchMember{{Name: "CONNECT", State: indi.On}, {Name: "DISCONNECT", State: indi.Off}},
	}}))

	var gotSwitchName string
	require.NoError(t, store.LoadAndApplySimple(Applier{
		Switch: func(device, name string, members, values []string) error {
			for i, m := range members {
				if values[i] == "On" {
					gotSwitchName = m
				}
			}
			return nil
		},
	}))
	assert.Equal(t, "CONNECT", gotSwitchName)
}

func TestGetNumberTextSwitchAccessors(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dev_config.xml")
	store, err := Open("dev", path)
	require.NoError(t, err)

	numbers := []*indi.NumberVector{{
		Device: "dev", Name: "N", Members: []indi.NumberMember{{Name: "V", Format: "%g", Value: 3.0}},
	}}
	texts := []*indi.TextVector{{
		Device: "dev", Name: "T", Members: []indi.TextMember{{Name: "M", Value: "hello"}},
	}}
	switches := []*indi.SwitchVector{{
		Device: "dev", Name: "S", Members: []indi.SwitchMember{{Name: "A", State: indi.Off}, {Name: "B", State: indi.On}},
	}}
	require.NoError(t, store.SaveAsDefault(numbers, texts, switches))

	n, err := store.GetNumber("dev", "N", "V")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, n, 1e-9)

	text, err := store.GetText("dev", "T", "M")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	idx, err := store.GetOnSwitchIndex("dev", "S")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	name, err := store.GetOnSwitchName("dev", "S")
	require.NoError(t, err)
	assert.Equal(t, "B", name)

	_, err = store.GetNumber("dev", "N", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeRemovesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dev_config.xml")
	store, err := Open("dev", path)
	require.NoError(t, err)
	require.NoError(t, store.SaveAsDefault(nil, nil, nil))
	assert.FileExists(t, path)

	require.NoError(t, store.Purge())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, store.Purge(), "purging an already-absent file is not an error")
}

func TestSaveAsDefaultReplacesWholesale(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dev_config.xml")
	store, err := Open("dev", path)
	require.NoError(t, err)

	first := []*indi.NumberVector{{Device: "dev", Name: "A", Members: []indi.NumberMember{{Name: "V", Format: "%g", Value: 1}}}}
	require.NoError(t, store.SaveAsDefault(first, nil, nil))

	second := []*indi.NumberVector{{Device: "dev", Name: "B", Members: []indi.NumberMember{{Name: "V", Format: "%g", Value: 2}}}}
	require.NoError(t, store.SaveAsDefault(second, nil, nil))

	_, err = store.GetNumber("dev", "A", "V")
	assert.ErrorIs(t, err, ErrNotFound, "prior save's content must not survive a later SaveAsDefault")
	got, err := store.GetNumber("dev", "B", "V")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-9)
}
