// Command indidriverd is a toy CCD-simulator-style driver that wires
// pkg/indi, pkg/indiconfig, and internal/indidriver/host together end
// to end over stdin/stdout, the way a real INDI driver process talks
// to indiserver.
package main

import (
	"bufio"
	"context"
	"os"

	_ "github.com/jimmicro/version"
	"github.com/rs/zerolog/log"

	"github.com/goindi/indidriver/internal/indidriver/host"
	"github.com/goindi/indidriver/internal/indidriver/runtimeconfig"
	"github.com/goindi/indidriver/pkg/indi"
	"github.com/goindi/indidriver/pkg/indiconfig"
)

const deviceName = "CCD Simulator"

func main() {
	cfg, err := runtimeconfig.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load runtime config")
	}

	h, err := host.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create driver host")
	}

	configStore, err := indiconfig.Open(deviceName, "")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open config store")
	}

	connection := &indi.SwitchVector{
		Device: deviceName, Name: "CONNECTION", Label: "Connection",
		Permission: indi.PermRW, Rule: indi.RuleOneOfMany, State: indi.StateIdle,
		Members: []indi.SwitchMember{
			{Name: "CONNECT", Label: "Connect", State: indi.Off},
			{Name: "DISCONNECT", Label: "Disconnect", State: indi.On},
		},
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	h.RegisterDevice(deviceName, indi.Handlers{
		Redefine: func(device, name string) error {
			return indi.EmitDefSwitch(out, h.Registry(), connection, "")
		},
		BroadcastProperties: func(device string) error {
			if device != "" && device != deviceName {
				return nil
			}
			return indi.EmitDefSwitch(out, h.Registry(), connection, "")
		},
		UpdateSwitch: func(device, name string, names []string, states []indi.SwitchState) error {
			if err := indi.UpdateSwitch(connection, names, states); err != nil {
				return err
			}
			if err := indi.EmitSetSwitch(out, connection, ""); err != nil {
				return err
			}
			return configStore.SaveAsDefault(nil, nil, []*indi.SwitchVector{connection})
		},
		Message: func(device, text string) {
			_ = indi.EmitMessage(out, device, text)
			out.Flush()
		},
	})

	// Define (and so register) CONNECTION before replaying any saved
	// config, mirroring the original driver ordering: a config file can
	// only be safely dispatched once the property it targets exists in
	// the registry.
	if err := indi.EmitDefSwitch(out, h.Registry(), connection, "driver ready"); err != nil {
		log.Fatal().Err(err).Msg("failed to emit initial defSwitchVector")
	}
	out.Flush()

	ctx := context.Background()
	if err := configStore.LoadAndApply(deviceName, nil, false,
		func(device, text string) { _ = indi.EmitMessage(out, device, text); out.Flush() },
		func(device string, el indi.Element) indi.DispatchResult {
			return h.Dispatch(ctx, device, el)
		}); err != nil {
		log.Error().Err(err).Msg("failed to load persisted config, starting from defaults")
	}

	go func() {
		if err := h.Run(ctx); err != nil {
			log.Error().Err(err).Msg("driver host stopped")
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		el, err := indi.ParseElement(scanner.Bytes())
		if err != nil {
			log.Error().Err(err).Msg("failed to parse incoming element")
			continue
		}
		result := h.Dispatch(ctx, deviceName, el)
		if result.Err != nil {
			_ = indi.EmitMessage(out, deviceName, result.Err.Error())
			out.Flush()
		}
	}
}
