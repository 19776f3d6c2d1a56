// Package host wires the property registry, the per-device handlers a
// driver supplies, the audit store, and the debug API into a single
// supervised process, the way the teacher's own Server wires its
// repository, libvirt client, and API under a grace.Shepherd.
package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jimmicro/grace"
	"github.com/rs/zerolog"

	"github.com/goindi/indidriver/internal/indidriver/audit"
	"github.com/goindi/indidriver/internal/indidriver/debugapi"
	"github.com/goindi/indidriver/internal/indidriver/runtimeconfig"
	"github.com/goindi/indidriver/pkg/indi"
)

// Host owns the registry, the audit store, and the debug API for one
// driver process, and dispatches incoming wire elements on a device's
// behalf.
type Host struct {
	cfg      *runtimeconfig.Config
	registry *indi.Registry
	audit    *audit.Store
	debugAPI *debugapi.API
	log      zerolog.Logger

	devicesMu sync.RWMutex
	devices   map[string]indi.Handlers
}

// New builds a Host from cfg: one registry, one audit store at
// cfg.AuditDBPath, and one debug API bound to cfg.DebugAddr.
func New(cfg *runtimeconfig.Config) (*Host, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)
	zerolog.DefaultContextLogger = &logger

	registry := indi.NewRegistry()

	auditStore, err := audit.Open(cfg.AuditDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}

	api := debugapi.New(cfg.DebugAddr, registry, auditStore)

	return &Host{
		cfg:      cfg,
		registry: registry,
		audit:    auditStore,
		debugAPI: api,
		log:      logger,
		devices:  make(map[string]indi.Handlers),
	}, nil
}

// Registry returns the property registry backing this host, so a
// driver's own emit/update calls can share it.
func (h *Host) Registry() *indi.Registry {
	return h.registry
}

// RegisterDevice attaches a driver's callback set so Dispatch can route
// incoming elements addressed to device.
func (h *Host) RegisterDevice(device string, handlers indi.Handlers) {
	h.devicesMu.Lock()
	defer h.devicesMu.Unlock()
	h.devices[device] = handlers
}

// Dispatch is the single entry point a driver's I/O loop calls for
// every incoming XML command. It resolves device's registered
// handlers, calls indi.Dispatch, and asynchronously records one audit
// row per terminal outcome — a failure to audit never changes the
// returned DispatchResult.
func (h *Host) Dispatch(ctx context.Context, device string, el indi.Element) indi.DispatchResult {
	h.devicesMu.RLock()
	handlers, ok := h.devices[device]
	h.devicesMu.RUnlock()
	if !ok {
		handlers = indi.Handlers{}
	}

	result := indi.Dispatch(el, device, h.registry, handlers)

	go h.recordAudit(ctx, result)

	return result
}

func (h *Host) recordAudit(ctx context.Context, result indi.DispatchResult) {
	kind := audit.KindAccepted
	detail := "ok"
	if result.Err != nil {
		detail = result.Err.Error()
		switch result.Outcome {
		case indi.OutcomeUnknownTag:
			kind = audit.KindUnknownProperty
		case indi.OutcomeClientError:
			kind = classifyClientError(result.Err)
		}
	}

	if err := h.audit.Record(ctx, result.Device, result.Property, kind, detail); err != nil {
		h.log.Error().Err(err).Msg("record audit event")
	}
}

func classifyClientError(err error) audit.Kind {
	var dispatchErr *indi.DispatchError
	if errors.As(err, &dispatchErr) {
		switch dispatchErr.Kind {
		case indi.KindUnknownProperty:
			return audit.KindUnknownProperty
		case indi.KindReadOnly:
			return audit.KindReadOnlyViolation
		case indi.KindBadFormat:
			return audit.KindBadFormat
		}
	}
	return audit.KindBadFormat
}

// Run supervises the debug API under a grace.Shepherd until ctx is
// cancelled, identical in shape to the teacher's Server.Run.
func (h *Host) Run(ctx context.Context) error {
	services := []grace.Grace{h.debugAPI}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{log: h.log}),
	)

	shepherd.Start(ctx)
	return nil
}

// Shutdown stops the debug API and closes the audit store.
func (h *Host) Shutdown(ctx context.Context) error {
	if err := h.debugAPI.Shutdown(ctx); err != nil {
		return err
	}
	return h.audit.Close()
}

// Name implements grace.Grace.
func (h *Host) Name() string {
	return "INDI Driver Host"
}

// zerologLogger adapts zerolog.Logger to grace.Logger.
type zerologLogger struct {
	log zerolog.Logger
}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	event := l.log.Info()
	if len(args) > 0 {
		event.Msgf(msg, args...)
	} else {
		event.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	event := l.log.Error()
	if len(args) > 0 {
		event.Msgf(msg, args...)
	} else {
		event.Msg(msg)
	}
}
