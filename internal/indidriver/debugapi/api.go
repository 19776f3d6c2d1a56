// Package debugapi exposes a read-only HTTP introspection surface over
// the property registry and the audit log. It never accepts mutations:
// the only way to change a property is through the wire protocol
// dispatcher, so this package cannot become a second control plane.
package debugapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/goindi/indidriver/internal/indidriver/audit"
	"github.com/goindi/indidriver/pkg/apierror"
	"github.com/goindi/indidriver/pkg/ginx"
	"github.com/goindi/indidriver/pkg/indi"
)

// API is a gin HTTP server bound to a single address, read-only over
// the registry and audit store it was built with.
type API struct {
	engine *gin.Engine
	server *http.Server
	addr   string

	registry *indi.Registry
	audit    *audit.Store
}

// New builds the debug API bound to addr (expected to be a loopback
// address unless the host's runtime config explicitly widens it).
func New(addr string, registry *indi.Registry, store *audit.Store) *API {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	api := &API{
		engine:   engine,
		addr:     addr,
		registry: registry,
		audit:    store,
	}

	engine.GET("/debug/registry", api.listRegistry)
	engine.GET("/debug/registry/:device/:name", api.getRegistryEntry)
	engine.GET("/debug/audit", api.listAudit)

	printRoutes(engine)

	api.server = &http.Server{
		Addr:    addr,
		Handler: engine,
	}
	return api
}

func printRoutes(engine *gin.Engine) {
	routes := engine.Routes()
	if len(routes) == 0 {
		return
	}
	fmt.Fprintf(os.Stdout, "\n[Debug API Routes]\n")
	fmt.Fprintf(os.Stdout, "Method   Path\n")
	fmt.Fprintf(os.Stdout, "----------------------------\n")
	for _, route := range routes {
		fmt.Fprintf(os.Stdout, "%-8s %s\n", route.Method, route.Path)
	}
	fmt.Fprintf(os.Stdout, "\n")
}

func (a *API) listRegistry(c *gin.Context) {
	device := c.Query("device")
	ginx.RenderResponse(c, a.registry.Snapshot(device))
}

func (a *API) getRegistryEntry(c *gin.Context) {
	device := c.Param("device")
	name := c.Param("name")

	entry, ok := a.registry.Lookup(device, name)
	if !ok {
		ginx.RenderError(c, http.StatusNotFound, apierror.ErrUnknownProperty)
		return
	}
	ginx.RenderResponse(c, entry)
}

func (a *API) listAudit(c *gin.Context) {
	device := c.Query("device")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			ginx.RenderError(c, http.StatusBadRequest, apierror.ErrBadElementFormat)
			return
		}
		limit = n
	}

	events, err := a.audit.List(c.Request.Context(), device, limit)
	if err != nil {
		ginx.RenderError(c, http.StatusInternalServerError, apierror.ErrConfigIO)
		return
	}
	ginx.RenderResponse(c, events)
}

// Run implements grace.Grace: it serves until ctx is cancelled.
func (a *API) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown implements grace.Grace.
func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name implements grace.Grace.
func (a *API) Name() string {
	return "INDI Debug API"
}
