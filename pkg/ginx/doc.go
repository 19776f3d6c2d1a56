// Package ginx provides content-negotiated response rendering for gin
// handlers: JSON by default, XML when the caller asks for it via the
// Accept header or an explicit SetResponseFormat.
//
// Usage:
//
//	router.GET("/registry/:device/:name", func(c *gin.Context) {
//	    entry, ok := registry.Lookup(c.Param("device"), c.Param("name"))
//	    if !ok {
//	        ginx.RenderError(c, http.StatusNotFound, apierror.ErrUnknownProperty)
//	        return
//	    }
//	    ginx.RenderResponse(c, entry)
//	})
package ginx
