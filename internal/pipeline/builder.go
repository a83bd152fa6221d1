package pipeline

import (
	"github.com/phasegate/phasegate/internal/registry"
	"github.com/phasegate/phasegate/internal/router"
)

// Build mounts every entry of every resolved phase onto rt, phase by phase,
// entries in registration order within each phase.
//
// Mount scoping follows the entry's tags:
//   - path and method: a method+exact-path route.
//   - path only: path-prefix middleware, any method.
//   - neither: global middleware.
//
// Error-variant entries go through the same ordering and scoping rules as
// normal ones; the router invokes them only on failure propagation. Build
// returns rt once every entry is mounted.
func Build(phases []Phase, rt router.Router) router.Router {
	for _, p := range phases {
		for _, e := range p.Entries {
			mount(rt, e)
		}
	}
	return rt
}

func mount(rt router.Router, e *registry.Entry) {
	switch {
	case e.Path != "" && e.Method != "":
		if e.Kind == registry.KindError {
			rt.HandleError(e.Method, e.Path, e.ErrorHandler)
		} else {
			rt.Handle(e.Method, e.Path, e.Handler)
		}
	case e.Path != "":
		if e.Kind == registry.KindError {
			rt.RouteError(e.Path, e.ErrorHandler)
		} else {
			rt.Route(e.Path, e.Handler)
		}
	default:
		if e.Kind == registry.KindError {
			rt.UseError(e.ErrorHandler)
		} else {
			rt.Use(e.Handler)
		}
	}
}
