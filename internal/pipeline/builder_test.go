package pipeline

import (
	"net/http"
	"testing"

	"github.com/phasegate/phasegate/internal/registry"
	"github.com/phasegate/phasegate/internal/router"
)

// mountCall records one mount operation against the fake router.
type mountCall struct {
	op     string // use, useError, route, routeError, handle, handleError
	method string
	path   string
}

// fakeRouter records the sequence and scoping of mount calls.
type fakeRouter struct {
	calls []mountCall
}

func (f *fakeRouter) Use(h router.Handler) {
	f.calls = append(f.calls, mountCall{op: "use"})
}

func (f *fakeRouter) UseError(h router.ErrorHandler) {
	f.calls = append(f.calls, mountCall{op: "useError"})
}

func (f *fakeRouter) Route(prefix string, h router.Handler) {
	f.calls = append(f.calls, mountCall{op: "route", path: prefix})
}

func (f *fakeRouter) RouteError(prefix string, h router.ErrorHandler) {
	f.calls = append(f.calls, mountCall{op: "routeError", path: prefix})
}

func (f *fakeRouter) Handle(method, path string, h router.Handler) {
	f.calls = append(f.calls, mountCall{op: "handle", method: method, path: path})
}

func (f *fakeRouter) HandleError(method, path string, h router.ErrorHandler) {
	f.calls = append(f.calls, mountCall{op: "handleError", method: method, path: path})
}

func (f *fakeRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {}

func noop() router.Handler {
	return func(w http.ResponseWriter, r *http.Request, next router.Next) { next(nil) }
}

func noopError() router.ErrorHandler {
	return func(err error, w http.ResponseWriter, r *http.Request, next router.Next) { next(err) }
}

func TestBuild_MountScoping(t *testing.T) {
	phases := []Phase{
		{Name: "log", Entries: []*registry.Entry{
			{Name: "global", Kind: registry.KindNormal, Handler: noop()},
		}},
		{Name: "auth", Entries: []*registry.Entry{
			{Name: "scoped", Path: "/admin", Kind: registry.KindNormal, Handler: noop()},
		}},
		{Name: "route", Entries: []*registry.Entry{
			{Name: "exact", Path: "/hello", Method: "GET", Kind: registry.KindNormal, Handler: noop()},
		}},
		{Name: registry.PhaseError, Entries: []*registry.Entry{
			{Name: "errh", Kind: registry.KindError, ErrorHandler: noopError()},
		}},
	}

	rt := &fakeRouter{}
	got := Build(phases, rt)
	if got != router.Router(rt) {
		t.Error("Build should return the supplied router handle")
	}

	want := []mountCall{
		{op: "use"},
		{op: "route", path: "/admin"},
		{op: "handle", method: "GET", path: "/hello"},
		{op: "useError"},
	}
	if len(rt.calls) != len(want) {
		t.Fatalf("mount calls = %+v, want %+v", rt.calls, want)
	}
	for i := range want {
		if rt.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, rt.calls[i], want[i])
		}
	}
}

func TestBuild_ErrorVariantScoping(t *testing.T) {
	// Error-variant entries go through the same path/method scoping rules.
	phases := []Phase{
		{Name: registry.PhaseError, Entries: []*registry.Entry{
			{Name: "e1", Path: "/api", Kind: registry.KindError, ErrorHandler: noopError()},
			{Name: "e2", Path: "/api/v1", Method: "POST", Kind: registry.KindError, ErrorHandler: noopError()},
		}},
	}

	rt := &fakeRouter{}
	Build(phases, rt)

	want := []mountCall{
		{op: "routeError", path: "/api"},
		{op: "handleError", method: "POST", path: "/api/v1"},
	}
	for i := range want {
		if rt.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, rt.calls[i], want[i])
		}
	}
}

func TestBuild_PreservesEntryOrderWithinPhase(t *testing.T) {
	phases := []Phase{
		{Name: "route", Entries: []*registry.Entry{
			{Name: "a", Path: "/a", Kind: registry.KindNormal, Handler: noop()},
			{Name: "b", Path: "/b", Kind: registry.KindNormal, Handler: noop()},
			{Name: "c", Path: "/c", Kind: registry.KindNormal, Handler: noop()},
		}},
	}

	rt := &fakeRouter{}
	Build(phases, rt)

	wantPaths := []string{"/a", "/b", "/c"}
	for i, p := range wantPaths {
		if rt.calls[i].path != p {
			t.Errorf("call %d path = %q, want %q", i, rt.calls[i].path, p)
		}
	}
}
