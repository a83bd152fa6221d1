package router

import (
	"fmt"
	"net/http"
	"strings"
)

// link is one mounted handler with its matching rule.
type link struct {
	method  string // exact method, empty = any
	path    string // exact path when method is set, prefix otherwise, empty = any
	handler Handler
	errFn   ErrorHandler
}

func (l *link) isError() bool { return l.errFn != nil }

// match reports whether the link applies to the request.
func (l *link) match(r *http.Request) bool {
	if l.method != "" {
		return strings.EqualFold(l.method, r.Method) && r.URL.Path == l.path
	}
	if l.path == "" {
		return true
	}
	return matchPrefix(l.path, r.URL.Path)
}

// matchPrefix matches whole path segments: "/hello" covers "/hello" and
// "/hello/x" but not "/helloworld".
func matchPrefix(prefix, path string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) || strings.HasSuffix(prefix, "/") {
		return true
	}
	return path[len(prefix)] == '/'
}

// Chain is a sequential Router implementation. Links run in mount order;
// normal links run while no error is pending, error links only while one is.
// Chain is safe for concurrent dispatch once mounting is complete; it is not
// safe to mount concurrently with dispatch.
type Chain struct {
	links []*link
}

// NewChain returns an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

func (c *Chain) Use(h Handler) {
	c.links = append(c.links, &link{handler: h})
}

func (c *Chain) UseError(h ErrorHandler) {
	c.links = append(c.links, &link{errFn: h})
}

func (c *Chain) Route(prefix string, h Handler) {
	c.links = append(c.links, &link{path: prefix, handler: h})
}

func (c *Chain) RouteError(prefix string, h ErrorHandler) {
	c.links = append(c.links, &link{path: prefix, errFn: h})
}

func (c *Chain) Handle(method, path string, h Handler) {
	c.links = append(c.links, &link{method: method, path: path, handler: h})
}

func (c *Chain) HandleError(method, path string, h ErrorHandler) {
	c.links = append(c.links, &link{method: method, path: path, errFn: h})
}

// Len returns the number of mounted links.
func (c *Chain) Len() int { return len(c.links) }

// ServeHTTP walks the chain from the first link. If the chain is exhausted
// with an error still pending it answers 500; if nothing wrote a response it
// answers 404.
func (c *Chain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := &chainWriter{ResponseWriter: w}
	c.dispatch(0, nil, cw, r)
}

func (c *Chain) dispatch(from int, err error, w *chainWriter, r *http.Request) {
	for i := from; i < len(c.links); i++ {
		l := c.links[i]
		if !l.match(r) {
			continue
		}
		if l.isError() != (err != nil) {
			continue
		}
		next := func(nextErr error) {
			c.dispatch(i+1, nextErr, w, r)
		}
		if err != nil {
			l.errFn(err, w, r, next)
		} else {
			l.handler(w, r, next)
		}
		return
	}

	if w.wrote {
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("internal server error: %v", err), http.StatusInternalServerError)
		return
	}
	http.NotFound(w, r)
}

// chainWriter tracks whether anything was written so the chain knows if its
// fallback responses still apply.
type chainWriter struct {
	http.ResponseWriter
	wrote bool
}

func (cw *chainWriter) WriteHeader(code int) {
	cw.wrote = true
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *chainWriter) Write(b []byte) (int, error) {
	cw.wrote = true
	return cw.ResponseWriter.Write(b)
}

// Flush forwards Flush to the underlying ResponseWriter if it supports
// http.Flusher, preserving streaming support.
func (cw *chainWriter) Flush() {
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

var _ Router = (*Chain)(nil)
