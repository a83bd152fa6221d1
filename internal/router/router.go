// Package router provides the mounting surface the pipeline builder targets
// and a sequential chain implementation of it.
//
// Handlers follow a continuation style: a handler either writes the response
// and stops, or calls next to hand the request to the following mounted
// handler. Passing a non-nil error to next switches the chain into error
// flow, in which only error handlers run until one of them clears the error
// by calling next(nil).
package router

import "net/http"

// Next continues the chain. A non-nil argument puts the chain into error
// flow; nil resumes normal flow.
type Next func(error)

// Handler processes a request during normal flow.
type Handler func(w http.ResponseWriter, r *http.Request, next Next)

// ErrorHandler processes a request during error flow. It receives the error
// that put the chain into error flow.
type ErrorHandler func(err error, w http.ResponseWriter, r *http.Request, next Next)

// Router is the mounting surface consumed by the pipeline builder. Mount
// order is execution order.
type Router interface {
	// Use mounts a handler invoked for every request.
	Use(h Handler)
	// UseError mounts an error handler invoked for every request in error flow.
	UseError(h ErrorHandler)
	// Route mounts a handler scoped to a path prefix, any method.
	Route(prefix string, h Handler)
	// RouteError mounts an error handler scoped to a path prefix, any method.
	RouteError(prefix string, h ErrorHandler)
	// Handle mounts a handler for one method and exact path.
	Handle(method, path string, h Handler)
	// HandleError mounts an error handler for one method and exact path.
	HandleError(method, path string, h ErrorHandler)

	http.Handler
}
