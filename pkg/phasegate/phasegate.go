// Package phasegate provides the public API for embedding the
// phase-ordered middleware pipeline. This is the stable API for external
// consumers.
package phasegate

import (
	"github.com/phasegate/phasegate/internal/registry"
	"github.com/phasegate/phasegate/internal/router"
	"github.com/phasegate/phasegate/internal/runtime"
)

// Engine is the main entry point for running the pipeline server.
// See internal/runtime.Engine for full documentation.
type Engine = runtime.Engine

// Option is a functional option for configuring an Engine.
type Option = runtime.Option

// Registry is the live middleware registration collection.
type Registry = registry.Registry

// Spec carries the tag metadata supplied at registration.
type Spec = registry.Spec

// Entry is one registered handler plus its tags.
type Entry = registry.Entry

// Handler is a normal-flow pipeline handler.
type Handler = router.Handler

// ErrorHandler runs only after an earlier handler has signaled failure.
type ErrorHandler = router.ErrorHandler

// Next continues the chain; a non-nil argument switches to error flow.
type Next = router.Next

// Reserved phase names, always sorted after every configured phase.
const (
	PhaseError = registry.PhaseError
	PhaseFinal = registry.PhaseFinal
)

// New creates an Engine with the given options.
// Example:
//
//	eng, err := phasegate.New(
//	    phasegate.WithFileConfig("config.yaml"),
//	)
var New = runtime.New

// Configuration options
var (
	WithFileConfig = runtime.WithFileConfig
	WithConfig     = runtime.WithConfig
	WithLogger     = runtime.WithLogger
	WithRegistry   = runtime.WithRegistry
	WithPhaseOrder = runtime.WithPhaseOrder
)

// NewRegistry creates an empty middleware registry.
var NewRegistry = registry.New

// IsConfigError reports whether err is a registration spec failure.
var IsConfigError = registry.IsConfigError
