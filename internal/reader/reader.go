// Package reader defines the polymorphic reader contract and the
// process-wide type-tag registry (§4.4), grounded in the original
// project's ReaderFactory (_examples/original_source/source/reader/reader.hh)
// but expressed the Go way: explicit registration in NewDefaultRegistry
// (design note §9, option (a)) instead of static pre-main registration,
// so the registry stays immutable-after-init and trivially testable with
// a fresh instance per test.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tinyskpub/internal/config"
	"tinyskpub/internal/frame"
	"tinyskpub/internal/logging"
)

// ErrUnknownType is returned by Create when no constructor is registered
// for the given message type (§4.4: "null if tag unknown").
var ErrUnknownType = errors.New("reader: unknown message type")

// Reader is the polymorphic "read one sample" contract (§4.4). Read
// returns (nil, nil) when no new sample is currently available — that
// is not an error. Read is called from exactly one producer goroutine;
// a Reader that drives background goroutines internally must synchronize
// its producer-visible state itself.
type Reader interface {
	Read(ctx context.Context) (*frame.Frame, error)
	// Close stops any internal goroutines and releases device handles.
	// It must not block indefinitely.
	Close() error
}

// Constructor builds a Reader for a given sensor name, pulling that
// sensor's params out of cfg. A non-nil error here is a fatal,
// one-shot construction failure (§7) — missing config key or device-open
// failure — and the caller must not retry.
type Constructor func(sensorName string, cfg *config.Config) (Reader, error)

// Registry is the process-wide type_tag -> constructor map (§4.4). The
// zero value is not usable; use NewRegistry. Registration only happens
// before readers are constructed; after that the map is read-only,
// matching §5's "written only before main; read-only afterward".
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry. Backing map allocation is
// lazy-free here (constructed eagerly) since Go has no static
// initialization-order hazard the way the C++ original's
// function-local static does (§4.4's "lazily constructed on first use"
// note is a C++-specific workaround; Go's package-level var init order
// is well-defined, so eager construction is equivalent and simpler).
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register installs a constructor for msgType. Returns true on insert,
// false if msgType is already registered (first registrant wins); a
// duplicate registration is logged critical but does not abort (§4.4,
// §7, §8 property 5/S6).
func (r *Registry) Register(msgType string, ctor Constructor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.constructors[msgType]; exists {
		logging.L().Critical("reader: constructor for message type %q already registered", msgType)
		return false
	}
	r.constructors[msgType] = ctor
	return true
}

// Create constructs a reader for the given sensor using the constructor
// registered under msgType. It returns ErrUnknownType if msgType has no
// constructor, or whatever fatal construction error the constructor
// itself returns.
func (r *Registry) Create(msgType, sensorName string, cfg *config.Config) (Reader, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[msgType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, msgType)
	}
	return ctor(sensorName, cfg)
}
