package models

import (
	"errors"
	"fmt"

	"github.com/algorand/go-deadlock"

	"github.com/algorandfoundation/algokit-go/encoding/msgpack"
)

// ErrAlreadyRegistered is returned when a tag is registered twice.
var ErrAlreadyRegistered = errors.New("model tag already registered")

// ErrUnknownModel is returned when a lookup finds no constructor for a tag.
var ErrUnknownModel = errors.New("no model registered for tag")

// Constructor produces an empty model instance suitable for decoding into.
type Constructor func() interface{}

// Registry maps stable string tags to model constructors. This mechanism
// allows for loose coupling between wire payloads and the concrete model
// types that decode them. It is extremely similar to the way sql.DB
// drivers are configured and used.
type Registry struct {
	mu           deadlock.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register installs a constructor for the given tag. Registering the same
// tag twice fails.
func (r *Registry) Register(tag string, constructor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.constructors[tag]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, tag)
	}
	r.constructors[tag] = constructor
	return nil
}

// New constructs an empty model instance for the given tag.
func (r *Registry) New(tag string) (interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	constructor, ok := r.constructors[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, tag)
	}
	return constructor(), nil
}

// Tags returns the registered tags in unspecified order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.constructors))
	for tag := range r.constructors {
		tags = append(tags, tag)
	}
	return tags
}

// JSONToMsgpack decodes a JSON payload into the model registered under tag
// and re-encodes it as canonical msgpack.
func (r *Registry) JSONToMsgpack(tag string, data []byte) ([]byte, error) {
	model, err := r.New(tag)
	if err != nil {
		return nil, err
	}
	if err := msgpack.LenientDecodeJSON(data, model); err != nil {
		return nil, fmt.Errorf("decoding %s from json: %w", tag, err)
	}
	return msgpack.Encode(model), nil
}

// MsgpackToJSON decodes a msgpack payload into the model registered under
// tag and re-encodes it as canonical JSON.
func (r *Registry) MsgpackToJSON(tag string, data []byte) ([]byte, error) {
	model, err := r.New(tag)
	if err != nil {
		return nil, err
	}
	if err := msgpack.LenientDecode(data, model); err != nil {
		return nil, fmt.Errorf("decoding %s from msgpack: %w", tag, err)
	}
	return msgpack.EncodeJSON(model), nil
}

// Default is the process-wide registry. Model families install themselves
// here once at startup; lookups afterwards are read-only.
var Default = NewRegistry()

// RegisterSimulationModels installs the simulate request/response family in
// the given registry. It is intended to run once at startup.
func RegisterSimulationModels(r *Registry) error {
	entries := map[string]Constructor{
		TagSimulateRequest:  func() interface{} { return &SimulateRequest{} },
		TagSimulateResponse: func() interface{} { return &SimulateResponse{} },
	}
	for tag, constructor := range entries {
		if err := r.Register(tag, constructor); err != nil {
			return err
		}
	}
	return nil
}
