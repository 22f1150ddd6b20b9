package satoru

import (
	"fmt"
	"sort"
	"strings"

	"satoruIndexer/internal/felt"
	"satoruIndexer/internal/model"
)

// Config configures registry behavior.
type Config struct {
	// KeyMap binds extra event keys to event names, for deployments that
	// emit events under keys other than the derived ones.
	KeyMap map[string]string
}

// Registry dispatches raw events to the decoder bound to their event key.
type Registry struct {
	byKey  map[string]Decoder
	byName map[string]Decoder
}

// NewRegistry builds a registry from decoders. Two decoders may not share a key.
func NewRegistry(cfg Config, decoders ...Decoder) (*Registry, error) {
	r := &Registry{
		byKey:  make(map[string]Decoder, len(decoders)),
		byName: make(map[string]Decoder, len(decoders)),
	}

	for _, d := range decoders {
		key, ok := felt.Canonical(d.Key())
		if !ok {
			return nil, fmt.Errorf("decoder %s has invalid key: %s", d.EventName(), d.Key())
		}
		if prev, exists := r.byKey[key]; exists {
			return nil, fmt.Errorf("duplicate event key %s for %s and %s", key, prev.EventName(), d.EventName())
		}
		r.byKey[key] = d
		r.byName[strings.ToLower(d.EventName())] = d
	}

	for rawKey, name := range cfg.KeyMap {
		if strings.TrimSpace(rawKey) == "" {
			continue
		}
		d, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unsupported event name in key map: %s", name)
		}
		key, ok := felt.Canonical(strings.TrimSpace(rawKey))
		if !ok {
			return nil, fmt.Errorf("invalid event key in key map: %s", rawKey)
		}
		if prev, exists := r.byKey[key]; exists && prev != d {
			return nil, fmt.Errorf("event key %s already bound to %s", key, prev.EventName())
		}
		r.byKey[key] = d
	}

	return r, nil
}

// NewDefaultRegistry builds a registry with every supported decoder.
func NewDefaultRegistry(cfg Config) (*Registry, error) {
	return NewRegistry(cfg, DefaultDecoders()...)
}

// Lookup returns the decoder bound to an event key.
func (r *Registry) Lookup(key string) (Decoder, bool) {
	canonical, ok := felt.Canonical(key)
	if !ok {
		return nil, false
	}
	d, ok := r.byKey[canonical]
	return d, ok
}

// CanDecode checks if the event key is supported.
func (r *Registry) CanDecode(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Keys returns every bound key in ascending order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode converts a raw event into a record. Events with an unbound key
// return an *UnknownEventError.
func (r *Registry) Decode(raw model.RawEvent) (model.Record, error) {
	d, ok := r.Lookup(raw.EventKey)
	if !ok {
		return nil, &UnknownEventError{Key: raw.EventKey}
	}
	return d.Decode(raw), nil
}
