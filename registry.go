package stress

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/PaesslerAG/jsonpath"
	"gopkg.in/yaml.v3"
)

// RegistryVersion is the latest registry document version this package reads.
const RegistryVersion = 1

//go:embed scenarios.yaml
var defaultScenarios []byte

// Registry holds the named scenarios: scenario name to instrument to shock.
//
// A Registry is read-only once decoded, so it can be shared.
type Registry struct {
	names  []string // in document order
	shocks map[string]map[string]float64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{shocks: make(map[string]map[string]float64)}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := DecodeRegistry(bytes.NewReader(defaultScenarios))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded scenarios: %v", err))
	}
	return r
})

// DefaultRegistry returns the built-in named scenarios.
func DefaultRegistry() *Registry { return defaultRegistry() }

// Len returns the number of scenarios.
func (r *Registry) Len() int { return len(r.names) }

// Names returns the scenario names in document order.
func (r *Registry) Names() []string { return slices.Clone(r.names) }

// Scenario returns the named scenario, or an *UnknownScenarioError.
func (r *Registry) Scenario(name string) (NamedScenario, error) {
	shocks, ok := r.shocks[name]
	if !ok {
		return NamedScenario{}, &UnknownScenarioError{Name: name}
	}
	return NamedScenario{name: name, shocks: maps.Clone(shocks)}, nil
}

// Scenarios returns all the scenarios in document order.
func (r *Registry) Scenarios() []NamedScenario {
	all := make([]NamedScenario, 0, len(r.names))
	for _, n := range r.names {
		s, _ := r.Scenario(n)
		all = append(all, s)
	}
	return all
}

// add appends a scenario definition after validating it.
func (r *Registry) add(name string, shocks map[string]float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("scenario with an empty name")
	}
	if _, exists := r.shocks[name]; exists {
		return fmt.Errorf("scenario %q is defined twice", name)
	}
	def := make(map[string]float64, len(shocks))
	for id, v := range shocks {
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("scenario %q: empty instrument", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scenario %q: instrument %q: shock is not a finite number", name, id)
		}
		def[id] = v
	}
	r.names = append(r.names, name)
	r.shocks[name] = def
	return nil
}

// DecodeRegistry reads a YAML registry document.
//
// The document has a 'version' and a 'scenarios' mapping of scenario name to a
// mapping of instrument to shock:
//
//	version: 1
//	scenarios:
//	  Global Financial Crisis 2008:
//	    AAPL: -0.5
//	    MSFT: -0.3
//
// Scenario order is preserved. An empty document is an empty registry.
func DecodeRegistry(r io.Reader) (*Registry, error) {
	var doc struct {
		Version   int       `yaml:"version"`
		Scenarios yaml.Node `yaml:"scenarios"`
	}
	reg := NewRegistry()
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return reg, nil
		}
		return nil, fmt.Errorf("cannot decode scenario registry: %w", err)
	}
	if doc.Version > RegistryVersion {
		return nil, fmt.Errorf("unsupported scenario registry version %d (max %d)", doc.Version, RegistryVersion)
	}
	switch doc.Scenarios.Kind {
	case 0:
		return reg, nil
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: 'scenarios' must be a mapping of scenario name to shocks", doc.Scenarios.Line)
	}

	content := doc.Scenarios.Content
	for i := 0; i+1 < len(content); i += 2 {
		key, value := content[i], content[i+1]
		var shocks map[string]float64
		if err := value.Decode(&shocks); err != nil {
			return nil, fmt.Errorf("line %d: scenario %q: %w", value.Line, key.Value, err)
		}
		if err := reg.add(key.Value, shocks); err != nil {
			return nil, fmt.Errorf("line %d: %w", key.Line, err)
		}
	}
	return reg, nil
}

// DecodeRegistryJSON reads a registry from a JSON document.
//
// 'path' is a JSONPath expression selecting the scenarios inside the
// document, so that the registry can be part of a larger configuration. An
// empty path defaults to "$.scenarios". The selected value is either an
// object of scenario name to shocks (names are then sorted), or an array of
// {"name": ..., "shocks": {...}} objects (order is then preserved).
func DecodeRegistryJSON(r io.Reader, path string) (*Registry, error) {
	if path == "" {
		path = "$.scenarios"
	}
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode scenario registry: %w", err)
	}
	selected, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot select %q in scenario registry: %w", path, err)
	}

	reg := NewRegistry()
	switch v := selected.(type) {
	case map[string]any:
		for _, name := range sortedKeys(v) {
			shocks, err := jsonShocks(v[name])
			if err != nil {
				return nil, fmt.Errorf("scenario %q: %w", name, err)
			}
			if err := reg.add(name, shocks); err != nil {
				return nil, err
			}
		}
	case []any:
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("scenario #%d is not an object", i)
			}
			name, _ := obj["name"].(string)
			shocks, err := jsonShocks(obj["shocks"])
			if err != nil {
				return nil, fmt.Errorf("scenario %q: %w", name, err)
			}
			if err := reg.add(name, shocks); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%q does not select an object or an array of scenarios", path)
	}
	return reg, nil
}

// jsonShocks converts a decoded JSON object into a map of instrument to shock.
func jsonShocks(v any) (map[string]float64, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("shocks must be an object of instrument to number, got %T", v)
	}
	shocks := make(map[string]float64, len(obj))
	for id, x := range obj {
		f, ok := x.(float64)
		if !ok {
			return nil, fmt.Errorf("instrument %q: shock must be a number, got %v", id, x)
		}
		shocks[id] = f
	}
	return shocks, nil
}

// LoadRegistry loads a registry file. JSON files (by extension) are read with
// DecodeRegistryJSON and 'path', anything else as YAML.
// An empty file name returns the DefaultRegistry.
func LoadRegistry(file, path string) (*Registry, error) {
	if file == "" {
		return DefaultRegistry(), nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reg *Registry
	if strings.EqualFold(filepath.Ext(file), ".json") {
		reg, err = DecodeRegistryJSON(f, path)
	} else {
		reg, err = DecodeRegistry(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return reg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
