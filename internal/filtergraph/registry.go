package filtergraph

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Profile{}
)

// Register adds a validated profile. Names are unique.
func Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[p.Name]; exists {
		return fmt.Errorf("profile %s already registered", p.Name)
	}
	registry[p.Name] = p.clone()
	return nil
}

// Lookup returns a copy of the profile registered under name.
func Lookup(name string) (Profile, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	return p.clone(), ok
}

// Default returns the built-in default profile.
func Default() Profile {
	p, _ := Lookup(DefaultProfileName)
	return p
}

// Profiles returns every registered profile sorted by name.
func Profiles() []Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Profile, 0, len(registry))
	for _, p := range registry {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ProfileNames returns the sorted registered profile names.
func ProfileNames() []string {
	profiles := Profiles()
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}
