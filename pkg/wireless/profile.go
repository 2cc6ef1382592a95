package wireless

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

// DefaultProfile is the name of the profile matching DefaultConfig.
const DefaultProfile = "default"

var (
	profileMu    sync.RWMutex
	profileCache = make(map[string]Config)
)

// LoadProfile returns a built-in capability description by name.
func LoadProfile(name string) (Config, error) {
	profileMu.RLock()
	if cfg, ok := profileCache[name]; ok {
		profileMu.RUnlock()
		return cfg.clone(), nil
	}
	profileMu.RUnlock()

	data, err := profileFS.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		return Config{}, fmt.Errorf("%w: profile %q not found", ErrInvalidConfig, name)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("profile %q: %w", name, err)
	}

	profileMu.Lock()
	profileCache[name] = cfg
	profileMu.Unlock()

	return cfg.clone(), nil
}

// Profiles returns the names of all built-in profiles.
func Profiles() ([]string, error) {
	entries, err := profileFS.ReadDir("profiles")
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}

	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
