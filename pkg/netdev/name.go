package netdev

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Name errors.
var (
	ErrInvalidTemplate = errors.New("name template must contain exactly one %d")
	ErrNamesExhausted  = errors.New("no free interface name")
	ErrNameTooLong     = errors.New("interface name too long")
)

// DefaultNameTemplate is the template used for wireless interfaces.
const DefaultNameTemplate = "wlan%d"

// MaxNameLen is the longest interface name accepted, excluding terminator.
const MaxNameLen = 15

// maxNameIndex bounds the search for a free index.
const maxNameIndex = 32768

// NameAllocator hands out interface names from a template, always using the
// lowest free index. Safe for concurrent use.
type NameAllocator struct {
	mu       sync.Mutex
	template string
	used     map[int]bool
	byName   map[string]int
}

// NewNameAllocator creates an allocator for the template, e.g. "wlan%d".
func NewNameAllocator(template string) (*NameAllocator, error) {
	if strings.Count(template, "%") != 1 || !strings.Contains(template, "%d") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTemplate, template)
	}
	if len(fmt.Sprintf(template, 0)) > MaxNameLen {
		return nil, fmt.Errorf("%w: %q", ErrNameTooLong, template)
	}
	return &NameAllocator{
		template: template,
		used:     make(map[int]bool),
		byName:   make(map[string]int),
	}, nil
}

// Template returns the name template.
func (a *NameAllocator) Template() string {
	return a.template
}

// Reserve returns the name with the lowest free index.
func (a *NameAllocator) Reserve() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < maxNameIndex; i++ {
		if a.used[i] {
			continue
		}
		name := fmt.Sprintf(a.template, i)
		if len(name) > MaxNameLen {
			break
		}
		a.used[i] = true
		a.byName[name] = i
		return name, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNamesExhausted, a.template)
}

// Release returns a name to the pool. Unknown names are ignored.
func (a *NameAllocator) Release(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i, ok := a.byName[name]; ok {
		delete(a.byName, name)
		delete(a.used, i)
	}
}

// InUse returns the number of reserved names.
func (a *NameAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byName)
}
