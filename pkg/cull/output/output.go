// Package output provides formatters for displaying scan results in
// non-interactive mode (plain tab-separated text or JSON).
//
// Basic usage:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/cull/pkg/cull/types"
)

// Result is the scan outcome handed to a formatter.
type Result struct {
	// Source is the scan root identity.
	Source string `json:"source"`

	// Entries are the discovered media entries in queue order.
	Entries []types.MediaEntry `json:"entries"`

	// TotalSize is the sum of entry sizes in bytes.
	TotalSize int64 `json:"total_size"`

	// Ignored is the number of entries removed by snapshot filtering.
	Ignored int `json:"ignored"`

	// Interrupted reports whether the scan was cancelled mid-way.
	Interrupted bool `json:"interrupted"`
}

// NewResult builds a Result from scan entries.
func NewResult(source string, entries []types.MediaEntry, ignored int, interrupted bool) *Result {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return &Result{
		Source:      source,
		Entries:     entries,
		TotalSize:   total,
		Ignored:     ignored,
		Interrupted: interrupted,
	}
}

// Formatter renders a Result into a buffer.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// factory creates a new formatter instance.
type factory func() Formatter

var (
	registryMu sync.RWMutex
	registry   = make(map[string]factory)
)

// Register adds a formatter factory under a name. Later registrations
// replace earlier ones.
func Register(name string, f factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Get returns a new formatter for the named format.
func Get(name string) (Formatter, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, Names())
	}
	return f(), nil
}

// Names returns the registered format names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
