package core

import (
	"fmt"
	"sync"

	"github.com/wardsync/wardsync/internal/csvutil"
)

// The table registry is ordered: classification walks it front to back and
// the first Match wins, so registration order is the dispatch priority.
var (
	registry   []TableDefinition
	registryMu sync.RWMutex
)

// Register appends a table definition to the registry.
// Panics if a table with the same key is already registered.
func Register(def TableDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, existing := range registry {
		if existing.Info.Key == def.Info.Key {
			panic(fmt.Sprintf("table already registered: %s", def.Info.Key))
		}
	}

	registry = append(registry, def)
}

// Classify selects the entity table a parsed CSV belongs to, judged on the
// first record only. Files that ever mix header shapes across rows are not
// supported; the decision is one-shot per file.
func Classify(records []csvutil.Record) (TableDefinition, bool) {
	if len(records) == 0 {
		return TableDefinition{}, false
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, def := range registry {
		if def.Match(records[0]) {
			return def, true
		}
	}
	return TableDefinition{}, false
}

// Get returns a table definition by key.
func Get(key string) (TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, def := range registry {
		if def.Info.Key == key {
			return def, true
		}
	}
	return TableDefinition{}, false
}

// All returns the registered table definitions in priority order.
func All() []TableDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]TableDefinition, len(registry))
	copy(out, registry)
	return out
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
