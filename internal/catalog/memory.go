package catalog

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Catalog used by tests and single-node runs. It
// reproduces the backend's idempotency contract: creating a resource that
// already exists returns ErrAlreadyExists, grants are upserts.
type Memory struct {
	mu        sync.Mutex
	locations map[string]bool
	databases map[string]*memoryDatabase
	grants    map[string]bool // "principal|location" or "principal|database|table"
}

type memoryDatabase struct {
	location string
	owner    string
	piiFlag  bool
	tables   map[string]string // name -> location
}

func NewMemory() *Memory {
	return &Memory{
		locations: make(map[string]bool),
		databases: make(map[string]*memoryDatabase),
		grants:    make(map[string]bool),
	}
}

func (m *Memory) RegisterLocation(ctx context.Context, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locations[location] {
		return fmt.Errorf("location %s: %w", location, ErrAlreadyExists)
	}
	m.locations[location] = true
	return nil
}

func (m *Memory) GrantLocationAccess(ctx context.Context, principal, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.grants[principal+"|"+location] = true
	return nil
}

func (m *Memory) CreateDatabase(ctx context.Context, name, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.databases[name]; ok {
		return fmt.Errorf("database %s: %w", name, ErrAlreadyExists)
	}
	m.databases[name] = &memoryDatabase{
		location: location,
		tables:   make(map[string]string),
	}
	return nil
}

func (m *Memory) SetDatabaseOwner(ctx context.Context, database, owner string, piiFlag bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, ok := m.databases[database]
	if !ok {
		return fmt.Errorf("database %s: %w", database, ErrNotFound)
	}
	db.owner = owner
	db.piiFlag = piiFlag
	return nil
}

func (m *Memory) CreateTable(ctx context.Context, database, name, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, ok := m.databases[database]
	if !ok {
		return fmt.Errorf("database %s: %w", database, ErrNotFound)
	}
	if _, exists := db.tables[name]; exists {
		return fmt.Errorf("table %s.%s: %w", database, name, ErrAlreadyExists)
	}
	db.tables[name] = location
	return nil
}

func (m *Memory) GrantTableAccess(ctx context.Context, principal, database, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, ok := m.databases[database]
	if !ok {
		return fmt.Errorf("database %s: %w", database, ErrNotFound)
	}
	if _, exists := db.tables[table]; !exists {
		return fmt.Errorf("table %s.%s: %w", database, table, ErrNotFound)
	}
	m.grants[principal+"|"+database+"|"+table] = true
	return nil
}

// Tables returns the table names of a database in no particular order.
// Test helper.
func (m *Memory) Tables(database string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, ok := m.databases[database]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	return names
}

// HasGrant reports whether a grant was recorded. Test helper.
func (m *Memory) HasGrant(principal, target string, table ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := principal + "|" + target
	if len(table) > 0 {
		key += "|" + table[0]
	}
	return m.grants[key]
}
