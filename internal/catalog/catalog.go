// Package catalog implements the narrow transaction/catalog boundary
// the execution engine is built against: table definitions and the
// heap operations (scan/insert/update/delete) that back them.
package catalog

import (
	"sync"

	"github.com/relcore/relcore/internal/dberr"
	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

// ColumnType names the storage kind of a column, independent of the
// runtime field.Kind carried by individual values (a nullable Integer
// column still holds field.Null rows).
type ColumnType int

const (
	TypeBoolean ColumnType = iota
	TypeInteger
	TypeFloat
	TypeString
)

// Column describes one field of a TableSchema.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	Default  field.Field
}

// TableSchema is an ordered set of columns under a unique table name.
type TableSchema struct {
	Name    string
	Columns []Column
}

// Width returns the number of columns in the schema.
func (s TableSchema) Width() int { return len(s.Columns) }

// Catalog creates, drops, and resolves table schemas.
type Catalog interface {
	CreateTable(schema TableSchema) error
	DropTable(name string, ifExists bool) (existed bool, err error)
	GetTable(name string) (TableSchema, bool)
}

// tableEntry is the catalog's bookkeeping for one table's heap: its
// schema plus the head and tail of its table-page chain. Both start
// InvalidPageID until the first row is inserted.
type tableEntry struct {
	schema    TableSchema
	firstPage storage.PageID
	lastPage  storage.PageID
}

// MemCatalog is an in-memory Catalog; table definitions do not survive
// a restart, matching the spec's stated omission of catalog persistence
// (only its interface is assumed here).
type MemCatalog struct {
	mu     sync.RWMutex
	tables map[string]*tableEntry
}

// NewMemCatalog returns an empty catalog.
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{tables: make(map[string]*tableEntry)}
}

func (c *MemCatalog) CreateTable(schema TableSchema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tables[schema.Name]; exists {
		return dberr.New(dberr.KindInvalidInput, "catalog: table already exists: "+schema.Name)
	}
	c.tables[schema.Name] = &tableEntry{
		schema:    schema,
		firstPage: storage.InvalidPageID,
		lastPage:  storage.InvalidPageID,
	}
	return nil
}

func (c *MemCatalog) DropTable(name string, ifExists bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tables[name]; !exists {
		if ifExists {
			return false, nil
		}
		return false, dberr.New(dberr.KindNotFound, "catalog: no such table: "+name)
	}
	delete(c.tables, name)
	return true, nil
}

func (c *MemCatalog) GetTable(name string) (TableSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tables[name]
	if !ok {
		return TableSchema{}, false
	}
	return e.schema, true
}
