package storage

import (
	"fmt"

	deadlock "github.com/sasha-s/go-deadlock"

	"github.com/finchdb/finchdb/internal/record"
)

// Table couples a heap file with its schema and indexes.
type Table struct {
	name    string
	schema  *record.Schema
	pk      string
	heap    *HeapFile
	indexes []*Index
}

func (t *Table) Name() string           { return t.name }
func (t *Table) Schema() *record.Schema { return t.schema }

// PrimaryKey returns the primary key column, or "" if none was declared.
func (t *Table) PrimaryKey() string { return t.pk }

func (t *Table) Heap() *HeapFile { return t.heap }

// Indexes returns the table's indexes in creation order (primary first).
func (t *Table) Indexes() []*Index {
	result := make([]*Index, len(t.indexes))
	copy(result, t.indexes)
	return result
}

// Index returns the index on the given column, if one exists.
func (t *Table) Index(column string) (*Index, bool) {
	for _, ix := range t.indexes {
		if ix.column == column {
			return ix, true
		}
	}
	return nil, false
}

func (t *Table) NumRows() int64   { return t.heap.NumRows() }
func (t *Table) NumBlocks() int64 { return t.heap.NumBlocks() }

// Engine is the in-memory storage engine: a registry of tables with heap
// files and indexes. All mutations take the registry lock; reads of table
// contents are safe against concurrent reads.
type Engine struct {
	mu     deadlock.RWMutex
	tables map[string]*Table
	order  []string
}

func NewEngine() *Engine {
	return &Engine{
		tables: make(map[string]*Table),
	}
}

// CreateTable registers a new table. If pk names a column, a primary index
// on it is created immediately.
func (e *Engine) CreateTable(name string, schema *record.Schema, pk string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.tables[name]; exists {
		return fmt.Errorf("table %s already exists", name)
	}
	if pk != "" && !schema.HasField(pk) {
		return fmt.Errorf("primary key column %s not in schema", pk)
	}
	t := &Table{
		name:   name,
		schema: schema,
		pk:     pk,
		heap:   NewHeapFile(schema),
	}
	if pk != "" {
		t.indexes = append(t.indexes, newIndex(name+"_pkey", pk, true))
	}
	e.tables[name] = t
	e.order = append(e.order, name)
	return nil
}

// CreateIndex builds a secondary index over an existing table column and
// backfills it from the heap.
func (e *Engine) CreateIndex(idxName, table, column string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, exists := e.tables[table]
	if !exists {
		return fmt.Errorf("table %s does not exist", table)
	}
	if !t.schema.HasField(column) {
		return fmt.Errorf("column %s not in table %s", column, table)
	}
	if _, dup := t.Index(column); dup {
		return fmt.Errorf("index on %s.%s already exists", table, column)
	}
	ix := newIndex(idxName, column, false)
	pos := t.schema.FieldIndex(column)
	err := t.heap.Scan(func(id RowID, row record.Row) (bool, error) {
		ix.insert(row[pos], id)
		return true, nil
	})
	if err != nil {
		return err
	}
	t.indexes = append(t.indexes, ix)
	return nil
}

// Insert validates and coerces a row against the table schema, appends it
// to the heap and updates every index.
func (e *Engine) Insert(table string, row record.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, exists := e.tables[table]
	if !exists {
		return fmt.Errorf("table %s does not exist", table)
	}
	fields := t.schema.Fields()
	if len(row) != len(fields) {
		return fmt.Errorf("table %s expects %d values, got %d", table, len(fields), len(row))
	}
	coerced := make(record.Row, len(row))
	for i, f := range fields {
		ft, _ := t.schema.Type(f)
		v, err := coerceValue(row[i], ft)
		if err != nil {
			return fmt.Errorf("column %s: %w", f, err)
		}
		coerced[i] = v
	}
	if t.pk != "" {
		if pkix, ok := t.Index(t.pk); ok {
			key := coerced[t.schema.FieldIndex(t.pk)]
			if pkix.containsKey(key) {
				return fmt.Errorf("duplicate primary key %s in table %s", key.String(), table)
			}
		}
	}
	id, err := t.heap.Append(coerced)
	if err != nil {
		return err
	}
	for _, ix := range t.indexes {
		ix.insert(coerced[t.schema.FieldIndex(ix.column)], id)
	}
	return nil
}

// Table returns a registered table by name.
func (e *Engine) Table(name string) (*Table, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, exists := e.tables[name]
	return t, exists
}

// Tables returns the registered table names in creation order.
func (e *Engine) Tables() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make([]string, len(e.order))
	copy(result, e.order)
	return result
}
