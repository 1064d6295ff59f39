package parserdata

import (
	"github.com/finchdb/finchdb/internal/record"
)

type CreateTableData struct {
	table      string
	schema     *record.Schema
	primaryKey string
}

func NewCreateTableData(table string, schema *record.Schema, primaryKey string) *CreateTableData {
	return &CreateTableData{
		table:      table,
		schema:     schema,
		primaryKey: primaryKey,
	}
}

func (c *CreateTableData) Table() string {
	return c.table
}

func (c *CreateTableData) Schema() *record.Schema {
	return c.schema
}

// PrimaryKey returns the declared primary key column, empty if none.
func (c *CreateTableData) PrimaryKey() string {
	return c.primaryKey
}
