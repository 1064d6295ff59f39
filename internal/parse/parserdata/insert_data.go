package parserdata

import (
	"github.com/finchdb/finchdb/internal/record"
)

type InsertData struct {
	table  string
	fields []string
	values []record.Value
}

func NewInsertData(table string, fields []string, values []record.Value) *InsertData {
	return &InsertData{
		table:  table,
		fields: fields,
		values: values,
	}
}

func (i *InsertData) Table() string {
	return i.table
}

// Fields returns the column list, empty when the statement relies on the
// schema's declaration order.
func (i *InsertData) Fields() []string {
	return i.fields
}

func (i *InsertData) Values() []record.Value {
	return i.values
}
