package parserdata

type CreateIndexData struct {
	index  string
	table  string
	column string
}

func NewCreateIndexData(index, table, column string) *CreateIndexData {
	return &CreateIndexData{
		index:  index,
		table:  table,
		column: column,
	}
}

func (c *CreateIndexData) Index() string {
	return c.index
}

func (c *CreateIndexData) Table() string {
	return c.table
}

func (c *CreateIndexData) Column() string {
	return c.column
}
