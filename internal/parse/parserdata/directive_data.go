package parserdata

// AnalyzeData refreshes statistics for one table, or every table when the
// name is empty.
type AnalyzeData struct {
	table string
}

func NewAnalyzeData(table string) *AnalyzeData {
	return &AnalyzeData{table: table}
}

func (a *AnalyzeData) Table() string {
	return a.table
}

// SetData is a session directive: SET <option> <value>.
type SetData struct {
	option string
	value  string
}

func NewSetData(option, value string) *SetData {
	return &SetData{option: option, value: value}
}

func (s *SetData) Option() string {
	return s.option
}

func (s *SetData) Value() string {
	return s.value
}

// ExplainData wraps a query whose plan should be rendered instead of run.
type ExplainData struct {
	query *QueryData
}

func NewExplainData(query *QueryData) *ExplainData {
	return &ExplainData{query: query}
}

func (e *ExplainData) Query() *QueryData {
	return e.query
}
