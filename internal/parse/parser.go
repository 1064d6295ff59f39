package parse

import (
	"github.com/finchdb/finchdb/internal/parse/parserdata"
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
)

// Parser is a recursive-descent parser for the finchdb statement surface:
// SELECT queries, DDL, INSERT, and the ANALYZE/EXPLAIN/SET directives.
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new Parser.
func NewParser(lexer *Lexer) *Parser {
	return &Parser{
		lexer: lexer,
	}
}

// NewParserFromString creates a new Parser from a string.
func NewParserFromString(sql string) *Parser {
	lexer := NewLexer(sql)
	return NewParser(lexer)
}

// Statement parses one statement and returns the matching parserdata value.
func (p *Parser) Statement() (interface{}, error) {
	switch {
	case p.lexer.MatchKeyword("select"):
		return p.Query()
	case p.lexer.MatchKeyword("explain"):
		return p.explain()
	case p.lexer.MatchKeyword("create"):
		return p.CreateCmd()
	case p.lexer.MatchKeyword("insert"):
		return p.insert()
	case p.lexer.MatchKeyword("analyze"):
		return p.analyze()
	case p.lexer.MatchKeyword("set"):
		return p.set()
	}
	return nil, ErrBadSyntax
}

func (p *Parser) field() (string, error) {
	id, err := p.lexer.EatId()
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Parser) constant() (record.Value, error) {
	if p.lexer.MatchKeyword("true") {
		p.lexer.EatKeyword("true")
		return record.NewBoolValue(true), nil
	}
	if p.lexer.MatchKeyword("false") {
		p.lexer.EatKeyword("false")
		return record.NewBoolValue(false), nil
	}
	negate := false
	if p.lexer.MatchDelim('-') {
		p.lexer.EatDelim('-')
		negate = true
	}
	if p.lexer.MatchIntConstant() {
		val, err := p.lexer.EatIntConstant()
		if err != nil {
			return record.Value{}, err
		}
		if negate {
			val = -val
		}
		return record.NewIntValue(val), nil
	}
	if p.lexer.MatchFloatConstant() {
		val, err := p.lexer.EatFloatConstant()
		if err != nil {
			return record.Value{}, err
		}
		if negate {
			val = -val
		}
		return record.NewFloatValue(val), nil
	}
	if negate {
		return record.Value{}, ErrBadSyntax
	}
	if p.lexer.MatchStringConstant() {
		val, err := p.lexer.EatStringConstant()
		if err != nil {
			return record.Value{}, err
		}
		return record.NewStringValue(val), nil
	}
	return record.Value{}, ErrBadSyntax
}

// columnRef parses "column" or "alias.column".
func (p *Parser) columnRef() (*query.Expression, error) {
	first, err := p.field()
	if err != nil {
		return nil, err
	}
	if !p.lexer.MatchDelim('.') {
		return query.NewColumnExpression("", first), nil
	}
	p.lexer.EatDelim('.')
	column, err := p.field()
	if err != nil {
		return nil, err
	}
	return query.NewColumnExpression(first, column), nil
}

// expression implements the usual two-level arithmetic precedence:
// expression := product (('+'|'-') product)*
// product    := factor (('*'|'/') factor)*
// factor     := columnRef | constant | '(' expression ')'
func (p *Parser) expression() (*query.Expression, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for p.lexer.MatchDelim('+') || p.lexer.MatchDelim('-') {
		op := query.Add
		if p.lexer.MatchDelim('-') {
			op = query.Sub
		}
		p.lexer.nextToken()
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		left = query.NewArithExpression(op, left, right)
	}
	return left, nil
}

func (p *Parser) product() (*query.Expression, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.lexer.MatchDelim('*') || p.lexer.MatchDelim('/') {
		op := query.Mul
		if p.lexer.MatchDelim('/') {
			op = query.Div
		}
		p.lexer.nextToken()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = query.NewArithExpression(op, left, right)
	}
	return left, nil
}

func (p *Parser) factor() (*query.Expression, error) {
	if p.lexer.MatchDelim('(') {
		p.lexer.EatDelim('(')
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.lexer.EatDelim(')'); err != nil {
			return nil, err
		}
		return e, nil
	}
	if p.lexer.MatchId() {
		return p.columnRef()
	}
	v, err := p.constant()
	if err != nil {
		return nil, err
	}
	return query.NewValueExpression(v), nil
}

func (p *Parser) term() (*query.Term, error) {
	left, err := p.expression()
	if err != nil {
		return nil, err
	}
	op, err := p.lexer.EatCompareOp()
	if err != nil {
		return nil, err
	}
	right, err := p.expression()
	if err != nil {
		return nil, err
	}
	return query.NewTerm(*left, op, *right), nil
}

func (p *Parser) predicate() (*query.Predicate, error) {
	firstTerm, err := p.term()
	if err != nil {
		return nil, err
	}
	pred := query.NewPredicate(*firstTerm)
	for p.lexer.MatchKeyword("and") {
		p.lexer.EatKeyword("and")
		term, err := p.term()
		if err != nil {
			return nil, err
		}
		pred.ConjunctWith(*query.NewPredicate(*term))
	}
	return pred, nil
}

func (p *Parser) Query() (*parserdata.QueryData, error) {
	// Select
	err := p.lexer.EatKeyword("select")
	if err != nil {
		return nil, err
	}
	// Select List
	star := false
	var fields []*query.Expression
	if p.lexer.MatchDelim('*') {
		p.lexer.EatDelim('*')
		star = true
	} else {
		fields, err = p.selectList()
		if err != nil {
			return nil, err
		}
	}
	// From
	err = p.lexer.EatKeyword("from")
	if err != nil {
		return nil, err
	}
	// Table List
	tables, err := p.tableList()
	if err != nil {
		return nil, err
	}

	if !p.lexer.MatchKeyword("where") {
		return parserdata.NewQueryData(star, fields, tables, nil), nil
	}

	// Where
	err = p.lexer.EatKeyword("where")
	if err != nil {
		return nil, err
	}

	// Predicate
	predicate, err := p.predicate()
	if err != nil {
		return nil, err
	}

	return parserdata.NewQueryData(star, fields, tables, predicate), nil
}

func (p *Parser) explain() (*parserdata.ExplainData, error) {
	err := p.lexer.EatKeyword("explain")
	if err != nil {
		return nil, err
	}
	q, err := p.Query()
	if err != nil {
		return nil, err
	}
	return parserdata.NewExplainData(q), nil
}

func (p *Parser) analyze() (*parserdata.AnalyzeData, error) {
	err := p.lexer.EatKeyword("analyze")
	if err != nil {
		return nil, err
	}
	if !p.lexer.MatchId() {
		return parserdata.NewAnalyzeData(""), nil
	}
	table, err := p.field()
	if err != nil {
		return nil, err
	}
	return parserdata.NewAnalyzeData(table), nil
}

func (p *Parser) set() (*parserdata.SetData, error) {
	err := p.lexer.EatKeyword("set")
	if err != nil {
		return nil, err
	}
	option, err := p.lexer.EatAnyId()
	if err != nil {
		return nil, err
	}
	value, err := p.lexer.EatAnyId()
	if err != nil {
		return nil, err
	}
	return parserdata.NewSetData(option, value), nil
}

func (p *Parser) CreateCmd() (interface{}, error) {
	err := p.lexer.EatKeyword("create")
	if err != nil {
		return nil, err
	}

	if p.lexer.MatchKeyword("table") {
		return p.createTable()
	} else if p.lexer.MatchKeyword("index") {
		return p.createIndex()
	} else {
		return nil, ErrBadSyntax
	}
}

func (p *Parser) createTable() (*parserdata.CreateTableData, error) {
	// Create is already eaten by CreateCmd()

	err := p.lexer.EatKeyword("table")
	if err != nil {
		return nil, err
	}
	// Table Name
	tableName, err := p.field()
	if err != nil {
		return nil, err
	}
	// (
	err = p.lexer.EatDelim('(')
	if err != nil {
		return nil, err
	}
	// Field definitions and the optional trailing PRIMARY KEY clause
	schema := record.NewSchema()
	primaryKey := ""
	for {
		if p.lexer.MatchKeyword("primary") {
			primaryKey, err = p.primaryKey()
			if err != nil {
				return nil, err
			}
		} else {
			def, err := p.fieldDef()
			if err != nil {
				return nil, err
			}
			schema.CopyAll(def)
		}
		if !p.lexer.MatchDelim(',') {
			break
		}
		p.lexer.EatDelim(',')
	}
	// )
	err = p.lexer.EatDelim(')')
	if err != nil {
		return nil, err
	}
	if primaryKey != "" && !schema.HasField(primaryKey) {
		return nil, ErrBadSyntax
	}

	return parserdata.NewCreateTableData(tableName, schema, primaryKey), nil
}

func (p *Parser) primaryKey() (string, error) {
	if err := p.lexer.EatKeyword("primary"); err != nil {
		return "", err
	}
	if err := p.lexer.EatKeyword("key"); err != nil {
		return "", err
	}
	if err := p.lexer.EatDelim('('); err != nil {
		return "", err
	}
	column, err := p.field()
	if err != nil {
		return "", err
	}
	if err := p.lexer.EatDelim(')'); err != nil {
		return "", err
	}
	return column, nil
}

func (p *Parser) createIndex() (*parserdata.CreateIndexData, error) {
	// Create is already eaten by CreateCmd()

	err := p.lexer.EatKeyword("index")
	if err != nil {
		return nil, err
	}
	indexName, err := p.field()
	if err != nil {
		return nil, err
	}
	err = p.lexer.EatKeyword("on")
	if err != nil {
		return nil, err
	}
	tableName, err := p.field()
	if err != nil {
		return nil, err
	}
	err = p.lexer.EatDelim('(')
	if err != nil {
		return nil, err
	}
	column, err := p.field()
	if err != nil {
		return nil, err
	}
	err = p.lexer.EatDelim(')')
	if err != nil {
		return nil, err
	}
	return parserdata.NewCreateIndexData(indexName, tableName, column), nil
}

func (p *Parser) insert() (*parserdata.InsertData, error) {
	// Insert
	err := p.lexer.EatKeyword("insert")
	if err != nil {
		return nil, err
	}
	// Into
	err = p.lexer.EatKeyword("into")
	if err != nil {
		return nil, err
	}
	// Table
	table, err := p.field()
	if err != nil {
		return nil, err
	}
	// Optional column list
	var fields []string
	if p.lexer.MatchDelim('(') {
		p.lexer.EatDelim('(')
		fields, err = p.fieldList()
		if err != nil {
			return nil, err
		}
		if err := p.lexer.EatDelim(')'); err != nil {
			return nil, err
		}
	}
	// Values
	err = p.lexer.EatKeyword("values")
	if err != nil {
		return nil, err
	}
	// (
	err = p.lexer.EatDelim('(')
	if err != nil {
		return nil, err
	}
	// Values
	values, err := p.constList()
	if err != nil {
		return nil, err
	}
	// )
	err = p.lexer.EatDelim(')')
	if err != nil {
		return nil, err
	}

	return parserdata.NewInsertData(table, fields, values), nil
}

func (p *Parser) selectList() ([]*query.Expression, error) {
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	exprs := []*query.Expression{first}

	for p.lexer.MatchDelim(',') {
		if err := p.lexer.EatDelim(','); err != nil {
			return nil, err
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (p *Parser) fieldList() ([]string, error) {
	fields := []string{}

	firstField, err := p.field()
	if err != nil {
		return nil, err
	}
	fields = append(fields, firstField)

	// Now look for ", field" patterns.
	for p.lexer.MatchDelim(',') {
		err = p.lexer.EatDelim(',')
		if err != nil {
			return nil, err
		}
		field, err := p.field()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	return fields, nil
}

// tableList parses "t [[AS] alias] {, t [[AS] alias]}".
func (p *Parser) tableList() ([]parserdata.TableRef, error) {
	first, err := p.tableRef()
	if err != nil {
		return nil, err
	}
	tables := []parserdata.TableRef{first}

	for p.lexer.MatchDelim(',') {
		if err := p.lexer.EatDelim(','); err != nil {
			return nil, err
		}
		ref, err := p.tableRef()
		if err != nil {
			return nil, err
		}
		tables = append(tables, ref)
	}
	return tables, nil
}

func (p *Parser) tableRef() (parserdata.TableRef, error) {
	table, err := p.lexer.EatId()
	if err != nil {
		return parserdata.TableRef{}, err
	}
	alias := table
	if p.lexer.MatchKeyword("as") {
		p.lexer.EatKeyword("as")
		alias, err = p.lexer.EatId()
		if err != nil {
			return parserdata.TableRef{}, err
		}
	} else if p.lexer.MatchId() {
		alias, err = p.lexer.EatId()
		if err != nil {
			return parserdata.TableRef{}, err
		}
	}
	return parserdata.TableRef{Table: table, Alias: alias}, nil
}

func (p *Parser) constList() ([]record.Value, error) {
	firstConst, err := p.constant()
	if err != nil {
		return nil, err
	}
	consts := []record.Value{firstConst}

	// Now look for ", const" patterns.
	for p.lexer.MatchDelim(',') {
		err = p.lexer.EatDelim(',')
		if err != nil {
			return nil, err
		}
		nextConst, err := p.constant()
		if err != nil {
			return nil, err
		}
		consts = append(consts, nextConst)
	}

	return consts, nil
}

func (p *Parser) fieldDef() (*record.Schema, error) {
	fieldName, err := p.field()
	if err != nil {
		return nil, err
	}
	return p.fieldType(fieldName)
}

func (p *Parser) fieldType(fieldName string) (*record.Schema, error) {
	schema := record.NewSchema()

	switch {
	case p.lexer.MatchKeyword("int"):
		p.lexer.EatKeyword("int")
		schema.AddIntField(fieldName)
		return schema, nil
	case p.lexer.MatchKeyword("float"):
		p.lexer.EatKeyword("float")
		schema.AddFloatField(fieldName)
		return schema, nil
	case p.lexer.MatchKeyword("boolean"):
		p.lexer.EatKeyword("boolean")
		schema.AddBoolField(fieldName)
		return schema, nil
	case p.lexer.MatchKeyword("varchar"):
		p.lexer.EatKeyword("varchar")
		if err := p.lexer.EatDelim('('); err != nil {
			return nil, err
		}
		length, err := p.lexer.EatIntConstant()
		if err != nil {
			return nil, err
		}
		if err := p.lexer.EatDelim(')'); err != nil {
			return nil, err
		}
		schema.AddStringField(fieldName, int(length))
		return schema, nil
	}
	return nil, ErrBadSyntax
}
