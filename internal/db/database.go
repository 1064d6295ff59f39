// Package db wires the storage engine, statistics catalog, planner session
// and executor into one statement-driven facade.
package db

import (
	"fmt"
	"log"
	"strings"

	"github.com/finchdb/finchdb/internal/exec"
	"github.com/finchdb/finchdb/internal/parse"
	"github.com/finchdb/finchdb/internal/parse/parserdata"
	"github.com/finchdb/finchdb/internal/planner"
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
	"github.com/finchdb/finchdb/internal/stats"
	"github.com/finchdb/finchdb/internal/storage"
)

// Result is the outcome of one executed statement. SELECTs fill Columns,
// Rows and EstimatedIO; EXPLAIN and debug mode fill Plan; everything else
// reports through Message.
type Result struct {
	Columns     []string
	Rows        []record.Row
	EstimatedIO int64
	Plan        string
	Message     string
}

// Database owns one engine, its statistics catalog, and one planner session.
type Database struct {
	engine  *storage.Engine
	catalog *stats.Catalog
	session *planner.Session
}

func New() *Database {
	engine := storage.NewEngine()
	return &Database{
		engine:  engine,
		catalog: stats.NewCatalog(engine),
		session: planner.NewSession(),
	}
}

// Session exposes the planner session for inspection.
func (db *Database) Session() *planner.Session {
	return db.session
}

// Engine exposes the storage engine, mainly for tests and tooling.
func (db *Database) Engine() *storage.Engine {
	return db.engine
}

// Execute parses and runs one statement.
func (db *Database) Execute(stmt string) (*Result, error) {
	parsed, err := parse.NewParserFromString(stmt).Statement()
	if err != nil {
		return nil, err
	}

	switch data := parsed.(type) {
	case *parserdata.QueryData:
		return db.runQuery(data, false)
	case *parserdata.ExplainData:
		return db.runQuery(data.Query(), true)
	case *parserdata.CreateTableData:
		if err := db.engine.CreateTable(data.Table(), data.Schema(), data.PrimaryKey()); err != nil {
			return nil, err
		}
		return &Result{Message: fmt.Sprintf("table %s created", data.Table())}, nil
	case *parserdata.CreateIndexData:
		if err := db.engine.CreateIndex(data.Index(), data.Table(), data.Column()); err != nil {
			return nil, err
		}
		return &Result{Message: fmt.Sprintf("index %s created", data.Index())}, nil
	case *parserdata.InsertData:
		return db.runInsert(data)
	case *parserdata.AnalyzeData:
		if data.Table() == "" {
			if err := db.catalog.AnalyzeAll(); err != nil {
				return nil, err
			}
			return &Result{Message: "statistics refreshed"}, nil
		}
		if err := db.catalog.Analyze(data.Table()); err != nil {
			return nil, err
		}
		return &Result{Message: fmt.Sprintf("statistics refreshed for %s", data.Table())}, nil
	case *parserdata.SetData:
		return db.applySet(data)
	}
	return nil, parse.ErrBadSyntax
}

func (db *Database) runQuery(q *parserdata.QueryData, explainOnly bool) (*Result, error) {
	lq := &planner.Query{Pred: q.Predicate()}
	for _, ref := range q.Tables() {
		lq.Tables = append(lq.Tables, planner.TableRef{Table: ref.Table, Alias: ref.Alias})
	}

	root, err := planner.Select(lq, db.session, db.engine, db.catalog.Snapshot())
	if err != nil {
		return nil, err
	}
	res := &Result{EstimatedIO: root.Cost}
	if explainOnly || db.session.Debug {
		res.Plan = root.Explain()
	}
	if explainOnly {
		return res, nil
	}

	op, err := exec.Build(root, db.engine)
	if err != nil {
		return nil, err
	}
	if !q.Star() {
		exprs := q.Fields()
		if err := query.QualifyExprs(exprs, db.schemasFor(lq), db.orderFor(lq)); err != nil {
			return nil, err
		}
		op = exec.NewProject(op, exprs)
	}

	rows, err := exec.Run(op)
	if err != nil {
		return nil, err
	}
	for _, c := range op.Columns() {
		res.Columns = append(res.Columns, c.String())
	}
	res.Rows = rows
	if db.session.Debug {
		log.Printf("[DB] query returned %d rows, estimated io %d", len(rows), res.EstimatedIO)
	}
	return res, nil
}

func (db *Database) schemasFor(lq *planner.Query) map[string]*record.Schema {
	schemas := make(map[string]*record.Schema, len(lq.Tables))
	for _, ref := range lq.Tables {
		if tbl, ok := db.engine.Table(ref.Table); ok {
			schemas[ref.Alias] = tbl.Schema()
		}
	}
	return schemas
}

func (db *Database) orderFor(lq *planner.Query) []string {
	order := make([]string, 0, len(lq.Tables))
	for _, ref := range lq.Tables {
		order = append(order, ref.Alias)
	}
	return order
}

// runInsert reorders the value list into schema declaration order when a
// column list is present.
func (db *Database) runInsert(data *parserdata.InsertData) (*Result, error) {
	tbl, ok := db.engine.Table(data.Table())
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", data.Table())
	}
	schema := tbl.Schema()

	row := data.Values()
	if fields := data.Fields(); len(fields) > 0 {
		if len(fields) != len(data.Values()) || len(fields) != schema.FieldCount() {
			return nil, fmt.Errorf("%w: column list does not match values", parse.ErrBadSyntax)
		}
		row = make(record.Row, schema.FieldCount())
		for i, name := range fields {
			at := schema.FieldIndex(name)
			if at < 0 {
				return nil, fmt.Errorf("%w: no column %s in %s", parse.ErrBadSyntax, name, data.Table())
			}
			row[at] = data.Values()[i]
		}
	}
	if err := db.engine.Insert(data.Table(), row); err != nil {
		return nil, err
	}
	return &Result{Message: "1 row inserted"}, nil
}

func (db *Database) applySet(data *parserdata.SetData) (*Result, error) {
	switch data.Option() {
	case "planner":
		mode, err := planner.ParseMode(data.Value())
		if err != nil {
			return nil, err
		}
		db.session.Mode = mode
	case "sort_merge_join", "index_join", "hash_join", "debug":
		on, err := parseToggle(data.Value())
		if err != nil {
			return nil, err
		}
		switch data.Option() {
		case "sort_merge_join":
			db.session.SortMergeJoin = on
		case "index_join":
			db.session.IndexJoin = on
		case "hash_join":
			db.session.HashJoin = on
		case "debug":
			db.session.Debug = on
		}
	default:
		return nil, fmt.Errorf("%w: %s", planner.ErrBadDirective, data.Option())
	}
	return &Result{Message: fmt.Sprintf("%s set to %s", data.Option(), data.Value())}, nil
}

func parseToggle(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true":
		return true, nil
	case "off", "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", planner.ErrBadDirective, v)
}
