// Package runlog records split events and process attach marks to a sqlite
// database for post-run analysis.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

const defaultBatchSize = 256

type table struct {
	columns []string
	rows    []any
}

// Recorder buffers typed rows and writes them to sqlite in batches: at the
// batch threshold, on Flush, and at process exit. One table per row struct,
// with columns named after the struct fields.
type Recorder struct {
	mu      sync.Mutex
	db      *sql.DB
	path    string
	batch   int
	tables  map[string]*table
	pending int
}

// Open creates the database file. An empty path gets a generated name, and
// a path without an extension gets a unique suffix so successive runs never
// collide. A file that already exists is refused rather than appended to.
func Open(path string) (*Recorder, error) {
	filename := databaseName(path)
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("runlog: %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", filename, err)
	}
	// sql.Open is lazy; ping so the file exists and bad paths fail here.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: open %s: %w", filename, err)
	}

	r := &Recorder{
		db:     db,
		path:   filename,
		batch:  defaultBatchSize,
		tables: make(map[string]*table),
	}
	atexit.Register(func() { _ = r.Flush() })
	return r, nil
}

func databaseName(path string) string {
	if path == "" {
		path = "ffsplit_runlog"
	}
	if filepath.Ext(path) == "" {
		return fmt.Sprintf("%s_%s.sqlite3", path, xid.New())
	}
	return path
}

// Path returns the database filename actually created.
func (r *Recorder) Path() string {
	return r.path
}

// CreateTable registers a row shape. The sample must be a flat struct of
// scalars and strings; anything else is a programmer error.
func (r *Recorder) CreateTable(name string, sample any) error {
	mustBeFlat(sample)
	cols := structs.Names(sample)

	r.mu.Lock()
	defer r.mu.Unlock()

	stmt := "CREATE TABLE " + name + " (\n\t" + strings.Join(cols, ",\n\t") + "\n);"
	if _, err := r.db.Exec(stmt); err != nil {
		return fmt.Errorf("runlog: create %s: %w", name, err)
	}
	r.tables[name] = &table{columns: cols}
	return nil
}

func mustBeFlat(sample any) {
	t := reflect.TypeOf(sample)
	if t == nil || t.Kind() != reflect.Struct {
		panic("runlog: table sample must be a struct")
	}
	for i := 0; i < t.NumField(); i++ {
		if !allowedKind(t.Field(i).Type.Kind()) {
			panic(fmt.Sprintf("runlog: field %s.%s cannot be stored", t.Name(), t.Field(i).Name))
		}
	}
}

func allowedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}
	return false
}

// Insert buffers one row for a table registered with CreateTable. Inserting
// into an unknown table is a programmer error.
func (r *Recorder) Insert(name string, row any) error {
	r.mu.Lock()
	tbl, ok := r.tables[name]
	if !ok {
		r.mu.Unlock()
		panic(fmt.Sprintf("runlog: table %s does not exist", name))
	}
	tbl.rows = append(tbl.rows, row)
	r.pending++
	full := r.pending >= r.batch
	r.mu.Unlock()

	if full {
		return r.Flush()
	}
	return nil
}

// Flush writes all buffered rows inside one transaction.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if r.pending == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("runlog: begin: %w", err)
	}

	for name, tbl := range r.tables {
		if len(tbl.rows) == 0 {
			continue
		}

		marks := make([]string, len(tbl.columns))
		for i := range marks {
			marks[i] = "?"
		}
		stmt, err := tx.Prepare("INSERT INTO " + name + " VALUES (" + strings.Join(marks, ", ") + ")")
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("runlog: prepare %s: %w", name, err)
		}

		for _, row := range tbl.rows {
			v := reflect.ValueOf(row)
			args := make([]any, v.NumField())
			for i := range args {
				args[i] = v.Field(i).Interface()
			}
			if _, err := stmt.Exec(args...); err != nil {
				stmt.Close()
				tx.Rollback()
				return fmt.Errorf("runlog: insert %s: %w", name, err)
			}
		}
		stmt.Close()
		tbl.rows = nil
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("runlog: commit: %w", err)
	}
	r.pending = 0
	return nil
}

// Close flushes and closes the database.
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		r.db.Close()
		return err
	}
	return r.db.Close()
}
