package db

import (
	"database/sql"
	"fmt"
	"runtime"

	"github.com/dchest/uniuri"
	_ "modernc.org/sqlite"
)

const driver = "sqlite"

var (
	filePragmas = []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	memoryPragmas = []string{
		"PRAGMA foreign_keys=ON",
	}
)

var _ Backend = new(sqliteDB)

// sqliteDB backs both sqlite and memory backends, the latter only differing by
// the way the DSN is produced.
type sqliteDB struct {
	db      *sql.DB
	cleanup runtime.Cleanup
	dsn     func(string) (string, error)
	pragmas []string
}

func newSQLite() *sqliteDB {
	return &sqliteDB{
		dsn: func(dsn string) (string, error) {
			if len(dsn) == 0 {
				return "", ErrEmptyDSN
			}

			return dsn, nil
		},
		pragmas: filePragmas,
	}
}

func newMemory() *sqliteDB {
	return &sqliteDB{
		dsn: func(string) (string, error) {
			// a unique name keeps databases of different backends apart, while the shared
			// cache keeps the data alive between pooled connections of the same one.
			return "file:" + uniuri.New() + "?mode=memory&cache=shared", nil
		},
		pragmas: memoryPragmas,
	}
}

func (s *sqliteDB) Connect(dsn string) error {
	if s.db != nil {
		return ErrAlreadyConnected
	}

	source, err := s.dsn(dsn)
	if err != nil {
		return err
	}

	conn, err := sql.Open(driver, source)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// no connection pool: a backend is a single connection
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return fmt.Errorf("connect to database: %w", err)
	}

	for _, pragma := range s.pragmas {
		if _, err = conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return fmt.Errorf("set pragma: %w", err)
		}
	}

	s.db = conn
	// a connected backend that went out of scope must not leak the connection
	s.cleanup = runtime.AddCleanup(s, func(db *sql.DB) {
		_ = db.Close()
	}, conn)

	return nil
}

func (s *sqliteDB) Disconnect() error {
	if s.db == nil {
		return nil
	}

	s.cleanup.Stop()
	err := s.db.Close()
	s.db = nil

	return err
}

func (s *sqliteDB) Execute(stmt string) error {
	if s.db == nil {
		return ErrNotConnected
	}

	_, err := s.db.Exec(stmt)
	return err
}

func (s *sqliteDB) Query(stmt string) QueryResult {
	if s.db == nil {
		return failed(ErrNotConnected)
	}

	rows, err := s.db.Query(stmt)
	if err != nil {
		return failed(err)
	}

	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return failed(err)
	}

	var (
		result = QueryResult{Rows: make([][]string, 0)}
		cells  = make([]sql.NullString, len(columns))
		dest   = make([]any, len(columns))
	)

	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err = rows.Scan(dest...); err != nil {
			return failed(err)
		}

		row := make([]string, len(cells))
		for i, cell := range cells {
			row[i] = cell.String
		}

		result.Rows = append(result.Rows, row)
	}

	if err = rows.Err(); err != nil {
		return failed(err)
	}

	result.Success = true

	return result
}
