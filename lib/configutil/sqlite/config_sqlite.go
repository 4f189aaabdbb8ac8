package configsqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Struct struct {
	// File is either a local path or a remote libsql url (libsql://, https://, http://)
	File string `json:"file" yaml:"file"`
}

func (config Struct) IsRemote() bool {
	for _, prefix := range []string{"libsql://", "https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(config.File, prefix) {
			return true
		}
	}
	return false
}

// OpenDB opens the database and applies the given schema to it.
func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}

	var db *sql.DB
	var err error
	if config.IsRemote() {
		db, err = sql.Open("libsql", config.File)
		if err != nil {
			return nil, err
		}
	} else {
		db, err = openLocal(config.File)
		if err != nil {
			return nil, err
		}
	}

	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}

func openLocal(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dbpath, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = dbpath

		_, statErr := os.Stat(path)
		if os.IsNotExist(statErr) {
			err := os.MkdirAll(filepath.Dir(path), 0777)
			if err != nil {
				return nil, err
			}
			f, err := os.Create(path)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
