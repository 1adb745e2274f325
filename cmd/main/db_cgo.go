//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func initSQLite(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSource)
}
