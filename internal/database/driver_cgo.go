//go:build sqlite_cgo

package database

import _ "github.com/mattn/go-sqlite3"

const sqliteDriverName = "sqlite3"
