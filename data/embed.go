// Package data embeds the database bootstrap scripts used by container tests
package data

import (
	_ "embed"
	"strings"
)

// InitdbDatabase is the database the bootstrap scripts create
const InitdbDatabase = "carmart"

//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbMariaDBTables string

//go:embed initdb/mariadb/003-ddl-privileges.sql
var initdbMariaDBPrivileges string

// InitdbMariaDBPrivileges returns the privilege script for the service user
func InitdbMariaDBPrivileges(user string) string {
	return strings.ReplaceAll(initdbMariaDBPrivileges, "{{USER}}", user)
}
