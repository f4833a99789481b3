package store

import migrate "github.com/rubenv/sql-migrate"

// Migrations returns the built-in schema, oldest first.
func Migrations() []*migrate.Migration {
	return []*migrate.Migration{
		{
			Id: "0001_create_xattribute",
			Up: []string{`CREATE TABLE XAttribute (
	fkCol INTEGER NOT NULL,
	AttributeName VARCHAR(255) NOT NULL,
	AttributeIndex INTEGER NOT NULL DEFAULT 0,
	AttributeValue TEXT
)`},
			Down: []string{"DROP TABLE XAttribute"},
		},
		{
			Id:   "0002_xattribute_key",
			Up:   []string{"CREATE UNIQUE INDEX xattribute_key ON XAttribute (fkCol, AttributeName, AttributeIndex)"},
			Down: []string{"DROP INDEX xattribute_key"},
		},
	}
}
