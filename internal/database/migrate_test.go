package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementsSkipsBlanks(t *testing.T) {
	got := Statements("CREATE TABLE a (id INT);\n\n ;CREATE TABLE b (id INT);\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"}, got)
}

func TestEmbeddedSchemaCreatesEveryTable(t *testing.T) {
	stmts := Statements(schema)
	assert.Len(t, stmts, 9)
	for _, table := range []string{"users", "refresh_tokens", "venues", "events", "areas", "seats", "event_layouts", "tickets", "activity_logs"} {
		found := false
		for _, s := range stmts {
			if strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS "+table+" ") {
				found = true
			}
		}
		assert.True(t, found, "missing table %s", table)
	}
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "app@tcp(db:3306)/events?charset=utf8mb4&parseTime=true&loc=UTC", DSN("app", "", "db", "3306", "events"))
	assert.Equal(t, "app:pw@tcp(db:3306)/events?charset=utf8mb4&parseTime=true&loc=UTC", DSN("app", "pw", "db", "3306", "events"))
}
