package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestClassifySQL(t *testing.T) {
	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{`SELECT * FROM "courses" WHERE id = $1`, "SELECT", "courses"},
		{`INSERT INTO "enrollments" ("user_id","course_id") VALUES ($1,$2) ON CONFLICT DO NOTHING`, "INSERT", "enrollments"},
		{`UPDATE "statistics" SET "total_view"="statistics"."total_view" + 1`, "UPDATE", "statistics"},
		{`select count(*) from users`, "SELECT", "users"},
		{``, "UNKNOWN", "unknown"},
		{`BEGIN`, "BEGIN", "unknown"},
	}

	for _, tt := range tests {
		op, table := classifySQL(tt.sql)
		assert.Equal(t, tt.operation, op, tt.sql)
		assert.Equal(t, tt.table, table, tt.sql)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	assert.Zero(t, Backoff(time.Second, 0))

	rapid.Check(t, func(rt *rapid.T) {
		attempt := rapid.IntRange(1, 8).Draw(rt, "attempt")
		base := time.Duration(1<<(attempt-1)) * time.Second

		got := Backoff(time.Second, attempt)
		if got < base || got > base+base/4 {
			rt.Fatalf("attempt %d: backoff %v outside [%v, %v]", attempt, got, base, base+base/4)
		}
	})
}
