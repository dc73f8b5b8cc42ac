package enrollment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mo-amir99/techboost-server-go/pkg/database/dbtest"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

func TestInsertUnlessEnrolled_SQL(t *testing.T) {
	entry := &Entry{UserID: uuid.New(), CourseID: uuid.New(), CompletedLessons: types.IDList{}}
	sql := dbtest.Normalize(insertUnlessEnrolled(dbtest.DryRun(t), entry).Statement.SQL.String())

	assert.Contains(t, sql, `INSERT INTO "enrollments"`)
	assert.Contains(t, sql, `ON CONFLICT ("user_id","course_id") DO NOTHING`)
}

func TestLockEntry_SQL(t *testing.T) {
	var entry Entry
	sql := dbtest.Normalize(lockEntry(dbtest.DryRun(t), uuid.New(), uuid.New(), &entry).Statement.SQL.String())

	assert.Contains(t, sql, `FROM "enrollments" WHERE user_id = $1 AND course_id = $2`)
	assert.Contains(t, sql, "FOR UPDATE")
}

func TestAppendLegacyCompletion_SQL(t *testing.T) {
	lessonID, userID := uuid.New(), uuid.New()
	stmt := appendLegacyCompletion(dbtest.DryRun(t), userID, lessonID).Statement
	sql := dbtest.Normalize(stmt.SQL.String())

	assert.Contains(t, sql, "array_append(COALESCE(completed_lessons, '{}'::uuid[]), $1::uuid)")
	assert.Contains(t, sql, "NOT ($3::uuid = ANY(")
	assert.Equal(t, []interface{}{lessonID, userID, lessonID}, stmt.Vars)
}
