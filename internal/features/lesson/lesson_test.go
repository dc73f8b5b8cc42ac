package lesson

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/techboost-server-go/pkg/database/dbtest"
	"github.com/mo-amir99/techboost-server-go/pkg/logger"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

func withID(id uuid.UUID, order int) Lesson {
	l := Lesson{Order: order}
	l.ID = id
	return l
}

func TestSortBySequence(t *testing.T) {
	a, b, c, stray := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	lessons := []Lesson{withID(stray, 0), withID(c, 1), withID(a, 2), withID(b, 3)}

	SortBySequence(lessons, types.IDList{a, b, c})

	got := make([]uuid.UUID, len(lessons))
	for i, l := range lessons {
		got[i] = l.ID
	}
	assert.Equal(t, []uuid.UUID{a, b, c, stray}, got)
}

func TestCreate_Validation(t *testing.T) {
	course := uuid.New()
	negative := -1

	_, err := Create(nil, CreateInput{CourseID: course, Title: "   "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = Create(nil, CreateInput{Title: "Intro"})
	assert.ErrorIs(t, err, ErrCourseRequired)

	_, err = Create(nil, CreateInput{CourseID: course, Title: "Intro", Order: &negative})
	assert.ErrorIs(t, err, ErrOrderInvalid)
}

func TestCreate_TrimsOptionalFields(t *testing.T) {
	blank := "  "
	link := " https://videos.example/intro "

	l, err := Create(dbtest.DryRun(t), CreateInput{
		CourseID:  uuid.New(),
		Title:     "  Intro  ",
		Content:   &blank,
		VideoLink: &link,
	})
	require.NoError(t, err)
	assert.Equal(t, "Intro", l.Title)
	assert.Nil(t, l.Content)
	require.NotNil(t, l.VideoLink)
	assert.Equal(t, "https://videos.example/intro", *l.VideoLink)
}

func TestCourseOf_SQL(t *testing.T) {
	db := dbtest.DryRun(t)
	stmt := db.Model(&Lesson{}).Select("course_id").Where("id = ?", uuid.New()).Take(&struct{ CourseID uuid.UUID }{}).Statement
	assert.Contains(t, dbtest.Normalize(stmt.SQL.String()), `SELECT "course_id" FROM "lessons" WHERE id = $1`)
}

func TestGetByID_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(request.Handler(logger.Discard()))
	RegisterRoutes(router.Group(""), NewHandler(dbtest.DryRun(t), logger.Discard()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid lessonId")
}
