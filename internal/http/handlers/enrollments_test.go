package handlers_test

import (
	"net/http"
	"testing"

	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/geocoder89/learnhub/internal/http/handlers"
	"github.com/geocoder89/learnhub/internal/idgen"
	"github.com/geocoder89/learnhub/internal/repo/memory"
	"github.com/geocoder89/learnhub/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnrollmentsEngine() *gin.Engine {
	repo := store.NewTable[enrollment.Enrollment](memory.NewBackend(), store.KindEnrollments, idgen.Enrollment)
	h := handlers.NewEnrollmentsHandler(repo)

	r := gin.New()
	r.POST("/enrollments/enroll", h.Enroll)
	r.GET("/enrollments/list", h.List)
	r.GET("/enrollments/:user_id", h.ListByUser)
	return r
}

func TestEnroll_StartsPendingPayment(t *testing.T) {
	r := newEnrollmentsEngine()

	// references are not checked against the user or course services
	w := doJSON(r, http.MethodPost, "/enrollments/enroll", `{"user_id":"u-ghost","course_id":"c-ghost"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "pending_payment", body["status"])
	assert.Equal(t, "u-ghost", body["user_id"])
	assert.Equal(t, "c-ghost", body["course_id"])
	assert.Regexp(t, `^e[0-9a-f]{32}$`, body["enrollment_id"])
}

func TestEnroll_Validation(t *testing.T) {
	r := newEnrollmentsEngine()

	w := doJSON(r, http.MethodPost, "/enrollments/enroll", `{"user_id":"u1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListByUser(t *testing.T) {
	r := newEnrollmentsEngine()
	doJSON(r, http.MethodPost, "/enrollments/enroll", `{"user_id":"u1","course_id":"c1"}`)
	doJSON(r, http.MethodPost, "/enrollments/enroll", `{"user_id":"u1","course_id":"c2"}`)
	doJSON(r, http.MethodPost, "/enrollments/enroll", `{"user_id":"u2","course_id":"c1"}`)

	w := doJSON(r, http.MethodGet, "/enrollments/u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "u1", body["user_id"])
	assert.EqualValues(t, 2, body["total"])

	w = doJSON(r, http.MethodGet, "/enrollments/nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["total"])

	w = doJSON(r, http.MethodGet, "/enrollments/list", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["total"])
}
