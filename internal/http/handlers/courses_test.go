package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/http/handlers"
	"github.com/geocoder89/learnhub/internal/idgen"
	"github.com/geocoder89/learnhub/internal/repo/memory"
	"github.com/geocoder89/learnhub/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCoursesEngine() *gin.Engine {
	repo := store.NewTable[course.Course](memory.NewBackend(), store.KindCourses, idgen.Course)
	h := handlers.NewCoursesHandler(repo)

	r := gin.New()
	r.POST("/courses/create", h.Create)
	r.GET("/courses/list", h.List)
	r.POST("/courses/upload", h.Upload)
	r.GET("/courses/:id", h.GetByID)
	return r
}

func createCourse(t *testing.T, r http.Handler, body string) string {
	t.Helper()

	w := doJSON(r, http.MethodPost, "/courses/create", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["course_id"].(string)
}

func TestCreateCourse_RoundTrip(t *testing.T) {
	r := newCoursesEngine()

	w := doJSON(r, http.MethodPost, "/courses/create",
		`{"title":"Go","price":49.5,"instructor":"ada","description":"from zero"}`)
	require.Equal(t, http.StatusOK, w.Code)

	created := decode(t, w)
	assert.Equal(t, "created", created["status"])
	assert.Equal(t, "Go", created["title"])
	assert.Equal(t, 49.5, created["price"])

	w = doJSON(r, http.MethodGet, "/courses/"+created["course_id"].(string), "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode(t, w)
	assert.Equal(t, "Go", got["title"])
	assert.Equal(t, 49.5, got["price"])
	assert.Equal(t, "ada", got["instructor"])
	assert.Equal(t, "from zero", got["description"])
}

func TestCreateCourse_Validation(t *testing.T) {
	r := newCoursesEngine()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"free course", `{"title":"Go","price":0,"instructor":"ada"}`, http.StatusOK},
		{"negative price", `{"title":"Go","price":-1,"instructor":"ada"}`, http.StatusUnprocessableEntity},
		{"missing price", `{"title":"Go","instructor":"ada"}`, http.StatusUnprocessableEntity},
		{"missing instructor", `{"title":"Go","price":1}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/courses/create", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestGetCourse_UnknownIs404(t *testing.T) {
	r := newCoursesEngine()

	w := doJSON(r, http.MethodGet, "/courses/c00000000000000000000000000000000", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorCode(t, w))
	assert.Equal(t, "Course not found", decode(t, w)["detail"])
}

func TestListCourses_IdempotentWithETag(t *testing.T) {
	r := newCoursesEngine()
	createCourse(t, r, `{"title":"Go","price":1,"instructor":"ada"}`)
	createCourse(t, r, `{"title":"Rust","price":2,"instructor":"bob"}`)

	first := doJSON(r, http.MethodGet, "/courses/list", "")
	second := doJSON(r, http.MethodGet, "/courses/list", "")

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.EqualValues(t, 2, decode(t, first)["total"])

	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/courses/list", nil)
	req.Header.Set("If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, serve(r, req).Code)
}

func uploadRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withFile {
		fw, err := mw.CreateFormFile("file", "syllabus.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 hello"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/courses/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_AttachesMetadataToCourse(t *testing.T) {
	r := newCoursesEngine()
	id := createCourse(t, r, `{"title":"Go","price":1,"instructor":"ada"}`)

	w := serve(r, uploadRequest(t, map[string]string{"course_id": id}, true))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	up := decode(t, w)
	assert.Equal(t, "uploaded", up["status"])
	assert.Equal(t, "syllabus.pdf", up["filename"])
	assert.Equal(t, "application/octet-stream", up["content_type"])
	assert.EqualValues(t, 14, up["size"])
	assert.Equal(t, id, up["course_id"])

	got := decode(t, doJSON(r, http.MethodGet, "/courses/"+id, ""))
	file, ok := got["file"].(map[string]any)
	require.True(t, ok, "file metadata not attached: %v", got)
	assert.Equal(t, "syllabus.pdf", file["filename"])
	assert.NotEmpty(t, file["uploaded_at"])
}

func TestUpload_Errors(t *testing.T) {
	r := newCoursesEngine()

	tests := []struct {
		name     string
		fields   map[string]string
		withFile bool
		want     int
	}{
		{"username only", map[string]string{"username": "ada"}, true, http.StatusOK},
		{"unknown course", map[string]string{"course_id": "cmissing"}, true, http.StatusNotFound},
		{"neither id nor username", map[string]string{}, true, http.StatusUnprocessableEntity},
		{"no file", map[string]string{"username": "ada"}, false, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, uploadRequest(t, tt.fields, tt.withFile))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

type fakeCourseStore struct {
	putFn  func(ctx context.Context, build func(id string) course.Course) (course.Course, error)
	getFn  func(ctx context.Context, id string) (course.Course, error)
	listFn func(ctx context.Context) ([]course.Course, error)
}

func (f *fakeCourseStore) Put(ctx context.Context, build func(id string) course.Course) (course.Course, error) {
	if f.putFn != nil {
		return f.putFn(ctx, build)
	}
	return build("c1"), nil
}

func (f *fakeCourseStore) Get(ctx context.Context, id string) (course.Course, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return course.Course{}, store.ErrNotFound
}

func (f *fakeCourseStore) List(ctx context.Context) ([]course.Course, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeCourseStore) Update(ctx context.Context, id string, mutate func(*course.Course) error) (course.Course, error) {
	return course.Course{}, store.ErrNotFound
}

func TestCourses_StoreErrorsMap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable", store.Unavailable("courses.list", errors.New("i/o timeout")), http.StatusServiceUnavailable},
		{"unexpected", errors.New("decode courses: bad json"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewCoursesHandler(&fakeCourseStore{
				listFn: func(context.Context) ([]course.Course, error) { return nil, tt.err },
			})

			w := doJSON(setupRouter(http.MethodGet, "/courses/list", h.List), http.MethodGet, "/courses/list", "")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
