package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForwarder(t *testing.T, urls map[string]string) *Forwarder {
	t.Helper()
	return NewForwarder(NewRegistry(urls, nil), 2*time.Second, nil)
}

func TestForward_RelaysStatusBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses/c404", r.URL.Path)
		assert.Equal(t, "verbose=1", r.URL.RawQuery)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "req-9", r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"abc"`)
		w.Header().Set("X-Internal", "secret")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Course not found"}`))
	}))
	defer srv.Close()

	f := newForwarder(t, map[string]string{"course-service": srv.URL})

	ctx := observability.ContextWithRequestID(context.Background(), "req-9")
	resp, err := f.Forward(ctx, "course-service", Request{
		Method:   http.MethodGet,
		Path:     "/courses/c404",
		RawQuery: "verbose=1",
		Header:   http.Header{"Authorization": {"Bearer tok"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.JSONEq(t, `{"detail":"Course not found"}`, string(resp.Body))
	assert.Equal(t, `"abc"`, resp.Header.Get("ETag"))
	assert.Empty(t, resp.Header.Get("X-Internal"))
}

func TestForward_PostsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"user_id":"u1","course_id":"c1"}`, string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newForwarder(t, map[string]string{"enrollment-service": srv.URL})

	resp, err := f.Forward(context.Background(), "enrollment-service", Request{
		Method: http.MethodPost,
		Path:   "/enrollments/enroll",
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(`{"user_id":"u1","course_id":"c1"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestForward_UnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := newForwarder(t, map[string]string{"payment-service": url})

	_, err := f.Forward(context.Background(), "payment-service", Request{Method: http.MethodGet, Path: "/payments/list"})

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "payment-service", unavailable.Service)
	assert.Contains(t, err.Error(), "payment-service unreachable: ")
}

func TestForward_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := NewForwarder(NewRegistry(map[string]string{"user-service": srv.URL}, nil), 50*time.Millisecond, nil)

	_, err := f.Forward(context.Background(), "user-service", Request{Method: http.MethodGet, Path: "/users/list"})

	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestForward_UnknownService(t *testing.T) {
	f := newForwarder(t, map[string]string{})

	_, err := f.Forward(context.Background(), "nope", Request{Method: http.MethodGet, Path: "/"})
	assert.True(t, errors.Is(err, ErrUnknownService))
}

func TestForward_ReencodesMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "c1", r.FormValue("course_id"))

		file, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "notes.txt", hdr.Filename)
		assert.Equal(t, "text/plain", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "hello", string(data))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	form := parsedForm(t, map[string]string{"course_id": "c1"}, "notes.txt", "text/plain", "hello")

	f := newForwarder(t, map[string]string{"course-service": srv.URL})
	resp, err := f.Forward(context.Background(), "course-service", Request{
		Method: http.MethodPost,
		Path:   "/courses/upload",
		Header: http.Header{"Content-Type": {"multipart/form-data; boundary=stale"}},
		Form:   form,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}

// parsedForm builds a form the way an inbound server request would see it.
func parsedForm(t *testing.T, fields map[string]string, filename, contentType, content string) *multipart.Form {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/courses/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm
}

func TestRegistry_OrderAndCopies(t *testing.T) {
	urls := map[string]string{"b": "http://b", "a": "http://a", "z": "http://z"}
	r := NewRegistry(urls, []string{"z", "missing", "b"})

	assert.Equal(t, []string{"z", "b", "a"}, r.Names())

	urls["a"] = "changed"
	got, ok := r.URL("a")
	assert.True(t, ok)
	assert.Equal(t, "http://a", got)

	targets := r.Targets()
	targets["b"] = "mutated"
	got, _ = r.URL("b")
	assert.Equal(t, "http://b", got)
}
