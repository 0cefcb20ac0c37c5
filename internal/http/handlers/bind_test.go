package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Detail string `json:"detail"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindCourse(t *testing.T, body string) (*httptest.ResponseRecorder, bindErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/courses/create", func(ctx *gin.Context) {
		var req course.CreateCourseRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/courses/create", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp bindErrorResponse
	if w.Code != http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	w, resp := bindCourse(t, `{"title":""}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusUnprocessableEntity, w.Body.String())
	}

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}
	if resp.Detail == "" {
		t.Fatalf("expected top-level detail")
	}

	wantRules := map[string]string{
		"title":      "required",
		"price":      "required",
		"instructor": "required",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_ZeroPriceIsAcceptedNegativeIsNot(t *testing.T) {
	w, _ := bindCourse(t, `{"title":"Free Go","price":0,"instructor":"ada"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("zero price rejected: %d %s", w.Code, w.Body.String())
	}

	w, resp := bindCourse(t, `{"title":"Go","price":-1,"instructor":"ada"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", w.Code)
	}
	if len(resp.Error.Details.Fields) != 1 || resp.Error.Details.Fields[0].Rule != "gte" {
		t.Fatalf("expected a single gte violation, got %+v", resp.Error.Details.Fields)
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	w, resp := bindCourse(t, `{"title":"Go","price":"ten","instructor":"ada"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusUnprocessableEntity, w.Body.String())
	}

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "price" {
		t.Fatalf("expected detail field to be price, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 {
		t.Fatalf("expected at least one field error in details.fields")
	}

	fieldErr := resp.Error.Details.Fields[0]
	if fieldErr.Rule != "type" {
		t.Fatalf("expected fields[0].rule=type, got %q", fieldErr.Rule)
	}
}

func TestBindJSON_MalformedJSON(t *testing.T) {
	w, resp := bindCourse(t, `{"title":"Go",}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", w.Code)
	}
	if resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("expected invalid_json_syntax, got %q", resp.Error.Details.JSON)
	}
}

func TestBindJSON_EmptyBody(t *testing.T) {
	w, resp := bindCourse(t, ``)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", w.Code)
	}
	if resp.Error.Details.JSON != "empty_body" {
		t.Fatalf("expected empty_body, got %q", resp.Error.Details.JSON)
	}
}
