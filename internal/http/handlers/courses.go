package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/gin-gonic/gin"
)

type CourseStore interface {
	Put(ctx context.Context, build func(id string) course.Course) (course.Course, error)
	Get(ctx context.Context, id string) (course.Course, error)
	List(ctx context.Context) ([]course.Course, error)
	Update(ctx context.Context, id string, mutate func(*course.Course) error) (course.Course, error)
}

type CoursesHandler struct {
	repo CourseStore
}

func NewCoursesHandler(repo CourseStore) *CoursesHandler {
	return &CoursesHandler{repo: repo}
}

func (h *CoursesHandler) Create(ctx *gin.Context) {
	var req course.CreateCourseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	c, err := h.repo.Put(ctx.Request.Context(), func(id string) course.Course {
		return course.NewFromCreateRequest(id, req)
	})
	if err != nil {
		RespondStoreError(ctx, err, "Course not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"course_id": c.ID,
		"status":    "created",
		"title":     c.Title,
		"price":     c.Price,
	})
}

func (h *CoursesHandler) List(ctx *gin.Context) {
	courses, err := h.repo.List(ctx.Request.Context())
	if err != nil {
		RespondStoreError(ctx, err, "Courses not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"total":   len(courses),
		"courses": courses,
	})
}

func (h *CoursesHandler) GetByID(ctx *gin.Context) {
	c, err := h.repo.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondStoreError(ctx, err, "Course not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, c)
}

// Upload records metadata of a multipart "file". With course_id the
// metadata is attached to that course; with only username it is reported
// back without being stored. The file bytes are discarded.
func (h *CoursesHandler) Upload(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		RespondValidation(ctx, "Missing upload", gin.H{
			"fields": []FieldError{{Field: "file", Rule: "required", Message: "is required"}},
		})
		return
	}

	courseID := ctx.PostForm("course_id")
	username := ctx.PostForm("username")
	if courseID == "" && username == "" {
		RespondValidation(ctx, "Either course_id or username is required", gin.H{
			"fields": []FieldError{{Field: "course_id", Rule: "required_without", Param: "username", Message: "is required when username is absent"}},
		})
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	meta := course.FileMeta{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		UploadedAt:  time.Now().UTC(),
	}

	resp := gin.H{
		"status":       "uploaded",
		"filename":     meta.Filename,
		"content_type": meta.ContentType,
		"size":         meta.Size,
	}

	if courseID != "" {
		_, err := h.repo.Update(ctx.Request.Context(), courseID, func(c *course.Course) error {
			c.AttachFile(meta)
			return nil
		})
		if err != nil {
			RespondStoreError(ctx, err, "Course not found")
			return
		}

		resp["course_id"] = courseID
		resp["uploaded_at"] = meta.UploadedAt
	}
	if username != "" {
		resp["username"] = username
	}

	ctx.JSON(http.StatusOK, resp)
}
