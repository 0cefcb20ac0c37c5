package gateway

import (
	"net/http"

	"github.com/geocoder89/learnhub/internal/config"
)

// Route is one forwarded path. The gateway path and the collaborator path
// are the same.
type Route struct {
	Method  string
	Path    string
	Service string
}

var Routes = []Route{
	{Method: http.MethodPost, Path: "/users/register", Service: config.UserService},
	{Method: http.MethodPost, Path: "/users/login", Service: config.UserService},
	{Method: http.MethodGet, Path: "/users/list", Service: config.UserService},
	{Method: http.MethodGet, Path: "/users/me", Service: config.UserService},

	{Method: http.MethodPost, Path: "/courses/create", Service: config.CourseService},
	{Method: http.MethodGet, Path: "/courses/list", Service: config.CourseService},
	{Method: http.MethodPost, Path: "/courses/upload", Service: config.CourseService},
	{Method: http.MethodGet, Path: "/courses/:id", Service: config.CourseService},

	{Method: http.MethodPost, Path: "/enrollments/enroll", Service: config.EnrollmentService},
	{Method: http.MethodGet, Path: "/enrollments/list", Service: config.EnrollmentService},
	{Method: http.MethodGet, Path: "/enrollments/:user_id", Service: config.EnrollmentService},

	{Method: http.MethodPost, Path: "/payments/initiate", Service: config.PaymentService},
	{Method: http.MethodGet, Path: "/payments/status/:id", Service: config.PaymentService},
	{Method: http.MethodGet, Path: "/payments/list", Service: config.PaymentService},

	{Method: http.MethodPost, Path: "/notify/email", Service: config.NotificationService},
	{Method: http.MethodGet, Path: "/notifications/list", Service: config.NotificationService},
}
