package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/go-resty/resty/v2"
)

// request headers relayed to the collaborator
var forwardHeaders = []string{
	"Content-Type",
	"Authorization",
	"Accept",
	"If-None-Match",
}

// response headers relayed back to the caller
var relayHeaders = []string{
	"Content-Type",
	"ETag",
	"Cache-Control",
}

var ErrUnknownService = errors.New("service not registered")

// UnavailableError is a transport failure talking to a collaborator. It
// never wraps an HTTP status: any response, including 404 or 500, is
// relayed as is.
type UnavailableError struct {
	Service string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Service, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte

	// Form, when set, is re-encoded as multipart/form-data and Body and the
	// inbound Content-Type are ignored.
	Form *multipart.Form
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// UpstreamRecorder is satisfied by *observability.Prom.
type UpstreamRecorder interface {
	ObserveUpstream(service, kind, result string, d time.Duration)
}

type Forwarder struct {
	registry *Registry
	client   *resty.Client
	metrics  UpstreamRecorder
}

func NewForwarder(registry *Registry, timeout time.Duration, metrics UpstreamRecorder) *Forwarder {
	client := resty.New().
		SetTimeout(timeout).
		// relay redirects instead of following them
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	return &Forwarder{registry: registry, client: client, metrics: metrics}
}

// Forward sends req to service and returns whatever it answered. Failing
// to reach the service yields *UnavailableError; any other error means the
// inbound upload could not be read.
func (f *Forwarder) Forward(ctx context.Context, service string, req Request) (*Response, error) {
	base, ok := f.registry.URL(service)
	if !ok {
		return nil, &UnavailableError{Service: service, Err: ErrUnknownService}
	}

	r := f.client.R().SetContext(ctx)

	for _, h := range forwardHeaders {
		if req.Form != nil && h == "Content-Type" {
			continue
		}
		if v := req.Header.Get(h); v != "" {
			r.SetHeader(h, v)
		}
	}
	if id := observability.RequestIDFromContext(ctx); id != "" {
		r.SetHeader("X-Request-Id", id)
	}

	if req.RawQuery != "" {
		r.SetQueryString(req.RawQuery)
	}

	if req.Form != nil {
		files, err := encodeMultipart(r, req.Form)
		defer closeAll(files)
		if err != nil {
			return nil, err
		}
	} else if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, base+req.Path)
	if err != nil {
		f.observe(service, "unreachable", start)
		return nil, &UnavailableError{Service: service, Err: err}
	}
	f.observe(service, "ok", start)

	out := &Response{
		Status: resp.StatusCode(),
		Header: make(http.Header),
		Body:   resp.Body(),
	}
	for _, h := range relayHeaders {
		if v := resp.Header().Get(h); v != "" {
			out.Header.Set(h, v)
		}
	}

	return out, nil
}

func (f *Forwarder) observe(service, result string, start time.Time) {
	if f.metrics != nil {
		f.metrics.ObserveUpstream(service, "forward", result, time.Since(start))
	}
}

// encodeMultipart copies the parsed form file-by-file and field-by-field.
// A form without files goes out urlencoded. The returned files must be
// closed once the request is sent.
func encodeMultipart(r *resty.Request, form *multipart.Form) ([]io.Closer, error) {
	if len(form.Value) > 0 {
		r.SetFormDataFromValues(url.Values(form.Value))
	}

	var opened []io.Closer
	for field, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return opened, fmt.Errorf("open upload %q: %w", fh.Filename, err)
			}
			opened = append(opened, f)

			contentType := fh.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}

			r.SetMultipartField(field, fh.Filename, contentType, f)
		}
	}

	return opened, nil
}

func closeAll(files []io.Closer) {
	for _, f := range files {
		_ = f.Close()
	}
}
