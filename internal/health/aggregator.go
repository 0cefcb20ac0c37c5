package health

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy     = "healthy"
	StatusUnhealthy   = "unhealthy"
	StatusUnreachable = "unreachable"
)

// Result is one collaborator's entry in the aggregate. Detail holds the
// probed body (raw JSON when the body parses, text otherwise) or, for
// unreachable collaborators, the transport error text.
type Result struct {
	Status string `json:"status"`
	Detail any    `json:"detail,omitempty"`
}

// ProbeFunc fetches one collaborator's liveness endpoint. A non-nil error
// means the collaborator could not be reached at all.
type ProbeFunc func(ctx context.Context, baseURL string) (status int, body []byte, err error)

// UpstreamRecorder is satisfied by *observability.Prom.
type UpstreamRecorder interface {
	ObserveUpstream(service, kind, result string, d time.Duration)
}

type Aggregator struct {
	targets map[string]string
	timeout time.Duration
	probe   ProbeFunc
	metrics UpstreamRecorder
}

// NewAggregator probes every name -> base URL in targets. The map is
// copied; later changes to it are not seen.
func NewAggregator(targets map[string]string, timeout time.Duration, metrics UpstreamRecorder) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	own := make(map[string]string, len(targets))
	for name, url := range targets {
		own[name] = url
	}

	return &Aggregator{
		targets: own,
		timeout: timeout,
		probe:   NewHTTPProbe(),
		metrics: metrics,
	}
}

// SetProbe replaces the transport, mainly for tests.
func (a *Aggregator) SetProbe(p ProbeFunc) {
	a.probe = p
}

// CheckAll probes every collaborator concurrently, each under its own
// timeout, and waits for all of them. One failing collaborator never fails
// the aggregate.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	type named struct {
		name   string
		result Result
	}

	out := make([]named, 0, len(a.targets))
	for name := range a.targets {
		out = append(out, named{name: name})
	}

	// errgroup for the join only; probes never return an error, so one
	// failure cannot cancel its siblings.
	var g errgroup.Group
	for i := range out {
		i := i
		g.Go(func() error {
			out[i].result = a.checkOne(ctx, out[i].name)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]Result, len(out))
	for _, n := range out {
		results[n.name] = n.result
	}

	return results
}

func (a *Aggregator) checkOne(ctx context.Context, name string) Result {
	probeCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	status, body, err := a.probe(probeCtx, a.targets[name])

	var res Result
	switch {
	case err != nil:
		res = Result{Status: StatusUnreachable, Detail: err.Error()}
	case status >= 200 && status < 300:
		res = Result{Status: StatusHealthy, Detail: embed(body)}
	default:
		res = Result{Status: StatusUnhealthy, Detail: embed(body)}
	}

	if a.metrics != nil {
		a.metrics.ObserveUpstream(name, "probe", res.Status, time.Since(start))
	}

	return res
}

func embed(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// NewHTTPProbe issues GET <baseURL>/health. The deadline comes from ctx.
func NewHTTPProbe() ProbeFunc {
	client := resty.New()

	return func(ctx context.Context, baseURL string) (int, []byte, error) {
		resp, err := client.R().
			SetContext(ctx).
			Get(baseURL + "/health")
		if err != nil {
			return 0, nil, err
		}
		return resp.StatusCode(), resp.Body(), nil
	}
}
