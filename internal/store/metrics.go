package store

import "context"

// Observer times one logical backend operation.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type observedBackend struct {
	inner Backend
	obs   Observer
}

// WithMetrics reports every backend call to obs under "<kind>.<op>".
func WithMetrics(b Backend, obs Observer) Backend {
	if obs == nil {
		return b
	}
	return &observedBackend{inner: b, obs: obs}
}

func (o *observedBackend) Insert(ctx context.Context, kind, id string, doc []byte) error {
	return o.obs.ObserveDB(kind+".insert", func() error {
		return o.inner.Insert(ctx, kind, id, doc)
	})
}

func (o *observedBackend) Fetch(ctx context.Context, kind, id string) ([]byte, error) {
	var doc []byte
	err := o.obs.ObserveDB(kind+".get", func() error {
		var err error
		doc, err = o.inner.Fetch(ctx, kind, id)
		return err
	})
	return doc, err
}

func (o *observedBackend) All(ctx context.Context, kind string) ([][]byte, error) {
	var docs [][]byte
	err := o.obs.ObserveDB(kind+".list", func() error {
		var err error
		docs, err = o.inner.All(ctx, kind)
		return err
	})
	return docs, err
}

func (o *observedBackend) Match(ctx context.Context, kind, field, value string) ([][]byte, error) {
	var docs [][]byte
	err := o.obs.ObserveDB(kind+".query_"+field, func() error {
		var err error
		docs, err = o.inner.Match(ctx, kind, field, value)
		return err
	})
	return docs, err
}

func (o *observedBackend) Modify(ctx context.Context, kind, id string, fn func([]byte) ([]byte, error)) ([]byte, error) {
	var doc []byte
	err := o.obs.ObserveDB(kind+".update", func() error {
		var err error
		doc, err = o.inner.Modify(ctx, kind, id, fn)
		return err
	})
	return doc, err
}

func (o *observedBackend) Ping(ctx context.Context) error {
	return o.inner.Ping(ctx)
}

func (o *observedBackend) Close() error {
	return o.inner.Close()
}
