package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"smartmeeting/store"
)

// InstrumentStore wraps st so every call is traced and counted.
// A nil collector disables metrics but keeps the spans.
func InstrumentStore(st store.Store, c *Collector) store.Store {
	return &instrumentedStore{inner: st, metrics: c, tracer: otel.Tracer("smartmeeting/store")}
}

type instrumentedStore struct {
	inner   store.Store
	metrics *Collector
	tracer  trace.Tracer
}

func (s *instrumentedStore) observe(ctx context.Context, op, ownerID string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "store."+op)
	if ownerID != "" {
		span.SetAttributes(attribute.String("owner.id", ownerID))
	}
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	// not-found is an expected answer, not a failure
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.metrics != nil {
		s.metrics.observeStore(op, err, time.Since(start))
	}
	return err
}

func (s *instrumentedStore) CreateOwner(ctx context.Context, o *store.Owner) error {
	return s.observe(ctx, "CreateOwner", "", func(ctx context.Context) error {
		return s.inner.CreateOwner(ctx, o)
	})
}

func (s *instrumentedStore) GetOwner(ctx context.Context, id string) (o *store.Owner, err error) {
	err = s.observe(ctx, "GetOwner", id, func(ctx context.Context) error {
		o, err = s.inner.GetOwner(ctx, id)
		return err
	})
	return o, err
}

func (s *instrumentedStore) GetOwnerByEmail(ctx context.Context, email string) (o *store.Owner, err error) {
	err = s.observe(ctx, "GetOwnerByEmail", "", func(ctx context.Context) error {
		o, err = s.inner.GetOwnerByEmail(ctx, email)
		return err
	})
	return o, err
}

func (s *instrumentedStore) DeleteOwner(ctx context.Context, id string) error {
	return s.observe(ctx, "DeleteOwner", id, func(ctx context.Context) error {
		return s.inner.DeleteOwner(ctx, id)
	})
}

func (s *instrumentedStore) CreateTemplate(ctx context.Context, t *store.Template) error {
	return s.observe(ctx, "CreateTemplate", t.OwnerID, func(ctx context.Context) error {
		return s.inner.CreateTemplate(ctx, t)
	})
}

func (s *instrumentedStore) GetTemplate(ctx context.Context, ownerID, id string) (t *store.Template, err error) {
	err = s.observe(ctx, "GetTemplate", ownerID, func(ctx context.Context) error {
		t, err = s.inner.GetTemplate(ctx, ownerID, id)
		return err
	})
	return t, err
}

func (s *instrumentedStore) ListTemplates(ctx context.Context, ownerID string) (ts []store.Template, err error) {
	err = s.observe(ctx, "ListTemplates", ownerID, func(ctx context.Context) error {
		ts, err = s.inner.ListTemplates(ctx, ownerID)
		return err
	})
	return ts, err
}

func (s *instrumentedStore) CreateDistribution(ctx context.Context, d *store.Distribution) error {
	return s.observe(ctx, "CreateDistribution", d.OwnerID, func(ctx context.Context) error {
		return s.inner.CreateDistribution(ctx, d)
	})
}

func (s *instrumentedStore) ListDistributions(ctx context.Context, ownerID string, limit int) (ds []store.Distribution, err error) {
	err = s.observe(ctx, "ListDistributions", ownerID, func(ctx context.Context) error {
		ds, err = s.inner.ListDistributions(ctx, ownerID, limit)
		return err
	})
	return ds, err
}

func (s *instrumentedStore) RecentActivity(ctx context.Context, ownerID string, limit int) (as []store.Activity, err error) {
	err = s.observe(ctx, "RecentActivity", ownerID, func(ctx context.Context) error {
		as, err = s.inner.RecentActivity(ctx, ownerID, limit)
		return err
	})
	return as, err
}

func (s *instrumentedStore) Stats(ctx context.Context, ownerID string) (st store.Stats, err error) {
	err = s.observe(ctx, "Stats", ownerID, func(ctx context.Context) error {
		st, err = s.inner.Stats(ctx, ownerID)
		return err
	})
	return st, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.observe(ctx, "Ping", "", s.inner.Ping)
}

func (s *instrumentedStore) Close() error {
	return s.inner.Close()
}
