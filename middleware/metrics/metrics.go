// Package metrics counts store writes with Prometheus.
package metrics

import (
	"errors"
	"fmt"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/hookable"
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	WritesTotal     = "go_store_writes_total"
	TransformsTotal = "go_store_transforms_total"
	LabelStore      = "store"
)

// Collectors are the counters shared by every store on one registerer.
type Collectors struct {
	Writes     *prometheus.CounterVec
	Transforms *prometheus.CounterVec
}

// Register registers the store counters on reg, reusing collectors that an
// earlier call already registered.
func Register(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	writes, err := registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: WritesTotal,
		Help: "Committed store writes.",
	}, []string{LabelStore}))
	if err != nil {
		return nil, err
	}
	transforms, err := registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: TransformsTotal,
		Help: "Pending store states passed through transform hooks.",
	}, []string{LabelStore}))
	if err != nil {
		return nil, err
	}
	return &Collectors{Writes: writes, Transforms: transforms}, nil
}

func registerCounter(reg prometheus.Registerer, counter *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(counter); err != nil {
		var exists prometheus.AlreadyRegisteredError
		if errors.As(err, &exists) {
			if existing, ok := exists.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("metrics: register: %w", err)
	}
	return counter, nil
}

// New returns a middleware that counts writes for the store under name. An
// empty name falls back to the store name and then its id.
func New[S any](reg prometheus.Registerer, name string) store.Middleware[S] {
	return func(s *store.Store[S], hooks store.Hooks[S]) error {
		collectors, err := Register(reg)
		if err != nil {
			return err
		}
		label := name
		if label == "" {
			label = s.Name()
		}
		if label == "" {
			label = s.ID().String()
		}

		writes := collectors.Writes.WithLabelValues(label)
		transforms := collectors.Transforms.WithLabelValues(label)

		hooks.TransformState(hookable.EveryTransform(func(state S) (S, error) {
			transforms.Inc()
			return state, nil
		}))
		hooks.StateDidChange(hookable.EveryTap(func(S) error {
			writes.Inc()
			return nil
		}))
		return nil
	}
}
