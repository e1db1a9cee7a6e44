package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/js-lib-com/wood-sub003/eval"
	"github.com/js-lib-com/wood-sub003/ref"
	"github.com/js-lib-com/wood-sub003/resolve"
	"github.com/js-lib-com/wood-sub003/vars"
)

const namespace = "wood"

// Error classes reported by [Class].
const (
	ClassSyntax     = "syntax"
	ClassSemantic   = "semantic"
	ClassResolution = "resolution"
	ClassOpcode     = "opcode"
	ClassLoading    = "loading"
	ClassOther      = "other"
)

// Collectors registered with the default registry.
var (
	References = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "references_total",
		Help:      "References answered by a handler, by category.",
	}, []string{"category"})

	NotFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "references_not_found_total",
		Help:      "References no handler could answer, by category.",
	}, []string{"category"})

	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_total",
		Help:      "Operator executions, by opcode.",
	}, []string{"opcode"})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Failed resolutions, by error class.",
	}, []string{"class"})

	Reloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reloads_total",
		Help:      "Variable store reloads, by result.",
	}, []string{"result"})

	Sources = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sources",
		Help:      "Definition sources in the current snapshot.",
	})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolve_seconds",
		Help:      "Time spent resolving one file.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Class maps an error to its class label.
func Class(err error) string {
	is := func(targets ...error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}

		return false
	}

	switch {
	case is(eval.ErrSyntax, eval.ErrOpcodeTooLong, resolve.ErrUnterminated, resolve.ErrInvalidReference):
		return ClassSyntax
	case is(eval.ErrBadNumericArgument, eval.ErrDifferentUnits, eval.ErrArgumentCount, eval.ErrDivisionByZero):
		return ClassSemantic
	case is(resolve.ErrNotFound, vars.ErrCircularReference):
		return ClassResolution
	case is(eval.ErrUnimplementedOpcode):
		return ClassOpcode
	case is(vars.ErrBadResourceType, vars.ErrNestedElement, vars.ErrMalformed, vars.ErrReadSource):
		return ClassLoading
	default:
		return ClassOther
	}
}

// ObserveResolve records one resolution that started at start.
func ObserveResolve(start time.Time, err error) {
	ResolveDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		Errors.WithLabelValues(Class(err)).Inc()
	}
}

// ObserveReload records the outcome of a store reload.
func ObserveReload(changed bool, sources int, err error) {
	switch {
	case err != nil:
		Reloads.WithLabelValues("failed").Inc()
		Errors.WithLabelValues(Class(err)).Inc()
	case changed:
		Reloads.WithLabelValues("changed").Inc()
		Sources.Set(float64(sources))
	default:
		Reloads.WithLabelValues("unchanged").Inc()
	}
}

// Handler counts the references next answers and misses.
func Handler(next resolve.Handler) resolve.Handler {
	return resolve.HandlerFunc(func(r ref.Reference, origin string) (string, bool, error) {
		v, ok, err := next.OnReference(r, origin)

		switch {
		case err != nil:
		case ok:
			References.WithLabelValues(r.Category.String()).Inc()
		default:
			NotFound.WithLabelValues(r.Category.String()).Inc()
		}

		return v, ok, err
	})
}

type countedOperator struct {
	opcode string
	op     eval.Operator
}

func (c countedOperator) Exec(args ...string) (string, error) {
	Evaluations.WithLabelValues(c.opcode).Inc()

	return c.op.Exec(args...)
}

// Instrument replaces every operator in r with one that counts its
// executions. Operators registered later are not counted.
func Instrument(r *eval.Registry) *eval.Registry {
	for _, opcode := range r.Opcodes() {
		op, err := r.Lookup(opcode)
		if err != nil {
			continue
		}

		if _, ok := op.(countedOperator); !ok {
			r.Register(opcode, countedOperator{opcode: opcode, op: op})
		}
	}

	return r
}
