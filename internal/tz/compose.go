package tz

import (
	"errors"
	"time"
)

// RecordKind tags a composed per-expression result.
type RecordKind int

const (
	// RecordConverted carries one Conversion per target zone.
	RecordConverted RecordKind = iota
	// RecordAmbiguous carries ranked candidates for the requester to pick.
	RecordAmbiguous
	// RecordUnresolvable means the zone token matched nothing known.
	RecordUnresolvable
	// RecordInvalidTime means the local time fell in a DST gap.
	RecordInvalidTime
)

// Record is the structured output for one extracted expression, ready for
// the chat layer to render. Ambiguity and conversion errors are explicit
// variants, never collapsed into a best guess.
type Record struct {
	Expr Expression
	Kind RecordKind

	Source     ZoneID       // set when resolution was confident
	Results    []Conversion // RecordConverted only
	Candidates []ZoneID     // RecordAmbiguous only
	Reason     string
	Err        error // RecordInvalidTime only
}

// Compose folds an expression, its resolution, and its conversion outcome
// into one tagged record. Pure transformation, no side effects.
func Compose(expr Expression, res Resolution, convs []Conversion, convErr error) Record {
	rec := Record{Expr: expr, Reason: res.Reason}
	switch res.State {
	case Unresolvable:
		rec.Kind = RecordUnresolvable
		return rec
	case Ambiguous:
		rec.Kind = RecordAmbiguous
		rec.Candidates = append([]ZoneID(nil), res.Candidates...)
		return rec
	}

	rec.Source = res.Zone
	if convErr != nil {
		if errors.Is(convErr, ErrInvalidLocalTime) {
			rec.Kind = RecordInvalidTime
			rec.Err = convErr
			rec.Reason = convErr.Error()
			return rec
		}
		// Registry-level failures on targets should not happen with a
		// validated registry; surface them the same way.
		rec.Kind = RecordInvalidTime
		rec.Err = convErr
		rec.Reason = convErr.Error()
		return rec
	}
	rec.Kind = RecordConverted
	rec.Results = convs
	return rec
}

// Pipeline wires the extractor, resolver, and engine over one registry.
// Processing one message is pure and synchronous; pipelines are safe for
// concurrent use because all shared state is the read-only registry.
type Pipeline struct {
	Extractor *Extractor
	Resolver  *Resolver
	Engine    *Engine
}

func NewPipeline(reg *Registry) *Pipeline {
	return &Pipeline{
		Extractor: NewExtractor(reg),
		Resolver:  NewResolver(reg),
		Engine:    NewEngine(reg),
	}
}

// Process runs extract -> resolve -> convert -> compose for one message.
// Each expression is handled independently: partial success is the common
// case, and no per-expression failure aborts its siblings.
func (p *Pipeline) Process(text string, rctx ReqContext, targets []ZoneID, ref time.Time) []Record {
	exprs := p.Extractor.Extract(text)
	recs := make([]Record, 0, len(exprs))
	for _, e := range exprs {
		res := p.Resolver.Resolve(e, rctx)
		if res.State != Resolved {
			recs = append(recs, Compose(e, res, nil, nil))
			continue
		}
		convs, err := p.Engine.Convert(e.Date, e.Clock, res.Zone, ref, targets...)
		recs = append(recs, Compose(e, res, convs, err))
	}
	return recs
}
