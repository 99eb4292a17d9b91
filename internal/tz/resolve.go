package tz

import (
	"fmt"
	"strings"
)

// ReasonNoZone is the resolution reason when an expression has no zone
// token and the requester never configured a home zone.
const ReasonNoZone = "no zone specified and no home zone configured"

// Resolver maps an expression's zone token (or its absence) to a concrete
// zone, applying requester-context tie-breaks before admitting ambiguity.
//
// Resolution is deterministic: identical inputs (including hints) always
// produce identical output.
type Resolver struct {
	reg *Registry
}

func NewResolver(reg *Registry) *Resolver { return &Resolver{reg: reg} }

func (r *Resolver) Resolve(expr Expression, rctx ReqContext) Resolution {
	tok := strings.TrimSpace(expr.ZoneToken)
	if tok == "" {
		if rctx.HomeZone != "" {
			if z, err := r.reg.LookupID(rctx.HomeZone); err == nil {
				return Resolution{State: Resolved, Zone: z.ID, Reason: "requester home zone"}
			}
		}
		return Resolution{State: Ambiguous, Reason: ReasonNoZone}
	}

	cands := r.reg.Candidates(tok)
	if len(cands) == 0 {
		return Resolution{State: Unresolvable, Reason: fmt.Sprintf("unrecognized timezone %q", tok)}
	}
	if len(cands) == 1 {
		return Resolution{State: Resolved, Zone: cands[0], Reason: "exact match"}
	}

	// Tie-break (a): a candidate in the home zone's country. The home zone
	// itself wins outright when it is among the candidates.
	if rctx.HomeZone != "" {
		if home, err := r.reg.LookupID(rctx.HomeZone); err == nil {
			for _, id := range cands {
				if id == home.ID {
					return Resolution{State: Resolved, Zone: id, Reason: "matches requester home zone"}
				}
			}
			if home.Country != "" {
				var same []ZoneID
				for _, id := range cands {
					if z, err := r.reg.LookupID(id); err == nil && z.Country == home.Country {
						same = append(same, id)
					}
				}
				if len(same) == 1 {
					return Resolution{State: Resolved, Zone: same[0], Reason: "matches requester home country"}
				}
				if len(same) > 1 {
					// Narrowed but still plural: stay ambiguous with the
					// narrowed ranking rather than guessing.
					cands = same
				}
			}
		}
	}

	// Tie-break (b): the requester's most recently used zone.
	if rctx.RecentZone != "" {
		if recent, err := r.reg.LookupID(rctx.RecentZone); err == nil {
			for _, id := range cands {
				if id == recent.ID {
					return Resolution{State: Resolved, Zone: id, Reason: "recently used zone"}
				}
			}
		}
	}

	// (c): remain ambiguous, ranked by registry order.
	return Resolution{
		State:      Ambiguous,
		Candidates: cands,
		Reason:     fmt.Sprintf("%s matches %d zones", tok, len(cands)),
	}
}
