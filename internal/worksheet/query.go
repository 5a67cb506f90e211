package worksheet

import (
	"time"

	"github.com/eproba/server/internal/user"
	"github.com/google/uuid"
)

// Clause is one visibility grant: all set fields must hold for a worksheet
// to match. Clauses in a Filter are alternatives.
type Clause struct {
	OwnerID            *uuid.UUID
	SupervisorID       *uuid.UUID
	TeamID             *uuid.UUID
	OwnerFunctionBelow *user.Function
	ExcludeOwnerID     *uuid.UUID
}

// Filter is a declarative description of which worksheets are visible. It is built
// once per request from the actor's rank, evaluated in memory via Matches
// and translated to SQL by the repository, so both paths share one
// definition of who sees what.
type Filter struct {
	Clauses        []Clause
	OwnerID        *uuid.UUID
	Archived       bool
	Templates      bool
	UpdatedAfter   *time.Time
	IncludeDeleted bool
}

// ListOptions carries the query-string knobs of a worksheet listing.
type ListOptions struct {
	Archived  bool
	Templates bool
	ForUserID *uuid.UUID
	LastSync  *time.Time
}

// MatchesNothing reports whether the filter can never match, which lets
// callers skip the query entirely.
func (f Filter) MatchesNothing() bool {
	return len(f.Clauses) == 0
}

func (c Clause) matches(w *Worksheet, ownerFunction user.Function) bool {
	if c.OwnerID != nil && !w.OwnedBy(*c.OwnerID) {
		return false
	}
	if c.SupervisorID != nil && !w.SupervisedBy(*c.SupervisorID) {
		return false
	}
	if c.TeamID != nil && (w.TeamID == nil || *w.TeamID != *c.TeamID) {
		return false
	}
	if c.OwnerFunctionBelow != nil && ownerFunction >= *c.OwnerFunctionBelow {
		return false
	}
	if c.ExcludeOwnerID != nil && w.OwnedBy(*c.ExcludeOwnerID) {
		return false
	}
	return true
}

// Matches evaluates the filter against a loaded worksheet. ownerFunction is
// the rank of the sheet's owner, needed for the patrol leader tier.
func (f Filter) Matches(w *Worksheet, ownerFunction user.Function) bool {
	if w.IsDeleted && !f.IncludeDeleted {
		return false
	}
	if !w.IsDeleted {
		if w.IsArchived != f.Archived {
			return false
		}
		if w.IsTemplate != f.Templates {
			return false
		}
	}
	if f.UpdatedAfter != nil && !w.UpdatedAt.After(*f.UpdatedAfter) {
		return false
	}
	if f.OwnerID != nil && !w.OwnedBy(*f.OwnerID) {
		return false
	}
	for _, c := range f.Clauses {
		if c.matches(w, ownerFunction) {
			return true
		}
	}
	return false
}

// VisibilityFor builds the filter for an actor. Supervised sheets are always
// in scope. Below the patrol leader tier a user sees only their own sheets.
// The patrol leader tier sees the team's sheets owned by lower-ranked users,
// excluding their own tier. Team leadership sees the whole team. Templates
// are team-scoped for every rank.
func (p Policy) VisibilityFor(actor *user.User, opts ListOptions) Filter {
	f := Filter{
		OwnerID:      opts.ForUserID,
		Archived:     opts.Archived,
		Templates:    opts.Templates,
		UpdatedAfter: opts.LastSync,
	}
	if opts.LastSync != nil {
		f.IncludeDeleted = true
	}

	if opts.Templates {
		if actor.TeamID != nil {
			f.Clauses = append(f.Clauses, Clause{TeamID: actor.TeamID})
		}
		return f
	}

	actorID := actor.ID
	f.Clauses = append(f.Clauses,
		Clause{OwnerID: &actorID},
		Clause{SupervisorID: &actorID},
	)

	if actor.TeamID == nil || actor.Function < p.PatrolLeaderFunction {
		return f
	}

	if actor.Function >= p.LeaderFunction {
		f.Clauses = append(f.Clauses, Clause{TeamID: actor.TeamID})
		return f
	}

	below := actor.Function
	f.Clauses = append(f.Clauses, Clause{
		TeamID:             actor.TeamID,
		OwnerFunctionBelow: &below,
		ExcludeOwnerID:     &actorID,
	})
	return f
}
