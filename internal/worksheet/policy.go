package worksheet

import (
	"github.com/eproba/server/internal/user"
)

// Policy decides what a user may do with worksheets based on their function.
// The two thresholds come from workflow config; guards compare against them
// rather than naming ranks.
type Policy struct {
	PatrolLeaderFunction user.Function
	LeaderFunction       user.Function
}

func NewPolicy(patrolLeaderFunction, leaderFunction int) Policy {
	return Policy{
		PatrolLeaderFunction: user.Function(patrolLeaderFunction),
		LeaderFunction:       user.Function(leaderFunction),
	}
}

func (p Policy) sameTeam(actor *user.User, w *Worksheet) bool {
	return actor.TeamID != nil && w.TeamID != nil && *actor.TeamID == *w.TeamID
}

// CanView reports whether the actor may read the worksheet at all. Owners
// and supervisors always can. Patrol leaders see their team's sheets owned
// by lower-ranked users; team leadership sees the whole team. Templates are
// visible to every team member.
func (p Policy) CanView(actor *user.User, w *Worksheet, ownerFunction user.Function) bool {
	if w.OwnedBy(actor.ID) || w.SupervisedBy(actor.ID) {
		return true
	}
	if !p.sameTeam(actor, w) {
		return false
	}
	if w.IsTemplate {
		return true
	}
	if actor.Function >= p.LeaderFunction {
		return true
	}
	if actor.Function >= p.PatrolLeaderFunction {
		return ownerFunction < actor.Function
	}
	return false
}

// CanManage covers structural edits: renaming, editing tasks, archiving and
// deleting. Owners manage their own sheets; team leadership manages any
// sheet in the team.
func (p Policy) CanManage(actor *user.User, w *Worksheet) bool {
	if w.OwnedBy(actor.ID) || w.SupervisedBy(actor.ID) {
		return true
	}
	return actor.Function >= p.LeaderFunction && p.sameTeam(actor, w)
}

// CanManageTemplates reports whether the actor may create or edit team
// templates.
func (p Policy) CanManageTemplates(actor *user.User) bool {
	return actor.Function >= p.LeaderFunction
}

// CanCreateFor reports whether the actor may create a worksheet owned by
// another user.
func (p Policy) CanCreateFor(actor *user.User, owner *user.User) bool {
	if actor.ID == owner.ID {
		return true
	}
	if actor.Function < p.PatrolLeaderFunction {
		return false
	}
	return actor.TeamID != nil && owner.TeamID != nil && *actor.TeamID == *owner.TeamID
}

// CanSubmit covers submit, unsubmit and clear-status: actions reserved for
// the worksheet owner. Archived sheets are finished and templates have no
// owner workflow, so neither accepts submissions.
func (p Policy) CanSubmit(actor *user.User, w *Worksheet) bool {
	return w.OwnedBy(actor.ID) && !w.IsArchived && !w.IsTemplate
}

// CanModerate reports whether the actor may accept or reject the pending
// task. Only the approver the task was routed to qualifies.
func (p Policy) CanModerate(actor *user.User, t *Task) bool {
	return t.ApproverID != nil && *t.ApproverID == actor.ID
}

// CanForce covers the force accept and force reject overrides, reserved for
// team leadership within the sheet's team.
func (p Policy) CanForce(actor *user.User, w *Worksheet) bool {
	if w.SupervisedBy(actor.ID) {
		return true
	}
	return actor.Function >= p.LeaderFunction && p.sameTeam(actor, w)
}

// IsEligibleApprover reports whether candidate may be chosen to approve
// tasks on the owner's worksheet. Anyone at or above the patrol leader tier
// in the owner's team qualifies, except the owner themselves. Owners below
// that tier may also route to a deputy patrol leader from their own patrol.
func (p Policy) IsEligibleApprover(owner *user.User, candidate *user.User) bool {
	if !candidate.IsActive || candidate.ID == owner.ID {
		return false
	}
	if owner.TeamID == nil || candidate.TeamID == nil || *owner.TeamID != *candidate.TeamID {
		return false
	}
	if candidate.Function >= p.PatrolLeaderFunction {
		return true
	}
	if owner.Function < p.PatrolLeaderFunction &&
		candidate.Function == user.FunctionDeputyPatrolLeader &&
		owner.PatrolID != nil && candidate.InPatrol(*owner.PatrolID) {
		return true
	}
	return false
}

// ApproverCandidates filters the owner's team down to eligible approvers.
func (p Policy) ApproverCandidates(owner *user.User, teamMembers []*user.User) []*user.User {
	candidates := make([]*user.User, 0, len(teamMembers))
	for _, m := range teamMembers {
		if p.IsEligibleApprover(owner, m) {
			candidates = append(candidates, m)
		}
	}
	return candidates
}

// OwnerFunctionOf is a convenience for visibility checks on sheets whose
// owner record is already loaded.
func OwnerFunctionOf(owner *user.User) user.Function {
	if owner == nil {
		return user.FunctionMember
	}
	return owner.Function
}
