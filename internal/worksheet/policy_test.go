package worksheet_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/eproba/server/internal/user"
	"github.com/eproba/server/internal/worksheet"
	"github.com/google/uuid"
)

func newMember(function user.Function, teamID, patrolID uuid.UUID) *user.User {
	return &user.User{
		ID:       uuid.New(),
		Email:    uuid.New().String() + "@eproba.example",
		Function: function,
		TeamID:   &teamID,
		PatrolID: &patrolID,
		IsActive: true,
	}
}

func sheetOwnedBy(owner *user.User) *worksheet.Worksheet {
	ownerID := owner.ID
	return &worksheet.Worksheet{
		ID:     uuid.New(),
		Name:   "Second Class Badge",
		UserID: &ownerID,
		TeamID: owner.TeamID,
	}
}

var _ = Describe("Policy", func() {
	var (
		policy  worksheet.Policy
		teamID  uuid.UUID
		patrol  uuid.UUID
		scout   *user.User
		leader  *user.User
		pleader *user.User
	)

	BeforeEach(func() {
		policy = worksheet.NewPolicy(2, 3)
		teamID = uuid.New()
		patrol = uuid.New()
		scout = newMember(user.FunctionMember, teamID, patrol)
		pleader = newMember(user.FunctionPatrolLeader, teamID, patrol)
		leader = newMember(user.FunctionTeamLeader, teamID, patrol)
	})

	Describe("CanView", func() {
		It("lets owners view their own sheets", func() {
			w := sheetOwnedBy(scout)

			Expect(policy.CanView(scout, w, scout.Function)).To(BeTrue())
		})

		It("lets supervisors view supervised sheets regardless of rank", func() {
			otherTeam := uuid.New()
			supervisor := newMember(user.FunctionMember, otherTeam, uuid.New())
			w := sheetOwnedBy(scout)
			w.SupervisorID = &supervisor.ID

			Expect(policy.CanView(supervisor, w, scout.Function)).To(BeTrue())
		})

		It("hides peer sheets from plain members", func() {
			peer := newMember(user.FunctionMember, teamID, patrol)
			w := sheetOwnedBy(peer)

			Expect(policy.CanView(scout, w, peer.Function)).To(BeFalse())
		})

		It("lets patrol leaders view lower-ranked team sheets", func() {
			w := sheetOwnedBy(scout)

			Expect(policy.CanView(pleader, w, scout.Function)).To(BeTrue())
		})

		It("hides same-rank sheets from patrol leaders", func() {
			other := newMember(user.FunctionPatrolLeader, teamID, uuid.New())
			w := sheetOwnedBy(other)

			Expect(policy.CanView(pleader, w, other.Function)).To(BeFalse())
		})

		It("lets team leadership view every team sheet", func() {
			other := newMember(user.FunctionTeamLeader, teamID, patrol)
			w := sheetOwnedBy(other)

			Expect(policy.CanView(leader, w, other.Function)).To(BeTrue())
		})

		It("hides sheets from other teams", func() {
			stranger := newMember(user.FunctionSenior, uuid.New(), uuid.New())
			w := sheetOwnedBy(scout)

			Expect(policy.CanView(stranger, w, scout.Function)).To(BeFalse())
		})

		It("shows templates to every team member", func() {
			tpl := &worksheet.Worksheet{ID: uuid.New(), TeamID: &teamID, IsTemplate: true}

			Expect(policy.CanView(scout, tpl, user.FunctionMember)).To(BeTrue())
		})
	})

	Describe("CanManage", func() {
		It("lets owners manage their sheets", func() {
			Expect(policy.CanManage(scout, sheetOwnedBy(scout))).To(BeTrue())
		})

		It("denies patrol leaders structural edits on sheets they can only view", func() {
			Expect(policy.CanManage(pleader, sheetOwnedBy(scout))).To(BeFalse())
		})

		It("lets team leadership manage any team sheet", func() {
			Expect(policy.CanManage(leader, sheetOwnedBy(scout))).To(BeTrue())
		})
	})

	Describe("CanSubmit", func() {
		It("is reserved for the owner", func() {
			w := sheetOwnedBy(scout)

			Expect(policy.CanSubmit(scout, w)).To(BeTrue())
			Expect(policy.CanSubmit(leader, w)).To(BeFalse())
		})

		It("denies submission on an archived sheet even for the owner", func() {
			w := sheetOwnedBy(scout)
			w.IsArchived = true

			Expect(policy.CanSubmit(scout, w)).To(BeFalse())
		})

		It("denies submission on a template", func() {
			w := sheetOwnedBy(scout)
			w.IsTemplate = true

			Expect(policy.CanSubmit(scout, w)).To(BeFalse())
		})
	})

	Describe("CanModerate", func() {
		It("only allows the routed approver", func() {
			task := &worksheet.Task{Status: worksheet.StatusAwaitingApproval, ApproverID: &pleader.ID}

			Expect(policy.CanModerate(pleader, task)).To(BeTrue())
			Expect(policy.CanModerate(leader, task)).To(BeFalse())
		})

		It("denies everyone when no approver is set", func() {
			task := &worksheet.Task{Status: worksheet.StatusToDo}

			Expect(policy.CanModerate(leader, task)).To(BeFalse())
		})
	})

	Describe("CanForce", func() {
		It("allows the supervisor", func() {
			supervisor := newMember(user.FunctionMember, uuid.New(), uuid.New())
			w := sheetOwnedBy(scout)
			w.SupervisorID = &supervisor.ID

			Expect(policy.CanForce(supervisor, w)).To(BeTrue())
		})

		It("allows team leadership within the team", func() {
			Expect(policy.CanForce(leader, sheetOwnedBy(scout))).To(BeTrue())
		})

		It("denies the owner and patrol leaders", func() {
			w := sheetOwnedBy(scout)

			Expect(policy.CanForce(scout, w)).To(BeFalse())
			Expect(policy.CanForce(pleader, w)).To(BeFalse())
		})
	})

	Describe("IsEligibleApprover", func() {
		It("accepts same-team members at the patrol leader tier or above", func() {
			Expect(policy.IsEligibleApprover(scout, pleader)).To(BeTrue())
			Expect(policy.IsEligibleApprover(scout, leader)).To(BeTrue())
		})

		It("rejects the owner themselves", func() {
			Expect(policy.IsEligibleApprover(pleader, pleader)).To(BeFalse())
		})

		It("rejects candidates from other teams", func() {
			foreign := newMember(user.FunctionSenior, uuid.New(), uuid.New())

			Expect(policy.IsEligibleApprover(scout, foreign)).To(BeFalse())
		})

		It("rejects inactive candidates", func() {
			pleader.IsActive = false

			Expect(policy.IsEligibleApprover(scout, pleader)).To(BeFalse())
		})

		It("accepts a deputy from the owner's patrol for low-ranked owners", func() {
			deputy := newMember(user.FunctionDeputyPatrolLeader, teamID, patrol)

			Expect(policy.IsEligibleApprover(scout, deputy)).To(BeTrue())
		})

		It("rejects a deputy from another patrol", func() {
			deputy := newMember(user.FunctionDeputyPatrolLeader, teamID, uuid.New())

			Expect(policy.IsEligibleApprover(scout, deputy)).To(BeFalse())
		})

		It("rejects deputies for owners at the patrol leader tier", func() {
			deputy := newMember(user.FunctionDeputyPatrolLeader, teamID, patrol)

			Expect(policy.IsEligibleApprover(pleader, deputy)).To(BeFalse())
		})
	})

	Describe("ApproverCandidates", func() {
		It("filters the team roster down to eligible approvers", func() {
			deputy := newMember(user.FunctionDeputyPatrolLeader, teamID, patrol)
			peer := newMember(user.FunctionMember, teamID, patrol)
			roster := []*user.User{scout, deputy, peer, pleader, leader}

			candidates := policy.ApproverCandidates(scout, roster)

			Expect(candidates).To(ConsistOf(deputy, pleader, leader))
		})
	})
})
