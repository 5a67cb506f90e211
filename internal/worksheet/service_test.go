package worksheet_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/eproba/server/internal"
	"github.com/eproba/server/internal/core/events"
	"github.com/eproba/server/internal/user"
	"github.com/eproba/server/internal/worksheet"
	"github.com/google/uuid"
)

// Mock repository for testing
type mockWorksheetRepository struct {
	sheets         map[uuid.UUID]*worksheet.Worksheet
	ownerFunctions map[uuid.UUID]user.Function
	createError    error
	getError       error
	updateError    error
	mutateError    error
	beforeMutate   func()
}

func newMockWorksheetRepository() *mockWorksheetRepository {
	return &mockWorksheetRepository{
		sheets:         make(map[uuid.UUID]*worksheet.Worksheet),
		ownerFunctions: make(map[uuid.UUID]user.Function),
	}
}

func (m *mockWorksheetRepository) add(w *worksheet.Worksheet, ownerFunction user.Function) {
	m.sheets[w.ID] = w
	if w.UserID != nil {
		m.ownerFunctions[*w.UserID] = ownerFunction
	}
}

func (m *mockWorksheetRepository) Create(w *worksheet.Worksheet) error {
	if m.createError != nil {
		return m.createError
	}
	m.sheets[w.ID] = w
	return nil
}

func (m *mockWorksheetRepository) GetByID(id uuid.UUID) (*worksheet.Worksheet, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	w, exists := m.sheets[id]
	if !exists {
		return nil, errors.New("worksheet not found")
	}
	return w, nil
}

func (m *mockWorksheetRepository) List(f worksheet.Filter) ([]*worksheet.Worksheet, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	result := make([]*worksheet.Worksheet, 0)
	for _, w := range m.sheets {
		fn := user.FunctionMember
		if w.UserID != nil {
			fn = m.ownerFunctions[*w.UserID]
		}
		if f.Matches(w, fn) {
			result = append(result, w)
		}
	}
	return result, nil
}

func (m *mockWorksheetRepository) Update(w *worksheet.Worksheet) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.sheets[w.ID] = w
	return nil
}

func (m *mockWorksheetRepository) SoftDelete(id uuid.UUID) error {
	w, exists := m.sheets[id]
	if !exists {
		return errors.New("worksheet not found")
	}
	w.IsDeleted = true
	w.UpdatedAt = time.Now()
	return nil
}

func (m *mockWorksheetRepository) MutateTask(worksheetID, taskID uuid.UUID, apply func(*worksheet.Task) error) (*worksheet.Worksheet, *worksheet.Task, error) {
	if m.mutateError != nil {
		return nil, nil, m.mutateError
	}
	if m.beforeMutate != nil {
		m.beforeMutate()
	}
	w, exists := m.sheets[worksheetID]
	if !exists {
		return nil, nil, errors.New("worksheet not found")
	}
	task := w.TaskByID(taskID)
	if task == nil {
		return nil, nil, errors.New("task not found")
	}
	if err := apply(task); err != nil {
		return nil, nil, err
	}
	w.UpdatedAt = time.Now()
	return w, task, nil
}

func (m *mockWorksheetRepository) PendingForApprover(approverID uuid.UUID) ([]*worksheet.Worksheet, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	result := make([]*worksheet.Worksheet, 0)
	for _, w := range m.sheets {
		if w.IsDeleted || w.IsArchived {
			continue
		}
		for i := range w.Tasks {
			t := &w.Tasks[i]
			if t.Status == worksheet.StatusAwaitingApproval && t.ApproverID != nil && *t.ApproverID == approverID {
				result = append(result, w)
				break
			}
		}
	}
	return result, nil
}

func (m *mockWorksheetRepository) OwnerFunction(w *worksheet.Worksheet) (user.Function, error) {
	if w.UserID == nil {
		return user.FunctionMember, nil
	}
	return m.ownerFunctions[*w.UserID], nil
}

// Mock user directory for testing
type mockUserDirectory struct {
	users    map[uuid.UUID]*user.User
	getError error
}

func newMockUserDirectory() *mockUserDirectory {
	return &mockUserDirectory{users: make(map[uuid.UUID]*user.User)}
}

func (m *mockUserDirectory) add(u *user.User) {
	m.users[u.ID] = u
}

func (m *mockUserDirectory) GetByID(id uuid.UUID) (*user.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	u, exists := m.users[id]
	if !exists {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserDirectory) ListByTeam(teamID uuid.UUID) ([]*user.User, error) {
	result := make([]*user.User, 0)
	for _, u := range m.users {
		if u.TeamID != nil && *u.TeamID == teamID {
			result = append(result, u)
		}
	}
	return result, nil
}

// Mock event publisher for testing
type mockPublisher struct {
	mu        sync.Mutex
	published []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) events() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.Event{}, m.published...)
}

var _ = Describe("WorksheetService", func() {
	var (
		service   *worksheet.Service
		repo      *mockWorksheetRepository
		users     *mockUserDirectory
		publisher *mockPublisher
		teamID    uuid.UUID
		patrolID  uuid.UUID
		scout     *user.User
		pleader   *user.User
		leader    *user.User
		sheet     *worksheet.Worksheet
		taskID    uuid.UUID
	)

	BeforeEach(func() {
		repo = newMockWorksheetRepository()
		users = newMockUserDirectory()
		publisher = &mockPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = worksheet.NewService(repo, users, publisher, worksheet.NewPolicy(2, 3), logger)

		teamID = uuid.New()
		patrolID = uuid.New()
		scout = newMember(user.FunctionMember, teamID, patrolID)
		pleader = newMember(user.FunctionPatrolLeader, teamID, patrolID)
		leader = newMember(user.FunctionTeamLeader, teamID, patrolID)
		users.add(scout)
		users.add(pleader)
		users.add(leader)

		taskID = uuid.New()
		sheet = sheetOwnedBy(scout)
		sheet.Tasks = []worksheet.Task{{
			ID:          taskID,
			WorksheetID: sheet.ID,
			Name:        "Tie six basic knots",
			Status:      worksheet.StatusToDo,
			Category:    worksheet.CategoryGeneral,
		}}
		repo.add(sheet, scout.Function)
	})

	Describe("SubmitTask", func() {
		It("routes the task and notifies the approver", func() {
			approverID := pleader.ID
			w, already, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})

			Expect(err).ToNot(HaveOccurred())
			Expect(already).To(BeFalse())
			task := w.TaskByID(taskID)
			Expect(task.Status).To(Equal(worksheet.StatusAwaitingApproval))
			Expect(*task.ApproverID).To(Equal(pleader.ID))

			published := publisher.events()
			Expect(published).To(HaveLen(1))
			Expect(published[0].EventType()).To(Equal(events.EventTypeTaskSubmitted))
			te := published[0].(*events.TaskTransitionEvent)
			Expect(te.RecipientID).To(Equal(pleader.ID))
		})

		It("reports an already approved task without touching it", func() {
			sheet.Tasks[0].Status = worksheet.StatusApproved
			approverID := pleader.ID

			_, already, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})

			Expect(err).ToNot(HaveOccurred())
			Expect(already).To(BeTrue())
			Expect(publisher.events()).To(BeEmpty())
		})

		It("requires an approver", func() {
			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{})

			Expect(err).To(Equal(internal.ErrApproverRequired))
		})

		It("rejects an ineligible approver", func() {
			peer := newMember(user.FunctionMember, teamID, patrolID)
			users.add(peer)
			peerID := peer.ID

			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &peerID})

			Expect(err).To(Equal(internal.ErrApproverNotEligible))
		})

		It("rejects an unknown approver", func() {
			ghost := uuid.New()

			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &ghost})

			Expect(err).To(Equal(internal.ErrApproverNotEligible))
		})

		It("is reserved for the owner", func() {
			approverID := pleader.ID

			_, _, err := service.SubmitTask(leader, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("hides out-of-scope sheets behind not found", func() {
			stranger := newMember(user.FunctionSenior, uuid.New(), uuid.New())
			approverID := pleader.ID

			_, _, err := service.SubmitTask(stranger, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})

			Expect(err).To(Equal(internal.ErrWorksheetNotFound))
		})

		It("reports deleted sheets as gone", func() {
			sheet.IsDeleted = true
			approverID := pleader.ID

			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})

			Expect(err).To(Equal(internal.ErrWorksheetNotFound))
		})
	})

	Describe("UnsubmitTask", func() {
		It("withdraws a pending submission", func() {
			approverID := pleader.ID
			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})
			Expect(err).ToNot(HaveOccurred())

			w, err := service.UnsubmitTask(scout, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
			task := w.TaskByID(taskID)
			Expect(task.Status).To(Equal(worksheet.StatusToDo))
			Expect(task.ApproverID).To(BeNil())
		})

		It("fails for a task that is not pending", func() {
			_, err := service.UnsubmitTask(scout, sheet.ID, taskID)

			Expect(err).To(Equal(internal.ErrTaskNotAwaiting))
		})
	})

	Describe("AcceptTask", func() {
		BeforeEach(func() {
			approverID := pleader.ID
			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})
			Expect(err).ToNot(HaveOccurred())
		})

		It("lets the routed approver approve and notifies the owner", func() {
			w, err := service.AcceptTask(pleader, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
			task := w.TaskByID(taskID)
			Expect(task.Status).To(Equal(worksheet.StatusApproved))
			Expect(*task.ApproverID).To(Equal(pleader.ID))
			Expect(task.ApprovalDate).ToNot(BeNil())

			published := publisher.events()
			Expect(published).To(HaveLen(2))
			Expect(published[1].EventType()).To(Equal(events.EventTypeTaskApproved))
			te := published[1].(*events.TaskTransitionEvent)
			Expect(te.RecipientID).To(Equal(scout.ID))
		})

		It("denies anyone the task was not routed to", func() {
			_, err := service.AcceptTask(leader, sheet.ID, taskID)

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("denies an approver the task was re-routed away from mid-flight", func() {
			repo.beforeMutate = func() {
				sheet.Tasks[0].ApproverID = &leader.ID
			}

			_, err := service.AcceptTask(pleader, sheet.ID, taskID)

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
			task := sheet.TaskByID(taskID)
			Expect(task.Status).To(Equal(worksheet.StatusAwaitingApproval))
			Expect(*task.ApproverID).To(Equal(leader.ID))
		})

		It("works for an approver outside the sheet's visibility", func() {
			// A supervisor from another team routed via a supervised sheet
			// scenario: the approver needs no view grant, only the routing.
			outsider := newMember(user.FunctionMember, uuid.New(), uuid.New())
			users.add(outsider)
			sheet.Tasks[0].ApproverID = &outsider.ID

			_, err := service.AcceptTask(outsider, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("RejectTask", func() {
		BeforeEach(func() {
			approverID := pleader.ID
			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})
			Expect(err).ToNot(HaveOccurred())
		})

		It("declines the task, clears the approver and notifies the owner", func() {
			w, err := service.RejectTask(pleader, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
			task := w.TaskByID(taskID)
			Expect(task.Status).To(Equal(worksheet.StatusRejected))
			Expect(task.ApproverID).To(BeNil())

			published := publisher.events()
			Expect(published[len(published)-1].EventType()).To(Equal(events.EventTypeTaskRejected))
		})

		It("denies an approver the task was re-routed away from mid-flight", func() {
			repo.beforeMutate = func() {
				sheet.Tasks[0].ApproverID = &leader.ID
			}

			_, err := service.RejectTask(pleader, sheet.ID, taskID)

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
			Expect(sheet.TaskByID(taskID).Status).To(Equal(worksheet.StatusAwaitingApproval))
		})
	})

	Describe("ForceAcceptTask", func() {
		It("lets team leadership approve an open task outright", func() {
			w, err := service.ForceAcceptTask(leader, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
			Expect(w.TaskByID(taskID).Status).To(Equal(worksheet.StatusApproved))

			published := publisher.events()
			Expect(published).To(HaveLen(1))
			Expect(published[0].EventType()).To(Equal(events.EventTypeTaskApproved))
		})

		It("is denied to patrol leaders", func() {
			_, err := service.ForceAcceptTask(pleader, sheet.ID, taskID)

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("is idempotent on an approved task", func() {
			_, err := service.ForceAcceptTask(leader, sheet.ID, taskID)
			Expect(err).ToNot(HaveOccurred())

			w, err := service.ForceAcceptTask(leader, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
			Expect(w.TaskByID(taskID).Status).To(Equal(worksheet.StatusApproved))
		})
	})

	Describe("ForceRejectTask", func() {
		It("returns an approved task to open and notifies the owner", func() {
			_, err := service.ForceAcceptTask(leader, sheet.ID, taskID)
			Expect(err).ToNot(HaveOccurred())

			w, err := service.ForceRejectTask(leader, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
			task := w.TaskByID(taskID)
			Expect(task.Status).To(Equal(worksheet.StatusToDo))
			Expect(task.ApproverID).To(BeNil())

			published := publisher.events()
			Expect(published[len(published)-1].EventType()).To(Equal(events.EventTypeTaskRejected))
		})
	})

	Describe("ClearTaskStatus", func() {
		It("resets the task without publishing anything", func() {
			approverID := pleader.ID
			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})
			Expect(err).ToNot(HaveOccurred())
			before := len(publisher.events())

			w, err := service.ClearTaskStatus(scout, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
			Expect(w.TaskByID(taskID).Status).To(Equal(worksheet.StatusToDo))
			Expect(publisher.events()).To(HaveLen(before))
		})

		It("is available to team leadership as well", func() {
			_, err := service.ClearTaskStatus(leader, sheet.ID, taskID)

			Expect(err).ToNot(HaveOccurred())
		})

		It("is available to the supervisor of the sheet", func() {
			peer := newMember(user.FunctionMember, teamID, patrolID)
			users.add(peer)
			supervised := sheetOwnedBy(peer)
			supervised.SupervisorID = &scout.ID
			supervised.Tasks = []worksheet.Task{{ID: uuid.New(), WorksheetID: supervised.ID, Name: "x"}}
			repo.add(supervised, peer.Function)

			_, err := service.ClearTaskStatus(scout, supervised.ID, supervised.Tasks[0].ID)

			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("ListWorksheets", func() {
		It("returns nothing for a teamless user with no sheets", func() {
			lone := &user.User{ID: uuid.New(), IsActive: true}

			sheets, err := service.ListWorksheets(lone, worksheet.ListOptions{Templates: true})

			Expect(err).ToNot(HaveOccurred())
			Expect(sheets).To(BeEmpty())
		})

		It("masks deleted sheets in sync listings", func() {
			Expect(service.DeleteWorksheet(scout, sheet.ID)).To(Succeed())
			cursor := time.Now().Add(-time.Hour)

			sheets, err := service.ListWorksheets(scout, worksheet.ListOptions{LastSync: &cursor})

			Expect(err).ToNot(HaveOccurred())
			Expect(sheets).To(HaveLen(1))
			Expect(sheets[0].ID).To(Equal(sheet.ID))
			Expect(sheets[0].Name).To(Equal("Deleted"))
			Expect(sheets[0].Tasks).To(BeEmpty())
		})

		It("omits deleted sheets from plain listings", func() {
			Expect(service.DeleteWorksheet(scout, sheet.ID)).To(Succeed())

			sheets, err := service.ListWorksheets(scout, worksheet.ListOptions{})

			Expect(err).ToNot(HaveOccurred())
			Expect(sheets).To(BeEmpty())
		})
	})

	Describe("CreateWorksheet", func() {
		It("creates a sheet for the actor with defaulted tasks", func() {
			w, err := service.CreateWorksheet(scout, worksheet.CreateWorksheetDTO{
				Name: "First Class Badge",
				Tasks: []worksheet.CreateTaskDTO{
					{Name: "Plan a day hike"},
					{Name: "Cook a patrol meal"},
				},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(*w.UserID).To(Equal(scout.ID))
			Expect(*w.TeamID).To(Equal(teamID))
			Expect(w.Tasks).To(HaveLen(2))
			Expect(w.Tasks[0].Category).To(Equal(worksheet.CategoryGeneral))
			Expect(w.Tasks[1].Order).To(Equal(1))
			Expect(w.Tasks[0].Status).To(Equal(worksheet.StatusToDo))
		})

		It("keeps an explicit zero order on a later task", func() {
			first, second := 5, 0
			w, err := service.CreateWorksheet(scout, worksheet.CreateWorksheetDTO{
				Name: "First Class Badge",
				Tasks: []worksheet.CreateTaskDTO{
					{Name: "Plan a day hike", Order: &first},
					{Name: "Cook a patrol meal", Order: &second},
				},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(w.Tasks[0].Order).To(Equal(5))
			Expect(w.Tasks[1].Order).To(Equal(0))
		})

		It("lets a patrol leader open a sheet for a team member", func() {
			scoutID := scout.ID
			w, err := service.CreateWorksheet(pleader, worksheet.CreateWorksheetDTO{
				Name:      "First Class Badge",
				ForUserID: &scoutID,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(*w.UserID).To(Equal(scout.ID))
		})

		It("denies members opening sheets for others", func() {
			peer := newMember(user.FunctionMember, teamID, patrolID)
			users.add(peer)
			peerID := peer.ID

			_, err := service.CreateWorksheet(scout, worksheet.CreateWorksheetDTO{
				Name:      "First Class Badge",
				ForUserID: &peerID,
			})

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("copies tasks from a template", func() {
			tpl := &worksheet.Worksheet{
				ID:         uuid.New(),
				Name:       "Badge Template",
				TeamID:     &teamID,
				IsTemplate: true,
				Tasks: []worksheet.Task{
					{ID: uuid.New(), Name: "Tie six basic knots", Category: worksheet.CategoryGeneral, Order: 0},
					{ID: uuid.New(), Name: "Plan a day hike", Category: worksheet.CategoryIndividual, Order: 1},
				},
			}
			repo.add(tpl, user.FunctionMember)
			tplID := tpl.ID

			w, err := service.CreateWorksheet(scout, worksheet.CreateWorksheetDTO{
				Name:       "My Badge",
				TemplateID: &tplID,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(w.Tasks).To(HaveLen(2))
			Expect(w.Tasks[0].Name).To(Equal("Tie six basic knots"))
			Expect(w.Tasks[1].Category).To(Equal(worksheet.CategoryIndividual))
			Expect(w.Tasks[0].ID).ToNot(Equal(tpl.Tasks[0].ID))
			Expect(w.Tasks[0].Status).To(Equal(worksheet.StatusToDo))
		})

		It("denies template creation below team leadership", func() {
			_, err := service.CreateWorksheet(pleader, worksheet.CreateWorksheetDTO{
				Name:       "Badge Template",
				IsTemplate: true,
			})

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("lets team leadership create templates", func() {
			w, err := service.CreateWorksheet(leader, worksheet.CreateWorksheetDTO{
				Name:       "Badge Template",
				IsTemplate: true,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(w.IsTemplate).To(BeTrue())
			Expect(w.UserID).To(BeNil())
			Expect(*w.TeamID).To(Equal(teamID))
		})
	})

	Describe("GetWorksheet", func() {
		It("hides sheets outside the actor's scope behind not found", func() {
			peer := newMember(user.FunctionMember, teamID, patrolID)
			users.add(peer)

			_, err := service.GetWorksheet(peer, sheet.ID)

			Expect(err).To(Equal(internal.ErrWorksheetNotFound))
		})

		It("masks deleted sheets for actors who could see them", func() {
			sheet.IsDeleted = true

			w, err := service.GetWorksheet(scout, sheet.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(w.ID).To(Equal(sheet.ID))
			Expect(w.Name).To(Equal("Deleted"))
			Expect(w.IsDeleted).To(BeTrue())
			Expect(w.Tasks).To(BeEmpty())
		})

		It("hides deleted sheets from strangers behind not found", func() {
			sheet.IsDeleted = true
			stranger := newMember(user.FunctionTeamLeader, uuid.New(), uuid.New())
			users.add(stranger)

			_, err := service.GetWorksheet(stranger, sheet.ID)

			Expect(err).To(Equal(internal.ErrWorksheetNotFound))
		})
	})

	Describe("UpdateWorksheet", func() {
		It("archives a sheet for its owner", func() {
			archived := true
			w, err := service.UpdateWorksheet(scout, sheet.ID, worksheet.UpdateWorksheetDTO{IsArchived: &archived})

			Expect(err).ToNot(HaveOccurred())
			Expect(w.IsArchived).To(BeTrue())
		})

		It("denies viewers without manage rights", func() {
			name := "Renamed"
			_, err := service.UpdateWorksheet(pleader, sheet.ID, worksheet.UpdateWorksheetDTO{Name: &name})

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})
	})

	Describe("TasksToApprove", func() {
		It("lists sheets with tasks routed to the actor", func() {
			approverID := pleader.ID
			_, _, err := service.SubmitTask(scout, sheet.ID, taskID, worksheet.SubmitTaskDTO{ApproverID: &approverID})
			Expect(err).ToNot(HaveOccurred())

			pending, err := service.TasksToApprove(pleader)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).To(Equal(sheet.ID))

			none, err := service.TasksToApprove(leader)
			Expect(err).ToNot(HaveOccurred())
			Expect(none).To(BeEmpty())
		})
	})

	Describe("ApproverCandidates", func() {
		It("lists eligible approvers for the sheet owner", func() {
			deputy := newMember(user.FunctionDeputyPatrolLeader, teamID, patrolID)
			users.add(deputy)

			candidates, err := service.ApproverCandidates(scout, sheet.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(candidates).To(ConsistOf(deputy, pleader, leader))
		})

		It("resolves the owner when leadership asks", func() {
			candidates, err := service.ApproverCandidates(leader, sheet.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(candidates).To(ContainElement(pleader))
			Expect(candidates).ToNot(ContainElement(scout))
		})
	})
})
