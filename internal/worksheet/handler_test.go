package worksheet_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/eproba/server/internal/user"
	"github.com/eproba/server/internal/worksheet"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

var _ = Describe("Worksheet Handler Integration", func() {
	var (
		router   *chi.Mux
		repo     *mockWorksheetRepository
		users    *mockUserDirectory
		actor    *user.User
		teamID   uuid.UUID
		patrolID uuid.UUID
		scout    *user.User
		pleader  *user.User
		sheet    *worksheet.Worksheet
		taskID   uuid.UUID
	)

	BeforeEach(func() {
		repo = newMockWorksheetRepository()
		users = newMockUserDirectory()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := worksheet.NewService(repo, users, &mockPublisher{}, worksheet.NewPolicy(2, 3), logger)

		resolver := func(r *http.Request) (*user.User, bool) {
			return actor, actor != nil
		}
		handler := worksheet.NewHandler(service, resolver)

		router = chi.NewRouter()
		router.Route("/worksheets", func(wr chi.Router) {
			wr.Get("/", handler.ListWorksheets)
			wr.Post("/", handler.CreateWorksheet)
			wr.Get("/{id}", handler.GetWorksheet)
			wr.Patch("/{id}", handler.UpdateWorksheet)
			wr.Delete("/{id}", handler.DeleteWorksheet)
			wr.Get("/{id}/approvers", handler.ApproverCandidates)
			wr.Route("/{id}/tasks/{taskId}", func(kr chi.Router) {
				kr.Patch("/submit", handler.SubmitTask)
				kr.Post("/unsubmit", handler.UnsubmitTask)
				kr.Post("/accept", handler.AcceptTask)
				kr.Post("/reject", handler.RejectTask)
				kr.Post("/clear-status", handler.ClearTaskStatus)
				kr.Post("/force/accept", handler.ForceAcceptTask)
				kr.Post("/force/reject", handler.ForceRejectTask)
			})
		})
		router.Get("/tasks/to-approve", handler.TasksToApprove)

		teamID = uuid.New()
		patrolID = uuid.New()
		scout = newMember(user.FunctionMember, teamID, patrolID)
		pleader = newMember(user.FunctionPatrolLeader, teamID, patrolID)
		users.add(scout)
		users.add(pleader)
		actor = scout

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

	submitPath := func() string {
		return fmt.Sprintf("/worksheets/%s/tasks/%s/submit", sheet.ID, taskID)
	}

	Describe("SubmitTask", func() {
		It("routes the task to the chosen approver", func() {
			body, _ := json.Marshal(map[string]string{"approver": pleader.ID.String()})
			req := httptest.NewRequest(http.MethodPatch, submitPath(), bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp worksheet.WorksheetResponse
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Tasks).To(HaveLen(1))
			Expect(resp.Tasks[0].Status).To(Equal(int(worksheet.StatusAwaitingApproval)))
			Expect(*resp.Tasks[0].ApproverID).To(Equal(pleader.ID))
		})

		It("reports an already approved task", func() {
			sheet.Tasks[0].Status = worksheet.StatusApproved
			approverID := pleader.ID
			sheet.Tasks[0].ApproverID = &approverID

			body, _ := json.Marshal(map[string]string{"approver": pleader.ID.String()})
			req := httptest.NewRequest(http.MethodPatch, submitPath(), bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp map[string]json.RawMessage
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			var status string
			Expect(json.Unmarshal(resp["status"], &status)).To(Succeed())
			Expect(status).To(Equal("already_approved"))
			Expect(resp).To(HaveKey("worksheet"))
		})

		It("rejects a submission without an approver", func() {
			req := httptest.NewRequest(http.MethodPatch, submitPath(), bytes.NewReader([]byte(`{}`)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("denies submissions by anyone but the owner", func() {
			actor = pleader

			body, _ := json.Marshal(map[string]string{"approver": pleader.ID.String()})
			req := httptest.NewRequest(http.MethodPatch, submitPath(), bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("hides sheets outside the caller's reach", func() {
			stranger := newMember(user.FunctionMember, uuid.New(), uuid.New())
			users.add(stranger)
			actor = stranger

			body, _ := json.Marshal(map[string]string{"approver": pleader.ID.String()})
			req := httptest.NewRequest(http.MethodPatch, submitPath(), bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("requires an authenticated caller", func() {
			actor = nil

			req := httptest.NewRequest(http.MethodPatch, submitPath(), bytes.NewReader([]byte(`{}`)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a malformed task ID", func() {
			path := fmt.Sprintf("/worksheets/%s/tasks/not-a-uuid/submit", sheet.ID)
			req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader([]byte(`{}`)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Accept and Reject", func() {
		BeforeEach(func() {
			approverID := pleader.ID
			sheet.Tasks[0].Status = worksheet.StatusAwaitingApproval
			sheet.Tasks[0].ApproverID = &approverID
		})

		It("lets the routed approver accept", func() {
			actor = pleader

			path := fmt.Sprintf("/worksheets/%s/tasks/%s/accept", sheet.ID, taskID)
			req := httptest.NewRequest(http.MethodPost, path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp worksheet.WorksheetResponse
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Tasks[0].Status).To(Equal(int(worksheet.StatusApproved)))
		})

		It("refuses rejection from someone the task was not routed to", func() {
			path := fmt.Sprintf("/worksheets/%s/tasks/%s/reject", sheet.ID, taskID)
			req := httptest.NewRequest(http.MethodPost, path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("ListWorksheets", func() {
		It("returns the caller's sheets", func() {
			req := httptest.NewRequest(http.MethodGet, "/worksheets/", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp struct {
				Worksheets []worksheet.WorksheetResponse `json:"worksheets"`
			}
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Worksheets).To(HaveLen(1))
			Expect(resp.Worksheets[0].ID).To(Equal(sheet.ID))
		})

		It("narrows the listing to one owner", func() {
			actor = pleader
			req := httptest.NewRequest(http.MethodGet, "/worksheets/?user="+scout.ID.String(), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp struct {
				Worksheets []worksheet.WorksheetResponse `json:"worksheets"`
			}
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Worksheets).To(HaveLen(1))
			Expect(*resp.Worksheets[0].UserID).To(Equal(scout.ID))
		})

		It("rejects a malformed user filter", func() {
			req := httptest.NewRequest(http.MethodGet, "/worksheets/?user=nobody", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a malformed last_sync cursor", func() {
			req := httptest.NewRequest(http.MethodGet, "/worksheets/?last_sync=yesterday", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("CreateWorksheet", func() {
		It("creates a sheet for the caller", func() {
			body, _ := json.Marshal(worksheet.CreateWorksheetDTO{
				Name:  "First Class Badge",
				Tasks: []worksheet.CreateTaskDTO{{Name: "Plan a hike"}},
			})
			req := httptest.NewRequest(http.MethodPost, "/worksheets/", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			var resp worksheet.WorksheetResponse
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Name).To(Equal("First Class Badge"))
			Expect(*resp.UserID).To(Equal(scout.ID))
		})

		It("rejects a body that is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/worksheets/", bytes.NewReader([]byte("not json")))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GetWorksheet", func() {
		It("serves a visible sheet", func() {
			req := httptest.NewRequest(http.MethodGet, "/worksheets/"+sheet.ID.String(), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp worksheet.WorksheetResponse
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.ID).To(Equal(sheet.ID))
		})

		It("serves a masked representation of a deleted sheet", func() {
			Expect(repo.SoftDelete(sheet.ID)).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/worksheets/"+sheet.ID.String(), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp worksheet.WorksheetResponse
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.ID).To(Equal(sheet.ID))
			Expect(resp.Name).To(Equal("Deleted"))
			Expect(resp.IsDeleted).To(BeTrue())
			Expect(resp.Tasks).To(BeEmpty())
		})

		It("rejects a malformed worksheet ID", func() {
			req := httptest.NewRequest(http.MethodGet, "/worksheets/not-a-uuid", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ApproverCandidates", func() {
		It("lists eligible approvers for the sheet", func() {
			req := httptest.NewRequest(http.MethodGet, "/worksheets/"+sheet.ID.String()+"/approvers", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp struct {
				Users []user.UserResponse `json:"users"`
			}
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Users).To(HaveLen(1))
			Expect(resp.Users[0].ID).To(Equal(pleader.ID))
		})
	})

	Describe("TasksToApprove", func() {
		It("returns sheets with tasks routed to the caller", func() {
			approverID := pleader.ID
			sheet.Tasks[0].Status = worksheet.StatusAwaitingApproval
			sheet.Tasks[0].ApproverID = &approverID
			actor = pleader

			req := httptest.NewRequest(http.MethodGet, "/tasks/to-approve", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp struct {
				Worksheets []worksheet.WorksheetResponse `json:"worksheets"`
			}
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Worksheets).To(HaveLen(1))
		})
	})

	Describe("DeleteWorksheet", func() {
		It("soft deletes the caller's sheet", func() {
			req := httptest.NewRequest(http.MethodDelete, "/worksheets/"+sheet.ID.String(), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(sheet.IsDeleted).To(BeTrue())
		})
	})
})
