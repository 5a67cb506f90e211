package postgres

import (
	"strings"
	"time"

	userDatamodel "github.com/eproba/server/internal/core/datamodel/user"
	worksheetDatamodel "github.com/eproba/server/internal/core/datamodel/worksheet"
	"github.com/eproba/server/internal/user"
	"github.com/eproba/server/internal/worksheet"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorksheetRepository implements the worksheet.Repository interface using
// GORM. Visibility filters are translated clause by clause into SQL, so the
// database returns exactly what the in-memory predicate would keep.
type WorksheetRepository struct {
	db *gorm.DB
}

func NewWorksheetRepository(db *gorm.DB) *WorksheetRepository {
	return &WorksheetRepository{db: db}
}

func taskOrder(db *gorm.DB) *gorm.DB {
	return db.Order("task_order ASC, created_at ASC")
}

func (r *WorksheetRepository) Create(w *worksheet.Worksheet) error {
	return r.db.Create(worksheet.ToDataModel(w)).Error
}

func (r *WorksheetRepository) GetByID(id uuid.UUID) (*worksheet.Worksheet, error) {
	var dm worksheetDatamodel.Worksheet
	err := r.db.Preload("Tasks", taskOrder).Where("id = ?", id).First(&dm).Error
	if err != nil {
		return nil, err
	}
	return worksheet.FromDataModel(&dm), nil
}

func (r *WorksheetRepository) List(f worksheet.Filter) ([]*worksheet.Worksheet, error) {
	query := r.db.Model(&worksheetDatamodel.Worksheet{}).
		Joins("LEFT JOIN users AS owners ON owners.id = worksheets.user_id")

	if f.IncludeDeleted {
		query = query.Where(
			"worksheets.is_deleted = ? OR (worksheets.is_archived = ? AND worksheets.is_template = ?)",
			true, f.Archived, f.Templates)
	} else {
		query = query.Where(
			"worksheets.is_deleted = ? AND worksheets.is_archived = ? AND worksheets.is_template = ?",
			false, f.Archived, f.Templates)
	}
	if f.UpdatedAfter != nil {
		query = query.Where("worksheets.updated_at > ?", *f.UpdatedAfter)
	}
	if f.OwnerID != nil {
		query = query.Where("worksheets.user_id = ?", *f.OwnerID)
	}

	expr, args := clausesToSQL(f.Clauses)
	if expr == "" {
		return []*worksheet.Worksheet{}, nil
	}
	query = query.Where(expr, args...)

	var dms []*worksheetDatamodel.Worksheet
	err := query.Preload("Tasks", taskOrder).
		Order("worksheets.updated_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return worksheet.FromDataModelSlice(dms), nil
}

// clausesToSQL renders the filter alternatives as one OR expression. The
// owners alias comes from the join in List.
func clausesToSQL(clauses []worksheet.Clause) (string, []interface{}) {
	parts := make([]string, 0, len(clauses))
	var args []interface{}

	for _, c := range clauses {
		var conds []string
		if c.OwnerID != nil {
			conds = append(conds, "worksheets.user_id = ?")
			args = append(args, *c.OwnerID)
		}
		if c.SupervisorID != nil {
			conds = append(conds, "worksheets.supervisor_id = ?")
			args = append(args, *c.SupervisorID)
		}
		if c.TeamID != nil {
			conds = append(conds, "worksheets.team_id = ?")
			args = append(args, *c.TeamID)
		}
		if c.OwnerFunctionBelow != nil {
			conds = append(conds, "owners.function < ?")
			args = append(args, int(*c.OwnerFunctionBelow))
		}
		if c.ExcludeOwnerID != nil {
			conds = append(conds, "(worksheets.user_id IS NULL OR worksheets.user_id <> ?)")
			args = append(args, *c.ExcludeOwnerID)
		}
		if len(conds) == 0 {
			// an empty clause matches everything
			return "1 = 1", nil
		}
		parts = append(parts, "("+strings.Join(conds, " AND ")+")")
	}

	return strings.Join(parts, " OR "), args
}

func (r *WorksheetRepository) Update(w *worksheet.Worksheet) error {
	w.UpdatedAt = time.Now()
	dm := worksheet.ToDataModel(w)
	return r.db.Omit("Tasks").Save(dm).Error
}

// SoftDelete keeps the row as a tombstone for sync clients.
func (r *WorksheetRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Model(&worksheetDatamodel.Worksheet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": time.Now(),
		}).Error
}

// MutateTask re-reads the task inside a transaction before applying the
// status change, so concurrent requests cannot act on a stale status. The
// parent worksheet's updated_at is bumped to move it past sync cursors.
func (r *WorksheetRepository) MutateTask(worksheetID, taskID uuid.UUID, apply func(*worksheet.Task) error) (*worksheet.Worksheet, *worksheet.Task, error) {
	var mutated worksheet.Task

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var dm worksheetDatamodel.Task
		err := tx.Where("id = ? AND worksheet_id = ?", taskID, worksheetID).First(&dm).Error
		if err != nil {
			return err
		}

		task := worksheet.TaskFromDataModel(&dm)
		if err := apply(&task); err != nil {
			return err
		}

		if err := tx.Save(worksheet.TaskToDataModel(&task)).Error; err != nil {
			return err
		}
		err = tx.Model(&worksheetDatamodel.Worksheet{}).
			Where("id = ?", worksheetID).
			Update("updated_at", time.Now()).Error
		if err != nil {
			return err
		}

		mutated = task
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	w, err := r.GetByID(worksheetID)
	if err != nil {
		return nil, nil, err
	}
	return w, &mutated, nil
}

// PendingForApprover lists live, non-archived sheets holding tasks awaiting
// the given approver.
func (r *WorksheetRepository) PendingForApprover(approverID uuid.UUID) ([]*worksheet.Worksheet, error) {
	var dms []*worksheetDatamodel.Worksheet
	err := r.db.Model(&worksheetDatamodel.Worksheet{}).
		Joins("JOIN tasks ON tasks.worksheet_id = worksheets.id").
		Where("tasks.approver_id = ? AND tasks.status = ?", approverID, int(worksheet.StatusAwaitingApproval)).
		Where("worksheets.is_deleted = ? AND worksheets.is_archived = ?", false, false).
		Distinct("worksheets.*").
		Preload("Tasks", taskOrder).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return worksheet.FromDataModelSlice(dms), nil
}

func (r *WorksheetRepository) OwnerFunction(w *worksheet.Worksheet) (user.Function, error) {
	if w.UserID == nil {
		return user.FunctionMember, nil
	}
	var owner userDatamodel.User
	err := r.db.Select("function").Where("id = ?", *w.UserID).First(&owner).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return user.FunctionMember, nil
		}
		return user.FunctionMember, err
	}
	return user.Function(owner.Function), nil
}
