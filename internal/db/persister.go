package db

import (
	"fmt"

	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Persister stores entity records in SQL tables. Work item blocker sets
// live in the work_item_blockers join table.
type Persister struct {
	db *gorm.DB
}

var _ store.Persister = (*Persister)(nil)

// NewPersister returns a Persister over a migrated database.
func NewPersister(db *gorm.DB) *Persister {
	return &Persister{db: db}
}

// Load reads every record.
func (p *Persister) Load() (*store.Snapshot, error) {
	var snap store.Snapshot
	for _, q := range []struct {
		name string
		dest any
	}{
		{"teams", &snap.Teams},
		{"users", &snap.Users},
		{"projects", &snap.Projects},
		{"sprints", &snap.Sprints},
		{"work items", &snap.WorkItems},
	} {
		if err := p.db.Order("id").Find(q.dest).Error; err != nil {
			return nil, fmt.Errorf("db: load %s: %w", q.name, err)
		}
	}

	var edges []models.WorkItemBlocker
	if err := p.db.Order("work_item_id, blocked_by").Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("db: load blockers: %w", err)
	}
	byItem := make(map[string][]string)
	for _, e := range edges {
		byItem[e.WorkItemID] = append(byItem[e.WorkItemID], e.BlockedBy)
	}
	for i := range snap.WorkItems {
		snap.WorkItems[i].BlockerIDs = byItem[snap.WorkItems[i].ID]
	}
	return &snap, nil
}

// Apply writes all changes in one transaction.
func (p *Persister) Apply(changes []store.Change) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			var err error
			switch c.Op {
			case store.OpPut:
				err = put(tx, c)
			case store.OpDelete:
				err = remove(tx, c)
			default:
				err = fmt.Errorf("unknown op %q", c.Op)
			}
			if err != nil {
				return fmt.Errorf("db: %s %s %s: %w", c.Op, c.Entity, c.ID, err)
			}
		}
		return nil
	})
}

func upsert(tx *gorm.DB, rec any) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error
}

func put(tx *gorm.DB, c store.Change) error {
	switch rec := c.Record.(type) {
	case models.User:
		return upsert(tx, &rec)
	case models.Team:
		return upsert(tx, &rec)
	case models.Project:
		return upsert(tx, &rec)
	case models.Sprint:
		return upsert(tx, &rec)
	case models.WorkItem:
		if err := upsert(tx, &rec); err != nil {
			return err
		}
		return replaceBlockers(tx, rec.ID, rec.BlockerIDs)
	default:
		return fmt.Errorf("unsupported record %T", c.Record)
	}
}

func replaceBlockers(tx *gorm.DB, itemID string, blockers []string) error {
	if err := tx.Where("work_item_id = ?", itemID).Delete(&models.WorkItemBlocker{}).Error; err != nil {
		return err
	}
	if len(blockers) == 0 {
		return nil
	}
	rows := make([]models.WorkItemBlocker, 0, len(blockers))
	for _, b := range blockers {
		rows = append(rows, models.WorkItemBlocker{WorkItemID: itemID, BlockedBy: b})
	}
	return tx.Create(&rows).Error
}

func remove(tx *gorm.DB, c store.Change) error {
	var model any
	switch c.Entity {
	case store.KindUser:
		model = &models.User{}
	case store.KindTeam:
		model = &models.Team{}
	case store.KindProject:
		model = &models.Project{}
	case store.KindSprint:
		model = &models.Sprint{}
	case store.KindWorkItem:
		if err := tx.Where("work_item_id = ?", c.ID).Delete(&models.WorkItemBlocker{}).Error; err != nil {
			return err
		}
		model = &models.WorkItem{}
	default:
		return fmt.Errorf("unsupported entity %q", c.Entity)
	}
	return tx.Where("id = ?", c.ID).Delete(model).Error
}
