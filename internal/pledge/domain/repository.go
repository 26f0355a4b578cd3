package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sightcare/netra/pkg/db/pagination"
)

// ListFilter narrows a pledge listing. Zero values mean "no constraint";
// Verified and Active distinguish unset from false via pointers.
type ListFilter struct {
	State       string
	City        string
	Source      string
	Verified    *bool
	Active      *bool
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, pledge *Pledge) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Pledge, error)
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Pledge, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Pledge, error)
	Update(ctx context.Context, db *gorm.DB, pledge *Pledge) error
	CountForYear(ctx context.Context, db *gorm.DB, year int) (int64, error)
	ListActive(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Pledge, error)
}
