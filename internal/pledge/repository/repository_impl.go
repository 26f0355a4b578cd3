package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sightcare/netra/internal/pledge/domain"
	"github.com/sightcare/netra/pkg/db/option"
	"github.com/sightcare/netra/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, pledge *domain.Pledge) error {
	return db.WithContext(ctx).Create(pledge).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Pledge, error) {
	var pledge domain.Pledge
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&pledge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pledge, nil
}

func (r *repo) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Pledge, error) {
	var pledge domain.Pledge
	err := db.WithContext(ctx).
		Where("reference_number = ?", reference).
		First(&pledge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pledge, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}
	if filter.City != "" {
		stmt = stmt.Where("city = ?", filter.City)
	}
	if filter.Source != "" {
		stmt = stmt.Where("source = ?", filter.Source)
	}
	if filter.Verified != nil {
		stmt = stmt.Where("is_verified = ?", *filter.Verified)
	}
	if filter.Active != nil {
		stmt = stmt.Where("is_active = ?", *filter.Active)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at < ?", *filter.CreatedTo)
	}
	if filter.Search != "" {
		term := "%" + strings.TrimSpace(filter.Search) + "%"
		stmt = stmt.Where(
			"full_name LIKE ? OR mobile LIKE ? OR email LIKE ? OR reference_number LIKE ?",
			term, term, term, term,
		)
	}
	return stmt
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Pledge, error) {
	var pledges []*domain.Pledge
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Pledge{}), filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&pledges).Error
	if err != nil {
		return nil, err
	}
	return pledges, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, pledge *domain.Pledge) error {
	return db.WithContext(ctx).Save(pledge).Error
}

func (r *repo) CountForYear(ctx context.Context, db *gorm.DB, year int) (int64, error) {
	var count int64
	prefix := domain.ReferencePrefix(year)
	err := db.WithContext(ctx).
		Model(&domain.Pledge{}).
		Where("reference_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Pledge, error) {
	var pledges []*domain.Pledge
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Pledge{}), filter)
	err := stmt.
		Where("is_active = ?", true).
		Order("created_at asc, id asc").
		Find(&pledges).Error
	if err != nil {
		return nil, err
	}
	return pledges, nil
}
