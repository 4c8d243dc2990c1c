package database

import (
	"context"
	"errors"
	"strings"

	"coursehub/filters"
	"coursehub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate maps GORM sentinel errors onto the store's own.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// CourseStore persists courses with GORM.
type CourseStore struct {
	db *gorm.DB
}

func NewCourseStore(db *gorm.DB) *CourseStore {
	return &CourseStore{db: db}
}

func (s *CourseStore) Create(ctx context.Context, course *models.Course) error {
	return translate(s.db.WithContext(ctx).Create(course).Error)
}

func (s *CourseStore) FindByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

// List returns one page of courses matching q together with the total
// number of matches ignoring pagination.
func (s *CourseStore) List(ctx context.Context, q *filters.CourseQuery) ([]models.Course, int64, error) {
	where := courseWhere(q)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	courses := make([]models.Course, 0, q.Limit)
	tx := s.db.WithContext(ctx).Model(&models.Course{}).Scopes(where)
	for _, order := range courseOrder(q.Sort) {
		tx = tx.Order(order)
	}
	if err := tx.Offset(q.Offset()).Limit(q.Limit).Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// Update applies the given column values and returns the stored course.
func (s *CourseStore) Update(ctx context.Context, id uint, updates map[string]any) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&course, id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&course).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&course, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (s *CourseStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// courseWhere builds the predicate for a listing query. Column names only
// ever come from the filters allow-list.
func courseWhere(q *filters.CourseQuery) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for _, f := range q.Filters {
			if expr := fieldExpression(f); expr != nil {
				tx = tx.Where(expr)
			}
		}
		for _, term := range q.Search {
			tx = tx.Where(clause.Or(
				containsExpr("title", term),
				containsExpr("description", term),
			))
		}
		return tx
	}
}

func fieldExpression(f filters.FieldFilter) clause.Expression {
	if len(f.Conditions) == 2 && f.Conditions[0].Op == filters.OpGte && f.Conditions[1].Op == filters.OpLte {
		return clause.Expr{
			SQL:  "? BETWEEN ? AND ?",
			Vars: []any{clause.Column{Name: f.Field}, f.Conditions[0].Value, f.Conditions[1].Value},
		}
	}

	exprs := make([]clause.Expression, 0, len(f.Conditions))
	for _, c := range f.Conditions {
		col := clause.Column{Name: f.Field}
		switch c.Op {
		case filters.OpEq:
			exprs = append(exprs, clause.Eq{Column: col, Value: c.Value})
		case filters.OpNe:
			exprs = append(exprs, clause.Neq{Column: col, Value: c.Value})
		case filters.OpGt:
			exprs = append(exprs, clause.Gt{Column: col, Value: c.Value})
		case filters.OpGte:
			exprs = append(exprs, clause.Gte{Column: col, Value: c.Value})
		case filters.OpLt:
			exprs = append(exprs, clause.Lt{Column: col, Value: c.Value})
		case filters.OpLte:
			exprs = append(exprs, clause.Lte{Column: col, Value: c.Value})
		case filters.OpContains:
			if term, ok := c.Value.(string); ok {
				exprs = append(exprs, containsExpr(f.Field, term))
			}
		}
	}
	if len(exprs) == 0 {
		return nil
	}
	return clause.And(exprs...)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsExpr is a case-insensitive substring match that works the same
// on postgres, mysql and sqlite.
func containsExpr(column, term string) clause.Expression {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	return clause.Expr{
		SQL:  "LOWER(?) LIKE ? ESCAPE '!'",
		Vars: []any{clause.Column{Name: column}, pattern},
	}
}

func courseOrder(sort []filters.SortField) []clause.OrderByColumn {
	orders := make([]clause.OrderByColumn, 0, len(sort)+1)
	hasID := false
	for _, s := range sort {
		if s.Field == "id" {
			hasID = true
		}
		orders = append(orders, clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc})
	}
	if !hasID {
		orders = append(orders, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return orders
}
