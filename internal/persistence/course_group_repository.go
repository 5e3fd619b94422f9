package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigacad/matriculas/internal/enrollment"
)

type CourseGroupRepository struct {
	pool *pgxpool.Pool
}

func NewCourseGroupRepository(pool *pgxpool.Pool) enrollment.CourseGroupRepository {
	return &CourseGroupRepository{pool: pool}
}

func (r *CourseGroupRepository) GetByID(ctx context.Context, id int64) (enrollment.CourseGroup, error) {
	var g enrollment.CourseGroup
	err := r.pool.QueryRow(
		ctx,
		`SELECT id FROM grupos_curso WHERE id=$1`,
		id,
	).Scan(&g.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return enrollment.CourseGroup{}, enrollment.ErrCourseGroupNotFound
		}
		return enrollment.CourseGroup{}, gerrors.Wrap(err, "get course group by id")
	}
	return g, nil
}
