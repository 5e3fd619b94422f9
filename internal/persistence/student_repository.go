package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigacad/matriculas/internal/enrollment"
)

type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) enrollment.StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) GetByPerfilID(ctx context.Context, perfilID int64) (enrollment.Student, error) {
	var s enrollment.Student
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, perfil_id FROM estudiantes WHERE perfil_id=$1`,
		perfilID,
	).Scan(&s.ID, &s.PerfilID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return enrollment.Student{}, enrollment.ErrStudentNotFound
		}
		return enrollment.Student{}, gerrors.Wrap(err, "get student by perfil_id")
	}
	return s, nil
}
