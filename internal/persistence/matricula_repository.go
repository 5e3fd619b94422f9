package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigacad/matriculas/internal/enrollment"
)

var matriculaColumns = []string{
	"estudiante_id", "grupo_curso_id", "estado",
	"ec1", "ep1", "ec2", "ep2", "ec3", "ep3",
}

type MatriculaRepository struct {
	pool *pgxpool.Pool
}

func NewMatriculaRepository(pool *pgxpool.Pool) enrollment.MatriculaRepository {
	return &MatriculaRepository{pool: pool}
}

// Replace deletes every matrícula and bulk-inserts the given records inside
// one transaction. If the insert fails the delete rolls back with it, leaving
// the table exactly as it was.
func (r *MatriculaRepository) Replace(ctx context.Context, records []enrollment.Matricula) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, gerrors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM matriculas`)
	if err != nil {
		return 0, gerrors.Wrap(err, "delete matriculas")
	}
	deleted := tag.RowsAffected()

	if len(records) > 0 {
		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"matriculas"},
			matriculaColumns,
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				m := records[i]
				return []any{
					m.EstudianteID, m.GrupoCursoID, m.Estado,
					m.EC1, m.EP1, m.EC2, m.EP2, m.EC3, m.EP3,
				}, nil
			}),
		)
		if err != nil {
			return 0, gerrors.Wrap(err, "bulk insert matriculas")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, gerrors.Wrap(err, "commit tx")
	}
	return deleted, nil
}
