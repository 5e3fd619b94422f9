package enrollment

import (
	"context"
	"errors"
)

var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrCourseGroupNotFound = errors.New("course group not found")
)

type StudentRepository interface {
	GetByPerfilID(ctx context.Context, perfilID int64) (Student, error)
}

type CourseGroupRepository interface {
	GetByID(ctx context.Context, id int64) (CourseGroup, error)
}

// MatriculaRepository owns the destructive replace: delete every existing
// matrícula and bulk-insert the given records as one atomic unit. It returns
// the number of rows removed by the delete.
type MatriculaRepository interface {
	Replace(ctx context.Context, records []Matricula) (deleted int64, err error)
}
