package enrollment

// Student is a read-only reference entity. Rows in the import CSV carry the
// profile identifier (perfil_id), not the surrogate id.
type Student struct {
	ID       int64
	PerfilID int64
}

// CourseGroup is a read-only reference entity looked up by its own id.
type CourseGroup struct {
	ID int64
}

// Matricula links a student to a course group with up to six optional grade
// slots: three continuous-evaluation (EC) and three partial-exam (EP) scores.
// A nil grade means "no grade recorded", which is distinct from zero.
type Matricula struct {
	EstudianteID int64
	GrupoCursoID int64
	Estado       bool

	EC1 *float64
	EP1 *float64
	EC2 *float64
	EP2 *float64
	EC3 *float64
	EP3 *float64
}

// New builds an active matrícula for a resolved student/group pair.
func New(student Student, group CourseGroup) Matricula {
	return Matricula{
		EstudianteID: student.ID,
		GrupoCursoID: group.ID,
		Estado:       true,
	}
}
