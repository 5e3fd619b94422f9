package importer

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sigacad/matriculas/internal/enrollment"
)

// Skip records one rejected row together with the identifiers it carried.
type Skip struct {
	Line         int    `json:"line"`
	EstudianteID string `json:"estudiante_id"`
	GrupoCursoID string `json:"grupo_curso_id"`
	Reason       string `json:"reason"`
}

const (
	reasonMissingIdentifiers = "missing required identifier(s)"
	reasonStudentNotFound    = "student not found"
	reasonGroupNotFound      = "course group not found"
)

type Service struct {
	students   enrollment.StudentRepository
	groups     enrollment.CourseGroupRepository
	matriculas enrollment.MatriculaRepository
	log        *logrus.Entry
}

func NewService(
	students enrollment.StudentRepository,
	groups enrollment.CourseGroupRepository,
	matriculas enrollment.MatriculaRepository,
	log *logrus.Entry,
) *Service {
	return &Service{
		students:   students,
		groups:     groups,
		matriculas: matriculas,
		log:        log,
	}
}

// Transform reads every row of the CSV at path and resolves it to either a
// ready-to-insert matrícula or a skip with a reason. Row-level problems never
// abort the pass; only file-level failures (missing file, bad header,
// malformed CSV) return an error.
func (s *Service) Transform(ctx context.Context, path string) ([]enrollment.Matricula, []Skip, error) {
	rows, err := OpenRows(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	var created []enrollment.Matricula
	var skipped []Skip
	for {
		row, err := rows.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, err
		}

		m, skip := s.transformRow(ctx, row)
		if skip != nil {
			skipped = append(skipped, *skip)
			continue
		}
		created = append(created, m)
	}

	return created, skipped, nil
}

// Replace hands the accumulated records to the repository: one transaction,
// full delete, single bulk insert.
func (s *Service) Replace(ctx context.Context, records []enrollment.Matricula) (int64, error) {
	deleted, err := s.matriculas.Replace(ctx, records)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{
		"deleted": deleted,
		"created": len(records),
	}).Info("matriculas replaced")
	return deleted, nil
}

func (s *Service) transformRow(ctx context.Context, row RawRow) (enrollment.Matricula, *Skip) {
	rawEst := strings.TrimSpace(row.Get(ColEstudianteID))
	rawGrp := strings.TrimSpace(row.Get(ColGrupoCursoID))

	skip := func(reason string) (enrollment.Matricula, *Skip) {
		s.log.WithFields(logrus.Fields{
			"line":           row.Line,
			"estudiante_id":  rawEst,
			"grupo_curso_id": rawGrp,
		}).Warn(reason)
		return enrollment.Matricula{}, &Skip{
			Line:         row.Line,
			EstudianteID: rawEst,
			GrupoCursoID: rawGrp,
			Reason:       reason,
		}
	}

	if rawEst == "" || rawGrp == "" {
		return skip(reasonMissingIdentifiers)
	}

	perfilID, err := strconv.ParseInt(rawEst, 10, 64)
	if err != nil {
		return skip("invalid estudiante_id: " + rawEst)
	}
	grupoID, err := strconv.ParseInt(rawGrp, 10, 64)
	if err != nil {
		return skip("invalid grupo_curso_id: " + rawGrp)
	}

	student, err := s.students.GetByPerfilID(ctx, perfilID)
	if err != nil {
		if errors.Is(err, enrollment.ErrStudentNotFound) {
			return skip(reasonStudentNotFound)
		}
		s.log.WithFields(logrus.Fields{
			"line":           row.Line,
			"estudiante_id":  rawEst,
			"grupo_curso_id": rawGrp,
		}).WithError(err).Error("student lookup failed")
		return skip("student lookup failed: " + err.Error())
	}

	group, err := s.groups.GetByID(ctx, grupoID)
	if err != nil {
		if errors.Is(err, enrollment.ErrCourseGroupNotFound) {
			return skip(reasonGroupNotFound)
		}
		s.log.WithFields(logrus.Fields{
			"line":           row.Line,
			"estudiante_id":  rawEst,
			"grupo_curso_id": rawGrp,
		}).WithError(err).Error("course group lookup failed")
		return skip("course group lookup failed: " + err.Error())
	}

	m := enrollment.New(student, group)
	m.EC1 = ParseGrade(row.Get("EC1"))
	m.EP1 = ParseGrade(row.Get("EP1"))
	m.EC2 = ParseGrade(row.Get("EC2"))
	m.EP2 = ParseGrade(row.Get("EP2"))
	m.EC3 = ParseGrade(row.Get("EC3"))
	m.EP3 = ParseGrade(row.Get("EP3"))
	return m, nil
}
