package importer

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sigacad/matriculas/internal/enrollment"
)

type fakeStudents struct {
	byPerfil map[int64]enrollment.Student
	err      error
	calls    int
}

func (f *fakeStudents) GetByPerfilID(_ context.Context, perfilID int64) (enrollment.Student, error) {
	f.calls++
	if f.err != nil {
		return enrollment.Student{}, f.err
	}
	s, ok := f.byPerfil[perfilID]
	if !ok {
		return enrollment.Student{}, enrollment.ErrStudentNotFound
	}
	return s, nil
}

type fakeGroups struct {
	byID  map[int64]enrollment.CourseGroup
	err   error
	calls int
}

func (f *fakeGroups) GetByID(_ context.Context, id int64) (enrollment.CourseGroup, error) {
	f.calls++
	if f.err != nil {
		return enrollment.CourseGroup{}, f.err
	}
	g, ok := f.byID[id]
	if !ok {
		return enrollment.CourseGroup{}, enrollment.ErrCourseGroupNotFound
	}
	return g, nil
}

type fakeMatriculas struct {
	replaced [][]enrollment.Matricula
	deleted  int64
	err      error
}

func (f *fakeMatriculas) Replace(_ context.Context, records []enrollment.Matricula) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.replaced = append(f.replaced, records)
	return f.deleted, nil
}

func nopLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func newTestService(students *fakeStudents, groups *fakeGroups, matriculas *fakeMatriculas) *Service {
	return NewService(students, groups, matriculas, nopLogger())
}

func TestTransform_EndToEndExample(t *testing.T) {
	path := writeTempCSV(t,
		"estudiante_id,grupo_curso_id,EC1,EP1,EC2,EP2,EC3,EP3\n"+
			"101,5,\"14,5\",,16.0,,,\n"+
			"999,5,10,,,,,\n")

	students := &fakeStudents{byPerfil: map[int64]enrollment.Student{
		101: {ID: 11, PerfilID: 101},
	}}
	groups := &fakeGroups{byID: map[int64]enrollment.CourseGroup{
		5: {ID: 5},
	}}
	svc := newTestService(students, groups, &fakeMatriculas{})

	created, skipped, err := svc.Transform(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, created, 1)
	m := created[0]
	require.Equal(t, int64(11), m.EstudianteID)
	require.Equal(t, int64(5), m.GrupoCursoID)
	require.True(t, m.Estado)
	require.NotNil(t, m.EC1)
	require.Equal(t, 14.5, *m.EC1)
	require.Nil(t, m.EP1)
	require.NotNil(t, m.EC2)
	require.Equal(t, 16.0, *m.EC2)
	require.Nil(t, m.EP2)
	require.Nil(t, m.EC3)
	require.Nil(t, m.EP3)

	require.Len(t, skipped, 1)
	require.Equal(t, 3, skipped[0].Line)
	require.Equal(t, "999", skipped[0].EstudianteID)
	require.Equal(t, "student not found", skipped[0].Reason)
}

func TestTransform_MissingIdentifiersSkipWithoutLookup(t *testing.T) {
	path := writeTempCSV(t,
		"estudiante_id,grupo_curso_id,EC1\n"+
			",5,10\n"+
			"101, ,10\n")

	students := &fakeStudents{byPerfil: map[int64]enrollment.Student{101: {ID: 11, PerfilID: 101}}}
	groups := &fakeGroups{byID: map[int64]enrollment.CourseGroup{5: {ID: 5}}}
	svc := newTestService(students, groups, &fakeMatriculas{})

	created, skipped, err := svc.Transform(context.Background(), path)
	require.NoError(t, err)
	require.Empty(t, created)
	require.Len(t, skipped, 2)
	for _, s := range skipped {
		require.Equal(t, "missing required identifier(s)", s.Reason)
	}
	require.Zero(t, students.calls)
	require.Zero(t, groups.calls)
}

func TestTransform_UnknownCourseGroup(t *testing.T) {
	path := writeTempCSV(t,
		"estudiante_id,grupo_curso_id\n"+
			"101,77\n")

	students := &fakeStudents{byPerfil: map[int64]enrollment.Student{101: {ID: 11, PerfilID: 101}}}
	groups := &fakeGroups{byID: map[int64]enrollment.CourseGroup{}}
	svc := newTestService(students, groups, &fakeMatriculas{})

	created, skipped, err := svc.Transform(context.Background(), path)
	require.NoError(t, err)
	require.Empty(t, created)
	require.Len(t, skipped, 1)
	require.Equal(t, "course group not found", skipped[0].Reason)
}

func TestTransform_NonNumericGradeDoesNotSkip(t *testing.T) {
	path := writeTempCSV(t,
		"estudiante_id,grupo_curso_id,EC1,EP1\n"+
			"101,5,abc,13\n")

	students := &fakeStudents{byPerfil: map[int64]enrollment.Student{101: {ID: 11, PerfilID: 101}}}
	groups := &fakeGroups{byID: map[int64]enrollment.CourseGroup{5: {ID: 5}}}
	svc := newTestService(students, groups, &fakeMatriculas{})

	created, skipped, err := svc.Transform(context.Background(), path)
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, created, 1)
	require.Nil(t, created[0].EC1)
	require.NotNil(t, created[0].EP1)
	require.Equal(t, 13.0, *created[0].EP1)
}

func TestTransform_InvalidIdentifierSkipsBeforeLookup(t *testing.T) {
	path := writeTempCSV(t,
		"estudiante_id,grupo_curso_id\n"+
			"abc,5\n")

	students := &fakeStudents{}
	groups := &fakeGroups{}
	svc := newTestService(students, groups, &fakeMatriculas{})

	created, skipped, err := svc.Transform(context.Background(), path)
	require.NoError(t, err)
	require.Empty(t, created)
	require.Len(t, skipped, 1)
	require.Contains(t, skipped[0].Reason, "invalid estudiante_id")
	require.Zero(t, students.calls)
}

func TestTransform_LookupErrorSkipsRowAndContinues(t *testing.T) {
	path := writeTempCSV(t,
		"estudiante_id,grupo_curso_id\n"+
			"101,5\n"+
			"102,5\n")

	students := &fakeStudents{err: errors.New("connection reset")}
	groups := &fakeGroups{byID: map[int64]enrollment.CourseGroup{5: {ID: 5}}}
	svc := newTestService(students, groups, &fakeMatriculas{})

	created, skipped, err := svc.Transform(context.Background(), path)
	require.NoError(t, err)
	require.Empty(t, created)
	require.Len(t, skipped, 2)
	require.Contains(t, skipped[0].Reason, "student lookup failed")
	require.Equal(t, 2, students.calls)
}

func TestTransform_MissingFile(t *testing.T) {
	svc := newTestService(&fakeStudents{}, &fakeGroups{}, &fakeMatriculas{})
	_, _, err := svc.Transform(context.Background(), "does-not-exist.csv")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReplace_PassesRecordsAndReturnsDeleted(t *testing.T) {
	matriculas := &fakeMatriculas{deleted: 42}
	svc := newTestService(&fakeStudents{}, &fakeGroups{}, matriculas)

	records := []enrollment.Matricula{{EstudianteID: 11, GrupoCursoID: 5, Estado: true}}
	deleted, err := svc.Replace(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, int64(42), deleted)
	require.Len(t, matriculas.replaced, 1)
	require.Equal(t, records, matriculas.replaced[0])
}

func TestReplace_PropagatesRepositoryError(t *testing.T) {
	matriculas := &fakeMatriculas{err: errors.New("unique violation")}
	svc := newTestService(&fakeStudents{}, &fakeGroups{}, matriculas)

	_, err := svc.Replace(context.Background(), nil)
	require.Error(t, err)
	require.Empty(t, matriculas.replaced)
}
