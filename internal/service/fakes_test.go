package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coaching-api/internal/models"
)

func init() {
	passwordCost = bcrypt.MinCost
}

var errStoreDown = errors.New("store down")

func ptr[T any](v T) *T { return &v }

type memStudents struct {
	rows          map[string]*models.Student
	seq           int
	created       int
	setTeacherErr error
	deleteErr     error
}

func newMemStudents(rows ...models.Student) *memStudents {
	m := &memStudents{rows: make(map[string]*models.Student)}
	for i := range rows {
		cp := rows[i]
		m.rows[cp.ID] = &cp
	}
	return m
}

func (m *memStudents) sorted() []models.Student {
	out := make([]models.Student, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	all := m.sorted()
	return all, len(all), nil
}

func (m *memStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memStudents) FindByIdentifier(ctx context.Context, identifier string) (*models.Student, error) {
	for _, s := range m.sorted() {
		if strings.EqualFold(s.Email, identifier) || s.Number == identifier {
			cp := s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStudents) ListByTeacher(ctx context.Context, teacherID string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.sorted() {
		if s.OwnedBy(teacherID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudents) ListSummariesByIDs(ctx context.Context, ids []string) ([]models.StudentSummary, error) {
	out := []models.StudentSummary{}
	for _, id := range ids {
		if s, ok := m.rows[id]; ok {
			out = append(out, models.StudentSummary{ID: s.ID, Name: s.Name, Number: s.Number, Email: s.Email, Course: s.Course})
		}
	}
	return out, nil
}

func (m *memStudents) ListReferences(ctx context.Context) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range m.sorted() {
		out = append(out, models.Student{ID: s.ID, TeacherID: s.TeacherID})
	}
	return out, nil
}

func (m *memStudents) ExistsByNumber(ctx context.Context, number, excludeID string) (bool, error) {
	for _, s := range m.rows {
		if s.Number == number && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudents) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, s := range m.rows {
		if strings.EqualFold(s.Email, email) && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudents) Create(ctx context.Context, student *models.Student) error {
	m.seq++
	m.created++
	student.ID = fmt.Sprintf("new-s%d", m.seq)
	student.CreatedAt = time.Now().UTC()
	cp := *student
	m.rows[student.ID] = &cp
	return nil
}

func (m *memStudents) Update(ctx context.Context, student *models.Student) error {
	current, ok := m.rows[student.ID]
	if !ok {
		return sql.ErrNoRows
	}
	cp := *student
	cp.TeacherID = current.TeacherID
	m.rows[student.ID] = &cp
	return nil
}

func (m *memStudents) SetTeacher(ctx context.Context, studentID, teacherID string) error {
	if m.setTeacherErr != nil {
		return m.setTeacherErr
	}
	s, ok := m.rows[studentID]
	if !ok {
		return sql.ErrNoRows
	}
	s.TeacherID = ptr(teacherID)
	return nil
}

func (m *memStudents) ClearTeacherIf(ctx context.Context, studentID, teacherID string) (bool, error) {
	s, ok := m.rows[studentID]
	if !ok || !s.OwnedBy(teacherID) {
		return false, nil
	}
	s.TeacherID = nil
	return true, nil
}

func (m *memStudents) ClearTeacherForAll(ctx context.Context, teacherID string) (int64, error) {
	var n int64
	for _, s := range m.rows {
		if s.OwnedBy(teacherID) {
			s.TeacherID = nil
			n++
		}
	}
	return n, nil
}

func (m *memStudents) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memTeachers struct {
	rows      map[string]*models.Teacher
	seq       int
	addErr    error
	removeErr error
}

func newMemTeachers(rows ...models.Teacher) *memTeachers {
	m := &memTeachers{rows: make(map[string]*models.Teacher)}
	for i := range rows {
		cp := rows[i]
		if cp.StudentIDs == nil {
			cp.StudentIDs = pq.StringArray{}
		}
		m.rows[cp.ID] = &cp
	}
	return m
}

func (m *memTeachers) roster(id string) []string {
	if t, ok := m.rows[id]; ok {
		return append([]string{}, t.StudentIDs...)
	}
	return nil
}

func (m *memTeachers) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	out := make([]models.Teacher, 0, len(m.rows))
	for _, t := range m.rows {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memTeachers) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	cp.StudentIDs = append(pq.StringArray{}, t.StudentIDs...)
	return &cp, nil
}

func (m *memTeachers) FindByIdentifier(ctx context.Context, identifier string) (*models.Teacher, error) {
	for _, t := range m.rows {
		if strings.EqualFold(t.Email, identifier) || t.Number == identifier {
			cp := *t
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memTeachers) ListRosters(ctx context.Context) ([]models.Teacher, error) {
	all, _, _ := m.List(ctx, models.TeacherFilter{})
	return all, nil
}

func (m *memTeachers) ExistsByNumber(ctx context.Context, number, excludeID string) (bool, error) {
	for _, t := range m.rows {
		if t.Number == number && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTeachers) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, t := range m.rows {
		if strings.EqualFold(t.Email, email) && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTeachers) Create(ctx context.Context, teacher *models.Teacher) error {
	m.seq++
	teacher.ID = fmt.Sprintf("new-t%d", m.seq)
	teacher.StudentIDs = pq.StringArray{}
	cp := *teacher
	m.rows[teacher.ID] = &cp
	return nil
}

func (m *memTeachers) Update(ctx context.Context, teacher *models.Teacher) error {
	current, ok := m.rows[teacher.ID]
	if !ok {
		return sql.ErrNoRows
	}
	cp := *teacher
	cp.StudentIDs = current.StudentIDs
	m.rows[teacher.ID] = &cp
	return nil
}

func (m *memTeachers) AddStudent(ctx context.Context, teacherID, studentID string) error {
	if m.addErr != nil {
		return m.addErr
	}
	t, ok := m.rows[teacherID]
	if !ok || containsID(t.StudentIDs, studentID) {
		return nil
	}
	t.StudentIDs = append(t.StudentIDs, studentID)
	return nil
}

func (m *memTeachers) RemoveStudent(ctx context.Context, teacherID, studentID string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	t, ok := m.rows[teacherID]
	if !ok {
		return nil
	}
	kept := pq.StringArray{}
	for _, id := range t.StudentIDs {
		if id != studentID {
			kept = append(kept, id)
		}
	}
	t.StudentIDs = kept
	return nil
}

func (m *memTeachers) Delete(ctx context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memClasses struct {
	rows map[string]*models.Class
	seq  int
}

func newMemClasses(rows ...models.Class) *memClasses {
	m := &memClasses{rows: make(map[string]*models.Class)}
	for i := range rows {
		cp := rows[i]
		m.rows[cp.ID] = &cp
	}
	return m
}

func (m *memClasses) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	var out []models.Class
	for _, c := range m.rows {
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Kind != "" && c.Kind() != filter.Kind {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *memClasses) FindByID(ctx context.Context, id string) (*models.Class, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *memClasses) Create(ctx context.Context, class *models.Class) error {
	m.seq++
	class.ID = fmt.Sprintf("new-c%d", m.seq)
	cp := *class
	m.rows[class.ID] = &cp
	return nil
}

func (m *memClasses) Update(ctx context.Context, class *models.Class) error {
	if _, ok := m.rows[class.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *class
	m.rows[class.ID] = &cp
	return nil
}

func (m *memClasses) SetLive(ctx context.Context, id string, live bool, meetLink *string) error {
	c, ok := m.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.IsLive = live
	if meetLink != nil {
		c.MeetLink = meetLink
	}
	return nil
}

func (m *memClasses) Delete(ctx context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

func (m *memClasses) ListInvalidRecurrences(ctx context.Context) ([]models.Class, error) {
	var out []models.Class
	for _, c := range m.rows {
		if c.RecurringID == nil {
			continue
		}
		parent, ok := m.rows[*c.RecurringID]
		if !ok || !parent.IsRecurring {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memCache struct {
	items       map[string][]byte
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
