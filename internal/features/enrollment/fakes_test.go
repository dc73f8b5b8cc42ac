package enrollment

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mo-amir99/techboost-server-go/internal/features/course"
	"github.com/mo-amir99/techboost-server-go/internal/features/lesson"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

type entryKey struct {
	user, course uuid.UUID
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[entryKey]*Entry
	legacy  map[uuid.UUID]types.IDList
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries: make(map[entryKey]*Entry),
		legacy:  make(map[uuid.UUID]types.IDList),
	}
}

func (m *memoryStore) Insert(_ context.Context, entry *Entry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}

	key := entryKey{entry.UserID, entry.CourseID}
	if _, ok := m.entries[key]; ok {
		return false, nil
	}
	entry.ID = uuid.New()
	stored := *entry
	stored.CompletedLessons = append(types.IDList{}, entry.CompletedLessons...)
	m.entries[key] = &stored
	return true, nil
}

func (m *memoryStore) Complete(_ context.Context, userID, courseID, lessonID uuid.UUID, mutate func(*Entry) bool) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Entry{}, false, m.err
	}

	stored, ok := m.entries[entryKey{userID, courseID}]
	if !ok {
		return Entry{}, false, ErrNotEnrolled
	}

	working := *stored
	working.CompletedLessons = append(types.IDList{}, stored.CompletedLessons...)
	if !mutate(&working) {
		return *stored, false, nil
	}

	*stored = working
	if !m.legacy[userID].Contains(lessonID) {
		m.legacy[userID] = append(m.legacy[userID], lessonID)
	}
	return working, true, nil
}

func (m *memoryStore) ListForUser(_ context.Context, userID uuid.UUID) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for key, entry := range m.entries {
		if key.user == userID {
			out = append(out, *entry)
		}
	}
	return out, m.err
}

func (m *memoryStore) entry(userID, courseID uuid.UUID) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryKey{userID, courseID}]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

type fakeCatalog struct {
	courses map[uuid.UUID]types.IDList
	lessons map[uuid.UUID]uuid.UUID
}

func newCatalog() *fakeCatalog {
	return &fakeCatalog{
		courses: make(map[uuid.UUID]types.IDList),
		lessons: make(map[uuid.UUID]uuid.UUID),
	}
}

// addCourse registers a course with n lessons and returns its ids.
func (f *fakeCatalog) addCourse(n int) (uuid.UUID, types.IDList) {
	courseID := uuid.New()
	seq := make(types.IDList, n)
	for i := range seq {
		seq[i] = uuid.New()
		f.lessons[seq[i]] = courseID
	}
	f.courses[courseID] = seq
	return courseID, seq
}

func (f *fakeCatalog) CourseExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.courses[id]
	return ok, nil
}

func (f *fakeCatalog) LessonCourse(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	courseID, ok := f.lessons[id]
	if !ok {
		return uuid.Nil, lesson.ErrLessonNotFound
	}
	return courseID, nil
}

func (f *fakeCatalog) Sequence(_ context.Context, id uuid.UUID) (types.IDList, error) {
	seq, ok := f.courses[id]
	if !ok {
		return nil, course.ErrCourseNotFound
	}
	return seq, nil
}

type recordingStats struct {
	mu          sync.Mutex
	enrollments map[uuid.UUID]int
	recomputes  map[uuid.UUID]int
	err         error
}

func newStats() *recordingStats {
	return &recordingStats{
		enrollments: make(map[uuid.UUID]int),
		recomputes:  make(map[uuid.UUID]int),
	}
}

func (r *recordingStats) RecordEnrollment(_ context.Context, courseID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrollments[courseID]++
	return r.err
}

func (r *recordingStats) RecomputeAverageCompletion(_ context.Context, courseID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputes[courseID]++
	return r.err
}

type event struct {
	user  uuid.UUID
	name  string
	input any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingNotifier) Notify(userID uuid.UUID, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{userID, name, payload})
}

func (r *recordingNotifier) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.name
	}
	return out
}
