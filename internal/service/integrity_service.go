package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
	"github.com/noah-isme/coaching-api/pkg/jobs"
)

const (
	scanCacheKey      = "integrity:scan"
	scanCachePattern  = "integrity:*"
	repairJobType     = "integrity_repair"
	maxTrackedRepairs = 100
)

type integrityStudentStore interface {
	ListReferences(ctx context.Context) ([]models.Student, error)
	ClearTeacherIf(ctx context.Context, studentID, teacherID string) (bool, error)
}

type integrityTeacherStore interface {
	ListRosters(ctx context.Context) ([]models.Teacher, error)
	AddStudent(ctx context.Context, teacherID, studentID string) error
	RemoveStudent(ctx context.Context, teacherID, studentID string) error
}

type recurrenceStore interface {
	ListInvalidRecurrences(ctx context.Context) ([]models.Class, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type repairDispatcher interface {
	Enqueue(job jobs.Job) (jobs.Job, error)
}

// IntegrityConfig tunes scan caching.
type IntegrityConfig struct {
	ReportTTL time.Duration
}

// IntegrityService compares teacher rosters with student back-references
// and repairs one-sided links.
type IntegrityService struct {
	students integrityStudentStore
	teachers integrityTeacherStore
	classes  recurrenceStore
	cache    reportCache
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      IntegrityConfig

	queue   repairDispatcher
	mu      sync.Mutex
	repairs map[string]*models.RepairJob
	order   []string
}

// NewIntegrityService constructs an IntegrityService. cache and metrics may be nil.
func NewIntegrityService(students integrityStudentStore, teachers integrityTeacherStore, classes recurrenceStore, cache reportCache, metrics *MetricsService, logger *zap.Logger, cfg IntegrityConfig) *IntegrityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReportTTL <= 0 {
		cfg.ReportTTL = 5 * time.Minute
	}
	return &IntegrityService{
		students: students,
		teachers: teachers,
		classes:  classes,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		repairs:  make(map[string]*models.RepairJob),
	}
}

// UseQueue attaches the dispatcher used by RepairAsync.
func (s *IntegrityService) UseQueue(queue repairDispatcher) {
	s.queue = queue
}

// Scan returns the current consistency report. Cached reports are served
// unless fresh is set.
func (s *IntegrityService) Scan(ctx context.Context, fresh bool) (*models.IntegrityReport, error) {
	if !fresh && s.cache != nil {
		var cached models.IntegrityReport
		if hit, err := s.cache.Get(ctx, scanCacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}
	report, err := s.scan(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to scan relationships")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, scanCacheKey, report, s.cfg.ReportTTL); err != nil {
			s.logger.Warn("failed to cache integrity report", zap.Error(err))
		}
	}
	s.metrics.ObserveIntegrityReport(report)
	return report, nil
}

func (s *IntegrityService) scan(ctx context.Context) (*models.IntegrityReport, error) {
	rosters, err := s.teachers.ListRosters(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := s.students.ListReferences(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.classes.ListInvalidRecurrences(ctx)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]*string, len(refs))
	for i := range refs {
		owners[refs[i].ID] = refs[i].TeacherID
	}
	rosterOf := make(map[string]map[string]struct{}, len(rosters))
	for _, t := range rosters {
		members := make(map[string]struct{}, len(t.StudentIDs))
		for _, id := range t.StudentIDs {
			members[id] = struct{}{}
		}
		rosterOf[t.ID] = members
	}

	var findings []models.IntegrityFinding
	for _, t := range rosters {
		for _, sid := range t.StudentIDs {
			owner, known := owners[sid]
			switch {
			case !known:
				findings = append(findings, models.IntegrityFinding{Kind: models.FindingDanglingRoster, TeacherID: t.ID, StudentID: sid,
					Detail: "roster lists a student that does not exist"})
			case owner == nil || *owner != t.ID:
				findings = append(findings, models.IntegrityFinding{Kind: models.FindingMismatchedRoster, TeacherID: t.ID, StudentID: sid,
					Detail: fmt.Sprintf("student points at %q", deref(owner))})
			}
		}
	}
	for _, ref := range refs {
		if ref.TeacherID == nil {
			continue
		}
		members, known := rosterOf[*ref.TeacherID]
		if !known {
			findings = append(findings, models.IntegrityFinding{Kind: models.FindingOrphanedReference, TeacherID: *ref.TeacherID, StudentID: ref.ID,
				Detail: "student points at a teacher that does not exist"})
			continue
		}
		if _, ok := members[ref.ID]; !ok {
			findings = append(findings, models.IntegrityFinding{Kind: models.FindingMissingRosterEntry, TeacherID: *ref.TeacherID, StudentID: ref.ID,
				Detail: "teacher roster does not list the student"})
		}
	}
	for _, c := range sessions {
		findings = append(findings, models.IntegrityFinding{Kind: models.FindingInvalidRecurrence, TeacherID: c.TeacherID, ClassID: c.ID,
			Detail: fmt.Sprintf("recurringId %q does not reference a recurring class", deref(c.RecurringID))})
	}

	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Kind < findings[j].Kind })
	counts := make(map[models.FindingKind]int)
	for _, f := range findings {
		counts[f.Kind]++
	}
	if findings == nil {
		findings = []models.IntegrityFinding{}
	}
	return &models.IntegrityReport{
		GeneratedAt: time.Now().UTC(),
		Findings:    findings,
		Counts:      counts,
		Consistent:  len(findings) == 0,
	}, nil
}

// Repair rescans and fixes roster findings, treating the student's
// back-reference as authoritative. Invalid recurrences are reported only.
func (s *IntegrityService) Repair(ctx context.Context) (*models.RepairResult, error) {
	report, err := s.scan(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to scan relationships")
	}
	defer s.InvalidateScan(ctx)

	result := &models.RepairResult{
		Repaired: []models.IntegrityFinding{},
		Skipped:  []models.IntegrityFinding{},
		Failed:   []models.IntegrityFinding{},
	}
	for _, f := range report.Findings {
		var err error
		switch f.Kind {
		case models.FindingDanglingRoster, models.FindingMismatchedRoster:
			err = s.teachers.RemoveStudent(ctx, f.TeacherID, f.StudentID)
		case models.FindingOrphanedReference:
			_, err = s.students.ClearTeacherIf(ctx, f.StudentID, f.TeacherID)
		case models.FindingMissingRosterEntry:
			err = s.teachers.AddStudent(ctx, f.TeacherID, f.StudentID)
		default:
			result.Skipped = append(result.Skipped, f)
			continue
		}
		if err != nil {
			s.logger.Warn("integrity repair step failed", zap.String("kind", string(f.Kind)),
				zap.String("teacher_id", f.TeacherID), zap.String("student_id", f.StudentID), zap.Error(err))
			result.Failed = append(result.Failed, f)
			continue
		}
		result.Repaired = append(result.Repaired, f)
	}
	s.metrics.RecordRepair(len(result.Repaired), len(result.Failed))
	s.logger.Info("integrity repair finished", zap.Int("repaired", len(result.Repaired)),
		zap.Int("skipped", len(result.Skipped)), zap.Int("failed", len(result.Failed)))
	return result, nil
}

// RepairAsync queues a repair run and returns its tracking record.
func (s *IntegrityService) RepairAsync(ctx context.Context) (*models.RepairJob, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "repair queue unavailable")
	}
	job, err := s.queue.Enqueue(jobs.Job{Type: repairJobType})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to enqueue repair")
	}
	record := &models.RepairJob{ID: job.ID, Status: "queued", EnqueuedAt: job.Enqueued}
	s.track(record)
	copied := *record
	return &copied, nil
}

// RepairJob returns a tracked asynchronous repair run.
func (s *IntegrityService) RepairJob(id string) (*models.RepairJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.repairs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "repair job not found")
	}
	copied := *record
	return &copied, nil
}

// InvalidateScan drops cached reports.
func (s *IntegrityService) InvalidateScan(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, scanCachePattern); err != nil {
		s.logger.Warn("failed to invalidate integrity report", zap.Error(err))
	}
}

func (s *IntegrityService) track(record *models.RepairJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.repairs[record.ID]; ok && existing.Status != "queued" {
		return
	}
	if _, ok := s.repairs[record.ID]; !ok {
		s.order = append(s.order, record.ID)
	}
	s.repairs[record.ID] = record
	for len(s.order) > maxTrackedRepairs {
		delete(s.repairs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *IntegrityService) update(id string, fn func(*models.RepairJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.repairs[id]
	if !ok {
		record = &models.RepairJob{ID: id}
		s.repairs[id] = record
		s.order = append(s.order, id)
	}
	fn(record)
}

// RepairWorker bridges queue jobs to IntegrityService.Repair.
type RepairWorker struct {
	svc *IntegrityService
}

// NewRepairWorker constructs a RepairWorker.
func NewRepairWorker(svc *IntegrityService) *RepairWorker {
	return &RepairWorker{svc: svc}
}

// Handle processes a queued repair job.
func (w *RepairWorker) Handle(ctx context.Context, job jobs.Job) error {
	w.svc.update(job.ID, func(r *models.RepairJob) { r.Status = "running" })
	result, err := w.svc.Repair(ctx)
	if err != nil {
		return err
	}
	w.svc.update(job.ID, func(r *models.RepairJob) { r.Result = result })
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d repair steps failed", len(result.Failed))
	}
	return nil
}

// Done records the terminal state of a repair job.
func (w *RepairWorker) Done(job jobs.Job, err error) {
	now := time.Now().UTC()
	w.svc.update(job.ID, func(r *models.RepairJob) {
		r.FinishedAt = &now
		if r.EnqueuedAt.IsZero() {
			r.EnqueuedAt = job.Enqueued
		}
		if err != nil {
			r.Status = "failed"
			r.Error = err.Error()
			return
		}
		r.Status = "completed"
	})
}
