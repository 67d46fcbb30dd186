package models

import "time"

// FindingKind classifies a relationship inconsistency.
type FindingKind string

const (
	FindingDanglingRoster     FindingKind = "dangling_roster"
	FindingMismatchedRoster   FindingKind = "mismatched_roster"
	FindingOrphanedReference  FindingKind = "orphaned_reference"
	FindingMissingRosterEntry FindingKind = "missing_roster_entry"
	FindingInvalidRecurrence  FindingKind = "invalid_recurrence"
)

// IntegrityFinding is a single inconsistency detected by a scan.
type IntegrityFinding struct {
	Kind      FindingKind `json:"kind"`
	TeacherID string      `json:"teacherId,omitempty"`
	StudentID string      `json:"studentId,omitempty"`
	ClassID   string      `json:"classId,omitempty"`
	Detail    string      `json:"detail"`
}

// IntegrityReport is the outcome of a consistency scan.
type IntegrityReport struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Findings    []IntegrityFinding  `json:"findings"`
	Counts      map[FindingKind]int `json:"counts"`
	Consistent  bool                `json:"consistent"`
}

// RepairResult summarises a repair run.
type RepairResult struct {
	Repaired []IntegrityFinding `json:"repaired"`
	Skipped  []IntegrityFinding `json:"skipped"`
	Failed   []IntegrityFinding `json:"failed"`
}

// RepairJob tracks an asynchronous repair run.
type RepairJob struct {
	ID         string        `json:"id"`
	Status     string        `json:"status"`
	EnqueuedAt time.Time     `json:"enqueuedAt"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
	Result     *RepairResult `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
}
