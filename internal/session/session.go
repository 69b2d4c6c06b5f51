// Package session holds the mutable per-document run state: overall
// progress and the ordered collection of per-page results. A session has
// exactly one writer — the pipeline orchestrator — so no locking is
// needed; observers receive immutable snapshots.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a single page.
type Status string

const (
	StatusPending     Status = "pending"
	StatusTranslating Status = "translating"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// statusRank orders statuses; transitions only move forward.
var statusRank = map[Status]int{
	StatusPending:     0,
	StatusTranslating: 1,
	StatusCompleted:   2,
	StatusFailed:      2,
}

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// State is the document-level run state.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// PageResult is the per-page record within a session.
type PageResult struct {
	PageNumber   int    `json:"page_number"`
	Status       Status `json:"status"`
	ImageDataURL string `json:"image_data_url,omitempty"`
	HTML         string `json:"html,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Progress is the pages-done counter pair shown to observers.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Snapshot is an immutable copy of a session, safe to hand to any reader.
type Snapshot struct {
	ID         string       `json:"id"`
	State      State        `json:"state"`
	TotalPages int          `json:"total_pages"`
	Done       int          `json:"done"`
	Error      string       `json:"error,omitempty"`
	Pages      []PageResult `json:"pages"`
	StartedAt  time.Time    `json:"started_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Progress returns the current/total counter pair.
func (s Snapshot) Progress() Progress {
	return Progress{Current: s.Done, Total: s.TotalPages}
}

// DocumentSession is the single-writer run state.
type DocumentSession struct {
	id        string
	state     State
	total     int
	done      int
	errMsg    string
	pages     []PageResult
	startedAt time.Time
	updatedAt time.Time
}

// New creates an idle session with a fresh ID.
func New() *DocumentSession {
	now := time.Now()
	return &DocumentSession{
		id:        uuid.NewString(),
		state:     StateIdle,
		startedAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *DocumentSession) ID() string { return s.id }

// Begin moves the session into Processing with a fixed page count and one
// pending PageResult per page. The total never changes afterwards.
func (s *DocumentSession) Begin(totalPages int) {
	s.state = StateProcessing
	s.total = totalPages
	s.done = 0
	s.errMsg = ""
	s.pages = make([]PageResult, totalPages)
	for i := range s.pages {
		s.pages[i] = PageResult{PageNumber: i + 1, Status: StatusPending}
	}
	s.touch()
}

// MarkTranslating transitions a page to translating and attaches its
// rendered image, so observers see the original page before the
// translation call starts.
func (s *DocumentSession) MarkTranslating(pageNumber int, imageDataURL string) error {
	return s.transition(pageNumber, StatusTranslating, func(p *PageResult) {
		p.ImageDataURL = imageDataURL
	})
}

// MarkCompleted records a successful translation. Terminal.
func (s *DocumentSession) MarkCompleted(pageNumber int, html string) error {
	return s.transition(pageNumber, StatusCompleted, func(p *PageResult) {
		p.HTML = html
	})
}

// MarkFailed records a per-page failure. Terminal; the run continues.
func (s *DocumentSession) MarkFailed(pageNumber int, errMsg string) error {
	return s.transition(pageNumber, StatusFailed, func(p *PageResult) {
		p.Error = errMsg
	})
}

// Complete finishes the run. Mixed per-page outcomes still complete.
func (s *DocumentSession) Complete() {
	s.state = StateCompleted
	s.touch()
}

// Fail records a whole-document failure. No per-page results change.
func (s *DocumentSession) Fail(errMsg string) {
	s.state = StateError
	s.errMsg = errMsg
	s.touch()
}

// Reset returns the session to Idle, dropping all page results.
func (s *DocumentSession) Reset() {
	s.state = StateIdle
	s.total = 0
	s.done = 0
	s.errMsg = ""
	s.pages = nil
	s.touch()
}

// Snapshot returns a deep copy of the session.
func (s *DocumentSession) Snapshot() Snapshot {
	pages := make([]PageResult, len(s.pages))
	copy(pages, s.pages)
	return Snapshot{
		ID:         s.id,
		State:      s.state,
		TotalPages: s.total,
		Done:       s.done,
		Error:      s.errMsg,
		Pages:      pages,
		StartedAt:  s.startedAt,
		UpdatedAt:  s.updatedAt,
	}
}

// transition applies a forward-only status change to one page.
func (s *DocumentSession) transition(pageNumber int, to Status, apply func(*PageResult)) error {
	if pageNumber < 1 || pageNumber > len(s.pages) {
		return fmt.Errorf("page %d out of range (1..%d)", pageNumber, len(s.pages))
	}

	p := &s.pages[pageNumber-1]
	if p.Status.Terminal() || statusRank[to] <= statusRank[p.Status] {
		return fmt.Errorf("page %d: invalid transition %s -> %s", pageNumber, p.Status, to)
	}

	p.Status = to
	apply(p)
	if to.Terminal() {
		s.done++
	}
	s.touch()
	return nil
}

func (s *DocumentSession) touch() {
	s.updatedAt = time.Now()
}
