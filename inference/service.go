package inference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/wardrobe"

	"github.com/sirupsen/logrus"
)

// Observer receives the outcome of every classification.
type Observer interface {
	ObserveUpload(outcome string, took time.Duration)
}

const (
	OutcomeClassified = "classified"
	OutcomeFailed     = "failed"
	OutcomeRejected   = "rejected"
)

// Service runs uploads for many users. A user can only have one upload being
// classified at a time; confirmation dialogs stay open until every candidate
// is confirmed.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	inFlight map[string]struct{}

	sim       *Simulator
	registry  *wardrobe.Registry
	threshold float64
	now       func() time.Time
	log       *logrus.Logger
	observer  Observer
}

func NewService(sim *Simulator, registry *wardrobe.Registry, threshold float64, log *logrus.Logger) *Service {
	return &Service{
		sessions:  map[string]*Session{},
		inFlight:  map[string]struct{}{},
		sim:       sim,
		registry:  registry,
		threshold: threshold,
		now:       time.Now,
		log:       log,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithObserver(observer Observer) *Service {
	s.observer = observer
	return s
}

func (s *Service) observe(outcome string, took time.Duration) {
	if s.observer != nil {
		s.observer.ObserveUpload(outcome, took)
	}
}

func (s *Service) Threshold() float64 {
	return s.threshold
}

func (s *Service) begin(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return errs.ErrUploadInProgress
	}
	s.inFlight[userID] = struct{}{}
	return nil
}

func (s *Service) end(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

func (s *Service) infer(ctx context.Context, userID string, upload Upload) (*Session, error) {
	if err := s.begin(userID); err != nil {
		s.observe(OutcomeRejected, 0)
		return nil, err
	}
	defer s.end(userID)

	log := s.log.WithFields(logrus.Fields{"user": userID, "file": upload.FileName})
	log.Info("classifying upload")
	started := time.Now()
	candidates, err := s.sim.Infer(ctx, upload)
	if err != nil {
		s.observe(OutcomeFailed, time.Since(started))
		log.WithError(err).Warn("classification failed")
		return nil, fmt.Errorf("classify %s: %w", upload.FileName, err)
	}
	s.observe(OutcomeClassified, time.Since(started))
	return NewSession(s.sim.NewID(), userID, candidates, s.now()), nil
}

// Start classifies the upload and opens a confirmation dialog for it.
func (s *Service) Start(ctx context.Context, userID string, upload Upload) (SessionView, error) {
	session, err := s.infer(ctx, userID, upload)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session.View(), nil
}

// Classify runs the whole pipeline without a dialog: the candidates are
// routed by confidence straight into the user's wardrobe.
func (s *Service) Classify(ctx context.Context, userID string, upload Upload) (wardrobe.Intake, error) {
	session, err := s.infer(ctx, userID, upload)
	if err != nil {
		return wardrobe.Intake{}, err
	}
	store := s.registry.For(ctx, userID)
	return Confirm(ctx, store, session.Candidates, s.threshold, s.now())
}

// withSession runs fn with the service lock held on the user's session.
func (s *Service) withSession(userID, sessionID string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return fmt.Errorf("upload session %s: %w", sessionID, errs.ErrNotFound)
	}
	return fn(session)
}

func (s *Service) Session(userID, sessionID string) (SessionView, error) {
	var view SessionView
	err := s.withSession(userID, sessionID, func(session *Session) error {
		view = session.View()
		return nil
	})
	return view, err
}

func (s *Service) Edit(userID, sessionID string, index int, patch CandidatePatch) (SessionView, error) {
	var view SessionView
	err := s.withSession(userID, sessionID, func(session *Session) error {
		if _, err := session.Edit(index, patch); err != nil {
			return err
		}
		view = session.View()
		return nil
	})
	return view, err
}

func (s *Service) GoTo(userID, sessionID string, page int) (SessionView, error) {
	var view SessionView
	err := s.withSession(userID, sessionID, func(session *Session) error {
		if err := session.GoTo(page); err != nil {
			return err
		}
		view = session.View()
		return nil
	})
	return view, err
}

// ConfirmAt confirms a single candidate of the dialog.
func (s *Service) ConfirmAt(ctx context.Context, userID, sessionID string, index int) (wardrobe.Intake, error) {
	return s.confirm(ctx, userID, sessionID, func(session *Session) ([]int, error) {
		if _, err := session.Pending(index); err != nil {
			return nil, err
		}
		return []int{index}, nil
	})
}

// ConfirmAll confirms every candidate not confirmed individually yet and
// closes the dialog.
func (s *Service) ConfirmAll(ctx context.Context, userID, sessionID string) (wardrobe.Intake, error) {
	return s.confirm(ctx, userID, sessionID, func(session *Session) ([]int, error) {
		return session.Remaining(), nil
	})
}

// confirm stores the candidates picked from the session and only marks them
// confirmed once the wardrobe accepted them; a rejected intake leaves the
// dialog as it was.
func (s *Service) confirm(ctx context.Context, userID, sessionID string, pick func(*Session) ([]int, error)) (wardrobe.Intake, error) {
	var session *Session
	err := s.withSession(userID, sessionID, func(found *Session) error {
		session = found
		return nil
	})
	if err != nil {
		return wardrobe.Intake{}, err
	}
	session.confirmMu.Lock()
	defer session.confirmMu.Unlock()

	var (
		indexes []int
		intake  wardrobe.Intake
	)
	err = s.withSession(userID, sessionID, func(found *Session) error {
		picked, err := pick(found)
		if err != nil {
			return err
		}
		indexes = picked
		intake = found.Route(picked, s.threshold, s.now())
		return nil
	})
	if err != nil {
		return wardrobe.Intake{}, err
	}

	applied, err := s.registry.For(ctx, userID).Ingest(ctx, intake)
	if err != nil {
		return wardrobe.Intake{}, err
	}

	s.mu.Lock()
	session.Commit(indexes, applied)
	s.closeIfDone(session)
	s.mu.Unlock()
	return applied, nil
}

// closeIfDone must be called with s.mu held.
func (s *Service) closeIfDone(session *Session) {
	if session.Done() {
		delete(s.sessions, session.ID)
	}
}

// ExpireSessions closes confirmation dialogs opened more than maxAge ago and
// returns how many were dropped.
func (s *Service) ExpireSessions(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxAge)
	expired := 0
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		s.log.WithField("count", expired).Info("expired upload sessions")
	}
	return expired
}
