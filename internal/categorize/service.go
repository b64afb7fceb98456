package categorize

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mixelka/stashbot/pkg/models"
)

// Store persists findings. Every method reports whether a new row was written;
// false with a nil error means the record already existed.
type Store interface {
	StoreCredential(ctx context.Context, userID int64, sourceID, label, username, password string) (bool, error)
	StorePassword(ctx context.Context, userID int64, sourceID, label, password string) (bool, error)
	StoreEmail(ctx context.Context, userID int64, sourceID, address, label string) (bool, error)
	StoreLink(ctx context.Context, userID int64, sourceID, url string, linkType models.LinkType) (bool, error)
	StoreNote(ctx context.Context, userID int64, sourceID, text string) (bool, error)
}

// Report summarizes one categorization call
type Report struct {
	Findings   []models.Finding
	Stored     []models.Finding
	Duplicates int
	Rejected   int // failed field validation
	Failed     int // storage errors
}

// HasSecrets reports whether a credential or password was stored
func (r Report) HasSecrets() bool {
	for _, f := range r.Stored {
		if f.IsSecret() {
			return true
		}
	}
	return false
}

// Add merges another report into r
func (r *Report) Add(other Report) {
	r.Findings = append(r.Findings, other.Findings...)
	r.Stored = append(r.Stored, other.Stored...)
	r.Duplicates += other.Duplicates
	r.Rejected += other.Rejected
	r.Failed += other.Failed
}

// Service classifies messages and persists the findings
type Service struct {
	engine *Engine
	store  Store
	logger *slog.Logger
}

// NewService creates a new categorization service
func NewService(engine *Engine, store Store, logger *slog.Logger) *Service {
	return &Service{
		engine: engine,
		store:  store,
		logger: logger.With("component", "categorize_service"),
	}
}

// Categorize extracts findings from text and stores each one.
// A failed write is logged and counted; the remaining findings are still stored.
func (s *Service) Categorize(ctx context.Context, userID int64, sourceID, text string) Report {
	return s.persist(ctx, userID, sourceID, s.engine.Extract(text))
}

func (s *Service) persist(ctx context.Context, userID int64, sourceID string, findings []models.Finding) Report {
	report := Report{Findings: findings}

	for _, f := range findings {
		created, err := s.storeFinding(ctx, userID, sourceID, f)

		var verr *models.ValidationError
		switch {
		case errors.As(err, &verr):
			report.Rejected++
			s.logger.Warn("finding rejected", "user_id", userID, "kind", f.Kind, "error", verr)
		case err != nil:
			report.Failed++
			s.logger.Error("failed to store finding", "user_id", userID, "kind", f.Kind, "error", err)
		case created:
			report.Stored = append(report.Stored, f)
		default:
			report.Duplicates++
		}
	}

	s.logger.Debug("message categorized",
		"user_id", userID,
		"findings", len(findings),
		"stored", len(report.Stored),
		"duplicates", report.Duplicates,
	)

	return report
}

func (s *Service) storeFinding(ctx context.Context, userID int64, sourceID string, f models.Finding) (bool, error) {
	switch f.Kind {
	case models.KindCredential:
		return s.store.StoreCredential(ctx, userID, sourceID, f.Label, f.Username, f.Password)
	case models.KindPassword:
		return s.store.StorePassword(ctx, userID, sourceID, f.Label, f.Password)
	case models.KindEmail:
		return s.store.StoreEmail(ctx, userID, sourceID, f.Address, f.Label)
	case models.KindLink:
		return s.store.StoreLink(ctx, userID, sourceID, f.URL, f.LinkType)
	default:
		return s.store.StoreNote(ctx, userID, sourceID, f.Text)
	}
}

// Message is one raw message to reprocess
type Message struct {
	ID   string
	Text string
}

// Reprocess re-runs categorization over a user's message history.
// Extraction runs in parallel; writes happen in the original order so the
// latest message still wins an upsert. Identical texts are handled once.
func (s *Service) Reprocess(ctx context.Context, userID int64, messages []Message) (Report, error) {
	var unique []Message
	seen := make(map[string]bool, len(messages))
	for _, m := range messages {
		if seen[m.Text] {
			continue
		}
		seen[m.Text] = true
		unique = append(unique, m)
	}

	results := make([][]models.Finding, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, m := range unique {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.engine.Extract(m.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var report Report
	for i, m := range unique {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Add(s.persist(ctx, userID, m.ID, results[i]))
	}

	s.logger.Info("history reprocessed",
		"user_id", userID,
		"messages", len(unique),
		"stored", len(report.Stored),
	)
	return report, nil
}
