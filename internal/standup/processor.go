package standup

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/sprint"
	"github.com/zulandar/tickora/internal/store"
	"go.uber.org/zap"
)

// Response is one user's standup answers.
type Response struct {
	UserID      string    `json:"user_id" validate:"required"`
	ProjectID   string    `json:"project_id" validate:"required"`
	Yesterday   string    `json:"yesterday"`
	Today       string    `json:"today"`
	Blockers    string    `json:"blockers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (r Response) record() models.StandupResponse {
	return models.StandupResponse{
		UserID:      r.UserID,
		ProjectID:   r.ProjectID,
		Yesterday:   r.Yesterday,
		Today:       r.Today,
		Blockers:    r.Blockers,
		SubmittedAt: r.SubmittedAt,
	}
}

func fromRecord(row models.StandupResponse) Response {
	return Response{
		UserID:      row.UserID,
		ProjectID:   row.ProjectID,
		Yesterday:   row.Yesterday,
		Today:       row.Today,
		Blockers:    row.Blockers,
		SubmittedAt: row.SubmittedAt,
	}
}

// Store is the part of the entity store the processor reads and updates.
type Store interface {
	GetUser(id string) (models.User, error)
	GetProject(id string) (models.Project, error)
	GetSprint(id string) (models.Sprint, error)
	GetWorkItem(id string) (models.WorkItem, error)
	UpdateWorkItem(id string, patch store.WorkItemPatch) (models.WorkItem, error)
	ListWorkItems(filters ...store.Filter[models.WorkItem]) iter.Seq[models.WorkItem]
}

var (
	doneWords    = regexp.MustCompile(`(?i)\b(done|completed|finished)\b`)
	startedWords = regexp.MustCompile(`(?i)\b(in[ -]progress|started|starting|working on)\b`)
)

// Processor applies standup responses to the board.
type Processor struct {
	store      Store
	log        *Log
	summarizer Summarizer
	logger     *zap.Logger
	clock      func() time.Time
	validate   *validator.Validate
}

// Options configures a Processor.
type Options struct {
	Log        *Log       // nil disables persistence
	Summarizer Summarizer // nil uses PlainSummarizer
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewProcessor creates a Processor over s.
func NewProcessor(s Store, opts Options) *Processor {
	p := &Processor{
		store:      s,
		log:        opts.Log,
		summarizer: opts.Summarizer,
		logger:     opts.Logger,
		clock:      opts.Clock,
		validate:   validator.New(),
	}
	if p.summarizer == nil {
		p.summarizer = PlainSummarizer{}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.clock == nil {
		p.clock = func() time.Time { return time.Now().UTC() }
	}
	return p
}

// Process records resp and moves the work items it mentions: items reported
// done in Yesterday become Done, items reported started in Today become
// InProgress. Only items of the response's project are touched. It returns
// the items whose status changed.
func (p *Processor) Process(ctx context.Context, resp Response) ([]models.WorkItem, error) {
	if err := p.validate.Struct(resp); err != nil {
		return nil, store.Invalidf("standup", resp.UserID, "%v", err)
	}
	if _, err := p.store.GetUser(resp.UserID); err != nil {
		return nil, err
	}
	if _, err := p.store.GetProject(resp.ProjectID); err != nil {
		return nil, err
	}
	if resp.SubmittedAt.IsZero() {
		resp.SubmittedAt = p.clock()
	}
	if p.log != nil {
		if err := p.log.Save(ctx, resp); err != nil {
			return nil, err
		}
	}

	known := func(id string) bool {
		w, err := p.store.GetWorkItem(id)
		return err == nil && w.ProjectID == resp.ProjectID
	}
	targets := make(map[string]models.Status)
	var order []string
	mark := func(text string, words *regexp.Regexp, status models.Status) {
		for _, clause := range clauses(text) {
			if !words.MatchString(clause) {
				continue
			}
			for _, id := range ExtractItemIDs(clause, known) {
				if _, seen := targets[id]; seen {
					continue
				}
				targets[id] = status
				order = append(order, id)
			}
		}
	}
	mark(resp.Yesterday, doneWords, models.StatusDone)
	mark(resp.Today, startedWords, models.StatusInProgress)

	var changed []models.WorkItem
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		w, err := p.store.GetWorkItem(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return changed, err
		}
		if w.ProjectID != resp.ProjectID || w.Status == targets[id] {
			continue
		}
		status := targets[id]
		updated, err := p.store.UpdateWorkItem(id, store.WorkItemPatch{Status: &status})
		if err != nil {
			return changed, fmt.Errorf("standup: update %s: %w", id, err)
		}
		p.logger.Info("standup moved item",
			zap.String("user", resp.UserID),
			zap.String("item", id),
			zap.String("from", string(w.Status)),
			zap.String("to", string(status)),
		)
		changed = append(changed, updated)
	}
	return changed, nil
}

// clauses splits free text into lines and sentences so that a keyword only
// applies to the ids written next to it.
func clauses(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ';' || r == '!' || r == '?'
	})
}

// Digest builds the sprint digest text: sprint metrics, blocked items, and a
// summary of each response.
func (p *Processor) Digest(ctx context.Context, sprintID string, responses []Response) (string, error) {
	sp, err := p.store.GetSprint(sprintID)
	if err != nil {
		return "", err
	}
	m, err := sprint.Aggregate(p.store, sprintID)
	if err != nil {
		return "", err
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("**Sprint**: %s (%s)", sp.Name, sp.ID))
	lines = append(lines, fmt.Sprintf("**Progress**: %d/%d done (%d%%), %d days left",
		m.DoneItems, m.TotalItems, m.CompletionPct, m.DaysRemaining(p.clock())))
	if m.BlockedCount > 0 {
		lines = append(lines, fmt.Sprintf("**Blocked**: %d (%d critical)", m.BlockedCount, m.CriticalBlockedCount))
		for w := range p.store.ListWorkItems(store.ItemsInSprint(sprintID), store.ItemsBlocked()) {
			lines = append(lines, fmt.Sprintf("  %s: %s", w.ID, w.Title))
		}
	}

	if len(responses) > 0 {
		lines = append(lines, "", "**Standups**:")
	}
	for _, r := range responses {
		name := r.UserID
		if u, err := p.store.GetUser(r.UserID); err == nil {
			name = u.Name
		}
		summary, err := p.summarizer.Summarize(ctx, responseText(r))
		if err != nil {
			return "", fmt.Errorf("standup: summarize %s: %w", r.UserID, err)
		}
		if summary == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s:", name))
		for _, l := range strings.Split(summary, "\n") {
			lines = append(lines, "    "+l)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func responseText(r Response) string {
	var parts []string
	for _, s := range []struct{ label, text string }{
		{"Yesterday", r.Yesterday},
		{"Today", r.Today},
		{"Blockers", r.Blockers},
	} {
		if t := strings.TrimSpace(s.text); t != "" {
			parts = append(parts, s.label+": "+t)
		}
	}
	return strings.Join(parts, "\n\n")
}
