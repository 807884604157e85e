package server

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/completion"
	"github.com/llalegg/trd-pb-sub003/internal/metrics"
	"github.com/llalegg/trd-pb-sub003/internal/models"
	"github.com/llalegg/trd-pb-sub003/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	athletes map[uuid.UUID]models.Athlete
	phases   map[uuid.UUID]models.Phase
	blocks   map[uuid.UUID]models.Block
	changes  []models.StatusChange
}

func newMemStore() *memStore {
	return &memStore{
		athletes: make(map[uuid.UUID]models.Athlete),
		phases:   make(map[uuid.UUID]models.Phase),
		blocks:   make(map[uuid.UUID]models.Block),
	}
}

func (s *memStore) CreateAthlete(_ context.Context, a models.Athlete) (models.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	s.athletes[a.ID] = a
	return a, nil
}

func (s *memStore) GetAthlete(_ context.Context, id uuid.UUID) (*models.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.athletes[id]
	if !ok {
		return nil, fmt.Errorf("querying athlete: %w", storage.ErrNotFound)
	}
	return &a, nil
}

func (s *memStore) ListAthletes(context.Context) ([]models.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Athlete, 0, len(s.athletes))
	for _, a := range s.athletes {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b models.Athlete) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *memStore) CreatePhase(_ context.Context, p models.Phase) (models.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.phases {
		if existing.AthleteID == p.AthleteID && existing.PhaseNumber == p.PhaseNumber {
			return models.Phase{}, fmt.Errorf("inserting phase: %w", storage.ErrDuplicate)
		}
	}
	p.ID = uuid.New()
	s.phases[p.ID] = p
	return p, nil
}

func (s *memStore) GetPhase(_ context.Context, id uuid.UUID) (*models.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.phases[id]
	if !ok {
		return nil, fmt.Errorf("querying phase: %w", storage.ErrNotFound)
	}
	return &p, nil
}

func (s *memStore) ListPhases(_ context.Context, athleteID uuid.UUID) ([]models.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Phase
	for _, p := range s.phases {
		if p.AthleteID == athleteID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Phase) int { return cmp.Compare(a.PhaseNumber, b.PhaseNumber) })
	return out, nil
}

func (s *memStore) CreateBlock(_ context.Context, b models.Block) (models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.phases[b.PhaseID]
	if !ok {
		return models.Block{}, fmt.Errorf("inserting block: %w", storage.ErrNotFound)
	}
	b.ID = uuid.New()
	b.AthleteID = p.AthleteID
	s.blocks[b.ID] = b
	return b, nil
}

func (s *memStore) GetBlock(_ context.Context, id uuid.UUID) (*models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, fmt.Errorf("querying block: %w", storage.ErrNotFound)
	}
	return &b, nil
}

func (s *memStore) ListBlocks(_ context.Context, phaseID uuid.UUID) ([]models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Block
	for _, b := range s.blocks {
		if b.PhaseID == phaseID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b models.Block) int { return cmp.Compare(a.BlockNumber, b.BlockNumber) })
	return out, nil
}

func (s *memStore) UpdateBlockCurrentDay(_ context.Context, id uuid.UUID, cd models.CurrentDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return fmt.Errorf("updating current day: %w", storage.ErrNotFound)
	}
	b.CurrentDay = cd
	s.blocks[id] = b
	return nil
}

func (s *memStore) TransitionBlockStatus(_ context.Context, c models.StatusChange) (models.StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[c.BlockID]
	if !ok {
		return models.StatusChange{}, storage.ErrNotFound
	}
	if b.Status != c.From {
		return models.StatusChange{}, storage.ErrConflict
	}
	b.Status = c.To
	s.blocks[b.ID] = b
	c.ID = int64(len(s.changes) + 1)
	c.ChangedAt = time.Now()
	s.changes = append(s.changes, c)
	return c, nil
}

func (s *memStore) QueryStatusChanges(_ context.Context, blockID uuid.UUID, limit int) ([]models.StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StatusChange
	for i := len(s.changes) - 1; i >= 0 && len(out) < limit; i-- {
		if s.changes[i].BlockID == blockID {
			out = append(out, s.changes[i])
		}
	}
	return out, nil
}

func (s *memStore) GetProgramStats(context.Context) (*models.ProgramStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.ProgramStats{
		Athletes:       int64(len(s.athletes)),
		Phases:         int64(len(s.phases)),
		Blocks:         int64(len(s.blocks)),
		StatusChanges:  int64(len(s.changes)),
		BlocksByStatus: make(map[models.BlockStatus]int64),
	}
	for _, b := range s.blocks {
		stats.BlocksByStatus[b.Status]++
		if stats.EarliestBlock == nil || b.StartDate.Before(*stats.EarliestBlock) {
			start := b.StartDate
			stats.EarliestBlock = &start
		}
		if stats.LatestBlock == nil || b.EndDate.After(*stats.LatestBlock) {
			end := b.EndDate
			stats.LatestBlock = &end
		}
	}
	return stats, nil
}

const testAPIKey = "test-key"

// testNow is the fixed clock used by handler tests.
var testNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func testDate(offset int) time.Time {
	return time.Date(2026, 3, 10+offset, 0, 0, 0, 0, time.UTC)
}

type testEnv struct {
	srv     *Server
	store   *memStore
	tracker *completion.Tracker
	metrics *metrics.Manager
}

func newTestEnv() *testEnv {
	store := newMemStore()
	tracker := completion.NewTracker()
	m, reg := metrics.NewTestManagerAndRegistry()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := New(store, tracker, m, prometheus.Gatherer(reg), testAPIKey, log)
	srv.now = func() time.Time { return testNow }
	return &testEnv{srv: srv, store: store, tracker: tracker, metrics: m}
}

// seedProgram creates one athlete with a phase spanning day -14..+41 and
// three blocks: complete, active (ends in 5 days), planned.
func (e *testEnv) seedProgram() (models.Athlete, models.Phase, []models.Block) {
	ctx := context.Background()
	a, _ := e.store.CreateAthlete(ctx, models.Athlete{Name: "Jordan", Sport: "baseball"})
	p, _ := e.store.CreatePhase(ctx, models.Phase{
		AthleteID: a.ID, PhaseNumber: 1, StartDate: testDate(-14), EndDate: testDate(41),
	})
	due := testDate(3)
	specs := []models.Block{
		{BlockNumber: 1, Season: "Pre-Season", SubSeason: "Early", StartDate: testDate(-14), EndDate: testDate(-1), Status: models.BlockComplete},
		{BlockNumber: 2, Season: "Pre-Season", SubSeason: "Mid", StartDate: testDate(0), EndDate: testDate(5), Status: models.BlockActive,
			CurrentDay: models.CurrentDay{Week: 1, Day: 3}, NextBlockDue: &due},
		{BlockNumber: 3, Season: "Pre-Season", SubSeason: "Late", StartDate: testDate(6), EndDate: testDate(19), Status: models.BlockPlanned},
	}
	var blocks []models.Block
	for _, b := range specs {
		b.PhaseID = p.ID
		created, _ := e.store.CreateBlock(ctx, b)
		blocks = append(blocks, created)
	}
	return a, p, blocks
}
