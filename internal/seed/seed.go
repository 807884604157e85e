// Package seed populates the database with athletes and their training
// programs from a YAML seed file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/llalegg/trd-pb-sub003/internal/models"
	"gopkg.in/yaml.v3"
)

// File is the top level of a seed file.
type File struct {
	Athletes []AthleteEntry `yaml:"athletes"`
}

type AthleteEntry struct {
	Name   string       `yaml:"name"`
	Sport  string       `yaml:"sport"`
	Phases []PhaseEntry `yaml:"phases"`
}

type PhaseEntry struct {
	Number int          `yaml:"number"`
	Start  string       `yaml:"start"`
	End    string       `yaml:"end"`
	Blocks []BlockEntry `yaml:"blocks"`
}

type BlockEntry struct {
	Number       int               `yaml:"number"`
	Season       string            `yaml:"season"`
	SubSeason    string            `yaml:"sub_season"`
	Start        string            `yaml:"start"`
	End          string            `yaml:"end"`
	Status       string            `yaml:"status"`
	CurrentDay   models.CurrentDay `yaml:"current_day"`
	NextBlockDue string            `yaml:"next_block_due"`
}

// Store is what the seeder writes to. *storage.DB satisfies it.
type Store interface {
	ListAthletes(ctx context.Context) ([]models.Athlete, error)
	CreateAthlete(ctx context.Context, a models.Athlete) (models.Athlete, error)
	CreatePhase(ctx context.Context, p models.Phase) (models.Phase, error)
	CreateBlock(ctx context.Context, b models.Block) (models.Block, error)
}

// Stats tracks seeding progress.
type Stats struct {
	Athletes int
	Phases   int
	Blocks   int
	Skipped  int // athletes already present by name
}

// ErrMultipleActive is returned when a phase in the seed file has more
// than one active block.
var ErrMultipleActive = errors.New("more than one active block in phase")

// ErrDuplicateNumber is returned when an athlete repeats a phase number or a
// phase repeats a block number.
var ErrDuplicateNumber = errors.New("duplicate number")

// relativeDate matches "today", "today+7" and "today-14".
var relativeDate = regexp.MustCompile(`^today(?:([+-]\d+))?$`)

// ParseDate reads an absolute YYYY-MM-DD date or a day offset from today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	if m := relativeDate.FindStringSubmatch(s); m != nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if m[1] == "" {
			return today, nil
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day offset %q: %w", s, err)
		}
		return today.AddDate(0, 0, n), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or today[+-N]", s)
	}
	return t, nil
}

// LoadFile reads and decodes a seed file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &f, nil
}

// Seeder resolves a seed file into models and inserts them.
type Seeder struct {
	store  Store
	log    *slog.Logger
	dryRun bool
	now    time.Time
	stats  Stats
}

// New creates a Seeder. Relative dates resolve against now.
func New(store Store, log *slog.Logger, dryRun bool, now time.Time) *Seeder {
	return &Seeder{store: store, log: log, dryRun: dryRun, now: now}
}

// Seed validates the whole file before writing anything, then inserts
// athletes, phases and blocks in file order. Athletes whose name already
// exists in the store are skipped with their programs, so a file can be
// re-run. In dry-run mode it only counts and never touches the store.
func (s *Seeder) Seed(ctx context.Context, f *File) (*Stats, error) {
	plan, err := s.resolve(f)
	if err != nil {
		return &s.stats, err
	}

	existing := make(map[string]bool)
	if !s.dryRun {
		athletes, err := s.store.ListAthletes(ctx)
		if err != nil {
			return &s.stats, fmt.Errorf("listing existing athletes: %w", err)
		}
		for _, a := range athletes {
			existing[a.Name] = true
		}
	}

	for _, ap := range plan {
		if existing[ap.athlete.Name] {
			s.stats.Skipped++
			s.log.Info("athlete exists, skipping", "name", ap.athlete.Name)
			continue
		}
		s.stats.Athletes++
		athlete := ap.athlete
		if !s.dryRun {
			if athlete, err = s.store.CreateAthlete(ctx, athlete); err != nil {
				return &s.stats, fmt.Errorf("creating athlete %q: %w", ap.athlete.Name, err)
			}
		}
		s.log.Info("athlete seeded", "name", athlete.Name, "id", athlete.ID, "phases", len(ap.phases))

		for _, pp := range ap.phases {
			s.stats.Phases++
			phase := pp.phase
			phase.AthleteID = athlete.ID
			if !s.dryRun {
				if phase, err = s.store.CreatePhase(ctx, phase); err != nil {
					return &s.stats, fmt.Errorf("creating phase P%d for %q: %w", pp.phase.PhaseNumber, athlete.Name, err)
				}
			}

			for _, b := range pp.blocks {
				s.stats.Blocks++
				b.PhaseID = phase.ID
				if s.dryRun {
					continue
				}
				if _, err := s.store.CreateBlock(ctx, b); err != nil {
					return &s.stats, fmt.Errorf("creating block %d of P%d for %q: %w", b.BlockNumber, phase.PhaseNumber, athlete.Name, err)
				}
			}
		}
	}
	return &s.stats, nil
}

type athletePlan struct {
	athlete models.Athlete
	phases  []phasePlan
}

type phasePlan struct {
	phase  models.Phase
	blocks []models.Block
}

func (s *Seeder) resolve(f *File) ([]athletePlan, error) {
	var plan []athletePlan
	for i, as := range f.Athletes {
		if as.Name == "" {
			return nil, fmt.Errorf("athlete %d: %w", i+1, models.ErrEmptyName)
		}
		ap := athletePlan{athlete: models.Athlete{Name: as.Name, Sport: as.Sport}}

		seen := make(map[int]bool)
		for _, ps := range as.Phases {
			if seen[ps.Number] {
				return nil, fmt.Errorf("athlete %q phase %d: %w", as.Name, ps.Number, ErrDuplicateNumber)
			}
			seen[ps.Number] = true
			pp, err := s.resolvePhase(ps)
			if err != nil {
				return nil, fmt.Errorf("athlete %q phase %d: %w", as.Name, ps.Number, err)
			}
			ap.phases = append(ap.phases, pp)
		}
		plan = append(plan, ap)
	}
	return plan, nil
}

func (s *Seeder) resolvePhase(ps PhaseEntry) (phasePlan, error) {
	start, err := ParseDate(ps.Start, s.now)
	if err != nil {
		return phasePlan{}, err
	}
	end, err := ParseDate(ps.End, s.now)
	if err != nil {
		return phasePlan{}, err
	}
	pp := phasePlan{phase: models.Phase{PhaseNumber: ps.Number, StartDate: start, EndDate: end}}
	if err := pp.phase.Validate(); err != nil {
		return phasePlan{}, err
	}

	active := 0
	seen := make(map[int]bool)
	for _, bs := range ps.Blocks {
		if seen[bs.Number] {
			return phasePlan{}, fmt.Errorf("block %d: %w", bs.Number, ErrDuplicateNumber)
		}
		seen[bs.Number] = true
		b, err := s.resolveBlock(bs)
		if err != nil {
			return phasePlan{}, fmt.Errorf("block %d: %w", bs.Number, err)
		}
		if b.Status == models.BlockActive {
			active++
		}
		pp.blocks = append(pp.blocks, b)
	}
	if active > 1 {
		return phasePlan{}, ErrMultipleActive
	}
	return pp, nil
}

func (s *Seeder) resolveBlock(bs BlockEntry) (models.Block, error) {
	start, err := ParseDate(bs.Start, s.now)
	if err != nil {
		return models.Block{}, err
	}
	end, err := ParseDate(bs.End, s.now)
	if err != nil {
		return models.Block{}, err
	}

	b := models.Block{
		BlockNumber: bs.Number,
		Season:      bs.Season,
		SubSeason:   bs.SubSeason,
		StartDate:   start,
		EndDate:     end,
		Status:      models.BlockStatus(bs.Status),
		CurrentDay:  bs.CurrentDay,
	}
	if b.Status == "" {
		b.Status = models.BlockDraft
	}
	if bs.NextBlockDue != "" {
		due, err := ParseDate(bs.NextBlockDue, s.now)
		if err != nil {
			return models.Block{}, err
		}
		b.NextBlockDue = &due
	}
	if err := b.Validate(); err != nil {
		return models.Block{}, err
	}
	return b, nil
}
