package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/camp-schedule-api/internal/dto"
	"github.com/noah-isme/camp-schedule-api/internal/models"
	"github.com/noah-isme/camp-schedule-api/pkg/logger"
)

// MergePhase is a state of a merge run.
type MergePhase string

const (
	PhaseIdle               MergePhase = "idle"
	PhaseFetching           MergePhase = "fetching"
	PhaseAnalyzingStructure MergePhase = "analyzing-structure"
	PhaseRegeneratingGrid   MergePhase = "regenerating-grid"
	PhaseMergingAssignments MergePhase = "merging-assignments"
	PhasePublishing         MergePhase = "publishing"
	PhaseDone               MergePhase = "done"
	PhaseFailed             MergePhase = "failed"
)

type versionLister interface {
	ListByDate(ctx context.Context, campID, date string) ([]models.ScheduleVersion, error)
}

type dayPublisher interface {
	PublishAssignments(ctx context.Context, exec sqlx.ExtContext, campID, date string, assignments models.ScheduleAssignment) error
	PublishTimeGrid(ctx context.Context, exec sqlx.ExtContext, campID, date string, grid models.DayGrid, skeleton []models.SkeletonBlock) error
}

type leaguePublisher interface {
	Publish(ctx context.Context, exec sqlx.ExtContext, campID, date, division string, table models.LeagueTable) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type dayStateWriter interface {
	Replace(state *models.DayState)
}

// MergeRequest carries everything a merge run needs; nothing is read from shared state.
type MergeRequest struct {
	CampID    string
	Date      string
	Divisions []models.Division
	Increment int
	// FallbackSkeleton is used when no version carries a skeleton.
	FallbackSkeleton []models.SkeletonBlock
}

// VersionMerger reconciles the drafts of a day into one canonical schedule.
type VersionMerger struct {
	versions versionLister
	daily    dayPublisher
	leagues  leaguePublisher
	tx       txProvider
	state    dayStateWriter
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewVersionMerger wires merger dependencies.
func NewVersionMerger(versions versionLister, daily dayPublisher, leagues leaguePublisher, tx txProvider, state dayStateWriter, metrics *MetricsService, log *zap.Logger) *VersionMerger {
	if log == nil {
		log = zap.NewNop()
	}
	return &VersionMerger{
		versions: versions,
		daily:    daily,
		leagues:  leagues,
		tx:       tx,
		state:    state,
		metrics:  metrics,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// MergeAndPublish runs one merge pass. It never panics; failures are reported in
// the result and leave the previously published day untouched.
func (m *VersionMerger) MergeAndPublish(ctx context.Context, req MergeRequest) (result dto.MergeResult) {
	log := logger.ForDay(m.logger, req.CampID, req.Date)
	started := time.Now()
	phase := PhaseIdle

	fail := func(err error) dto.MergeResult {
		log.Error("schedule merge failed", zap.String("phase", string(phase)), zap.Error(err))
		return dto.MergeResult{Success: false, Phase: string(PhaseFailed), Error: fmt.Sprintf("%s: %v", phase, err)}
	}
	defer func() {
		if r := recover(); r != nil {
			result = fail(fmt.Errorf("panic: %v", r))
		}
		m.metrics.ObserveMerge(result.Success, time.Since(started))
	}()

	if m.versions == nil || m.daily == nil {
		return fail(fmt.Errorf("merger is not configured"))
	}

	phase = PhaseFetching
	versions, err := m.versions.ListByDate(ctx, req.CampID, req.Date)
	if err != nil {
		return fail(err)
	}
	if len(versions) == 0 {
		log.Debug("no versions to merge")
		return dto.MergeResult{Success: true, Phase: string(PhaseDone)}
	}

	phase = PhaseAnalyzingStructure
	skeleton, leagues := latestStructure(versions)
	if skeleton == nil {
		skeleton = req.FallbackSkeleton
	}
	log.Debug("structure analyzed", zap.Int("versions", len(versions)), zap.Int("skeleton_blocks", len(skeleton)), zap.Bool("leagues", leagues != nil))

	phase = PhaseRegeneratingGrid
	grid := BuildDayGrid(skeleton, req.Divisions, req.Increment)

	phase = PhaseMergingAssignments
	assignments, processed := mergeAssignments(versions)
	skipped := len(versions) - processed
	if skipped > 0 {
		log.Warn("skipped versions without a recognizable payload", zap.Int("skipped", skipped))
	}

	phase = PhasePublishing
	if err := m.publish(ctx, req, assignments, grid, skeleton, leagues); err != nil {
		return fail(err)
	}
	if m.state != nil {
		m.state.Replace(&models.DayState{
			CampID:            req.CampID,
			Date:              req.Date,
			Assignments:       assignments,
			Grid:              grid,
			LeagueAssignments: leagues,
			Skeleton:          skeleton,
			PublishedAt:       m.now(),
		})
	}

	log.Info("schedule merged",
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
		zap.Int("bunks", len(assignments)),
		zap.Int("unified_slots", len(grid.Unified)),
		zap.Duration("duration", time.Since(started)),
	)
	return dto.MergeResult{
		Success:        true,
		ProcessedCount: processed,
		SkippedCount:   skipped,
		BunkCount:      len(assignments),
		Phase:          string(PhaseDone),
	}
}

func (m *VersionMerger) publish(ctx context.Context, req MergeRequest, assignments models.ScheduleAssignment, grid models.DayGrid, skeleton []models.SkeletonBlock, leagues models.LeagueAssignments) (err error) {
	if m.tx == nil {
		return fmt.Errorf("transaction provider missing")
	}
	tx, err := m.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = m.daily.PublishAssignments(ctx, tx, req.CampID, req.Date, assignments); err != nil {
		return err
	}
	if err = m.daily.PublishTimeGrid(ctx, tx, req.CampID, req.Date, grid, skeleton); err != nil {
		return err
	}
	if m.leagues != nil && leagues != nil {
		divisions := make([]string, 0, len(leagues))
		for division := range leagues {
			divisions = append(divisions, division)
		}
		sort.Strings(divisions)
		for _, division := range divisions {
			if err = m.leagues.Publish(ctx, tx, req.CampID, req.Date, division, leagues[division]); err != nil {
				return err
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit publish tx: %w", err)
	}
	return nil
}

// latestStructure scans newest to oldest for the most recent skeleton and league block.
// An explicitly empty skeleton counts as present.
func latestStructure(versions []models.ScheduleVersion) ([]models.SkeletonBlock, models.LeagueAssignments) {
	var (
		skeleton []models.SkeletonBlock
		leagues  models.LeagueAssignments
	)
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		if !v.Recognized {
			continue
		}
		if skeleton == nil && v.Payload.Skeleton != nil {
			skeleton = v.Payload.Skeleton
		}
		if leagues == nil && v.Payload.LeagueAssignments != nil {
			leagues = v.Payload.LeagueAssignments
		}
		if skeleton != nil && leagues != nil {
			break
		}
	}
	return skeleton, leagues
}

// mergeAssignments applies versions oldest to newest; a later version replaces a
// bunk's whole sequence, never individual slots.
func mergeAssignments(versions []models.ScheduleVersion) (models.ScheduleAssignment, int) {
	merged := make(models.ScheduleAssignment)
	processed := 0
	for _, v := range versions {
		if !v.Recognized {
			continue
		}
		processed++
		for bunk, entries := range v.Payload.Assignments {
			copied := make([]*models.Entry, len(entries))
			for i, entry := range entries {
				copied[i] = entry.Clone()
			}
			merged[models.NormalizeBunkID(bunk)] = copied
		}
	}
	return merged, processed
}
