package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/camp-schedule-api/internal/dto"
	"github.com/noah-isme/camp-schedule-api/internal/models"
	appErrors "github.com/noah-isme/camp-schedule-api/pkg/errors"
	"github.com/noah-isme/camp-schedule-api/pkg/jobs"
	"github.com/noah-isme/camp-schedule-api/pkg/logger"
)

type versionWriter interface {
	Create(ctx context.Context, record *models.ScheduleVersionRecord) error
}

type divisionReader interface {
	List(ctx context.Context, campID string) ([]models.Division, error)
}

type resourceReader interface {
	ListProperties(ctx context.Context, campID string) (models.ResourceProperties, error)
}

type leagueReader interface {
	GetByDivision(ctx context.Context, campID, date, division string) (models.LeagueTable, error)
}

type publishedDayReader interface {
	GetPublished(ctx context.Context, campID, date string) (*models.DayState, error)
}

type dayMerger interface {
	MergeAndPublish(ctx context.Context, req MergeRequest) dto.MergeResult
}

type reconcileScheduler interface {
	Schedule(key string, task jobs.Task) error
	Delay() time.Duration
}

// DayScheduleConfig tunes the orchestrator.
type DayScheduleConfig struct {
	Increment        int
	HydrationTimeout time.Duration
}

// DayScheduleService owns the current snapshot of each camp day and threads it
// through grid building, merging, validation and slot lookup.
type DayScheduleService struct {
	versions   versionWriter
	divisions  divisionReader
	resources  resourceReader
	leagues    leagueReader
	published  publishedDayReader
	merger     dayMerger
	checker    *ConflictValidator
	store      *DayStateStore
	cache      *CacheService
	scheduler  reconcileScheduler
	gate       *HydrationGate
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        DayScheduleConfig
	reconciles singleflight.Group
}

// DayScheduleDeps groups collaborators of DayScheduleService.
type DayScheduleDeps struct {
	Versions  versionWriter
	Divisions divisionReader
	Resources resourceReader
	Leagues   leagueReader
	Published publishedDayReader
	Merger    dayMerger
	Checker   *ConflictValidator
	Store     *DayStateStore
	Cache     *CacheService
	Scheduler reconcileScheduler
	Gate      *HydrationGate
	Metrics   *MetricsService
}

// NewDayScheduleService wires the orchestrator.
func NewDayScheduleService(deps DayScheduleDeps, validate *validator.Validate, log *zap.Logger, cfg DayScheduleConfig) *DayScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Store == nil {
		deps.Store = NewDayStateStore()
	}
	if deps.Checker == nil {
		deps.Checker = NewConflictValidator(ValidatorConfig{})
	}
	if deps.Gate == nil {
		deps.Gate = NewHydrationGate()
		deps.Gate.MarkReady()
	}
	if cfg.Increment <= 0 {
		cfg.Increment = DefaultGridIncrement
	}
	if cfg.HydrationTimeout <= 0 {
		cfg.HydrationTimeout = 3 * time.Second
	}
	return &DayScheduleService{
		versions:  deps.Versions,
		divisions: deps.Divisions,
		resources: deps.Resources,
		leagues:   deps.Leagues,
		published: deps.Published,
		merger:    deps.Merger,
		checker:   deps.Checker,
		store:     deps.Store,
		cache:     deps.Cache,
		scheduler: deps.Scheduler,
		gate:      deps.Gate,
		metrics:   deps.Metrics,
		validator: validate,
		logger:    log,
		cfg:       cfg,
	}
}

// Ready reports whether backing data has been hydrated.
func (s *DayScheduleService) Ready() bool {
	return s.gate.Ready()
}

// CreateVersion stores a draft and arms a debounced reconcile for its day.
func (s *DayScheduleService) CreateVersion(ctx context.Context, day dto.DayPath, req dto.CreateVersionRequest) (*dto.CreateVersionResponse, error) {
	if err := s.validateDay(day); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid version payload")
	}
	if s.versions == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "version repository missing")
	}
	record := &models.ScheduleVersionRecord{CampID: day.CampID, ScheduleDate: day.Date, Payload: types.JSONText(req.Payload)}
	if err := s.versions.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store schedule version")
	}
	resp := &dto.CreateVersionResponse{ID: record.ID, CampID: day.CampID, Date: day.Date}
	if _, err := s.ScheduleReconcile(day); err == nil {
		resp.Scheduled = true
	} else {
		logger.ForDay(s.logger, day.CampID, day.Date).Warn("reconcile not scheduled", zap.Error(err))
	}
	return resp, nil
}

// ScheduleReconcile arms a debounced reconcile; a newer trigger for the same day
// replaces a pending one.
func (s *DayScheduleService) ScheduleReconcile(day dto.DayPath) (*dto.ScheduleReconcileResponse, error) {
	if err := s.validateDay(day); err != nil {
		return nil, err
	}
	if s.scheduler == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "reconcile scheduler missing")
	}
	key := dayKey(day.CampID, day.Date)
	err := s.scheduler.Schedule(key, func(ctx context.Context) error {
		_, err := s.Reconcile(ctx, day, dto.ReconcileRequest{})
		return err
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule reconcile")
	}
	s.metrics.RecordReconcileScheduled()
	return &dto.ScheduleReconcileResponse{Key: key, DelayMs: s.scheduler.Delay().Milliseconds()}, nil
}

// Reconcile merges the day's drafts, publishes them and validates the result.
// Concurrent calls for the same day share one run.
func (s *DayScheduleService) Reconcile(ctx context.Context, day dto.DayPath, req dto.ReconcileRequest) (*dto.ReconcileResponse, error) {
	if err := s.validateDay(day); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reconcile request")
	}
	if s.merger == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "version merger missing")
	}
	// callers joining an in-flight run get its result whatever options they sent,
	// and one caller going away must not fail the run for the others
	runCtx := context.WithoutCancel(ctx)
	value, err, shared := s.reconciles.Do(dayKey(day.CampID, day.Date), func() (interface{}, error) {
		return s.reconcile(runCtx, day, req)
	})
	if shared {
		logger.ForDay(s.logger, day.CampID, day.Date).Debug("joined in-flight reconcile")
	}
	if err != nil {
		return nil, err
	}
	return value.(*dto.ReconcileResponse), nil
}

func (s *DayScheduleService) reconcile(ctx context.Context, day dto.DayPath, req dto.ReconcileRequest) (*dto.ReconcileResponse, error) {
	log := logger.ForDay(s.logger, day.CampID, day.Date)

	ready := s.gate.Wait(ctx, s.cfg.HydrationTimeout)
	s.metrics.RecordHydrationWait(ready)
	if !ready {
		log.Warn("hydration not complete, reconciling with cached data", zap.Duration("timeout", s.cfg.HydrationTimeout))
	}

	divisions, err := s.listDivisions(ctx, day.CampID)
	if err != nil {
		return nil, err
	}
	increment := req.IncrementMinutes
	if increment <= 0 {
		increment = s.cfg.Increment
	}
	var fallback []models.SkeletonBlock
	current, err := s.GetDay(ctx, day)
	switch {
	case err == nil:
		fallback = current.Skeleton
	case appErrors.FromError(err).Code != appErrors.ErrNotFound.Code:
		log.Warn("published skeleton unavailable, merging without fallback", zap.Error(err))
	}

	result := s.merger.MergeAndPublish(ctx, MergeRequest{
		CampID:           day.CampID,
		Date:             day.Date,
		Divisions:        divisions,
		Increment:        increment,
		FallbackSkeleton: fallback,
	})
	resp := &dto.ReconcileResponse{Merge: result}
	if !result.Success {
		return nil, appErrors.Clone(appErrors.ErrPersistence, result.Error)
	}

	state, ok := s.store.Get(day.CampID, day.Date)
	if !ok {
		// nothing has been published for this day yet
		return resp, nil
	}
	_ = s.cache.Set(ctx, state)
	if req.SkipValidation {
		return resp, nil
	}
	report, err := s.Validate(ctx, day)
	if err != nil {
		return nil, err
	}
	resp.Report = report
	return resp, nil
}

// GetDay returns the published day from memory, the shared cache or the database,
// in that order.
func (s *DayScheduleService) GetDay(ctx context.Context, day dto.DayPath) (*models.DayState, error) {
	if err := s.validateDay(day); err != nil {
		return nil, err
	}
	if state, ok := s.store.Get(day.CampID, day.Date); ok {
		return state, nil
	}
	if state, hit, err := s.cache.Get(ctx, day.CampID, day.Date); err == nil && hit {
		s.store.Replace(state)
		return state, nil
	}
	if s.published == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule day not published")
	}
	state, err := s.published.GetPublished(ctx, day.CampID, day.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule day not published")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load published schedule")
	}
	s.store.Replace(state)
	_ = s.cache.Set(ctx, state)
	return state, nil
}

// Validate checks the published day against resource and activity rules.
func (s *DayScheduleService) Validate(ctx context.Context, day dto.DayPath) (*models.ConflictReport, error) {
	state, err := s.GetDay(ctx, day)
	if err != nil {
		return nil, err
	}
	divisions, err := s.listDivisions(ctx, day.CampID)
	if err != nil {
		return nil, err
	}
	var resources models.ResourceProperties
	if s.resources != nil {
		resources, err = s.resources.ListProperties(ctx, day.CampID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load resources")
		}
	}
	leagues, err := s.leagueAssignments(ctx, state, divisions)
	if err != nil {
		return nil, err
	}

	report := s.checker.Validate(ValidationInput{
		Assignments:       state.Assignments,
		Divisions:         divisions,
		Grid:              state.Grid,
		Resources:         resources,
		LeagueAssignments: leagues,
	})
	s.metrics.ObserveReport(report)
	logger.ForDay(s.logger, day.CampID, day.Date).Info("schedule validated",
		zap.Int("errors", len(report.Errors)),
		zap.Int("warnings", len(report.Warnings)),
	)
	return &report, nil
}

// LookupSlots resolves a bunk and time range against the published day.
func (s *DayScheduleService) LookupSlots(ctx context.Context, day dto.DayPath, query dto.SlotLookupQuery) (*dto.SlotLookupResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot query")
	}
	start, okStart := parseMinutes(query.Start)
	end, okEnd := parseMinutes(query.End)
	if !okStart || !okEnd || end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start and end must be times with start before end")
	}
	state, err := s.GetDay(ctx, day)
	if err != nil {
		return nil, err
	}
	divisions, err := s.listDivisions(ctx, day.CampID)
	if err != nil {
		return nil, err
	}

	resolver := NewSlotResolver(divisions, state.Grid, state.Assignments)
	resp := &dto.SlotLookupResponse{
		Bunk:        query.Bunk,
		StartMin:    start,
		EndMin:      end,
		SlotIndices: resolver.FindSlotsForRange(start, end, query.Bunk),
	}
	resp.Division, _ = resolver.ResolveDivision(query.Bunk)
	if loc, ok := resolver.FindEntry(query.Bunk, start, end); ok {
		index := loc.SlotIndex
		resp.Entry = loc.Entry
		resp.SlotIndex = &index
		resp.Match = string(loc.Match)
	}
	return resp, nil
}

func (s *DayScheduleService) leagueAssignments(ctx context.Context, state *models.DayState, divisions []models.Division) (models.LeagueAssignments, error) {
	if state.LeagueAssignments != nil || s.leagues == nil {
		return state.LeagueAssignments, nil
	}
	leagues := make(models.LeagueAssignments)
	for _, div := range divisions {
		table, err := s.leagues.GetByDivision(ctx, state.CampID, state.Date, div.Name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load league assignments")
		}
		if len(table) > 0 {
			leagues[div.Name] = table
		}
	}
	return leagues, nil
}

func (s *DayScheduleService) listDivisions(ctx context.Context, campID string) ([]models.Division, error) {
	if s.divisions == nil {
		return nil, nil
	}
	divisions, err := s.divisions.List(ctx, campID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load divisions")
	}
	return divisions, nil
}

func (s *DayScheduleService) validateDay(day dto.DayPath) error {
	if err := s.validator.Struct(day); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid camp day")
	}
	return nil
}

// parseMinutes accepts clock strings or plain minutes from midnight.
func parseMinutes(raw string) (int, bool) {
	if minutes, ok := ParseTime(raw); ok {
		return minutes, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 || n > 24*60 {
		return 0, false
	}
	return n, true
}
