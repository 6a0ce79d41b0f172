// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system: the
// persisted academic ledger, the student profile and the curriculum store.
package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/internal/domain/student"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC LEDGER COMMAND
// Rebuilds a student's academic ledger from the portal transcript and the
// current registration, and persists it in one write.
// ══════════════════════════════════════════════════════════════════════════════

// SyncLedgerCommand contains the data needed to sync a ledger.
type SyncLedgerCommand struct {
	// MSSV is the student number used as the transcript sid.
	MSSV string

	// Cookie is the portal session cookie value.
	Cookie string

	// Major overrides the major read from the profile page.
	Major string

	// CorrelationID for tracing across log lines.
	CorrelationID string
}

// Validate validates the command.
func (c SyncLedgerCommand) Validate() error {
	if _, err := shared.NewMSSV(c.MSSV); err != nil {
		return err
	}
	if strings.TrimSpace(c.Cookie) == "" {
		return shared.ErrMissingSession
	}
	return nil
}

// SyncLedgerResult contains the result of synchronization.
type SyncLedgerResult struct {
	// SyncID identifies this run; it is stored on the ledger.
	SyncID string

	Ledger  *ledger.Ledger
	Profile *student.Profile

	// Totals are the transcript accumulators as parsed.
	Totals ledger.Totals

	// Conflicts are registered courses missing from the prior record.
	Conflicts []ledger.Conflict

	SkippedRows    int
	DroppedLabRows int

	SyncedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// TranscriptData is the transcript page as seen by the application.
type TranscriptData struct {
	Rows           [][]string
	StudentNumber  string
	FullName       string
	BirthDate      string
	Gender         string
	Class          string
	Faculty        string
	TrainingSystem string
}

// RegistrationData is the course registration page.
type RegistrationData struct {
	Title string
	Rows  [][]string
}

// PortalClient defines the interface for the student portal.
type PortalClient interface {
	// FetchTranscript fetches the grade table for mssv.
	FetchTranscript(ctx context.Context, mssv, cookie string) (*TranscriptData, error)

	// FetchRegistration fetches the current registration table.
	FetchRegistration(ctx context.Context, cookie string) (*RegistrationData, error)

	// FetchMajor reads the major from the profile page.
	FetchMajor(ctx context.Context, cookie string) (string, error)
}

// SyncLocker serializes syncs per student.
type SyncLocker interface {
	// Acquire returns shared.ErrSyncInProgress when the lock is held.
	Acquire(ctx context.Context, mssv string) (release func(), err error)
}

// LedgerCache is the read-through cache in front of the ledger store.
type LedgerCache interface {
	Get(ctx context.Context, mssv string) (*ledger.Ledger, error)
	Set(ctx context.Context, l *ledger.Ledger) error
	Invalidate(ctx context.Context, mssv string) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SyncLedgerHandler handles the SyncLedgerCommand.
type SyncLedgerHandler struct {
	ledgerRepo  ledger.Repository
	profileRepo student.Repository
	portal      PortalClient
	locker      SyncLocker
	cache       LedgerCache
	log         *logger.Logger

	// Configuration
	creditsRequired int
	now             func() time.Time
	newID           func() string
}

// SyncLedgerHandlerConfig contains configuration for the handler.
type SyncLedgerHandlerConfig struct {
	// CreditsRequired goes into the ledger progress block.
	CreditsRequired int

	// Now is the clock; nil uses time.Now.
	Now func() time.Time
}

// DefaultSyncLedgerHandlerConfig returns default configuration.
func DefaultSyncLedgerHandlerConfig() SyncLedgerHandlerConfig {
	return SyncLedgerHandlerConfig{
		CreditsRequired: 150,
		Now:             time.Now,
	}
}

// NewSyncLedgerHandler creates a new SyncLedgerHandler. cache may be nil.
func NewSyncLedgerHandler(
	ledgerRepo ledger.Repository,
	profileRepo student.Repository,
	portal PortalClient,
	locker SyncLocker,
	cache LedgerCache,
	log *logger.Logger,
	config SyncLedgerHandlerConfig,
) *SyncLedgerHandler {
	defaults := DefaultSyncLedgerHandlerConfig()
	if config.CreditsRequired <= 0 {
		config.CreditsRequired = defaults.CreditsRequired
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}
	if locker == nil {
		locker = NewLocalSyncLocker()
	}
	if log == nil {
		log = logger.Nop()
	}

	return &SyncLedgerHandler{
		ledgerRepo:      ledgerRepo,
		profileRepo:     profileRepo,
		portal:          portal,
		locker:          locker,
		cache:           cache,
		log:             log.With(logger.Component("sync_ledger")),
		creditsRequired: config.CreditsRequired,
		now:             config.Now,
		newID:           func() string { return uuid.NewString() },
	}
}

// Handle executes the sync ledger command.
func (h *SyncLedgerHandler) Handle(ctx context.Context, cmd SyncLedgerCommand) (*SyncLedgerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("sync_ledger: validation failed: %w", err)
	}
	mssv := strings.TrimSpace(cmd.MSSV)

	release, err := h.locker.Acquire(ctx, mssv)
	if err != nil {
		return nil, fmt.Errorf("sync_ledger: failed to acquire lock: %w", err)
	}
	defer release()

	syncID := h.newID()
	log := h.log.With(logger.MSSV(mssv), logger.SyncID(syncID))
	if cmd.CorrelationID != "" {
		log = log.With(logger.String("correlation_id", cmd.CorrelationID))
	}
	started := h.now()

	// Both pages are fetched concurrently. Nothing is written unless both
	// arrive: without the registration the stored in-progress semester
	// would be lost.
	var (
		page    *TranscriptData
		regPage *RegistrationData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = h.portal.FetchTranscript(gctx, mssv, cmd.Cookie)
		if err != nil {
			return fmt.Errorf("failed to fetch transcript: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		regPage, err = h.portal.FetchRegistration(gctx, cmd.Cookie)
		if err != nil {
			return shared.WrapError("ledger", "Sync", shared.ErrFetch, "failed to fetch registration", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sync_ledger: %w", err)
	}
	if page.StudentNumber != "" && page.StudentNumber != mssv {
		log.Warn("transcript student number differs from requested",
			logger.String("page_mssv", page.StudentNumber))
	}

	transcript := ledger.ParseTranscript(page.Rows)
	registration := ledger.ParseRegistration(regPage.Title, regPage.Rows)

	// An empty transcript with nothing registered would overwrite the stored
	// ledger with a single empty semester.
	if len(transcript.Semesters) == 0 && len(registration.Courses) == 0 {
		return nil, fmt.Errorf("sync_ledger: %w", shared.ErrTranscriptEmpty)
	}

	previous, err := h.ledgerRepo.FindByMSSV(ctx, mssv)
	if err != nil {
		if !shared.IsNotFound(err) {
			return nil, fmt.Errorf("sync_ledger: failed to load ledger: %w", err)
		}
		previous = nil
	}

	now := h.now().UTC()
	built := ledger.Assemble(ledger.AssembleParams{
		MSSV:            mssv,
		Transcript:      transcript,
		Registration:    &registration,
		Previous:        previous,
		CreditsRequired: h.creditsRequired,
		SyncID:          syncID,
		Now:             now,
	})
	if err := built.Ledger.Validate(); err != nil {
		return nil, fmt.Errorf("sync_ledger: built ledger is invalid: %w", err)
	}

	for _, c := range built.Conflicts {
		log.Warn("registered course missing from prior record",
			logger.Semester(c.Label), logger.CourseCode(c.Code))
	}

	if err := h.ledgerRepo.Upsert(ctx, built.Ledger); err != nil {
		return nil, fmt.Errorf("sync_ledger: failed to save ledger: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, mssv); err != nil {
			log.Warn("failed to invalidate ledger cache", logger.Err(err))
		}
	}

	profile := h.syncProfile(ctx, log, mssv, cmd, page, now)

	result := &SyncLedgerResult{
		SyncID:         syncID,
		Ledger:         built.Ledger,
		Profile:        profile,
		Totals:         transcript.Totals,
		Conflicts:      built.Conflicts,
		SkippedRows:    transcript.Skipped,
		DroppedLabRows: registration.DroppedLabRows,
		SyncedAt:       now,
	}

	log.Info("ledger synced",
		logger.Count("semesters", len(built.Ledger.Records)),
		logger.Credits("credits_taken", built.Ledger.Summary.TotalCreditsTaken),
		logger.Count("conflicts", len(built.Conflicts)),
		logger.Count("skipped_rows", transcript.Skipped),
		logger.Bool("first_sync", previous == nil),
		logger.Latency(h.now().Sub(started)),
	)

	return result, nil
}

// syncProfile refreshes the stored profile. Failures are logged only: the
// ledger is already persisted at this point.
func (h *SyncLedgerHandler) syncProfile(
	ctx context.Context,
	log *logger.Logger,
	mssv string,
	cmd SyncLedgerCommand,
	page *TranscriptData,
	now time.Time,
) *student.Profile {
	major := strings.TrimSpace(cmd.Major)
	if major == "" {
		m, err := h.portal.FetchMajor(ctx, cmd.Cookie)
		if err != nil {
			log.Warn("failed to read major from profile page", logger.Err(err))
		}
		major = m
	}

	fresh, err := student.NewProfile(student.NewProfileParams{
		MSSV:           mssv,
		FullName:       page.FullName,
		Gender:         page.Gender,
		BirthDate:      page.BirthDate,
		Class:          page.Class,
		Faculty:        page.Faculty,
		Major:          major,
		TrainingSystem: page.TrainingSystem,
		Now:            now,
	})
	if err != nil {
		log.Warn("failed to build profile", logger.Err(err))
		return nil
	}

	stored, err := h.profileRepo.FindByMSSV(ctx, mssv)
	switch {
	case err == nil:
		stored.Merge(fresh)
	case shared.IsNotFound(err):
		stored = fresh
	default:
		log.Warn("failed to load profile", logger.Err(err))
		return fresh
	}

	if err := h.profileRepo.Upsert(ctx, stored); err != nil {
		log.Warn("failed to save profile", logger.Err(err))
	}
	return stored
}
