package roam

import (
	"database/sql"
	"log/slog"

	"github.com/jpelkonen/roam/internal/coordinator"
	"github.com/jpelkonen/roam/internal/journal"
	"github.com/jpelkonen/roam/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Coordinator       = api.Coordinator
	Config            = api.Config
	Phase             = api.Phase
	State             = api.State
	MetricsSnapshot   = api.MetricsSnapshot
	CleanupFunc       = api.CleanupFunc
	CleanupOutcome    = api.CleanupOutcome
	CleanupSummary    = api.CleanupSummary
	AbortToken        = api.AbortToken
	Media             = api.Media
	Listener          = api.Listener
	Observer          = api.Observer
	NoopObserver      = api.NoopObserver
	CompositeObserver = api.CompositeObserver
	LoggingObserver   = api.LoggingObserver
	LifecycleAdapter  = api.LifecycleAdapter
	NoopAdapter       = api.NoopAdapter
	ManualAdapter     = api.ManualAdapter
	Journal           = journal.Journal
	JournalRecord     = journal.Record
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export phase values for convenience.

const (
	PhaseIdle          = api.PhaseIdle
	PhasePreparing     = api.PhasePreparing
	PhaseTransitioning = api.PhaseTransitioning
)

// Constructors
// These wrap the internal packages so external callers never need to
// import them.

// New returns a Coordinator with default configuration: no logging, no
// observer, no lifecycle signals.
func New() Coordinator {
	return coordinator.New(Config{})
}

// NewWithConfig returns a Coordinator built from cfg. Unset fields fall
// back to their defaults.
func NewWithConfig(cfg Config) Coordinator {
	return coordinator.New(cfg)
}

// NewWithObserver returns a default-configured Coordinator with the
// given Observer attached.
func NewWithObserver(obs Observer) Coordinator {
	return coordinator.New(Config{Observer: obs})
}

// NewSQLiteJournal returns an Observer that records completed
// navigations and force-unlocks in a SQLite table.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:roam.db?_journal=WAL")
//	jnl, err := roam.NewSQLiteJournal(db, nil)
//	nav := roam.NewWithObserver(jnl)
func NewSQLiteJournal(db *sql.DB, logger *slog.Logger) (*Journal, error) {
	return journal.New(db, logger)
}
