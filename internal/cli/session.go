package cli

import (
	"errors"
	"fmt"

	"github.com/lazypower/taskmgr/internal/config"
	"github.com/lazypower/taskmgr/internal/engine"
	"github.com/lazypower/taskmgr/internal/store"
	"github.com/lazypower/taskmgr/internal/task"
)

// clock is the time source for every command. Tests replace it.
var clock engine.Clock = engine.SystemClock{}

// ErrCommand marks failures of the requested command itself (bad ID, bad
// value) as opposed to load/save failures.
var ErrCommand = errors.New("command rejected")

// loadConfig resolves the config file from --config or the default path.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Default(), err
		}
	}
	return config.Load(path)
}

// openDB opens the task database. --db wins over $TASKMGR_DB, which wins over
// the config file.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := flagDB
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}

func newEngine() *engine.Engine {
	eng := engine.New(clock)
	eng.Verbose = flagVerbose
	return eng
}

// runSession loads the collection, brings urgencies up to date, sorts it and
// hands it to fn. The collection is saved afterwards even when fn fails, so
// the recompute is kept when the command itself is rejected. A recompute
// failure aborts before fn runs and nothing is saved.
func runSession(db *store.DB, eng *engine.Engine, fn func(tasks *task.Collection) error) error {
	tasks, err := db.Load()
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	if _, err := eng.Recompute(tasks); err != nil {
		return fmt.Errorf("recompute urgency: %w", err)
	}

	cmdErr := fn(&tasks)

	if err := db.Save(tasks); err != nil {
		return errors.Join(cmdErr, fmt.Errorf("save tasks: %w", err))
	}
	return cmdErr
}

// withTasks is the common command body: open config and store, then runSession.
func withTasks(fn func(tasks *task.Collection, cfg config.Config) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	return runSession(db, newEngine(), func(tasks *task.Collection) error {
		return fn(tasks, cfg)
	})
}

func commandError(errs ...error) error {
	err := errors.Join(errs...)
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCommand, err)
}
