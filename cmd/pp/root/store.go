package root

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"petprogress/internal/config"
	"petprogress/internal/engine"
	"petprogress/internal/storage"
	"petprogress/internal/timekey"
)

// openService wires the core: env config, shared state store, stage table,
// history journal, and an event sink that logs state warnings. The journal is
// optional; failing to open it degrades to warnings instead of blocking the
// command.
func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	dir := cfg.DataDir
	if dir == "" {
		dir, err = storage.DefaultDataDir()
		if err != nil {
			return nil, nil, err
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewStore(dir)
	if err != nil {
		return nil, nil, err
	}

	stages, err := engine.LoadStages(cfg.StageConfig)
	if err != nil {
		return nil, nil, err
	}

	var journal *storage.Journal
	if cfg.Journal {
		journal, err = storage.OpenJournal(ctx, dir)
		if err != nil {
			log.Warn("history journal unavailable", "err", err)
			journal = nil
		}
	}

	sink := engine.SinkFunc(func(e engine.Event) {
		switch e.Kind {
		case engine.EventStateReset:
			log.Warn("state file was corrupt; starting from a fresh state", "day", e.DayKey)
		case engine.EventStageChanged:
			log.Info("pet stage changed", "from", e.StageFrom, "to", e.StageTo)
		}
	})

	svc := engine.NewService(store, stages, engine.ServiceConfig{
		Journal:       journal,
		Location:      loc,
		Sink:          sink,
		SnoozeMinutes: cfg.SnoozeMinutes,
	})

	cleanup := func() {
		if journal != nil {
			_ = journal.Close()
		}
	}
	return svc, cleanup, nil
}

// resolveDayKey validates an explicit --day flag or falls back to the
// effective current day.
func resolveDayKey(svc *engine.Service, arg string) (string, error) {
	if arg == "" {
		return svc.TodayKey()
	}
	if _, err := timekey.ParseDayKey(arg, svc.Location()); err != nil {
		return "", err
	}
	return arg, nil
}

// reportJournalErr downgrades journal failures to a warning: the state change
// itself already landed.
func reportJournalErr(err error) error {
	var jerr engine.JournalError
	if errors.As(err, &jerr) {
		log.Warn("state saved but history journal write failed", "err", jerr.Err)
		return nil
	}
	return err
}
