package script

import (
	"context"
	"errors"
	"fmt"

	"wizmind/action"
	"wizmind/process"
	"wizmind/runlog"
	"wizmind/telemetry"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var ErrResetFailed = errors.New("self destructing the run failed")

// recoverable errors leave the game somewhere unexpected; a fresh run
// fixes them
var recoverable = []error{
	action.ErrTimeout,
	action.ErrHackNotReady,
	action.ErrHackPopupClose,
	action.ErrNoGarrisonOpening,
	process.ErrShortRead,
	process.ErrAddressNotMapped,
}

// Recoverable reports whether a script failing with err can be retried
// after a reset
func Recoverable(err error) bool {
	for _, target := range recoverable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Result counts the passes of one Runner.Run
type Result struct {
	Completed int
	Failed    int
}

type Runner struct {
	c     *action.Controller
	store *runlog.Store
	log   *logger.Logger
}

func NewRunner(c *action.Controller, store *runlog.Store) *Runner {
	return &Runner{
		c:     c,
		store: store,
		log:   logger.NewLogger(coloransi.Color(coloransi.Green, coloransi.Black, "script")),
	}
}

// Run repeats s until runs passes completed, forever when runs is 0, or
// until ctx is done. Every pass ends with a self destruct. A pass failing
// with a recoverable error is recorded as failed and the game reset; any
// other error, or a reset that does not land on the Scrapyard, stops the
// runner.
func (r *Runner) Run(ctx context.Context, s Script, runs int) (Result, error) {
	var result Result

	if err := r.c.CloseMenus(); err != nil {
		return result, err
	}

	for runs <= 0 || result.Completed < runs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		run, err := r.store.Start(s.Name())
		if err != nil {
			return result, err
		}

		rec := Record{}
		if err := s.Run(r.c, rec); err != nil {
			result.Failed++
			if ferr := r.store.Fail(run.ID, err); ferr != nil {
				return result, ferr
			}
			if !Recoverable(err) {
				return result, fmt.Errorf("%s run %d: %w", s.Name(), run.Number, err)
			}
			r.log.Warn("Run ", run.Number, " of ", s.Name(), " failed, resetting: ", err)
			if err := r.reset(); err != nil {
				return result, err
			}
			continue
		}

		for kind, counts := range rec {
			if err := r.store.RecordCounts(run.ID, kind, counts); err != nil {
				return result, err
			}
		}
		if err := r.store.Finish(run.ID); err != nil {
			return result, err
		}
		result.Completed++
		r.log.Infoln("Run", run.Number, "of", s.Name(), "done,", result.Completed, "completed this session")

		if err := r.c.SelfDestruct(); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *Runner) reset() error {
	if err := r.c.CloseMenus(); err != nil {
		return err
	}
	if err := r.c.SelfDestruct(); err != nil {
		return err
	}
	mapType, _, err := r.c.Location()
	if err != nil {
		return err
	}
	if mapType != telemetry.MapYRD {
		return fmt.Errorf("%w: on %s", ErrResetFailed, mapType)
	}
	return nil
}
