package render

import (
	"errors"

	"bracketbuddy/internal/scatter"
)

// StagedSurface renders a frame first and publishes it only when commit runs.
type StagedSurface interface {
	scatter.Surface
	Stage(frame scatter.Frame) (commit func(), err error)
}

// Fanout draws every frame on each surface. Staged surfaces are committed only
// when every surface succeeded, so they never show a frame the chart rejected.
// Plain surfaces are drawn in order and cannot be rolled back.
type Fanout []scatter.Surface

func (f Fanout) Draw(frame scatter.Frame) error {
	var (
		errs    []error
		commits []func()
	)
	for _, s := range f {
		if s == nil {
			continue
		}
		if staged, ok := s.(StagedSurface); ok {
			commit, err := staged.Stage(frame)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			commits = append(commits, commit)
			continue
		}
		if err := s.Draw(frame); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, commit := range commits {
		commit()
	}
	return nil
}
