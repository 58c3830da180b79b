package schedule

import (
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-pipeline"
	"gopkg.in/yaml.v3"
)

// ScheduleSet is the declarative form of a set of scheduled pipeline runs.
// It configures when already assembled pipelines execute; it does not
// describe or serialize the pipelines themselves.
type ScheduleSet struct {
	Schedules []ScheduleConfig `yaml:"schedules" json:"schedules"`
}

// ScheduleConfig describes one scheduled run of a named pipeline target.
// Exactly one of Expression or Every must be set.
type ScheduleConfig struct {
	Name       string `yaml:"name" json:"name"`
	Pipeline   string `yaml:"pipeline" json:"pipeline"`
	Expression string `yaml:"expression,omitempty" json:"expression,omitempty"`
	Every      string `yaml:"every,omitempty" json:"every,omitempty"`
	MaxRuns    int    `yaml:"max_runs,omitempty" json:"max_runs,omitempty"`
	RunOnce    bool   `yaml:"run_once,omitempty" json:"run_once,omitempty"`
	Disabled   bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// Target binds an assembled pipeline to the context factory used per run.
type Target struct {
	Pipeline *pipeline.Pipeline
	Factory  ContextFactory
}

// ParseScheduleSet attempts to parse JSON or YAML into a ScheduleSet.
func ParseScheduleSet(data []byte) (ScheduleSet, error) {
	var set ScheduleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		// yaml can handle JSON too, so a single attempt is fine
		return set, err
	}
	return set, set.Validate()
}

// Validate checks the schedule set for structural problems, joining every
// violation into the returned error.
func (s ScheduleSet) Validate() error {
	var errs error
	seen := make(map[string]bool, len(s.Schedules))

	for i, cfg := range s.Schedules {
		label := cfg.Name
		if label == "" {
			label = fmt.Sprintf("schedule[%d]", i)
			errs = errors.Join(errs, validationError("%s: name is required", label))
		}

		if cfg.Name != "" && seen[cfg.Name] {
			errs = errors.Join(errs, validationError("%s: duplicate schedule name", label))
		}
		seen[cfg.Name] = true

		if cfg.Pipeline == "" {
			errs = errors.Join(errs, validationError("%s: pipeline is required", label))
		}

		switch {
		case cfg.Expression == "" && cfg.Every == "":
			errs = errors.Join(errs, validationError("%s: expression or every is required", label))
		case cfg.Expression != "" && cfg.Every != "":
			errs = errors.Join(errs, validationError("%s: expression and every are mutually exclusive", label))
		case cfg.Every != "":
			if _, err := time.ParseDuration(cfg.Every); err != nil {
				errs = errors.Join(errs, validationError("%s: invalid every duration %q", label, cfg.Every))
			}
		}
	}

	return errs
}

// ApplySet schedules every enabled entry against the named targets,
// returning the created handles keyed by schedule name.
func (s *Scheduler) ApplySet(set ScheduleSet, targets map[string]Target) (map[string]Handle, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	handles := make(map[string]Handle)
	for _, cfg := range set.Schedules {
		if cfg.Disabled {
			continue
		}

		target, ok := targets[cfg.Pipeline]
		if !ok {
			return nil, errors.New(
				fmt.Sprintf("schedule %q references unknown pipeline %q", cfg.Name, cfg.Pipeline),
				errors.CategoryBadInput,
			).WithTextCode("UNKNOWN_PIPELINE")
		}

		run := RunConfig{
			Expression: cfg.Expression,
			MaxRuns:    cfg.MaxRuns,
			RunOnce:    cfg.RunOnce,
		}

		var handle Handle
		var err error
		if cfg.Every != "" {
			interval, _ := time.ParseDuration(cfg.Every)
			handle, err = s.ScheduleEvery(interval, run, target.Pipeline, target.Factory)
		} else {
			handle, err = s.ScheduleCron(run, target.Pipeline, target.Factory)
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput,
				fmt.Sprintf("failed to apply schedule %q", cfg.Name))
		}
		handles[cfg.Name] = handle
	}

	return handles, nil
}

func validationError(format string, args ...any) error {
	return errors.New(fmt.Sprintf(format, args...), errors.CategoryValidation).
		WithTextCode("INVALID_SCHEDULE")
}
