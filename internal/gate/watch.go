package gate

import (
	"context"
	"time"

	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/metrics"
)

// StatusSource is the request/response side of the status collaborator
type StatusSource interface {
	FetchStatus(ctx context.Context) (Status, error)
}

type StatusSourceFunc func(ctx context.Context) (Status, error)

func (f StatusSourceFunc) FetchStatus(ctx context.Context) (Status, error) {
	return f(ctx)
}

type WatchOptions struct {
	GracePeriod  time.Duration
	PollAttempts int
	PollInterval time.Duration
}

type ResolutionSource string

const (
	ResolutionPushed   ResolutionSource = "pushed"
	ResolutionFetched  ResolutionSource = "fetched"
	ResolutionTimeout  ResolutionSource = "timeout"
	ResolutionExternal ResolutionSource = "external"
	ResolutionCanceled ResolutionSource = "canceled"
)

// Resolution reports how Watch finished
type Resolution struct {
	Source   ResolutionSource
	Attempts int
	// LastErr is the last fetch failure, if any
	LastErr error
}

// Watch moves ev out of the Unknown state. It takes the first status pushed
// on updates. Once the grace period passes it also fetches from source up to
// PollAttempts times, PollInterval apart. When both are exhausted the policy
// default is applied. A nil updates channel or source disables that path.
func Watch(ctx context.Context, ev *Evaluator, updates <-chan Status, source StatusSource, opts WatchOptions) Resolution {
	res := watch(ctx, ev, updates, source, opts)
	metrics.RecordGateResolution(string(res.Source))
	return res
}

func watch(ctx context.Context, ev *Evaluator, updates <-chan Status, source StatusSource, opts WatchOptions) Resolution {
	var res Resolution

	wait := func(d time.Duration) (ResolutionSource, bool) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return ResolutionCanceled, true
			case <-ev.Done():
				return ResolutionExternal, true
			case st, ok := <-updates:
				if !ok {
					updates = nil
					continue
				}
				if ev.Resolve(st) {
					return ResolutionPushed, true
				}
				return ResolutionExternal, true
			case <-timer.C:
				return "", false
			}
		}
	}

	if src, done := wait(opts.GracePeriod); done {
		res.Source = src
		return res
	}

	for i := 0; i < opts.PollAttempts; i++ {
		if source != nil {
			res.Attempts++
			st, err := source.FetchStatus(ctx)
			if err == nil {
				if ev.Resolve(st) {
					res.Source = ResolutionFetched
				} else {
					res.Source = ResolutionExternal
				}
				return res
			}
			res.LastErr = err
		}

		if src, done := wait(opts.PollInterval); done {
			res.Source = src
			return res
		}
	}

	if ctx.Err() != nil {
		res.Source = ResolutionCanceled
		return res
	}
	if ev.Resolve(AssumedStatus(ev.Policy())) {
		res.Source = ResolutionTimeout
	} else {
		res.Source = ResolutionExternal
	}
	return res
}

func WatchOptionsFromConfig(cfg *config.Configuration) WatchOptions {
	return WatchOptions{
		GracePeriod:  cfg.Gate.GracePeriod,
		PollAttempts: cfg.Gate.PollAttempts,
		PollInterval: cfg.Gate.PollInterval,
	}
}
