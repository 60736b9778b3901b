package usecase

import (
	"context"
	"time"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// Pinger is anything whose liveness can be probed; *pgxpool.Pool qualifies.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthUsecase struct {
	checks map[string]Pinger
}

// NewHealthUsecase probes each named dependency; nil entries are skipped.
func NewHealthUsecase(checks map[string]Pinger) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	result := map[string]string{"status": "ok"}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	for name, p := range u.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			result[name] = "down"
			result["status"] = "degraded"
			continue
		}
		result[name] = "up"
	}
	return result
}
