package health

import "context"

// DBPinger checks attendance store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EncoderChecker checks face encoder availability.
type EncoderChecker interface {
	HealthCheck(ctx context.Context) error
}
