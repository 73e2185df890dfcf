package health

import (
	"context"
	"time"
)

const (
	StorageOK       = "ok"
	StorageDegraded = "degraded"
)

const defaultPingTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	OK      bool   `json:"ok"`
	Storage string `json:"storage"`
}

// Service encapsulates health-related checks.
type Service struct {
	Storage     Pinger
	PingTimeout time.Duration
}

// NewService constructs a new health service. A nil storage always reports ok.
func NewService(storage Pinger) *Service {
	return &Service{Storage: storage, PingTimeout: defaultPingTimeout}
}

// Check pings storage. The service stays up when storage is down, so OK is
// always true and the storage state is reported separately. The ping error
// is returned for logging.
func (s *Service) Check(ctx context.Context) (Status, error) {
	status := Status{OK: true, Storage: StorageOK}
	if s == nil || s.Storage == nil {
		return status, nil
	}
	timeout := s.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Storage.Ping(pingCtx); err != nil {
		status.Storage = StorageDegraded
		return status, err
	}
	return status, nil
}
