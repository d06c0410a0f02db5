package board

import (
	"time"

	"github.com/rs/zerolog"

	"taskboard/internal/service"
)

// Option configures a Store.
type Option func(*Store)

// WithRemote mirrors every mutation to svc.
func WithRemote(svc service.Service) Option {
	return func(s *Store) { s.remote = svc }
}

// WithPolicy sets the sync policy. Without it the store uses PolicyRemote
// when a remote is configured and PolicyLocal otherwise.
func WithPolicy(p Policy) Option {
	return func(s *Store) { s.policy = p }
}

// WithClock overrides the time source used for IDs and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used to report sync failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithHistoryPruning makes DeleteTask drop history entries that quote the
// deleted task's text. Deleting an unknown ID becomes a silent no-op and a
// delete is not followed by a refresh.
func WithHistoryPruning(enabled bool) Option {
	return func(s *Store) { s.pruneHistory = enabled }
}

// WithRemoteReset makes Reset also clear the remote. By default Reset only
// clears local state.
func WithRemoteReset(enabled bool) Option {
	return func(s *Store) { s.resetRemote = enabled }
}
