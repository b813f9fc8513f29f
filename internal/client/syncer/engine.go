// Package syncer pushes locally queued profile edits to the remote store.
//
// Conflicts are resolved last-writer-wins on UpdatedAt, which is wall-clock
// milliseconds taken on the writing device. Clock skew between devices can
// therefore pick the wrong writer; there is no server-side sequencing.
// When the remote copy is newer the local edit is dropped without telling
// the user. The drop is logged at warn level and the local copy is replaced
// by the remote one.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/pubsub"
)

// Engine drains pending profile records. At most one Run is active at a
// time; overlapping calls return immediately.
type Engine struct {
	profiles profiles.Repository
	metadata metadata.Repository
	remote   client.RemoteStore
	clock    clock.Clock
	logger   logging.Logger

	running atomic.Bool
	status  *pubsub.Topic[models.SyncStatus]
}

func NewEngine(p profiles.Repository, m metadata.Repository, remote client.RemoteStore, clk clock.Clock, logger logging.Logger) *Engine {
	if clk == nil {
		clk = clock.Real()
	}
	return &Engine{
		profiles: p,
		metadata: m,
		remote:   remote,
		clock:    clk,
		logger:   logging.OrDiscard(logger).With("module", "sync"),
		status:   pubsub.NewTopic(models.SyncStatus{}),
	}
}

func (e *Engine) Subscribe() *pubsub.Subscription[models.SyncStatus] {
	return e.status.Subscribe()
}

func (e *Engine) Unsubscribe(s *pubsub.Subscription[models.SyncStatus]) {
	e.status.Unsubscribe(s)
}

// Status returns the last broadcast status.
func (e *Engine) Status() models.SyncStatus {
	return e.status.Current()
}

// Running reports whether a run is in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	return e.profiles.CountPending(ctx)
}

// Refresh broadcasts an idle status with the stored last sync time and the
// current pending count. It does nothing while a run is in flight.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.running.Load() {
		return nil
	}
	n, err := e.profiles.CountPending(ctx)
	if err != nil {
		return err
	}
	e.status.Publish(models.SyncStatus{
		LastSyncTime: e.lastSync(ctx),
		PendingCount: n,
	})
	return nil
}

func (e *Engine) lastSync(ctx context.Context) *time.Time {
	if cur := e.status.Current().LastSyncTime; cur != nil {
		return cur
	}
	t, err := e.metadata.LastSync(ctx)
	if err != nil {
		e.logger.Warn(ctx, "reading last sync time failed", "error", err)
		return nil
	}
	return t
}

// Run pushes every pending record once. Records are handled one at a time in
// fetch order and a failing record does not stop the others. The returned
// error is also broadcast in the final status.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		e.logger.Debug(ctx, "sync already running")
		return nil
	}
	defer e.running.Store(false)

	prev := e.status.Current()
	last := e.lastSync(ctx)
	e.status.Publish(models.SyncStatus{IsSyncing: true, LastSyncTime: last, PendingCount: prev.PendingCount})

	pending, err := e.profiles.GetAllPending(ctx)
	if err != nil {
		return e.finish(ctx, last, fmt.Errorf("fetch pending: %w", err))
	}
	e.logger.Info(ctx, "sync started", "pending", len(pending))

	var errs []error
	for i := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		rec := &pending[i]
		if err := e.syncRecord(ctx, rec); err != nil {
			e.logger.Error(ctx, "profile sync failed", "user_id", rec.UserID, "error", err)
			errs = append(errs, fmt.Errorf("profile %s: %w", rec.UserID, err))
		}
	}

	return e.finish(ctx, last, errors.Join(errs...))
}

func (e *Engine) syncRecord(ctx context.Context, rec *models.ProfileRecord) error {
	local := &models.RemoteProfile{UserID: rec.UserID, Fields: rec.Fields, UpdatedAt: rec.UpdatedAt}

	remote, err := e.remote.GetProfile(ctx, rec.UserID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		if err := e.remote.InsertProfile(ctx, local); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		remote = nil
	case err != nil:
		return fmt.Errorf("fetch remote: %w", err)
	case rec.UpdatedAt > remote.UpdatedAt:
		if err := e.remote.UpdateProfile(ctx, rec.UserID, local); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		remote = nil
	default:
		e.logger.Warn(ctx, "remote profile is newer; local edit discarded",
			"user_id", rec.UserID, "local_updated_at", rec.UpdatedAt, "remote_updated_at", remote.UpdatedAt)
	}

	cleared, err := e.profiles.MarkSynced(ctx, rec.LocalID, rec.UpdatedAt)
	if err != nil {
		return err
	}
	if !cleared {
		e.logger.Debug(ctx, "profile edited during sync; stays pending", "user_id", rec.UserID)
		return nil
	}

	if remote != nil {
		if _, err := e.profiles.ApplyRemote(ctx, remote); err != nil {
			e.logger.Warn(ctx, "adopting remote profile failed", "user_id", rec.UserID, "error", err)
		}
	}
	return nil
}

func (e *Engine) finish(ctx context.Context, last *time.Time, runErr error) error {
	n, err := e.profiles.CountPending(ctx)
	if err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("count pending: %w", err))
	}

	st := models.SyncStatus{PendingCount: n, LastSyncTime: last, Err: runErr}
	if runErr == nil {
		now := e.clock.Now().UTC()
		st.LastSyncTime = &now
		if err := e.metadata.SetLastSync(ctx, now); err != nil {
			e.logger.Warn(ctx, "storing last sync time failed", "error", err)
		}
		e.logger.Info(ctx, "sync finished", "pending", n)
	} else {
		e.logger.Warn(ctx, "sync finished with errors", "pending", n, "error", runErr)
	}

	e.status.Publish(st)
	return runErr
}
