package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stagewire/cuemesh/internal/console"
	"github.com/stagewire/cuemesh/internal/fleet"
	"github.com/stagewire/cuemesh/internal/transport"
)

// Run bootstraps the show and drives the periodic tasks until the context
// ends, the console closes or a task fails. A console close returns nil;
// a task failure is recorded to the error log before it is returned.
func (s *Server) Run(ctx context.Context, con *console.Console) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				select {
				case errCh <- fmt.Errorf("%s: %w", name, err):
				default:
				}
			}
		}()
	}

	start("bootstrap", s.bootstrap)
	start("heartbeat", s.heartbeatTask)
	start("attributes", s.attributesTask)
	start("states", s.statesTask)
	start("current-cues", s.currentCuesTask)
	start("node-poll", s.nodePollTask)
	start("staleness", s.stalenessTask)
	if s.monitor != nil {
		start("monitor", s.monitorTask)
	}

	// The console is not in the wait group: its Run blocks on a stdin
	// read that cancellation cannot interrupt.
	go func() {
		if err := con.Run(ctx); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if errors.Is(err, console.ErrClosed) {
			s.log.Info("console closed, shutting down")
		} else {
			s.log.Error("task failed", "error", err)
			s.recordTaskError(err)
			runErr = err
		}
	}

	cancel()
	wg.Wait()
	return runErr
}

// recordTaskError writes a fatal task error to the deduplicated error
// log with a short fresh context, best effort.
func (s *Server) recordTaskError(err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if logErr := s.errlog.Record(ctx, err.Error(), err.Error(), "task"); logErr != nil {
		s.log.Warn("recording task error failed", "error", logErr)
	}
}

// every runs fn on a fixed tick until the context ends or fn fails.
// When waitSetup is set the first tick is gated on the bootstrap barrier.
func (s *Server) every(ctx context.Context, interval time.Duration, waitSetup bool, fn func(context.Context) error) error {
	if waitSetup {
		if err := s.waitSetup(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				return err
			}
		}
	}
}

// heartbeatTask broadcasts the server clock. It does not wait for the
// bootstrap barrier: nodes use the heartbeat to detect the server, and
// that should work even while a large show is still loading.
func (s *Server) heartbeatTask(ctx context.Context) error {
	return s.every(ctx, s.cfg.GetHeartbeatInterval(), false, func(ctx context.Context) error {
		return s.bus.Send(ctx, transport.ChannelHeartbeat, time.Now())
	})
}

// attributesTask broadcasts the node identity table.
func (s *Server) attributesTask(ctx context.Context) error {
	return s.every(ctx, s.cfg.GetAttributesInterval(), true, func(ctx context.Context) error {
		return s.bus.Send(ctx, transport.ChannelAttributes, s.model.Attributes())
	})
}

// statesTask broadcasts the cue state vocabulary on the cue-to-node
// channel so nodes can map cue states to their own behaviour.
func (s *Server) statesTask(ctx context.Context) error {
	return s.every(ctx, s.cfg.GetStatesInterval(), true, func(ctx context.Context) error {
		return s.bus.Send(ctx, transport.ChannelCueToNode, s.model.States())
	})
}

// currentCuesTask broadcasts the active group's cues. This is the hot
// path of the whole system: nodes follow the show by watching this
// channel, so it runs on the tightest interval.
func (s *Server) currentCuesTask(ctx context.Context) error {
	return s.every(ctx, s.cfg.GetCurrentCuesInterval(), true, func(ctx context.Context) error {
		return s.bus.Send(ctx, transport.ChannelCurrentCues, s.nav.Snapshot().Cues())
	})
}

// nodePollTask drains node reports from the mesh and folds them into the
// status table. Reports for cues outside the current snapshot are
// dropped by ApplyReports; decode failures are dropped by the transport.
func (s *Server) nodePollTask(ctx context.Context) error {
	return s.every(ctx, s.cfg.GetNodePollInterval(), true, func(ctx context.Context) error {
		records := s.bus.Receive(ctx, transport.ChannelNodeReport)
		if len(records) == 0 {
			return nil
		}

		reports := make([]fleet.Report, 0, len(records))
		for _, rec := range records {
			switch v := rec.(type) {
			case fleet.Report:
				reports = append(reports, v)
			case []fleet.Report:
				reports = append(reports, v...)
			default:
				s.log.Debug("unexpected node report payload", "type", fmt.Sprintf("%T", rec))
			}
		}

		applied := s.status.ApplyReports(reports)
		if applied > 0 {
			s.status.RefreshStaleness(time.Now())
		}

		if s.telemetry != nil {
			for _, r := range reports {
				s.telemetry.WriteNodeReport(r.NodeNumber, r.CueNumber, r.NodeState, r.Timestamp)
			}
		}
		return nil
	})
}

// stalenessTask re-derives the last-updated display for every row so
// ages keep ticking even when no reports arrive.
func (s *Server) stalenessTask(ctx context.Context) error {
	return s.every(ctx, s.cfg.GetStalenessInterval(), true, func(ctx context.Context) error {
		s.status.RefreshStaleness(time.Now())
		return nil
	})
}

// monitorTask mirrors the live state to MQTT. A publish failure is not
// fatal: the broker may be briefly away and the next tick retries.
func (s *Server) monitorTask(ctx context.Context) error {
	return s.every(ctx, s.cfg.GetMonitorInterval(), true, func(ctx context.Context) error {
		err := s.monitor.PublishState(s.nav.Snapshot(), s.status.Rows(), s.nav.Current(), s.nav.MaxGroup())
		if err != nil {
			s.log.Debug("monitor publish skipped", "error", err)
		}
		return nil
	})
}
