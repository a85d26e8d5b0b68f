// Package sweep returns completed recurring tasks to the board when their
// rule says they are due again.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pvieira/tarefinha/internal/push"
	"github.com/pvieira/tarefinha/internal/recurrence"
	"github.com/pvieira/tarefinha/internal/store"
	"github.com/pvieira/tarefinha/internal/week"
	"github.com/pvieira/tarefinha/internal/websocket"
)

// Sweeper scans completed tasks and resets the ones whose recurrence rule is
// due. Runs are idempotent: the store's status guard means a task reset by an
// overlapping run is simply skipped.
type Sweeper struct {
	tasks    *store.TaskStore
	settings *store.SettingsStore
	hub      *websocket.Hub
	push     *push.Service
	logger   *slog.Logger
}

func New(tasks *store.TaskStore, settings *store.SettingsStore, hub *websocket.Hub, pushSvc *push.Service, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		tasks:    tasks,
		settings: settings,
		hub:      hub,
		push:     pushSvc,
		logger:   logger.With("component", "sweep"),
	}
}

// Run resets every done task whose rule is due as of now, evaluated in the
// household timezone. Returns how many tasks were reset. A failure on one
// task does not stop the rest.
func (s *Sweeper) Run(now time.Time) int {
	local := now.In(s.settings.Timezone())

	done, err := s.tasks.ListDone()
	if err != nil {
		s.logger.Error("list done tasks", "error", err)
		return 0
	}

	var reset int
	var titles []string
	for _, t := range done {
		rule, err := recurrence.Parse(t.RecurrenceRule)
		if err != nil {
			s.logger.Warn("bad recurrence rule", "task_id", t.ID, "rule", t.RecurrenceRule)
			continue
		}
		if !rule.ShouldReset(t.LastResetAt, local) {
			continue
		}

		ok, err := s.tasks.Reset(t.ID, now)
		if err != nil {
			s.logger.Error("reset task", "task_id", t.ID, "error", err)
			continue
		}
		if !ok {
			// Another run got there first.
			continue
		}

		reset++
		titles = append(titles, t.Emoji+" "+t.Title)
		if s.hub != nil {
			s.hub.Broadcast(websocket.NewMessage("task", "reset", t.ID, nil))
		}
	}

	if reset > 0 {
		s.logger.Info("sweep complete", "reset", reset)
		s.notify(titles)
	}
	return reset
}

func (s *Sweeper) notify(titles []string) {
	if s.push == nil || !s.push.Enabled() {
		return
	}
	body := fmt.Sprintf("%d tarefas voltaram para o quadro", len(titles))
	if len(titles) == 1 {
		body = titles[0] + " voltou para o quadro"
	}
	s.push.Broadcast(push.Payload{
		Title: "Hora das tarefas",
		Body:  body,
		URL:   "/",
		Tag:   "task-reset",
	})
}

// DigestFunc is called with the just-finished week when the scheduler
// observes an ISO week rollover.
type DigestFunc func(weekStr string)

// Scheduler runs the sweeper on a fixed interval and fires the weekly digest
// once per week rollover.
type Scheduler struct {
	mu       sync.RWMutex
	sweeper  *Sweeper
	settings *store.SettingsStore
	digest   DigestFunc
	interval time.Duration
	lastWeek string
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(sweeper *Sweeper, settings *store.SettingsStore, digest DigestFunc) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		settings: settings,
		digest:   digest,
		interval: time.Hour,
	}
}

// Start begins the scheduler loop. The first sweep runs immediately so a
// server that was down over a reset boundary catches up on boot.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.lastWeek = week.Of(time.Now().In(s.settings.Timezone()))
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.tick()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	now := time.Now()
	s.sweeper.Run(now)

	cur := week.Of(now.In(s.settings.Timezone()))
	s.mu.Lock()
	prev := s.lastWeek
	s.lastWeek = cur
	s.mu.Unlock()

	if s.digest != nil && prev != "" && prev != cur {
		s.digest(prev)
	}
}
