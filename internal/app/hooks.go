package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayusman/handgraph/internal/interact"
	"github.com/ayusman/handgraph/internal/plugin"
	"github.com/ayusman/handgraph/internal/store"
)

// eventsOf extracts the journaled interactions from a command batch.
func eventsOf(cmds []interact.Command) []store.Event {
	var events []store.Event
	for _, c := range cmds {
		switch c := c.(type) {
		case interact.PinNode:
			if c.Grab {
				events = append(events, store.Event{Kind: store.EventGrab, NodeID: int(c.Node)})
			}
		case interact.UnpinNode:
			events = append(events, store.Event{Kind: store.EventRelease, NodeID: int(c.Node)})
		case interact.Activate:
			events = append(events, store.Event{Kind: store.EventActivate, NodeID: int(c.Node)})
		case interact.SetVelocity:
			// The release toss speed belongs to the preceding release.
			if n := len(events); n > 0 && events[n-1].Kind == store.EventRelease && events[n-1].NodeID == int(c.Node) {
				events[n-1].Detail = fmt.Sprintf("velocity %.1f %.1f %.1f", c.Velocity.X, c.Velocity.Y, c.Velocity.Z)
			}
		}
	}
	return events
}

// journal records interactions and starts their hooks. Called with tick
// held.
func (a *App) journal(cmds []interact.Command) {
	for _, e := range eventsOf(cmds) {
		if data, ok := a.graph.Node(interact.NodeID(e.NodeID)); ok {
			e.NodeKey = data.ID
			e.NodeTitle = data.Title
		}
		e.CreatedAt = a.cfg.Clock.Now()

		a.log.Debug("interaction",
			zap.String("kind", string(e.Kind)),
			zap.Int("node", e.NodeID),
			zap.String("title", e.NodeTitle))

		if a.cfg.Store == nil {
			continue
		}
		if err := a.cfg.Store.Events().Record(&e); err != nil {
			a.log.Warn("record interaction", zap.Error(err))
		}
		a.runHooks(e)
	}
}

// runHooks starts every enabled hook bound to the event's kind. Hooks run
// in their own goroutines and never block the tick.
func (a *App) runHooks(e store.Event) {
	if a.cfg.Plugins == nil {
		return
	}

	hooks, err := a.cfg.Store.Hooks().ForEvent(e.Kind)
	if err != nil {
		a.log.Warn("load hooks", zap.Error(err))
		return
	}

	var status string
	if data, ok := a.graph.Node(interact.NodeID(e.NodeID)); ok {
		status = data.Status
	}

	for _, h := range hooks {
		p, err := a.cfg.Plugins.Resolve(h.PluginName, h.ActionName)
		if err != nil {
			a.log.Warn("hook skipped",
				zap.String("hook", h.ID),
				zap.String("plugin", h.PluginName),
				zap.String("action", h.ActionName),
				zap.Error(err))
			continue
		}

		req := &plugin.Request{
			Action: h.ActionName,
			Event:  string(e.Kind),
			Node: plugin.Node{
				ID:     e.NodeID,
				Key:    e.NodeKey,
				Title:  e.NodeTitle,
				Status: status,
			},
			Config: h.Config,
		}

		ctx, ok := a.hookStarted()
		if !ok {
			a.log.Debug("app stopped, hook dropped", zap.String("hook", h.ID))
			return
		}
		go func(hookID string) {
			defer a.hooks.Done()

			resp, err := a.cfg.Executor.Execute(ctx, p, req)
			switch {
			case err != nil:
				a.log.Warn("hook failed", zap.String("hook", hookID), zap.Error(err))
			case !resp.Success:
				a.log.Warn("hook reported failure", zap.String("hook", hookID), zap.String("error", resp.Error))
			default:
				a.log.Debug("hook ran", zap.String("hook", hookID), zap.String("plugin", p.Manifest.Name))
			}
		}(h.ID)
	}
}

// hookStarted registers a hook goroutine unless the app is stopping and
// returns the context the hook runs under.
func (a *App) hookStarted() (context.Context, bool) {
	a.hookMu.Lock()
	defer a.hookMu.Unlock()
	if a.hookCtx.Err() != nil {
		return nil, false
	}
	a.hooks.Add(1)
	return a.hookCtx, true
}
