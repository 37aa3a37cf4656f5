// Package interaction routes chat platform interactions to wake actions.
//
// A command invocation posts a confirmation control; activating the launch
// control broadcasts the magic packet and then acknowledges the interaction.
// Every event is handled independently and its failures stay local to it.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fgeck/wolbridge/internal/metrics"
	"github.com/fgeck/wolbridge/internal/models"
	"github.com/fgeck/wolbridge/internal/services/ssh"
	"github.com/fgeck/wolbridge/internal/services/telegram"
	"github.com/fgeck/wolbridge/internal/services/wol"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

// Static control tokens shared by every posted control.
const (
	LaunchToken   = "button_launch"
	ShutdownToken = "button_shutdown"
)

const (
	defaultPrompt  = "Launch PC button"
	launchLabel    = "Launch!"
	shutdownLabel  = "Shut down"
	failureMessage = "The wake packet could not be sent. Check the bridge logs."
)

// Platform is the subset of the chat platform API used by the router.
type Platform interface {
	PostControl(ctx context.Context, channelID string, msg models.ControlMessage) error
	Acknowledge(ctx context.Context, ev models.InteractionEvent, kind models.AckKind, content string) error
}

// Router dispatches interaction events. It holds only immutable
// configuration and collaborators, so Handle is safe for concurrent use.
type Router struct {
	cfg         models.RouterConfig
	platform    Platform
	wolSvc      wol.Service
	sshSvc      ssh.Service      // nil disables shutdown
	telegramSvc telegram.Service // nil disables notices
	target      string
	logger      zerolog.Logger
}

// New creates a router. sshSvc and telegramSvc may be nil.
func New(
	logger zerolog.Logger,
	cfg models.RouterConfig,
	platform Platform,
	wolSvc wol.Service,
	sshSvc ssh.Service,
	telegramSvc telegram.Service,
) *Router {
	if cfg.LaunchToken == "" {
		cfg.LaunchToken = LaunchToken
	}
	if cfg.Prompt == "" {
		cfg.Prompt = defaultPrompt
	}
	if sshSvc == nil {
		cfg.ShutdownToken = ""
	} else if cfg.ShutdownToken == "" {
		cfg.ShutdownToken = ShutdownToken
	}

	var target string
	if t, ok := wolSvc.(interface{ Target() string }); ok {
		target = t.Target()
	}

	return &Router{
		cfg:         cfg,
		platform:    platform,
		wolSvc:      wolSvc,
		sshSvc:      sshSvc,
		telegramSvc: telegramSvc,
		target:      target,
		logger:      logger,
	}
}

// Control returns the confirmation control posted for a command invocation.
func (r *Router) Control() models.ControlMessage {
	msg := models.ControlMessage{
		Content: r.cfg.Prompt,
		Buttons: []models.ControlButton{
			{Label: launchLabel, CustomID: r.cfg.LaunchToken},
		},
	}
	if r.cfg.ShutdownToken != "" {
		msg.Buttons = append(msg.Buttons, models.ControlButton{
			Label:    shutdownLabel,
			CustomID: r.cfg.ShutdownToken,
			Danger:   true,
		})
	}
	return msg
}

// Handle dispatches ev by kind. It never panics; failures are reported in
// the result.
func (r *Router) Handle(ctx context.Context, ev models.InteractionEvent) (result *models.InteractionResult) {
	defer func() {
		if p := recover(); p != nil {
			result = &models.InteractionResult{
				Kind:    ev.Kind,
				Outcome: models.OutcomeFailed,
				State:   StateFailed,
				Error:   fmt.Errorf("panic handling %s interaction: %v", ev.Kind, p),
			}
		}
		r.record(ev, result)
	}()

	switch ev.Kind {
	case models.EventCommandInvocation:
		return r.HandleCommand(ctx, ev)
	case models.EventControlActivation:
		return r.HandleControl(ctx, ev)
	case models.EventProbe:
		return r.HandleProbe(ctx, ev)
	default:
		lc := newLifecycle()
		return r.ignore(ctx, lc, ev)
	}
}

// HandleCommand posts the confirmation control when the command matches.
func (r *Router) HandleCommand(ctx context.Context, ev models.InteractionEvent) *models.InteractionResult {
	lc := newLifecycle()
	if ev.CommandName != r.cfg.CommandName {
		return r.ignore(ctx, lc, ev)
	}

	result := &models.InteractionResult{Kind: ev.Kind}
	if err := r.post(ctx, r.Control()); err != nil {
		return r.fail(ctx, lc, result, err)
	}

	transition(ctx, lc, eventDispatch)
	result.Outcome = models.OutcomeControlPosted
	result.State = lc.Current()
	return result
}

// HandleControl acts on a matching control token.
func (r *Router) HandleControl(ctx context.Context, ev models.InteractionEvent) *models.InteractionResult {
	lc := newLifecycle()

	switch {
	case ev.ControlID == r.cfg.LaunchToken:
		return r.launch(ctx, lc, ev)
	case r.cfg.ShutdownToken != "" && ev.ControlID == r.cfg.ShutdownToken:
		return r.shutdown(ctx, lc, ev)
	default:
		return r.ignore(ctx, lc, ev)
	}
}

// HandleProbe answers a connectivity probe with a pong.
func (r *Router) HandleProbe(ctx context.Context, ev models.InteractionEvent) *models.InteractionResult {
	lc := newLifecycle()
	result := &models.InteractionResult{Kind: ev.Kind}

	transition(ctx, lc, eventDispatch)
	if err := r.ack(ctx, lc, ev, models.AckPong, ""); err != nil {
		return r.fail(ctx, lc, result, err)
	}

	result.Acknowledged = true
	result.Outcome = models.OutcomeProbeAnswered
	result.State = lc.Current()
	return result
}

// launch broadcasts the wake packet, then acknowledges the interaction.
func (r *Router) launch(ctx context.Context, lc *fsm.FSM, ev models.InteractionEvent) *models.InteractionResult {
	result := &models.InteractionResult{Kind: ev.Kind}

	wakeErr := r.wake(ctx)
	result.WakeSent = wakeErr == nil
	transition(ctx, lc, eventDispatch)

	kind, content := models.AckDeferredUpdate, ""
	if wakeErr != nil {
		kind, content = models.AckFailureNotice, failureMessage
	}
	ackErr := r.ack(ctx, lc, ev, kind, content)
	result.Acknowledged = ackErr == nil

	r.notify(ctx, ev, "wake", r.target, wakeErr)

	if err := errors.Join(wakeErr, ackErr); err != nil {
		if ackErr != nil {
			transition(ctx, lc, eventFail)
		}
		result.Outcome = models.OutcomeFailed
		result.Error = err
		result.State = lc.Current()
		return result
	}

	result.Outcome = models.OutcomeWakeSent
	result.State = lc.Current()
	return result
}

// shutdown acknowledges first because the SSH round trip can outlast the
// platform's response window.
func (r *Router) shutdown(ctx context.Context, lc *fsm.FSM, ev models.InteractionEvent) *models.InteractionResult {
	result := &models.InteractionResult{Kind: ev.Kind}

	transition(ctx, lc, eventDispatch)
	if err := r.ack(ctx, lc, ev, models.AckDeferredUpdate, ""); err != nil {
		return r.fail(ctx, lc, result, err)
	}
	result.Acknowledged = true

	var shutdownErr error
	sshResult, err := r.sshSvc.Shutdown(ctx)
	switch {
	case err != nil:
		shutdownErr = err
	case sshResult.Error != nil && !sshResult.CommandRun:
		shutdownErr = sshResult.Error
	}

	host := ""
	if h, ok := r.sshSvc.(interface{ Host() string }); ok {
		host = h.Host()
	}
	r.notify(ctx, ev, "shutdown", host, shutdownErr)

	result.State = lc.Current()
	if shutdownErr != nil {
		result.Outcome = models.OutcomeFailed
		result.Error = fmt.Errorf("shutdown: %w", shutdownErr)
		return result
	}
	result.Outcome = models.OutcomeShutdownSent
	return result
}

func (r *Router) wake(ctx context.Context) error {
	wolResult, err := r.wolSvc.Wake(ctx)
	if err == nil && wolResult.Error != nil {
		err = wolResult.Error
	}

	if err != nil {
		metrics.WakePacketsTotal.WithLabelValues("failed").Inc()
		if !errors.Is(err, models.ErrNetwork) {
			err = fmt.Errorf("%w: %w", models.ErrNetwork, err)
		}
		return err
	}

	metrics.WakePacketsTotal.WithLabelValues("sent").Inc()
	return nil
}

func (r *Router) post(ctx context.Context, msg models.ControlMessage) error {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	start := time.Now()
	err := r.platform.PostControl(ctx, r.cfg.ChannelID, msg)
	metrics.PlatformCallLatency.WithLabelValues("post").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: posting control to channel %s: %w", models.ErrInteractionAPI, r.cfg.ChannelID, err)
	}
	return nil
}

func (r *Router) ack(ctx context.Context, lc *fsm.FSM, ev models.InteractionEvent, kind models.AckKind, content string) error {
	if !lc.Can(eventAck) {
		return fmt.Errorf("acknowledging interaction %s in state %s", ev.ID, lc.Current())
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	start := time.Now()
	err := r.platform.Acknowledge(callCtx, ev, kind, content)
	metrics.PlatformCallLatency.WithLabelValues("ack").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: acknowledging interaction %s: %w", models.ErrInteractionAPI, ev.ID, err)
	}

	transition(ctx, lc, eventAck)
	return nil
}

func (r *Router) notify(ctx context.Context, ev models.InteractionEvent, action, target string, actionErr error) {
	if r.telegramSvc == nil {
		return
	}

	notice := models.WakeNotice{
		Action:   action,
		Username: ev.Username,
		UserID:   ev.UserID,
		Target:   target,
		Success:  actionErr == nil,
		Time:     time.Now(),
	}
	if actionErr != nil {
		notice.ErrorMessage = actionErr.Error()
	}

	result, err := r.telegramSvc.SendWakeNotice(ctx, notice)
	if err == nil && result.Error != nil {
		err = result.Error
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("action", action).Msg("failed to send Telegram notice")
	}
}

func (r *Router) ignore(ctx context.Context, lc *fsm.FSM, ev models.InteractionEvent) *models.InteractionResult {
	transition(ctx, lc, eventIgnore)
	return &models.InteractionResult{
		Kind:    ev.Kind,
		Outcome: models.OutcomeIgnored,
		State:   lc.Current(),
	}
}

func (r *Router) fail(ctx context.Context, lc *fsm.FSM, result *models.InteractionResult, err error) *models.InteractionResult {
	transition(ctx, lc, eventFail)
	result.Outcome = models.OutcomeFailed
	result.Error = err
	result.State = lc.Current()
	return result
}

func (r *Router) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, r.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *Router) record(ev models.InteractionEvent, result *models.InteractionResult) {
	if result == nil {
		return
	}

	metrics.InteractionsTotal.WithLabelValues(ev.Kind.String(), string(result.Outcome)).Inc()

	logEvent := r.logger.Info()
	switch {
	case result.Error != nil:
		logEvent = r.logger.Error().Err(result.Error)
	case result.Outcome == models.OutcomeIgnored:
		logEvent = r.logger.Debug()
	}

	logEvent.
		Str("interaction_id", ev.ID).
		Str("kind", ev.Kind.String()).
		Str("user", ev.Username).
		Str("outcome", string(result.Outcome)).
		Str("state", result.State).
		Bool("wake_sent", result.WakeSent).
		Msg("interaction handled")
}

// transition fires a lifecycle event. The transition table makes every
// call site valid, so errors are not expected.
func transition(ctx context.Context, lc *fsm.FSM, event string) {
	_ = lc.Event(ctx, event)
}
