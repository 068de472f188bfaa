package downloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/italolelis/spotdl_exporter/internal/bridge"
	"github.com/italolelis/spotdl_exporter/internal/content"
	"github.com/italolelis/spotdl_exporter/internal/logctx"
	"github.com/italolelis/spotdl_exporter/internal/notifier"
	"github.com/italolelis/spotdl_exporter/internal/prompt"
	"github.com/italolelis/spotdl_exporter/internal/spotdl"
	"github.com/italolelis/spotdl_exporter/internal/telemetry"
)

// User notifications.
const (
	msgNotApplicable = "Error: Navigate to a playlist or track page to download."
	msgCancelled     = "Download cancelled by user."
	msgBusy          = "A download prompt is already open."
	msgPreparation   = "Error preparing download. See console for details."
)

// Outcome classifies a finished run.
type Outcome string

const (
	OutcomeCompleted         Outcome = "completed"
	OutcomeFailed            Outcome = "failed"
	OutcomeCancelled         Outcome = "cancelled"
	OutcomeNotApplicable     Outcome = "not_applicable"
	OutcomeBusy              Outcome = "busy"
	OutcomePreparationFailed Outcome = "preparation_failed"
)

var errRunFailed = errors.New("download run failed")

// Page is the host view the trigger was activated on.
type Page interface {
	CurrentPath() string
	Titles() content.TitleSource
}

// PathPrompter asks the user for a destination. ok is false on cancellation.
type PathPrompter interface {
	Prompt(ctx context.Context, defaultValue string) (path string, ok bool, err error)
}

// PathStore remembers the last destination. Implementations never fail.
type PathStore interface {
	Load(ctx context.Context) string
	Save(ctx context.Context, path string)
}

// Downloader runs one export of the current page per trigger activation.
type Downloader struct {
	page      Page
	resolver  *content.Resolver
	prompter  PathPrompter
	store     PathStore
	executor  bridge.Executor
	notifier  notifier.Notifier
	telemetry *telemetry.Telemetry
}

func NewDownloader(
	page Page,
	resolver *content.Resolver,
	prompter PathPrompter,
	store PathStore,
	executor bridge.Executor,
	notif notifier.Notifier,
	tel *telemetry.Telemetry,
) *Downloader {
	return &Downloader{
		page:      page,
		resolver:  resolver,
		prompter:  prompter,
		store:     store,
		executor:  executor,
		notifier:  notif,
		telemetry: tel,
	}
}

type plan struct {
	ref     content.Reference
	target  spotdl.Target
	command string
}

// Run performs one download: resolve, prompt, persist, build, execute. Every
// exit path produces user notifications and an Outcome; it never panics and
// never returns an error to the trigger.
func (d *Downloader) Run(ctx context.Context) Outcome {
	runID := uuid.NewString()
	ctx = logctx.WithRunID(ctx, runID)
	ctx = telemetry.WithRequestID(ctx, runID)

	logger := logctx.LoggerFromContext(ctx)
	start := time.Now()

	var outcome Outcome

	_ = d.telemetry.InstrumentRun(ctx, func(ctx context.Context) error {
		outcome = d.run(ctx)

		switch outcome {
		case OutcomeFailed, OutcomePreparationFailed:
			return errRunFailed
		}

		return nil
	})

	d.telemetry.RecordDownload(string(outcome), time.Since(start))

	logger.InfoContext(ctx, "download run finished", "outcome", outcome, "duration", time.Since(start).Round(time.Millisecond).String())

	return outcome
}

func (d *Downloader) run(ctx context.Context) Outcome {
	logger := logctx.LoggerFromContext(ctx)

	p, err := d.prepare(ctx)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrNotApplicable):
			logger.InfoContext(ctx, "not a playlist or track page", "path", d.page.CurrentPath())
			d.notify(ctx, msgNotApplicable)

			return OutcomeNotApplicable
		case errors.Is(err, ErrCancelled):
			logger.InfoContext(ctx, "download cancelled by user")
			d.notify(ctx, msgCancelled)

			return OutcomeCancelled
		case errors.Is(err, prompt.ErrAlreadyOpen):
			logger.WarnContext(ctx, "path prompt already open, ignoring trigger")
			d.notify(ctx, msgBusy)

			return OutcomeBusy
		default:
			logger.ErrorContext(ctx, "error preparing download", "err", err)
			d.telemetry.RecordSystemError("downloader", "preparation")
			d.notify(ctx, msgPreparation)

			return OutcomePreparationFailed
		}
	}

	name := p.ref.DisplayName

	logger.InfoContext(ctx, "executing command",
		"content_kind", p.ref.Kind,
		"content_name", name,
		"content_url", p.ref.URL,
		"command", p.command,
	)

	d.notify(ctx, fmt.Sprintf(`Initiating download for "%s" to "%s"...`, name, spotdl.Destination(p.target)))

	if _, err := d.executor.Execute(ctx, p.command); err != nil {
		logger.ErrorContext(ctx, "spotdl command execution failed", "content_name", name, "err", err)
		d.notify(ctx, fmt.Sprintf(`Failed to download "%s". Check console and local server logs.`, name))

		return OutcomeFailed
	}

	d.notify(ctx, fmt.Sprintf(`"%s" downloaded successfully!`, name))

	return OutcomeCompleted
}

// prepare covers every step before the command is issued. Panics are turned
// into a PreparationError.
func (d *Downloader) prepare(ctx context.Context) (p *plan, err error) {
	stage := "resolve"

	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = &PreparationError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	ref, err := d.resolver.Resolve(d.page.CurrentPath(), d.page.Titles())
	if err != nil {
		if errors.Is(err, content.ErrNotApplicable) {
			return nil, err
		}

		return nil, &PreparationError{Stage: stage, Err: err}
	}

	stage = "prompt"

	path, ok, err := d.prompter.Prompt(ctx, d.store.Load(ctx))
	if err != nil {
		if errors.Is(err, prompt.ErrAlreadyOpen) {
			return nil, err
		}

		return nil, &PreparationError{Stage: stage, Err: err}
	}

	if !ok {
		return nil, ErrCancelled
	}

	stage = "build"

	d.store.Save(ctx, path)

	target := spotdl.NewTarget(path, ref)

	return &plan{ref: ref, target: target, command: spotdl.Command(ref.URL, target)}, nil
}

func (d *Downloader) notify(ctx context.Context, msg string) {
	if d.notifier == nil {
		return
	}

	if err := d.notifier.Notify(msg); err != nil {
		logctx.LoggerFromContext(ctx).ErrorContext(ctx, "failed to send notification", "err", err)
	}
}
