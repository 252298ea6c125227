// Package prerender snapshots client-side-rendered pages to static files.
//
// A run serves the project tree from an ephemeral loopback server, opens each
// content entry through the shared template page in headless Chrome, waits
// for the page's output container to hold real content, and writes the
// serialised DOM to the output directory. One bad entry never aborts the
// batch: failures are logged and skipped, readiness timeouts are captured
// best-effort.
package prerender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/hazyhaar/prerender/internal/browser"
	"github.com/hazyhaar/prerender/internal/config"
	"github.com/hazyhaar/prerender/internal/entries"
	"github.com/hazyhaar/prerender/internal/idgen"
	"github.com/hazyhaar/prerender/internal/manifest"
	"github.com/hazyhaar/prerender/internal/output"
	"github.com/hazyhaar/prerender/internal/readiness"
	"github.com/hazyhaar/prerender/internal/server"
	"github.com/hazyhaar/prerender/internal/snapshot"
)

// Renderer is the top-level orchestrator. Create one per run.
type Renderer struct {
	cfg    *config.Config
	logger *slog.Logger
	newID  idgen.Generator
}

// New creates a Renderer from configuration.
func New(cfg *Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{cfg: cfg, logger: logger, newID: idgen.Prefixed("run_", idgen.Default)}
}

// Run renders every discovered entry, in sorted order, one at a time.
//
// The only fatal condition is a missing entries directory; it aborts before
// the output directory is created or the file server is bound. Everything
// after that is contained at the entry boundary.
func (r *Renderer) Run(ctx context.Context) error {
	site := r.cfg.Site
	entriesDir := resolve(site.Root, site.EntriesDir)
	outputDir := resolve(site.Root, site.OutputDir)

	ents, err := entries.Discover(entriesDir, site.Extension)
	if err != nil {
		return fmt.Errorf("prerender: %w", err)
	}
	if len(ents) == 0 {
		r.logger.Info("prerender: no entries found, nothing to render",
			"dir", entriesDir, "extension", site.Extension)
		return nil
	}

	out, err := output.New(outputDir, r.cfg.Output.Markdown)
	if err != nil {
		return fmt.Errorf("prerender: %w", err)
	}

	srv := server.New(site.Root, r.logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("prerender: %w", err)
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			r.logger.Warn("prerender: server shutdown", "error", err)
		}
	}()

	mgr := browser.NewManager(browser.Config{
		RemoteURL:        r.cfg.Browser.Remote,
		Stealth:          r.cfg.Browser.Stealth,
		ResourceBlocking: r.cfg.Browser.ResourceBlocking,
		Logger:           r.logger,
	})
	if err := mgr.Start(); err != nil {
		return fmt.Errorf("prerender: %w", err)
	}
	defer mgr.Close()

	var man *manifest.Store
	runID := r.newID()
	if r.cfg.Manifest.Path != "" {
		man, err = manifest.Open(resolve(site.Root, r.cfg.Manifest.Path))
		if err != nil {
			// The manifest is bookkeeping, not the product. Render anyway.
			r.logger.Warn("prerender: manifest disabled", "error", err)
			man = nil
		} else {
			defer man.Close()
			if err := man.BeginRun(ctx, runID); err != nil {
				r.logger.Warn("prerender: manifest begin run", "error", err)
			}
		}
	}

	var rendered, degraded, failed int
	for _, ent := range ents {
		if ctx.Err() != nil {
			return fmt.Errorf("prerender: interrupted: %w", ctx.Err())
		}

		res := r.renderEntry(ctx, srv.BaseURL(), ent, mgr, out)
		switch res.Status {
		case manifest.StatusRendered:
			rendered++
		case manifest.StatusDegraded:
			degraded++
		case manifest.StatusFailed:
			failed++
		}

		if man != nil {
			if err := man.Record(ctx, runID, res); err != nil {
				r.logger.Warn("prerender: manifest record", "entry", ent.Name, "error", err)
			}
		}
	}

	if man != nil {
		if err := man.FinishRun(ctx, runID); err != nil {
			r.logger.Warn("prerender: manifest finish run", "error", err)
		}
	}

	r.logger.Info("prerender: run complete",
		"run_id", runID, "rendered", rendered, "degraded", degraded, "failed", failed)
	return nil
}

// renderEntry drives one entry through navigation, readiness wait, capture,
// and persistence. It never returns an error: per-entry problems become a
// failed Result and the batch moves on.
func (r *Renderer) renderEntry(ctx context.Context, base string, ent entries.Entry, mgr *browser.Manager, out *output.Writer) manifest.Result {
	start := time.Now()
	log := r.logger.With("entry", ent.Name)

	fail := func(err error) manifest.Result {
		log.Error("prerender: entry failed, skipping", "error", err)
		return manifest.Result{
			Entry:    ent.Name,
			Status:   manifest.StatusFailed,
			Duration: time.Since(start),
			Error:    err.Error(),
		}
	}

	target := EntryURL(base, r.cfg.Site.Template, ent.Name)
	log.Info("prerender: rendering", "source", ent.File, "target", target)

	sess, err := mgr.NewSession(ent.Name)
	if err != nil {
		return fail(err)
	}
	defer sess.Close()

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.Browser.NavTimeout)
	defer cancel()
	if err := sess.Navigate(navCtx, target); err != nil {
		return fail(err)
	}

	status := manifest.StatusRendered
	rdy := r.cfg.Readiness
	err = readiness.Wait(ctx, func(c context.Context) (bool, error) {
		return sess.ContentReady(c, rdy.ContainerID, rdy.Sentinel)
	}, rdy.PollInterval, rdy.Timeout)
	switch {
	case errors.Is(err, readiness.ErrTimeout):
		// Best-effort policy: a stale capture beats no capture.
		log.Warn("prerender: readiness wait timed out, capturing current DOM",
			"timeout", rdy.Timeout)
		status = manifest.StatusDegraded
	case err != nil:
		return fail(err)
	}

	markup, err := sess.HTML(ctx)
	if err != nil {
		return fail(err)
	}

	if rep, err := snapshot.Inspect(markup, rdy.ContainerID, rdy.Sentinel); err != nil {
		log.Warn("prerender: snapshot inspection failed", "error", err)
	} else {
		if !rep.ContainerFound {
			log.Warn("prerender: output container missing from capture",
				"container_id", rdy.ContainerID)
		} else if rep.SentinelVisible {
			log.Warn("prerender: capture still shows loading sentinel")
		}
	}

	size, err := out.Write(ent.File, markup)
	if err != nil {
		return fail(err)
	}

	log.Info("prerender: saved", "path", out.Path(ent.File), "bytes", size)
	return manifest.Result{
		Entry:    ent.Name,
		Status:   status,
		Bytes:    size,
		Duration: time.Since(start),
	}
}

// EntryURL builds the navigation target for an entry: the template page
// resolved against the server base, parameterised with the entry name.
func EntryURL(base, template, name string) string {
	q := url.Values{"id": {name}}
	return base + "/" + template + "?" + q.Encode()
}

// resolve joins a configured path onto the project root unless it is already
// absolute.
func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
