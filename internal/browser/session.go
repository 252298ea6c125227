package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Session is a single-use browsing context for one entry. It is never reused:
// each entry gets a fresh page so cached scripts and stale globals from a
// previous entry cannot leak into the next capture.
type Session struct {
	Page  *rod.Page
	Entry string

	logger *slog.Logger
}

// NewSession opens a fresh page for an entry, wires the console diagnostic
// hook, and applies resource blocking. The caller must Close it on every
// exit path.
func (m *Manager) NewSession(entry string) (*Session, error) {
	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	var page *rod.Page
	var err error
	if m.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}

	s := &Session{Page: page, Entry: entry, logger: m.cfg.Logger}

	// Surface page-side errors and warnings to the operator. Diagnostic
	// only: console noise never fails an entry.
	go page.EachEvent(func(ev *proto.RuntimeConsoleAPICalled) {
		if ev.Type != proto.RuntimeConsoleAPICalledTypeError &&
			ev.Type != proto.RuntimeConsoleAPICalledTypeWarning {
			return
		}
		s.logger.Warn("browser: page console",
			"entry", entry, "type", string(ev.Type), "message", consoleText(ev.Args))
	})()

	if len(m.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, m.cfg.ResourceBlocking); err != nil {
			m.cfg.Logger.Warn("browser: resource blocking failed",
				"entry", entry, "error", err)
		}
	}

	return s, nil
}

// Navigate loads the target URL and waits for network activity to settle,
// all bounded by ctx.
func (s *Session) Navigate(ctx context.Context, target string) error {
	page := s.Page.Context(ctx)

	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := page.Navigate(target); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", target, err)
	}
	wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", target, err)
	}
	return nil
}

// ContentReady evaluates the readiness condition against the live page: the
// container element exists, its trimmed text is non-empty, and the text does
// not contain the loading sentinel (case-insensitive).
func (s *Session) ContentReady(ctx context.Context, containerID, sentinel string) (bool, error) {
	res, err := s.Page.Context(ctx).Eval(`(id, sentinel) => {
		const el = document.getElementById(id);
		if (!el) return false;
		const txt = (el.innerText || el.textContent || '').trim();
		if (!txt) return false;
		if (sentinel && txt.toLowerCase().includes(sentinel.toLowerCase())) return false;
		return true;
	}`, containerID, sentinel)
	if err != nil {
		return false, fmt.Errorf("browser: readiness eval: %w", err)
	}
	return res.Value.Bool(), nil
}

// HTML serialises the complete current DOM as outer HTML. This is the
// rendered state, not the original template source.
func (s *Session) HTML(ctx context.Context) ([]byte, error) {
	res, err := s.Page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("browser: get DOM: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

// Close closes the page.
func (s *Session) Close() error {
	if s.Page != nil {
		return s.Page.Close()
	}
	return nil
}

// consoleText flattens console call arguments into one loggable string.
func consoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if a.Value.Nil() {
			parts = append(parts, a.Description)
			continue
		}
		parts = append(parts, a.Value.String())
	}
	return strings.Join(parts, " ")
}
