package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/Alia5/studiogen/internal/collab/probe"
)

type Probe struct {
	Targets []string      `arg:"" optional:"" help:"URLs to check (default: the CRE news feed)"`
	Timeout time.Duration `help:"Timeout per step" default:"5s" env:"STUDIOGEN_PROBE_TIMEOUT"`
	JSON    bool          `help:"Print reports as JSON"`
}

const defaultProbeTarget = "https://www.cre.fr/actualites/rss"

// Run is called by Kong when the probe command is executed.
func (p *Probe) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return p.run(ctx, probe.New(logger, p.Timeout), os.Stdout)
}

func (p *Probe) run(ctx context.Context, prober *probe.Prober, w io.Writer) error {
	targets := p.Targets
	if len(targets) == 0 {
		targets = []string{defaultProbeTarget}
	}

	reports := make([]probe.Report, 0, len(targets))
	failed := 0
	for _, target := range targets {
		rep := prober.Probe(ctx, target)
		if !rep.OK() {
			failed++
		}
		reports = append(reports, rep)
	}

	if p.JSON {
		records := make([]map[string]any, 0, len(reports))
		for _, rep := range reports {
			records = append(records, rep.Record())
		}
		if err := writeJSON(w, map[string]any{"proxy_env": probe.ProxyEnv(), "reports": records}); err != nil {
			return err
		}
	} else {
		writeProxyEnv(w)
		for _, rep := range reports {
			writeReport(w, rep)
		}
	}

	if failed > 0 {
		return fmt.Errorf("probe: %d of %d targets failed", failed, len(targets))
	}
	return nil
}

func writeProxyEnv(w io.Writer) {
	env := probe.ProxyEnv()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(w, "proxy environment:")
	for _, k := range keys {
		v := env[k]
		if v == "" {
			v = "(unset)"
		}
		fmt.Fprintf(w, "  %s: %s\n", k, v)
	}
}

func writeReport(w io.Writer, rep probe.Report) {
	fmt.Fprintf(w, "\n%s\n", rep.Target)
	for _, s := range rep.Steps {
		mark := "ok  "
		if !s.OK {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %-5s %s (%s)\n", mark, s.Name, s.Detail, s.Elapsed.Round(time.Millisecond))
	}
	if rep.ContentType != "" && !rep.LooksLikeFeed() {
		fmt.Fprintf(w, "  note: content type %q is not XML; the response may be blocked or rewritten\n", rep.ContentType)
	}
}
