package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Alia5/studiogen/internal/collab"
	"github.com/Alia5/studiogen/internal/collab/feed"
	"github.com/Alia5/studiogen/internal/log"
)

type Feed struct {
	URL     string        `arg:"" optional:"" help:"Feed URL" default:"https://renewablesnow.com/feed/"`
	Limit   int           `help:"Maximum number of entries, 0 for all" default:"5" env:"STUDIOGEN_FEED_LIMIT"`
	Timeout time.Duration `help:"HTTP timeout" default:"10s" env:"STUDIOGEN_FEED_TIMEOUT"`
	JSON    bool          `help:"Print entries as JSON"`
}

// Run is called by Kong when the feed command is executed.
func (f *Feed) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return f.run(ctx, feed.New(collab.NewClient(logger, rawLogger, f.Timeout)), os.Stdout)
}

func (f *Feed) run(ctx context.Context, src collab.Source, w io.Writer) error {
	records, err := src.Fetch(ctx, collab.Query{Target: f.URL, Limit: f.Limit})
	if err != nil {
		return err
	}

	if f.JSON {
		return writeJSON(w, records)
	}
	for i, r := range records {
		fmt.Fprintf(w, "%d. %s\n   %s\n   %s\n%s\n", i+1, r["title"], r["link"], r["published"], strings.Repeat("-", 60))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
