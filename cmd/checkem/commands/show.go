package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/tracker"
)

// LastUpdateCmd implements the 'last-update' command.
type LastUpdateCmd struct {
	Key string `arg:"" help:"Identifier of the tracked value"`
}

func (c *LastUpdateCmd) Run(g *Global, root *CLI) error {
	ctx := commandContext("last-update")
	s, err := openTracker(ctx, g, root)
	if err != nil {
		return err
	}
	defer s.close()

	last, err := s.tracker.LastUpdate(c.Key)
	if err != nil {
		return err
	}
	if last.IsNone() {
		_, _ = fmt.Fprintln(g.Stdout, "null")
		return nil
	}
	_, _ = fmt.Fprintln(g.Stdout, last.Unwrap().Format(time.RFC3339Nano))
	return nil
}

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	Keys []string `arg:"" optional:"" help:"Keys to show (default: all)"`
	JSON bool     `help:"Print the records in the store format"`
}

func (c *ShowCmd) Run(g *Global, root *CLI) error {
	ctx := commandContext("show")
	s, err := openTracker(ctx, g, root)
	if err != nil {
		return err
	}
	defer s.close()

	saved, err := s.tracker.Persisted(ctx)
	if err != nil {
		return err
	}
	state := "saved"
	if !saved {
		state = "not saved yet"
	}
	_, _ = fmt.Fprintf(g.Stderr, "store %s (%s, digest %s, %d records)\n",
		s.tracker.Location(), state, s.tracker.Digester().Name(), s.tracker.Len())

	store := s.tracker.Snapshot()
	if len(c.Keys) > 0 {
		selected := make(tracker.Store, len(c.Keys))
		for _, k := range c.Keys {
			rec, ok := store[k]
			if !ok {
				return errors.NotFoundError("no record found").WithContext("key", k).Build()
			}
			selected[k] = rec
		}
		store = selected
	}

	if c.JSON {
		data, err := tracker.Encode(store)
		if err != nil {
			return errors.InternalError("failed to encode records").WithCause(err).Build()
		}
		_, err = g.Stdout.Write(data)
		return err
	}

	w := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tVALUE\tUPDATED\tLAST CHECKED\tCHECKED\tUPDATED COUNT")
	for _, k := range store.Keys() {
		rec := store[k]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			k, rec.Value, formatOptionalTime(rec.UpdatedAt), formatOptionalTime(rec.LastChecked),
			rec.TimesChecked, rec.TimesUpdated)
	}
	return w.Flush()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
