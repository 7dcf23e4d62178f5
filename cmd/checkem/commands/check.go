package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/tracker"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Key   string `arg:"" help:"Identifier of the tracked value"`
	Value string `arg:"" help:"Current value"`
	Type  string `short:"t" enum:"auto,string,number,bool,null" default:"auto" help:"Value type (auto guesses numbers, booleans and null)"`
}

var valueKinds = map[string]tracker.Kind{
	"auto":   tracker.KindUndefined,
	"string": tracker.KindString,
	"number": tracker.KindNumber,
	"bool":   tracker.KindBool,
	"null":   tracker.KindNull,
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	value, err := tracker.ParseValue(c.Value, valueKinds[c.Type])
	if err != nil {
		return errors.ValidationError("invalid value").
			WithCause(err).
			WithContext("key", c.Key).
			Build()
	}

	ctx := commandContext("check")
	s, err := openTracker(ctx, g, root)
	if err != nil {
		return err
	}

	changed, checkErr := s.tracker.Check(ctx, c.Key, value)
	finishErr := s.finish(ctx)
	if checkErr != nil && !errors.HasCategory(checkErr, errors.CategoryStorageWrite) {
		return checkErr
	}
	_, _ = fmt.Fprintln(g.Stdout, changedWord(changed))
	if checkErr != nil {
		return checkErr
	}
	return finishErr
}

// ChecksumCmd implements the 'checksum' command.
type ChecksumCmd struct {
	Key  string `arg:"" help:"Identifier of the tracked content"`
	File string `arg:"" optional:"" default:"-" help:"File to hash, or - for stdin"`
}

func (c *ChecksumCmd) Run(g *Global, root *CLI) error {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File) // #nosec G304 - operator supplied path
		if err != nil {
			return errors.NotFoundError("cannot open file").
				WithCause(err).
				WithContext("path", c.File).
				Build()
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	ctx := commandContext("checksum")
	s, err := openTracker(ctx, g, root)
	if err != nil {
		return err
	}

	changed, checkErr := s.tracker.CheckReader(ctx, c.Key, r)
	finishErr := s.finish(ctx)
	if checkErr != nil && !errors.HasCategory(checkErr, errors.CategoryStorageWrite) {
		return checkErr
	}
	_, _ = fmt.Fprintln(g.Stdout, changedWord(changed))
	if checkErr != nil {
		return checkErr
	}
	return finishErr
}
