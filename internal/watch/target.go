package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/checkem/internal/config"
	"git.home.luguber.info/inful/checkem/internal/tracker"
)

// Target is a tracked file or repository.
type Target struct {
	Key  string
	Path string
	Kind config.TargetKind
}

// TargetsFromConfig converts configured targets, resolving paths to absolute.
func TargetsFromConfig(cfg config.WatchConfig) ([]Target, error) {
	out := make([]Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		abs, err := filepath.Abs(t.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", t.Path, err)
		}
		kind := t.Kind
		if kind == "" {
			kind = config.TargetFile
		}
		out = append(out, Target{Key: t.Key, Path: abs, Kind: kind})
	}
	return out, nil
}

// check records the current fingerprint of t in tr.
func (t Target) check(ctx context.Context, tr *tracker.Tracker) (bool, error) {
	switch t.Kind {
	case config.TargetGit:
		hash, err := HeadHash(t.Path)
		if err != nil {
			return false, err
		}
		return tr.Check(ctx, t.Key, tracker.String(hash))
	default:
		f, err := os.Open(t.Path) // #nosec G304 - configured watch target
		if err != nil {
			return false, err
		}
		defer func() { _ = f.Close() }()
		return tr.CheckReader(ctx, t.Key, f)
	}
}

// HeadHash returns the commit hash HEAD points to in the repository
// containing path.
func HeadHash(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository %s: %w", path, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD in %s: %w", path, err)
	}
	return ref.Hash().String(), nil
}
