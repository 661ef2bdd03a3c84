package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/analysis"
	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/logging"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
	"github.com/tally-dev/tally/internal/recurrence"
)

// repo is an opened tally directory.
type repo struct {
	root    string
	cfg     *config.Config
	secrets config.Secrets
	logger  *zap.Logger
}

func openRepo(dir string, opts *rootOptions) (*repo, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no %s in %s, run `tally init` first", config.FileName, root)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}

	secrets, err := config.LoadSecrets(root)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, opts.verbose)
	if err != nil {
		return nil, err
	}

	return &repo{root: root, cfg: cfg, secrets: secrets, logger: logger}, nil
}

func (r *repo) close() {
	_ = r.logger.Sync()
}

func (r *repo) service() (*analysis.Service, error) {
	cats, err := categories.Load(r.root)
	if errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("no category map, using defaults")
		cats = categories.NewService(categories.DefaultMappings())
	} else if err != nil {
		return nil, err
	}

	n := normalize.New(cats)
	d := recurrence.New(analysis.DetectorOptions(r.cfg.Recurrence))
	return analysis.NewService(n, d, r.logger), nil
}

func (r *repo) transactions() (*analysis.Service, []model.Transaction, error) {
	svc, err := r.service()
	if err != nil {
		return nil, nil, err
	}
	txns, err := svc.Load(r.root, importer.DefaultRegistry())
	if err != nil {
		return nil, nil, err
	}
	return svc, txns, nil
}
