package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/comigor/sentiment-go/internal/archive"
	"github.com/comigor/sentiment-go/internal/classifier"
	"github.com/comigor/sentiment-go/internal/config"
	"github.com/comigor/sentiment-go/internal/logger"
	"github.com/comigor/sentiment-go/internal/session"
)

type app struct {
	cfg        *config.Config
	classifier classifier.Classifier
	archive    *archive.Store
	registry   *session.Registry
	now        func() time.Time
}

func (a *app) init(ctx context.Context, logOut io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.SetOutput(logOut)
	logger.SetFormat(cfg.Log.Format)
	logger.SetLevel(cfg.Log.Level)

	c, err := classifier.New(*cfg)
	if err != nil {
		return fmt.Errorf("wire classifier: %w", err)
	}

	a.cfg = cfg
	a.classifier = c
	a.now = time.Now
	if cfg.Archive.Path != "" {
		a.archive = archive.Open(ctx, cfg.Archive.Path)
	}
	a.registry = session.NewRegistry(a.newController)
	return nil
}

func (a *app) newController(id string) *session.Controller {
	opts := session.Options{
		ID:           id,
		HistoryLimit: a.cfg.Session.HistoryLimit,
		StrictLabels: a.cfg.Classifier.StrictLabels,
		Now:          a.now,
	}
	if a.archive != nil {
		opts.Recorder = a.archive
	}
	return session.New(a.classifier, opts)
}

func (a *app) close() error {
	if a.archive == nil {
		return nil
	}
	return a.archive.Close()
}
