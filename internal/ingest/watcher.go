package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"bitacora/internal/log"
)

// Watcher ingests CSV files dropped into a local directory. Each new
// .csv file becomes one upload batch; other files are ignored.
type Watcher struct {
	dir     string
	service *Service
	logger  *log.Logger

	// settle gives the writer time to finish before the file is read.
	settle time.Duration
}

func NewWatcher(dir string, service *Service, logger *log.Logger) *Watcher {
	return &Watcher{
		dir:     dir,
		service: service,
		logger:  logger.WithComponent(log.ComponentWatcher),
		settle:  200 * time.Millisecond,
	}
}

// Run watches the directory until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.InfoContext(ctx, "watching drop directory", log.FieldPath, w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			w.ingestFile(ctx, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "watch error", log.FieldError, err.Error())
		}
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	select {
	case <-time.After(w.settle):
	case <-ctx.Done():
		return
	}

	f, err := os.Open(path)
	if err != nil {
		w.logger.ErrorContext(ctx, "open dropped file failed",
			log.FieldFile, path, log.FieldError, err.Error())
		return
	}
	defer f.Close()

	res, err := w.service.LoadUpload(ctx, f, filepath.Base(path))
	if err != nil {
		w.logger.ErrorContext(ctx, "ingest dropped file failed",
			log.FieldFile, path, log.FieldError, err.Error())
		return
	}
	w.logger.InfoContext(ctx, "dropped file ingested",
		log.FieldFile, filepath.Base(path),
		log.FieldBatchID, res.BatchID,
		log.FieldCount, res.Appended,
		log.FieldSkipped, res.Skipped)
}
