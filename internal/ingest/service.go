package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"bitacora/internal/amqp"
	"bitacora/internal/cache"
	"bitacora/internal/core"
	"bitacora/internal/log"
	"bitacora/internal/store"
)

// Result summarizes one bulk load.
type Result struct {
	BatchID  string
	Source   string
	Appended int
	Skipped  int
}

// Service runs bulk loads against the record store. Loads are
// serialized so two concurrent sources never interleave their rows.
type Service struct {
	store   store.RecordStore
	sem     *semaphore.Weighted
	cache   *cache.LRU[[]core.Record]
	events  *amqp.Client
	logger  *log.Logger
	timeout time.Duration
}

func NewService(st store.RecordStore, events *amqp.Client, logger *log.Logger, timeout time.Duration) *Service {
	return &Service{
		store:   st,
		sem:     semaphore.NewWeighted(1),
		cache:   cache.NewLRU[[]core.Record](8, 5*time.Minute),
		events:  events,
		logger:  logger.WithComponent(log.ComponentIngest),
		timeout: timeout,
	}
}

// Cache exposes the remote payload cache for cleanup registration.
func (s *Service) Cache() cache.Cleaner { return s.cache }

// LoadFrom fetches records from src and appends them as one batch.
// A fetch or append failure leaves the store untouched.
func (s *Service) LoadFrom(ctx context.Context, src Source) (Result, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("acquire load slot: %w", err)
	}
	defer s.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	recs, skipped, ok := s.cachedFetch(ctx, src)
	if !ok {
		var err error
		recs, skipped, err = src.Fetch(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "source fetch failed",
				log.FieldSource, src.Name(), log.FieldError, err.Error())
			return Result{}, fmt.Errorf("fetch from %s: %w", src.Name(), err)
		}
		s.cache.Set(src.Name(), recs)
	}

	return s.appendBatch(ctx, src.Name(), recs, skipped)
}

// LoadUpload parses an uploaded CSV stream and appends its rows as one
// batch. Uploads bypass the cache.
func (s *Service) LoadUpload(ctx context.Context, r io.Reader, name string) (Result, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("acquire load slot: %w", err)
	}
	defer s.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	recs, skipped, err := ParseUploadCSV(r)
	if err != nil {
		s.logger.ErrorContext(ctx, "upload parse failed",
			log.FieldFile, name, log.FieldError, err.Error())
		return Result{}, fmt.Errorf("parse upload %s: %w", name, err)
	}

	return s.appendBatch(ctx, string(SourceUpload), recs, skipped)
}

func (s *Service) cachedFetch(ctx context.Context, src Source) ([]core.Record, int, bool) {
	recs, ok := s.cache.Get(src.Name())
	if !ok {
		return nil, 0, false
	}
	s.logger.DebugContext(ctx, "serving cached payload", log.FieldSource, src.Name())
	return recs, 0, true
}

func (s *Service) appendBatch(ctx context.Context, source string, recs []core.Record, skipped int) (Result, error) {
	res := Result{
		BatchID: uuid.NewString(),
		Source:  source,
		Skipped: skipped,
	}

	if len(recs) == 0 {
		s.logger.InfoContext(ctx, "batch empty, nothing appended",
			log.FieldSource, source, log.FieldSkipped, skipped)
		return res, nil
	}

	if err := s.store.AppendBatch(ctx, recs); err != nil {
		return Result{}, fmt.Errorf("append batch from %s: %w", source, err)
	}
	res.Appended = len(recs)

	s.logger.InfoContext(ctx, "batch ingested",
		log.FieldBatchID, res.BatchID,
		log.FieldSource, source,
		log.FieldCount, res.Appended,
		log.FieldSkipped, skipped)

	if err := s.events.PublishBatchIngested(ctx, res.BatchID, source, res.Appended); err != nil {
		s.logger.WarnContext(ctx, "batch event publish failed",
			log.FieldBatchID, res.BatchID, log.FieldError, err.Error())
	}
	return res, nil
}
