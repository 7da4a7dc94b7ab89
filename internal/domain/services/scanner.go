package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"permscope/internal/config"
	"permscope/internal/domain/models"
	"permscope/internal/metrics"
	"permscope/internal/registry"
	"permscope/pkg/logger"
)

// ErrScanNotReady is returned by query accessors before the first scan has
// published a result.
var ErrScanNotReady = errors.New("no scan result available yet")

// ScanEventPublisher receives scan lifecycle notifications. Implementations
// must not block; the scan goroutine calls them inline.
type ScanEventPublisher interface {
	PublishScanStarted(status models.ScanStatus)
	PublishScanCompleted(result *models.ScanResult)
	PublishScanFailed(status models.ScanStatus)
}

// ScanService orchestrates full-registry scans: enumerate packages, assemble
// each descriptor on a bounded worker pool, aggregate, publish. The service
// owns the scan lifecycle state machine and a monotonic epoch counter; a scan
// started while another is running supersedes it, and the superseded scan's
// result is discarded on completion instead of being published.
type ScanService struct {
	registry  registry.PackageRegistry
	assembler *Assembler
	cfg       config.ScanConfig
	publisher ScanEventPublisher
	metrics   *metrics.Metrics
	logger    *logger.Logger

	mu     sync.RWMutex
	status models.ScanStatus
	epoch  uint64
	result *models.ScanResult
}

// NewScanService creates the service. Publisher and metrics are optional.
func NewScanService(reg registry.PackageRegistry, assembler *Assembler, cfg config.ScanConfig, pub ScanEventPublisher, m *metrics.Metrics, log *logger.Logger) *ScanService {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 2
	}
	if cfg.TopRiskApps <= 0 {
		cfg.TopRiskApps = DefaultTopRiskApps
	}
	return &ScanService{
		registry:  reg,
		assembler: assembler,
		cfg:       cfg,
		publisher: pub,
		metrics:   m,
		logger:    log.WithComponent("scan-service"),
		status:    models.ScanStatus{State: models.ScanStateIdle},
	}
}

// DefaultFilter returns the filter the configuration prescribes.
func (s *ScanService) DefaultFilter() models.FilterConfig {
	return models.FilterConfig{
		IncludeSystemApps: s.cfg.IncludeSystemApps,
		OnlyUsefulApps:    s.cfg.OnlyUsefulApps,
	}
}

// StartScan begins an asynchronous scan and returns its status immediately.
// Starting while a scan is running is allowed: the new scan takes a higher
// epoch and the older one becomes stale. The scan outlives the caller's
// context: once started it runs to completion even after the triggering
// request (or its timeout middleware) has cancelled.
func (s *ScanService) StartScan(ctx context.Context, filter models.FilterConfig) models.ScanStatus {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	scanID := uuid.New()
	s.status = models.ScanStatus{
		State:     models.ScanStateScanning,
		Epoch:     epoch,
		ScanID:    scanID,
		StartedAt: time.Now(),
	}
	started := s.status
	s.mu.Unlock()

	s.logger.Info().
		Str("scan_id", scanID.String()).
		Uint64("epoch", epoch).
		Msg("scan started")

	if s.publisher != nil {
		s.publisher.PublishScanStarted(started)
	}

	// Detach from the caller's cancellation. HTTP request contexts are
	// cancelled as soon as the handler returns, which is long before an
	// asynchronous scan finishes.
	scanCtx := context.WithoutCancel(ctx)
	go func() {
		result, err := s.runScan(scanCtx, scanID, epoch, started.StartedAt, filter)
		s.finishScan(result, err, scanID, epoch)
	}()

	return started
}

// ScanOnce runs a scan synchronously and returns its result. Used by the CLI
// and by callers that want the result without polling.
func (s *ScanService) ScanOnce(ctx context.Context, filter models.FilterConfig) (*models.ScanResult, error) {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	scanID := uuid.New()
	startedAt := time.Now()
	s.status = models.ScanStatus{
		State:     models.ScanStateScanning,
		Epoch:     epoch,
		ScanID:    scanID,
		StartedAt: startedAt,
	}
	s.mu.Unlock()

	result, err := s.runScan(ctx, scanID, epoch, startedAt, filter)
	s.finishScan(result, err, scanID, epoch)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// runScan enumerates the registry and assembles every descriptor on a bounded
// worker pool. Results are written to indexed slots so the published record
// order matches the registry's enumeration order.
func (s *ScanService) runScan(ctx context.Context, scanID uuid.UUID, epoch uint64, startedAt time.Time, filter models.FilterConfig) (*models.ScanResult, error) {
	descriptors, err := s.registry.ListInstalledPackages(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RegistryFailures.Inc()
		}
		return nil, err
	}

	type job struct {
		index int
		desc  models.AppDescriptor
	}

	slots := make([]*models.AppPermissionRecord, len(descriptors))
	jobs := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.WorkerPoolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				rec, err := s.assembler.Assemble(ctx, j.desc, filter)
				if err != nil {
					// Per-descriptor failures omit the record; the scan
					// itself carries on.
					s.logger.Warn().Err(err).
						Str("package", j.desc.PackageName).
						Msg("descriptor assembly failed, omitting record")
					continue
				}
				slots[j.index] = rec
			}
		}()
	}

	for i, desc := range descriptors {
		select {
		case jobs <- job{index: i, desc: desc}:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]models.AppPermissionRecord, 0, len(slots))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}

	completedAt := time.Now()
	return &models.ScanResult{
		ScanID:      scanID,
		Epoch:       epoch,
		Filter:      filter,
		Records:     records,
		Aggregate:   Aggregate(records, s.cfg.TopRiskApps),
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
	}, nil
}

// finishScan publishes a scan outcome unless a newer scan has superseded it.
func (s *ScanService) finishScan(result *models.ScanResult, err error, scanID uuid.UUID, epoch uint64) {
	s.mu.Lock()

	if epoch != s.epoch {
		s.mu.Unlock()
		s.logger.Info().
			Str("scan_id", scanID.String()).
			Uint64("epoch", epoch).
			Uint64("current_epoch", s.epoch).
			Msg("discarding stale scan result")
		if s.metrics != nil {
			s.metrics.StaleScans.Inc()
		}
		return
	}

	if err != nil {
		s.status.State = models.ScanStateError
		s.status.CompletedAt = time.Now()
		s.status.Error = err.Error()
		failed := s.status
		s.mu.Unlock()

		s.logger.Error().Err(err).
			Str("scan_id", scanID.String()).
			Msg("scan failed")
		if s.metrics != nil {
			s.metrics.ScansTotal.WithLabelValues("error").Inc()
		}
		if s.publisher != nil {
			s.publisher.PublishScanFailed(failed)
		}
		return
	}

	s.result = result
	s.status.State = models.ScanStateReady
	s.status.CompletedAt = result.CompletedAt
	s.status.Error = ""
	s.mu.Unlock()

	s.logger.Info().
		Str("scan_id", scanID.String()).
		Int("apps", result.Aggregate.TotalApps).
		Int("genuine_risk", result.Aggregate.TotalGenuineRisk).
		Dur("duration", result.Duration).
		Msg("scan completed")

	if s.metrics != nil {
		s.metrics.ScansTotal.WithLabelValues("success").Inc()
		s.metrics.ScanDuration.Observe(result.Duration.Seconds())
		s.metrics.LastScanApps.Set(float64(result.Aggregate.TotalApps))
		s.metrics.LastScanRisk.Set(float64(result.Aggregate.TotalGenuineRisk))
	}
	if s.publisher != nil {
		s.publisher.PublishScanCompleted(result)
	}
}

// Status returns the current lifecycle status.
func (s *ScanService) Status() models.ScanStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Result returns the latest published scan result.
func (s *ScanService) Result() (*models.ScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, ErrScanNotReady
	}
	return s.result, nil
}

// Apps returns the records of the latest published scan.
func (s *ScanService) Apps() ([]models.AppPermissionRecord, error) {
	result, err := s.Result()
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// App returns one record by package name from the latest published scan.
func (s *ScanService) App(packageName string) (*models.AppPermissionRecord, error) {
	result, err := s.Result()
	if err != nil {
		return nil, err
	}
	for i := range result.Records {
		if result.Records[i].PackageName == packageName {
			return &result.Records[i], nil
		}
	}
	return nil, registry.ErrPackageNotFound
}

// AggregateTop recomputes the aggregate over the latest result with a
// caller-chosen ranking size.
func (s *ScanService) AggregateTop(topN int) (models.ScanAggregate, error) {
	result, err := s.Result()
	if err != nil {
		return models.ScanAggregate{}, err
	}
	if topN <= 0 || topN == s.cfg.TopRiskApps {
		return result.Aggregate, nil
	}
	return Aggregate(result.Records, topN), nil
}
