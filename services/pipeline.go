package services

import (
	"time"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Workers       int
	PriceFromText bool
}

// RunSummary reports what a pipeline run did.
type RunSummary struct {
	InputRecords      int
	OutputRecords     int
	MergedColumns     int
	UnknownCategories int
	PricesNull        int
	PreferenceResets  int
	Duplicates        int
	CastFailures      map[string]int
	Elapsed           time.Duration
}

// Pipeline runs the normalization stages in order over a whole table.
type Pipeline struct {
	logger *utils.Logger
	pool   *utils.WorkerPool

	unifier    *Unifier
	classifier *Classifier
	anonymizer *Anonymizer
	normalizer *Normalizer
	signals    *SignalExtractor
	rooms      *RoomResolver
	metrics    *MetricsCalculator
	dedup      *Deduplicator
	typer      *Typer
}

// NewPipeline wires every stage with the given options.
func NewPipeline(logger *utils.Logger, opts PipelineOptions) *Pipeline {
	return &Pipeline{
		logger:     logger,
		pool:       utils.NewWorkerPool(opts.Workers),
		unifier:    NewUnifier(logger),
		classifier: NewClassifier(logger),
		anonymizer: NewAnonymizer(logger),
		normalizer: NewNormalizer(logger, NormalizerOptions{PriceFromText: opts.PriceFromText}),
		signals:    NewSignalExtractor(logger),
		rooms:      NewRoomResolver(logger),
		metrics:    NewMetricsCalculator(logger),
		dedup:      NewDeduplicator(logger),
		typer:      NewTyper(logger, OutputSchema),
	}
}

// Run transforms t in place. The surrogate mapping lives for this call only.
func (p *Pipeline) Run(t *models.Table) *RunSummary {
	start := time.Now()
	summary := &RunSummary{InputRecords: t.Len()}
	p.logger.Info("[pipeline] Processing %d records on %d workers", t.Len(), p.pool.Size())

	summary.MergedColumns, _ = p.unifier.Apply(t)
	summary.UnknownCategories = p.classifier.Apply(t)
	p.anonymizer.Apply(t, NewSurrogates())

	stats := p.normalizer.Apply(t, p.pool)
	summary.PricesNull = int(stats.PricesNull.Load())

	summary.PreferenceResets = p.signals.Apply(t, p.pool)
	p.rooms.Apply(t, p.pool)
	p.metrics.Apply(t)

	summary.Duplicates = p.dedup.Apply(t)
	summary.CastFailures = p.typer.Apply(t)

	summary.OutputRecords = t.Len()
	summary.Elapsed = time.Since(start)
	p.logger.Info("[pipeline] %d → %d records in %v", summary.InputRecords, summary.OutputRecords,
		summary.Elapsed.Round(time.Millisecond))
	return summary
}
