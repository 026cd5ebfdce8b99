package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"solarprep/adapters/excel"
	"solarprep/domain/core"
	"solarprep/domain/dataset"
	"solarprep/internal"
	"solarprep/internal/analysis"
	pipeline "solarprep/internal/dataset"
	"solarprep/internal/errors"
	"solarprep/internal/profiling"
	"solarprep/internal/report"
	"solarprep/ports"

	"github.com/hashicorp/go-multierror"
)

// BuildRequest defines the inputs of one dataset build
type BuildRequest struct {
	PlantDir   string // one sub-directory of reading files per plant
	PlantInfo  string // site table file
	WeatherDir string // weather observation files
	Params     dataset.BuildParams
	Parse      excel.ParseConfig
	Workers    int
}

// BuildResult describes a finished build
type BuildResult struct {
	Summary   *dataset.RunSummary
	Schema    dataset.Schema
	Split     dataset.Split
	OutputDir string
}

// DatasetBuildService turns raw plant logs, the site table and weather
// observations into train and test tables.
type DatasetBuildService struct {
	storage ports.FileStorage
	writers []ports.TableWriter
	runs    ports.RunRepository
	logger  *internal.Logger
}

// NewDatasetBuildService creates a build service. runs may be nil, in which
// case no run history is recorded.
func NewDatasetBuildService(storage ports.FileStorage, writers []ports.TableWriter, runs ports.RunRepository, logger *internal.Logger) *DatasetBuildService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DatasetBuildService{
		storage: storage,
		writers: writers,
		runs:    runs,
		logger:  logger.With("DatasetBuild"),
	}
}

// Build runs the whole pipeline. Output files are only written once every
// stage succeeded, so a failed build leaves no partial tables behind.
func (s *DatasetBuildService) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	start := time.Now()
	summary := dataset.NewRunSummary(req.Params)
	s.recordStart(ctx, summary)

	result, err := s.build(ctx, req, summary)
	if err != nil {
		summary.Fail(err)
		s.recordFinish(ctx, summary)
		s.logger.Error("run %s failed after %v: %v", summary.RunID, time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}

	s.recordFinish(ctx, summary)
	s.logger.Info("run %s finished in %v: %d train rows, %d test rows in %s",
		summary.RunID, time.Since(start).Round(time.Millisecond), summary.Split.TrainRows, summary.Split.TestRows, result.OutputDir)
	return result, nil
}

func (s *DatasetBuildService) build(ctx context.Context, req BuildRequest, summary *dataset.RunSummary) (*BuildResult, error) {
	params := req.Params

	// Step 1: site table
	sites, err := s.readSites(ctx, req.PlantInfo, req.Parse.Sites)
	if err != nil {
		return nil, err
	}
	summary.SiteCount = len(sites.Sites)

	// Step 2: per-plant alignment and labeling
	labeled, err := s.processPlants(ctx, req, summary)
	if err != nil {
		return nil, err
	}

	// Step 3: canonical site keys
	mapped, keyStats := pipeline.NewKeyMapper(sites).Apply(labeled)
	summary.KeyMap = keyStats
	for _, name := range keyStats.UnmappedNames {
		s.logger.Warn("UnmappedKeyWarning: site name %q matches no site table entry and is passed through", name)
	}

	// Step 4: weather
	weather, err := s.readWeather(ctx, req.WeatherDir, req.Parse.Weather)
	if err != nil {
		return nil, err
	}
	summary.WeatherRows = len(weather.Records)

	// Step 5: joins
	merged, err := pipeline.NewMerger(pipeline.DefaultMergeConfig(), s.logger).Merge(mapped, sites, weather)
	if err != nil {
		return nil, errors.Wrap(err, "merge failed")
	}
	summary.Join = merged.Stats

	// Step 6: chronological split
	partition, err := analysis.NewDataPartitioner(s.logger).PartitionDataset(merged.Records, params.TestPeriodDays)
	if err != nil {
		return nil, errors.Wrap(err, "split failed")
	}
	summary.Split = partition.Stats

	schema := dataset.Schema{Target: params.Target, Horizons: params.Horizons, WeatherAttributes: weather.Attributes}

	profile, err := profiling.NewDataProfiler().ProfileDataset(schema, merged.Records)
	if err != nil {
		return nil, errors.Wrap(err, "label profile failed")
	}
	summary.Profile = profile

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 7: outputs
	outDir, err := s.writeOutputs(ctx, schema, partition.Split, summary)
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		Summary:   summary,
		Schema:    schema,
		Split:     partition.Split,
		OutputDir: outDir,
	}, nil
}

// ============================================================================
// INPUTS
// ============================================================================

func (s *DatasetBuildService) readTable(ctx context.Context, path string) (*excel.ExcelData, error) {
	rc, err := s.storage.GetReader(ctx, path)
	if err != nil {
		return nil, errors.MalformedInput(fmt.Sprintf("cannot open %s", path), fmt.Errorf("%w: %w", core.ErrMalformedInput, err))
	}
	defer rc.Close()

	data, err := excel.NewDataReader(path, s.logger).ReadFrom(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	return data, nil
}

func (s *DatasetBuildService) readSites(ctx context.Context, path string, cols excel.SiteColumns) (dataset.SiteTable, error) {
	data, err := s.readTable(ctx, path)
	if err != nil {
		return dataset.SiteTable{}, err
	}
	sites, err := excel.ParseSiteTable(path, data, cols)
	if err != nil {
		return dataset.SiteTable{}, errors.Wrap(err, "invalid site table")
	}
	for _, site := range sites.Sites {
		if site.Region == "" {
			s.logger.Warn("site %s (%q) has no region in its address; its rows cannot meet weather data", site.ID, site.Name)
		}
	}
	s.logger.Info("loaded %d sites from %s", len(sites.Sites), path)
	return sites, nil
}

// processPlants aligns and labels each plant directory on its own; unit names
// are only unique within one plant.
func (s *DatasetBuildService) processPlants(ctx context.Context, req BuildRequest, summary *dataset.RunSummary) ([]dataset.LabeledRecord, error) {
	dirs, err := s.storage.ListDirs(ctx, req.PlantDir)
	if err != nil {
		return nil, errors.MalformedInput("cannot list plant directories", fmt.Errorf("%w: %w", core.ErrMalformedInput, err))
	}
	if len(dirs) == 0 {
		return nil, errors.MalformedInput(fmt.Sprintf("no plant directories under %s", req.PlantDir), core.ErrMalformedInput)
	}

	processor := pipeline.NewProcessor(pipeline.ProcessorConfig{Horizons: req.Params.Horizons, Workers: req.Workers}, s.logger)
	var labeled []dataset.LabeledRecord
	for _, dir := range dirs {
		files, err := s.storage.ListFiles(ctx, dir)
		if err != nil {
			return nil, errors.MalformedInput("cannot list plant files", fmt.Errorf("%w: %w", core.ErrMalformedInput, err))
		}
		if len(files) == 0 {
			s.logger.Warn("plant directory %s has no files, skipping", dir)
			continue
		}

		var readings []dataset.Reading
		for _, file := range files {
			data, err := s.readTable(ctx, file)
			if err != nil {
				return nil, err
			}
			rs, err := excel.ParseReadings(file, data, req.Parse.Plant)
			if err != nil {
				return nil, errors.Wrap(err, "invalid plant log")
			}
			readings = append(readings, rs...)
		}

		batch, err := processor.ProcessBatch(ctx, readings)
		if err != nil {
			return nil, errors.Wrapf(err, "plant %s", filepath.Base(dir))
		}
		s.logger.Info("plant %s: %d readings (%d duplicates), %d units, %d slots filled, %d labeled rows",
			filepath.Base(dir), batch.Readings, batch.DuplicateReadings, batch.Units, batch.Synthesized, len(batch.Records))

		summary.ReadingRows += batch.Readings
		summary.UnitCount += batch.Units
		summary.RepairedSlots += batch.Synthesized
		summary.LabeledRows += len(batch.Records)
		labeled = append(labeled, batch.Records...)
	}
	return labeled, nil
}

func (s *DatasetBuildService) readWeather(ctx context.Context, dir string, cfg excel.WeatherConfig) (dataset.WeatherTable, error) {
	files, err := s.storage.ListFiles(ctx, dir)
	if err != nil {
		return dataset.WeatherTable{}, errors.MalformedInput("cannot list weather files", fmt.Errorf("%w: %w", core.ErrMalformedInput, err))
	}

	weather := dataset.WeatherTable{Attributes: cfg.Attributes()}
	for _, file := range files {
		data, err := s.readTable(ctx, file)
		if err != nil {
			return dataset.WeatherTable{}, err
		}
		table, err := excel.ParseWeather(file, data, cfg)
		if err != nil {
			return dataset.WeatherTable{}, errors.Wrap(err, "invalid weather table")
		}
		excel.AppendWeather(&weather, table)
	}
	if len(files) == 0 {
		s.logger.Warn("no weather files under %s; every row will be dropped at the weather join", dir)
	}
	s.logger.Info("loaded %d weather observations from %d files", len(weather.Records), len(files))
	return weather, nil
}

// ============================================================================
// OUTPUTS
// ============================================================================

func (s *DatasetBuildService) writeOutputs(ctx context.Context, schema dataset.Schema, split dataset.Split, summary *dataset.RunSummary) (string, error) {
	outDir, err := s.storage.PrepareDir(ctx, summary.Params.DirName())
	if err != nil {
		return "", errors.OutputError("cannot prepare output directory", err)
	}

	for _, w := range s.writers {
		summary.Outputs = append(summary.Outputs, "train."+w.Format(), "test."+w.Format())
	}
	summary.Outputs = append(summary.Outputs, report.ShapeInfoFile, report.SummaryFile, report.MarkdownFile, report.HTMLFile)

	var result *multierror.Error
	for _, w := range s.writers {
		for _, side := range []struct {
			name    string
			records []dataset.MergedRecord
		}{{"train", split.Train}, {"test", split.Test}} {
			path := filepath.Join(outDir, side.name+"."+w.Format())
			if err := s.writeFile(ctx, path, func(dst io.Writer) error {
				return w.Write(dst, schema, side.records)
			}); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
			}
		}
	}

	// The summary is final before it is written; only the finish time changes later.
	summary.Complete()
	md := report.Markdown(summary, schema)
	columns := len(schema.Headers())
	artifacts := []struct {
		name  string
		write func(io.Writer) error
	}{
		{report.ShapeInfoFile, func(dst io.Writer) error {
			return report.WriteShapeInfo(dst, len(split.Train), len(split.Test), columns)
		}},
		{report.SummaryFile, func(dst io.Writer) error { return report.WriteSummary(dst, summary) }},
		{report.MarkdownFile, func(dst io.Writer) error { return writeBytes(dst, md) }},
		{report.HTMLFile, func(dst io.Writer) error {
			return writeBytes(dst, report.HTML(md, "Dataset build "+summary.RunID.String()))
		}},
	}
	for _, a := range artifacts {
		path := filepath.Join(outDir, a.name)
		if err := s.writeFile(ctx, path, a.write); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return "", errors.OutputError("failed to write outputs", err)
	}
	return outDir, nil
}

func (s *DatasetBuildService) writeFile(ctx context.Context, path string, write func(io.Writer) error) error {
	f, err := s.storage.Create(ctx, path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.logger.Debug("wrote %s", path)
	return nil
}

func writeBytes(dst io.Writer, data []byte) error {
	_, err := io.Copy(dst, bytes.NewReader(data))
	return err
}

// ============================================================================
// RUN HISTORY
// ============================================================================

// recordStart stores the new run. History failures are logged and never fail
// the build.
func (s *DatasetBuildService) recordStart(ctx context.Context, summary *dataset.RunSummary) {
	if s.runs == nil {
		return
	}
	previous, err := s.runs.FindLatestReady(ctx, summary.Fingerprint)
	if err != nil {
		s.logger.Warn("run history lookup failed: %v", err)
	} else if previous != nil {
		s.logger.Info("identical parameters were built by run %s at %s; rebuilding",
			previous.RunID, previous.FinishedAt.Format(time.RFC3339))
	}
	if err := s.runs.Create(ctx, summary); err != nil {
		s.logger.Warn("could not record run %s: %v", summary.RunID, err)
	}
}

func (s *DatasetBuildService) recordFinish(ctx context.Context, summary *dataset.RunSummary) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Update(ctx, summary); err != nil {
		s.logger.Warn("could not update run %s: %v", summary.RunID, err)
	}
}
