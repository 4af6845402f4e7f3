// Command sweep enumerates elevation pipeline configurations over a corpus of
// distance/elevation tracks, ranks them against ground truth, and optionally
// persists the run to a results database.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ridgeline-data/ascent.report/internal/config"
	"github.com/ridgeline-data/ascent.report/internal/elevation"
	"github.com/ridgeline-data/ascent.report/internal/elevation/sweep"
	"github.com/ridgeline-data/ascent.report/internal/groundtruth"
	"github.com/ridgeline-data/ascent.report/internal/storage/sqlite"
	"github.com/ridgeline-data/ascent.report/internal/version"
)

func main() {
	tracksDir := flag.String("tracks", "", "Directory of track CSV files (distance_m,elevation_m per line)")
	truthPath := flag.String("truth", "", "Ground truth JSON file mapping track filename to gain in metres")
	configPath := flag.String("config", "", "Tuning config JSON overriding the built-in base configuration")
	dbPath := flag.String("db", "", "SQLite results database; empty disables persistence")
	workers := flag.Int("workers", 0, "Evaluation workers (0 = one per CPU)")
	top := flag.Int("top", 10, "Number of ranked results to print")
	keep := flag.Bool("keep-evaluations", false, "Retain per-track evaluations on every result")
	byError := flag.Bool("by-error", false, "Rank by the error objective instead of the composite score")

	alphaSpec := flag.String("alpha", "", "Adaptive alpha values: min:max:step or comma list")
	spacingSpec := flag.String("spacing", "", "Resample spacing values (m)")
	multiplierSpec := flag.String("multiplier", "", "Outlier multiplier values")
	windowMinSpec := flag.String("window-min", "", "Adaptive window lower bound values")
	windowMaxSpec := flag.String("window-max", "", "Adaptive window upper bound values")
	intervalSpec := flag.String("interval", "", "Butterworth interval values (m)")
	blendSpec := flag.String("blend", "", "Gradient blend factor values")
	gainThrSpec := flag.String("gain-threshold", "", "Gain dead-zone threshold values (m)")
	lossThrSpec := flag.String("loss-threshold", "", "Loss dead-zone threshold values (m)")
	smoother := flag.String("smoother", "", "Fix the smoother for every combination: adaptive or butterworth")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sweep %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *tracksDir == "" {
		log.Fatal("-tracks is required")
	}

	base := elevation.DefaultParams()
	if *configPath != "" {
		cfg, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		base = cfg.Params()
		if *workers == 0 {
			*workers = cfg.GetWorkers()
		}
	}
	if *smoother != "" {
		base.Smoother = *smoother
		base = base.Clamp()
	}

	var truth groundtruth.Lookup
	if *truthPath != "" {
		m, err := groundtruth.LoadFile(*truthPath)
		if err != nil {
			log.Fatalf("loading ground truth: %v", err)
		}
		truth = m
	}

	tracks, err := loadTracks(*tracksDir)
	if err != nil {
		log.Fatalf("loading tracks: %v", err)
	}
	if len(tracks) == 0 {
		log.Fatalf("no track CSV files under %s", *tracksDir)
	}
	log.Printf("[sweep] loaded %d tracks from %s", len(tracks), *tracksDir)

	params, err := collectDimensions(map[string]string{
		"alpha":              *alphaSpec,
		"spacing_m":          *spacingSpec,
		"outlier_multiplier": *multiplierSpec,
		"window_min":         *windowMinSpec,
		"window_max":         *windowMaxSpec,
		"interval_m":         *intervalSpec,
		"blend_factor":       *blendSpec,
		"gain_threshold_m":   *gainThrSpec,
		"loss_threshold_m":   *lossThrSpec,
	})
	if err != nil {
		log.Fatal(err)
	}

	req := sweep.SweepRequest{
		Base:            &base,
		Params:          params,
		Workers:         *workers,
		KeepEvaluations: *keep || *byError,
	}

	runner := sweep.NewRunner(truth)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Print("[sweep] interrupt received, stopping")
		runner.Stop()
	}()

	if err := runner.Start(ctx, req, tracks); err != nil {
		log.Fatalf("starting sweep: %v", err)
	}
	<-runner.Done()

	state := runner.GetSweepState()
	for _, w := range state.Warnings {
		log.Printf("[sweep] warning: %s", w)
	}
	if state.Status != sweep.SweepStatusComplete {
		log.Fatalf("sweep did not complete: %s", state.Error)
	}

	results := state.Results
	if *byError {
		combos := make([]sweep.ComboResult, len(results))
		for i, r := range results {
			combos[i] = r.ComboResult
		}
		results = sweep.RankByError(combos)
	}

	printResults(results, *top)

	if *dbPath != "" {
		if err := persist(*dbPath, state, results); err != nil {
			log.Fatalf("persisting sweep: %v", err)
		}
	}
}

// collectDimensions turns non-empty flag specs into sweep dimensions. The
// iteration is ordered so repeated runs enumerate combinations identically.
func collectDimensions(specs map[string]string) ([]sweep.SweepParam, error) {
	order := []string{
		"spacing_m", "outlier_multiplier", "alpha", "window_min", "window_max",
		"interval_m", "blend_factor", "gain_threshold_m", "loss_threshold_m",
	}
	var out []sweep.SweepParam
	for _, name := range order {
		spec := specs[name]
		if spec == "" {
			continue
		}
		values, err := sweep.ParseParamList(spec)
		if err != nil {
			return nil, fmt.Errorf("parsing -%s: %w", strings.ReplaceAll(name, "_", "-"), err)
		}
		out = append(out, sweep.SweepParam{Name: name, Values: values})
	}
	return out, nil
}

// loadTracks reads every .csv file in dir as a distance_m,elevation_m series.
func loadTracks(dir string) ([]sweep.Track, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tracks []sweep.Track
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		trace, err := readTraceCSV(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		tracks = append(tracks, sweep.Track{Name: entry.Name(), Trace: trace})
	}
	return tracks, nil
}

// readTraceCSV parses one track file. A header row is skipped when its first
// field does not parse as a number.
func readTraceCSV(path string) (elevation.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	samples := make([]elevation.Sample, 0, len(records))
	for i, rec := range records {
		dist, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		elev, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		samples = append(samples, elevation.Sample{DistanceM: dist, ElevationM: elev})
	}
	return elevation.NewTrace(samples)
}

func printResults(results []sweep.ScoredResult, top int) {
	if top > len(results) {
		top = len(results)
	}
	fmt.Println("rank,combo,score,scored,mean_acc,median_acc,within_5,within_20,outside,median_ratio,params")
	for i := 0; i < top; i++ {
		r := results[i]
		values, _ := json.Marshal(r.ParamValues)
		fmt.Printf("%d,%d,%.2f,%d,%.1f,%.1f,%d,%d,%d,%.1f,%s\n",
			i+1, r.ComboIndex, r.Score, r.ScoredCount,
			r.MeanAccuracy, r.MedianAccuracy,
			r.Within5, r.Within20, r.Outside, r.MedianRatio, values)
	}
}

func persist(path string, state sweep.SweepState, results []sweep.ScoredResult) error {
	db, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewSweepStore(db)

	request, _ := json.Marshal(state.Request)
	rec := sqlite.SweepRecord{
		Status:     string(state.Status),
		Request:    request,
		StartedAt:  timeOrNow(state.StartedAt),
		ComboCount: state.TotalCombos,
	}
	if state.TotalCombos > 0 {
		rec.TrackCount = state.TotalEvaluations / state.TotalCombos
	}
	if err := store.InsertSweep(&rec); err != nil {
		return err
	}

	records := make([]sqlite.ResultRecord, len(results))
	for i, r := range results {
		records[i] = sqlite.ResultRecordFrom(rec.SweepID, i+1, r)
	}
	if err := store.InsertResults(records); err != nil {
		return err
	}
	if err := store.CompleteSweep(rec.SweepID, string(state.Status), timeOrNow(state.CompletedAt), state.Error); err != nil {
		return err
	}

	log.Printf("[sweep] persisted run %s to %s", rec.SweepID, path)
	return nil
}

func timeOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
