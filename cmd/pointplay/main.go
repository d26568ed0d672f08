// Command pointplay loads a dataset from a catalog, builds its point cloud
// and optionally plays its timeline frame by frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/pointplay/internal/catalog"
	"github.com/banshee-data/pointplay/internal/cloud"
	"github.com/banshee-data/pointplay/internal/config"
	"github.com/banshee-data/pointplay/internal/ingest"
	"github.com/banshee-data/pointplay/internal/playback"
	"github.com/banshee-data/pointplay/internal/version"
)

// Config holds the command line options.
type Config struct {
	CatalogPath string
	Dataset     string
	DBPath      string
	Mapping     string
	Play        bool
	List        bool
	Inspect     int
	Normalize   bool
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:], os.Stdout); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("pointplay: %v", err)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.CatalogPath, "catalog", "datasets.yaml", "Dataset catalog (.yaml, .yml or .json)")
	flag.StringVar(&cfg.Dataset, "dataset", "", "Name of the dataset to load")
	flag.StringVar(&cfg.DBPath, "db", "", "Catalog database; when set, definitions and loads are recorded")
	flag.StringVar(&cfg.Mapping, "mapping", "", "Mapping override, e.g. x=2,y=0,t=- (- unbinds a role)")
	flag.BoolVar(&cfg.Play, "play", false, "Play the timeline to the end")
	flag.BoolVar(&cfg.List, "list", false, "List catalog datasets and exit")
	flag.IntVar(&cfg.Inspect, "inspect", 0, "Print source values for the first N points of the first frame")
	flag.BoolVar(&cfg.Normalize, "normalize", false, "Report positions normalised to the unit cube")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("pointplay"))
		os.Exit(0)
	}
	return cfg
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	cat, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	if cfg.List {
		for _, d := range cat.Datasets {
			fmt.Fprintf(out, "%s\t%s\t%s\n", d.Name, cat.FilePath(&d), d.Description)
		}
		return nil
	}

	if cfg.Dataset == "" {
		if len(cat.Datasets) == 0 {
			return fmt.Errorf("catalog %s has no datasets", cfg.CatalogPath)
		}
		cfg.Dataset = cat.Datasets[0].Name
	}
	dcfg, err := cat.Dataset(cfg.Dataset)
	if err != nil {
		return err
	}

	var override *cloud.Mapping
	if cfg.Mapping != "" {
		base, err := dcfg.BaseMapping()
		if err != nil {
			return err
		}
		m, err := cloud.ParseMappingFlag(base, cfg.Mapping)
		if err != nil {
			return fmt.Errorf("-mapping: %w", err)
		}
		override = &m
	}

	spec, err := dcfg.LoadSpec(override, cat.Playback)
	if err != nil {
		return err
	}

	var result ingest.Result
	select {
	case result = <-ingest.LoadAsync(ctx, cat.FilePath(dcfg)):
	case <-ctx.Done():
		return ctx.Err()
	}
	if result.Err != nil {
		return result.Err
	}

	ds, err := cloud.Load(result.Table, spec)
	if err != nil {
		return err
	}
	printSummary(out, ds, dcfg)

	if cfg.DBPath != "" {
		if err := recordLoad(cfg.DBPath, dcfg, ds, result.Raw); err != nil {
			return err
		}
	}

	if cfg.Normalize {
		printBounds(out, "normalised", cloud.NormalizePositions(ds.Points))
	}

	if cfg.Inspect > 0 {
		printInspections(out, ds, dcfg, cfg.Inspect)
	}

	if cfg.Play {
		return play(ctx, ds, cat.Playback, out)
	}
	return nil
}

func printSummary(out io.Writer, ds *cloud.Dataset, dcfg *config.DatasetConfig) {
	sum := ds.Summary()
	fmt.Fprintf(out, "dataset %q (%s)\n", ds.Name, ds.ID)
	fmt.Fprintf(out, "  mapping: %s\n", ds.Mapping)
	fmt.Fprintf(out, "  rows: %d  points: %d  frames: %d\n", sum.Rows, sum.Points, sum.Frames)
	for _, role := range ds.Ranges.Roles() {
		rng, err := ds.Ranges.Get(role)
		if err != nil || rng.Empty() {
			continue
		}
		unit := dcfg.Unit(role)
		fmt.Fprintf(out, "  %-6s %-20s %s .. %s\n", role, ds.Labels[role], unit.Format(rng.Min), unit.Format(rng.Max))
	}
	if s := ds.Stats; s.TimeCoercionFailures+s.PositionCoercionFailures+s.SizeCoercionFailures > 0 {
		fmt.Fprintf(out, "  unparsed cells: time=%d position=%d size=%d\n",
			s.TimeCoercionFailures, s.PositionCoercionFailures, s.SizeCoercionFailures)
	}
	if sum.TimeEnabled {
		fmt.Fprintf(out, "  mean points per frame: %.1f\n", sum.MeanFrameSize)
	}
}

func printBounds(out io.Writer, label string, points []cloud.Point) {
	if len(points) == 0 {
		return
	}
	lo, hi := points[0].Position, points[0].Position
	for _, p := range points[1:] {
		for axis := range lo {
			lo[axis] = min(lo[axis], p.Position[axis])
			hi[axis] = max(hi[axis], p.Position[axis])
		}
	}
	fmt.Fprintf(out, "  %s bounds: min %v max %v\n", label, lo, hi)
}

func printInspections(out io.Writer, ds *cloud.Dataset, dcfg *config.DatasetConfig, n int) {
	frame := ds.Frame(0)
	if n > len(frame) {
		n = len(frame)
	}
	for _, p := range frame[:n] {
		in := ds.Inspect(p)
		fmt.Fprintf(out, "  row %d %q:", p.Row, in.Title)
		for _, m := range in.Values {
			fmt.Fprintf(out, " %s=%s", m.Label, dcfg.Unit(m.Role).Format(m.Value))
		}
		fmt.Fprintln(out)
	}
}

func recordLoad(dbPath string, dcfg *config.DatasetConfig, ds *cloud.Dataset, raw []byte) error {
	store, err := catalog.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.PutDataset(*dcfg); err != nil {
		return err
	}
	rec, err := catalog.NewLoadRecord(ds, raw)
	if err != nil {
		return err
	}
	last, err := store.LastFingerprint(ds.Name)
	if err != nil {
		return err
	}
	if last == rec.Fingerprint {
		log.Printf("source of %q unchanged since the last load", ds.Name)
	}
	return store.RecordLoad(rec)
}

func play(ctx context.Context, ds *cloud.Dataset, tuning *config.PlaybackConfig, out io.Writer) error {
	ctrl := playback.NewController(ds.Timeline.Len(), tuning.ControllerConfig())
	if !ctrl.Enabled() {
		fmt.Fprintf(out, "dataset %q has no time column; nothing to play\n", ds.Name)
		return nil
	}

	// OnFrame runs on both the caller and the tick goroutine.
	var mu sync.Mutex
	finished := make(chan struct{})
	player := playback.NewPlayer(ctrl, playback.PlayerConfig{
		Interval: tuning.GetInterval(),
		OnFrame: func(s playback.State) {
			mu.Lock()
			defer mu.Unlock()
			tag, _ := ds.Timeline.Value(s.CurrentIndex)
			fmt.Fprintf(out, "frame %d/%d t=%g points=%d\n",
				s.CurrentIndex, s.EndIndex, tag, len(playback.Visible(ds, s)))
			if !s.Playing && s.CurrentIndex == s.EndIndex {
				select {
				case <-finished:
				default:
					close(finished)
				}
			}
		},
	})
	defer player.Close()

	player.Play()
	if !player.State().Playing {
		return nil
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		player.Stop()
		return ctx.Err()
	}
}
