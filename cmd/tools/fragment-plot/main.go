// fragment-plot renders a PNG histogram of fragment volume ratios from a
// recorded fragmentation run.
package main

import (
	"flag"
	"fmt"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/rubble/internal/storage/sqlite"
)

func main() {
	dbPath := flag.String("db", "fracture.db", "Path to the run database")
	runID := flag.Int64("run", 0, "Run ID to plot; 0 means the latest run")
	out := flag.String("out", "fragments.png", "Output PNG path")
	bins := flag.Int("bins", 20, "Histogram bin count")
	flag.Parse()

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if *runID == 0 {
		*runID, err = db.LatestRunID()
		if err != nil {
			log.Fatalf("find latest run: %v", err)
		}
	}

	samples, err := db.FragmentSamples(*runID)
	if err != nil {
		log.Fatalf("load fragments: %v", err)
	}
	if len(samples) == 0 {
		log.Fatalf("run %d has no fragments", *runID)
	}

	ratios := make(plotter.Values, len(samples))
	for i, s := range samples {
		ratios[i] = s.VolumeRatio
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Fragment volume ratios (run %d)", *runID)
	p.X.Label.Text = "volume ratio"
	p.Y.Label.Text = "fragments"

	hist, err := plotter.NewHist(ratios, *bins)
	if err != nil {
		log.Fatalf("build histogram: %v", err)
	}
	p.Add(hist)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, *out); err != nil {
		log.Fatalf("save plot: %v", err)
	}
	fmt.Printf("wrote %s (%d fragments)\n", *out, len(samples))
}
