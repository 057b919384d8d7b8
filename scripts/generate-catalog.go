//go:build ignore

// Package main generates a synthetic indicators.json for load testing.
// Usage: go run scripts/generate-catalog.go -n 2000 -output testdata/bench/indicators.json
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Aman-CERP/indsearch/internal/catalog"
)

var (
	count  = flag.Int("n", 1000, "Number of indicators to generate")
	output = flag.String("output", "testdata/bench/indicators.json", "Output file")
	seed   = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var (
	quantities = []string{"temperature", "precipitation", "snow depth", "wind speed", "relative humidity", "sea ice", "soil moisture"}
	statistics = []string{"maximum", "minimum", "mean", "total", "number of days", "longest spell", "percentile"}
	periods    = []string{"daily", "monthly", "seasonal", "annual"}
	realms     = []string{"atmos", "land", "seaIce", "ocean"}
	variables  = map[string]string{
		"tas":     "Mean daily temperature",
		"tasmax":  "Maximum daily temperature",
		"tasmin":  "Minimum daily temperature",
		"pr":      "Mean daily precipitation flux",
		"snd":     "Surface snow thickness",
		"sfcWind": "Surface wind speed",
		"hurs":    "Relative humidity",
	}
	keywords = []string{"heat", "cold", "drought", "flood", "snow", "wind", "agriculture", "energy", "health"}
)

func pick(rng *rand.Rand, xs []string) string {
	return xs[rng.Intn(len(xs))]
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	varNames := make([]string, 0, len(variables))
	for name := range variables {
		varNames = append(varNames, name)
	}
	sort.Strings(varNames)
	title := cases.Title(language.English)

	inds := make([]*catalog.Indicator, *count)
	for i := range inds {
		stat, qty, period := pick(rng, statistics), pick(rng, quantities), pick(rng, periods)
		name := fmt.Sprintf("%s_%s_%04d", strings.ReplaceAll(stat, " ", "_"), strings.ReplaceAll(qty, " ", "_"), i)

		var vars catalog.Variables
		for n := 1 + rng.Intn(2); len(vars) < n; {
			v := pick(rng, varNames)
			if _, dup := vars.Get(v); !dup {
				vars = append(vars, catalog.Variable{Name: v, Description: variables[v]})
			}
		}

		inds[i] = &catalog.Indicator{
			ID:       name,
			Key:      strings.ToUpper(name),
			Title:    fmt.Sprintf("%s %s %s", title.String(period), stat, qty),
			Abstract: fmt.Sprintf("The %s of %s %s over the resampling period.", stat, period, qty),
			Vars:     vars,
			Realm:    pick(rng, realms),
			Module:   pick(rng, realms),
			Name:     name,
			Keywords: []string{pick(rng, keywords)},
		}
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *output, err)
		os.Exit(1)
	}
	if err := catalog.Encode(f, inds); err != nil {
		_ = f.Close()
		fmt.Fprintf(os.Stderr, "encode catalog: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d indicators in %s\n", len(inds), *output)
}
