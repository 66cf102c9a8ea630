package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/janus-hypergraph/hypergraph"
	"github.com/wbrown/janus-hypergraph/hypergraph/annotations"
	"github.com/wbrown/janus-hypergraph/hypergraph/pattern"
	"github.com/wbrown/janus-hypergraph/hypergraph/planner"
	"github.com/wbrown/janus-hypergraph/hypergraph/schema"
)

func main() {
	var patternPath string
	var statsPath string
	var dbPath string
	var budget time.Duration
	var verbose bool
	var help bool

	flag.StringVar(&patternPath, "pattern", "", "pattern file (default: read from stdin)")
	flag.StringVar(&statsPath, "stats", "", "statistics file")
	flag.StringVar(&dbPath, "db", "", "statistics database directory")
	flag.DurationVar(&budget, "budget", planner.DefaultTimeBudget, "solver time budget")
	flag.BoolVar(&verbose, "verbose", false, "verbose mode (show planning annotations)")
	flag.BoolVar(&help, "h", false, "show help")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [pattern_file]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Plans an optimal traversal for a hypergraph query pattern.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s query.pat                  # Plan a pattern with fabricated statistics\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -stats stats.txt query.pat # Plan against a statistics file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -db ./stats.db query.pat   # Plan against a statistics database\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -verbose query.pat         # Show planning annotations\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPattern syntax:\n")
		fmt.Fprintf(os.Stderr, "  thing $x iid=ab12 types=person,robot where==value\n")
		fmt.Fprintf(os.Stderr, "  type $t label=person abstract value=string regex=...\n")
		fmt.Fprintf(os.Stderr, "  edge $x knows $t\n")
		fmt.Fprintf(os.Stderr, "\nStatistics syntax:\n")
		fmt.Fprintf(os.Stderr, "  type person entity count=1000\n")
		fmt.Fprintf(os.Stderr, "  type name attribute abstract count=500\n")
		fmt.Fprintf(os.Stderr, "  edge knows estimate=50\n")
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	if patternPath == "" && flag.NArg() > 0 {
		patternPath = flag.Arg(0)
	}

	pat, err := loadPattern(patternPath)
	if err != nil {
		log.Fatalf("Failed to load pattern: %v", err)
	}

	graph, closer, err := loadStats(statsPath, dbPath, pat)
	if err != nil {
		log.Fatalf("Failed to load statistics: %v", err)
	}
	if closer != nil {
		defer closer()
	}

	opts := planner.DefaultPlannerOptions()
	opts.TimeBudget = budget
	if verbose {
		opts.Handler = annotations.ConsoleHandler()
	}

	started := time.Now()
	plan, err := planner.PlanPattern(pat, graph, opts)
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}

	renderPlan(pat, plan, time.Since(started))
}

func loadPattern(path string) (*pattern.Pattern, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return pattern.Parse(string(data))
}

// loadStats picks the statistics source: an on-disk database, a text
// file, or statistics fabricated from the pattern itself so that a
// bare invocation still produces a sensible plan.
func loadStats(statsPath, dbPath string, pat *pattern.Pattern) (schema.Graph, func(), error) {
	if dbPath != "" {
		stats, err := schema.OpenStats(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return stats, func() { stats.Close() }, nil
	}
	if statsPath != "" {
		data, err := os.ReadFile(statsPath)
		if err != nil {
			return nil, nil, err
		}
		g, err := parseStats(string(data))
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil
	}
	return fabricateStats(pat), nil, nil
}

// parseStats reads the line-oriented statistics format.
func parseStats(input string) (*schema.MemGraph, error) {
	g := schema.NewMemGraph()
	for lineNo, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "type":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: type needs a name and a kind", lineNo+1)
			}
			name := fields[1]
			kind, err := parseTypeKind(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNo+1, err)
			}
			abstract := false
			var count uint64
			for _, f := range fields[3:] {
				switch {
				case f == "abstract":
					abstract = true
				case strings.HasPrefix(f, "count="):
					n, err := strconv.ParseUint(strings.TrimPrefix(f, "count="), 10, 64)
					if err != nil {
						return nil, fmt.Errorf("line %d: bad count: %v", lineNo+1, err)
					}
					count = n
				default:
					return nil, fmt.Errorf("line %d: unknown field %q", lineNo+1, f)
				}
			}
			g.DefineType(name, kind, abstract)
			g.SetInstanceCount(name, count)
		case "edge":
			if len(fields) != 3 || !strings.HasPrefix(fields[2], "estimate=") {
				return nil, fmt.Errorf("line %d: edge needs a label and estimate=N", lineNo+1)
			}
			n, err := strconv.ParseUint(strings.TrimPrefix(fields[2], "estimate="), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad estimate: %v", lineNo+1, err)
			}
			g.SetEdgeEstimate(fields[1], n)
		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", lineNo+1, fields[0])
		}
	}
	return g, nil
}

func parseTypeKind(s string) (schema.TypeKind, error) {
	switch s {
	case "entity":
		return schema.KindEntity, nil
	case "relation":
		return schema.KindRelation, nil
	case "attribute":
		return schema.KindAttribute, nil
	default:
		return 0, fmt.Errorf("unknown type kind %q", s)
	}
}

// fabricateStats invents a uniform statistics graph from the type
// labels the pattern mentions. Costs are then driven purely by pattern
// structure, which is the right default when no real counts exist.
func fabricateStats(pat *pattern.Pattern) *schema.MemGraph {
	const defaultCount = 1000
	g := schema.NewMemGraph()
	for _, v := range pat.Vertices() {
		switch {
		case v.Thing != nil:
			for _, label := range v.Thing.Types {
				g.DefineType(label, schema.KindEntity, false)
				g.SetInstanceCount(label, defaultCount)
			}
		case v.Type != nil && v.Type.Label != "":
			g.DefineType(v.Type.Label, schema.KindEntity, false)
			g.SetInstanceCount(v.Type.Label, defaultCount)
		}
	}
	return g
}

func renderPlan(pat *pattern.Pattern, plan *planner.Plan, elapsed time.Duration) {
	bold := color.New(color.Bold)
	bold.Printf("Plan (%s)\n\n", elapsed.Round(time.Microsecond))

	roots := make(map[hypergraph.Identifier]bool, len(plan.Roots))
	for _, id := range plan.Roots {
		roots[id] = true
	}
	position := make(map[hypergraph.Identifier]int, len(plan.Order))
	for i, id := range plan.Order {
		position[id] = i
	}

	table := newTable(os.Stdout)
	table.Header([]string{"#", "vertex", "kind", "root"})
	for _, id := range plan.Order {
		v, _ := pat.Lookup(id)
		root := ""
		if roots[id] {
			root = color.GreenString("yes")
		}
		table.Append([]string{
			strconv.Itoa(position[id]),
			id.String(),
			v.Kind.String(),
			root,
		})
	}
	table.Render()

	if len(plan.Edges) > 0 {
		fmt.Println()
		edges := newTable(os.Stdout)
		edges.Header([]string{"from", "label", "to"})
		for _, e := range plan.Edges {
			edges.Append([]string{e.From.String(), e.Label, e.To.String()})
		}
		edges.Render()
	}

	fmt.Println()
	fmt.Printf("%s %d, %s %d, %s %d\n",
		color.BlueString("roots:"), len(plan.Roots),
		color.CyanString("vertices:"), len(plan.Order),
		color.MagentaString("edges:"), len(plan.Edges))
}

func newTable(w *os.File) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}
