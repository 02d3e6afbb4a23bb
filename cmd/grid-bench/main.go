package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"golang.org/x/term"
)

// ═══════════════════════════════════════════════════════════════════════════
// grid-bench: evaluation benchmark for the grid engine
//
// Usage:
//   grid-bench [--rows N] [--runs N] [--scenario name]... [--json [path]]
//
// Generates a synthetic dataset, then times cold evaluations (new table,
// empty memo) and warm evaluations (unchanged inputs) for each scenario.
// ═══════════════════════════════════════════════════════════════════════════

// isTTY is true when stdout is a terminal and accessibility mode is off
var isTTY bool

func init() {
	isTTY = term.IsTerminal(int(os.Stdout.Fd())) && !styles.IsAccessible()
}

// Lipgloss styles using grid's color palette
var (
	stBold    = lipgloss.NewStyle().Bold(true)
	stDim     = lipgloss.NewStyle().Foreground(styles.Muted)
	stAccent  = lipgloss.NewStyle().Foreground(styles.Accent)
	stSuccess = lipgloss.NewStyle().Foreground(styles.Success)
)

// render applies a lipgloss style, respecting NoColor
func render(s lipgloss.Style, text string) string {
	if styles.NoColor() {
		return text
	}
	return s.Render(text)
}

type cliArgs struct {
	rows      int
	runs      int
	scenarios []string
	jsonMode  bool
	jsonPath  string
}

type scenario struct {
	name    string
	desc    string
	prepare func(o *grid.Options)
	// act runs between warm evaluations, nil for none
	act func(inst *grid.Instance)
}

type benchResult struct {
	Scenario string  `json:"scenario"`
	Rows     int     `json:"rows"`
	Visible  int     `json:"visible_rows"`
	Runs     int     `json:"runs"`
	ColdMs   float64 `json:"cold_ms"`
	WarmMs   float64 `json:"warm_ms"`
	ActMs    float64 `json:"act_ms,omitempty"`
}

var scenarios = []scenario{
	{
		name:    "core",
		desc:    "pagination only",
		prepare: func(o *grid.Options) {},
	},
	{
		name: "search",
		desc: "fuzzy global filter",
		prepare: func(o *grid.Options) {
			o.InitialState.GlobalFilter = "ann"
		},
	},
	{
		name: "filter",
		desc: "range and select column filters",
		prepare: func(o *grid.Options) {
			o.InitialState.ColumnFilters = []grid.ColumnFilter{
				{ID: "amount", Value: []any{100.0, 500.0}},
				{ID: "city", Value: "Oslo"},
			}
		},
	},
	{
		name: "sort",
		desc: "two-column sort",
		prepare: func(o *grid.Options) {
			o.InitialState.Sorting = []grid.SortSpec{{ID: "city"}, {ID: "amount", Desc: true}}
		},
	},
	{
		name: "group",
		desc: "group by city, sum amount",
		prepare: func(o *grid.Options) {
			o.Features.EnableGrouping = true
			o.InitialState.Grouping = []string{"city"}
		},
	},
	{
		name: "paging",
		desc: "sort, then step through pages",
		prepare: func(o *grid.Options) {
			o.InitialState.Sorting = []grid.SortSpec{{ID: "name"}}
		},
		act: func(inst *grid.Instance) { inst.NextPage() },
	},
	{
		name: "select",
		desc: "select the visible page",
		prepare: func(o *grid.Options) {
			o.Features.EnableRowSelection = true
		},
		act: func(inst *grid.Instance) { inst.ToggleAllPageRowsSelected() },
	},
}

func main() {
	args := parseArgs()

	selected := scenarios
	if len(args.scenarios) > 0 {
		selected = nil
		for _, name := range args.scenarios {
			s, ok := findScenario(name)
			if !ok {
				fatalMsg("Unknown scenario: %s", name)
			}
			selected = append(selected, s)
		}
	}

	data := generate(args.rows)
	if !args.jsonMode {
		printHeader(args)
	}

	results := make([]benchResult, 0, len(selected))
	for _, s := range selected {
		if isTTY && !args.jsonMode {
			fmt.Printf("  %s %s...\r", render(stAccent, "●"), s.name)
		}
		r, err := runScenario(s, data, args.runs)
		if err != nil {
			fatalMsg("%s: %v", s.name, err)
		}
		results = append(results, r)
	}

	if args.jsonMode {
		writeJSONOutput(results, args.jsonPath)
		return
	}
	printSummaryTable(results)
	successMsg("%d scenarios, %s rows", len(results), formatCount(int64(args.rows)))
}

func parseArgs() cliArgs {
	args := cliArgs{rows: 10000, runs: 5}
	osArgs := os.Args[1:]

	for i := 0; i < len(osArgs); i++ {
		switch osArgs[i] {
		case "--rows", "-n":
			if i+1 < len(osArgs) {
				i++
				args.rows = positive("--rows", osArgs[i])
			}
		case "--runs", "-r":
			if i+1 < len(osArgs) {
				i++
				args.runs = positive("--runs", osArgs[i])
			}
		case "--scenario", "-s":
			if i+1 < len(osArgs) {
				i++
				args.scenarios = append(args.scenarios, strings.Split(osArgs[i], ",")...)
			}
		case "--json", "-j":
			args.jsonMode = true
			// Check if next arg is a path (not a flag)
			if i+1 < len(osArgs) && !strings.HasPrefix(osArgs[i+1], "-") {
				i++
				args.jsonPath = osArgs[i]
			}
		case "--no-color":
			styles.SetNoColor(true)
		case "--help", "-h":
			printUsage()
			os.Exit(0)
		default:
			fatalMsg("Unknown argument: %s", osArgs[i])
		}
	}
	return args
}

func positive(flag, s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		fatalMsg("%s requires a positive integer, got: %s", flag, s)
	}
	return n
}

func printUsage() {
	fmt.Println(render(stAccent.Bold(true), "grid-bench") + render(stDim, " - evaluation benchmark"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  grid-bench [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -n, --rows <n>         Rows in the generated dataset (default 10000)")
	fmt.Println("  -r, --runs <n>         Evaluations per measurement (default 5)")
	fmt.Println("  -s, --scenario <name>  Run only these scenarios (repeat or comma-separate)")
	fmt.Println("  -j, --json [path]      Write results as JSON (stdout if no path)")
	fmt.Println("      --no-color         Disable colors")
	fmt.Println()
	fmt.Println("Scenarios:")
	for _, s := range scenarios {
		fmt.Printf("  %-10s %s\n", s.name, render(stDim, s.desc))
	}
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

// ═══════════════════════════════════════════════════════════════════════════
// Measurement
// ═══════════════════════════════════════════════════════════════════════════

func baseOptions(data []grid.Record) grid.Options {
	return grid.Options{
		Columns: []grid.ColumnDef{
			{AccessorKey: "id", Header: "ID", DataType: grid.TypeNumber},
			{AccessorKey: "name", Header: "Name"},
			{AccessorKey: "city", Header: "City", FilterVariant: grid.VariantSelect},
			{AccessorKey: "amount", Header: "Amount", DataType: grid.TypeNumber, FilterVariant: grid.VariantRange, AggregationFn: "sum"},
			{AccessorKey: "active", Header: "Active", DataType: grid.TypeBool, FilterVariant: grid.VariantCheckbox},
			{AccessorKey: "created", Header: "Created", DataType: grid.TypeDate},
		},
		Data:     data,
		Features: grid.DefaultFeatures(),
		Plugins:  []grid.Plugin{grid.PageSummaryPlugin(), grid.SelectionSummaryPlugin()},
	}
}

func runScenario(s scenario, data []grid.Record, runs int) (benchResult, error) {
	r := benchResult{Scenario: s.name, Rows: len(data), Runs: runs}

	var cold, warm, act time.Duration
	for i := 0; i < runs; i++ {
		opts := baseOptions(data)
		s.prepare(&opts)

		start := time.Now()
		t, err := grid.New(opts)
		if err != nil {
			return r, err
		}
		inst := t.Evaluate()
		cold += time.Since(start)
		r.Visible = inst.RowModel().Len()

		start = time.Now()
		inst = t.Evaluate()
		warm += time.Since(start)

		if s.act != nil {
			s.act(inst)
			start = time.Now()
			t.Evaluate()
			act += time.Since(start)
		}
		t.Close()
	}

	r.ColdMs = ms(cold / time.Duration(runs))
	r.WarmMs = ms(warm / time.Duration(runs))
	if s.act != nil {
		r.ActMs = ms(act / time.Duration(runs))
	}
	return r, nil
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// generate builds a deterministic dataset.
func generate(n int) []grid.Record {
	names := []string{"Anna", "Bjørn", "Carla", "Dmitri", "Emeka", "Fatima", "Giulia", "Hannah", "Ivan", "Joanna"}
	cities := []string{"Oslo", "Bergen", "Trondheim", "Stavanger", "Tromsø"}
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out := make([]grid.Record, n)
	for i := range out {
		out[i] = grid.Record{
			"id":      float64(i + 1),
			"name":    names[rng.Intn(len(names))] + " " + strconv.Itoa(rng.Intn(1000)),
			"city":    cities[rng.Intn(len(cities))],
			"amount":  float64(rng.Intn(100000)) / 100,
			"active":  rng.Intn(2) == 0,
			"created": base.Add(time.Duration(rng.Intn(365*24)) * time.Hour),
		}
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Output
// ═══════════════════════════════════════════════════════════════════════════

func printHeader(args cliArgs) {
	fmt.Println()
	fmt.Printf("%s %s\n", render(stAccent.Bold(true), "grid-bench"), render(stDim, "- evaluation benchmark"))
	fmt.Println(render(stDim, "════════════════════════════════════════════════════════════"))
	fmt.Printf("  Rows:        %s\n", formatCount(int64(args.rows)))
	fmt.Printf("  Runs:        %d\n", args.runs)
	fmt.Printf("  Date:        %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(render(stDim, "════════════════════════════════════════════════════════════"))
	fmt.Println()
}

func printSummaryTable(results []benchResult) {
	sectionHeader("Summary")
	fmt.Println()

	sorted := append([]benchResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ColdMs > sorted[j].ColdMs })

	fmt.Printf("  %-10s %10s %10s %10s %10s\n", "Scenario", "Visible", "Cold", "Warm", "Action")
	fmt.Printf("  %s\n", render(stDim, strings.Repeat("─", 54)))
	for _, r := range sorted {
		action := render(stDim, "-")
		if r.ActMs > 0 {
			action = formatMs(r.ActMs)
		}
		fmt.Printf("  %-10s %10s %10s %10s %10s\n",
			r.Scenario,
			formatCount(int64(r.Visible)),
			formatMs(r.ColdMs),
			render(stSuccess, formatMs(r.WarmMs)),
			action)
	}
	fmt.Println()
}

func writeJSONOutput(results []benchResult, path string) {
	var w *os.File
	if path == "" {
		w = os.Stdout
	} else {
		var err error
		w, err = os.Create(path)
		if err != nil {
			fatalMsg("Failed to create JSON file: %v", err)
		}
		defer w.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(results)
}

func formatCount(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}

func formatMs(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("%.2fs", v/1000)
	}
	return fmt.Sprintf("%.2fms", v)
}

func sectionHeader(title string) {
	fmt.Printf("  %s\n", render(stBold, title))
}

func successMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("  %s\n", styles.SuccessMsg(msg))
}

func fatalMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "\n  %s\n\n", styles.ErrorMsg(msg))
	os.Exit(1)
}
