package main

import (
	"cmp"
	"flag"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/utkarsh5026/scanpool/queue"
	"github.com/utkarsh5026/scanpool/scan"
)

var (
	bold  = color.New(color.Bold)
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
)

func printResults(results []RunResult) {
	ok := make([]RunResult, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			_, _ = red.Printf("✗ %s failed: %v\n", r.Name, r.Err)
			continue
		}
		ok = append(ok, r)
	}
	if len(ok) == 0 {
		return
	}

	slices.SortFunc(ok, func(a, b RunResult) int {
		return cmp.Compare(a.Elapsed, b.Elapsed)
	})
	for i := range ok {
		ok[i].Rank = i + 1
	}

	fmt.Println()
	_, _ = bold.Println("📊 PREFIX SUM RESULTS")
	fmt.Println()

	fastest := ok[0].Elapsed
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Executor", "Time", "vs Fastest", "Total", "Verified")

	for _, r := range ok {
		vs := "baseline"
		if r.Rank > 1 && fastest > 0 {
			vs = fmt.Sprintf("%.2fx", float64(r.Elapsed)/float64(fastest))
		}

		verified := "-"
		if r.Verified {
			verified = "yes"
		}

		_ = table.Append(
			fmt.Sprintf("%d", r.Rank),
			r.Name,
			r.Elapsed.Round(time.Microsecond).String(),
			vs,
			fmt.Sprintf("%d", r.Total),
			verified,
		)
	}
	_ = table.Render()
}

func printConfiguration(conf benchConfig, executors []string) {
	_, _ = bold.Println("⚙️  Configuration:")
	fmt.Printf("  Elements:   %d (2^%d)\n", 1<<conf.log2n, conf.log2n)
	fmt.Printf("  Workers:    %d (using %d CPU cores)\n", conf.workers, runtime.NumCPU())
	fmt.Printf("  Capacity:   %d (throttles at %d)\n", conf.capacity, conf.capacity/2)
	fmt.Printf("  Grain:      %d units per queued task\n", conf.grain)
	fmt.Printf("  Values:     [0, %d) seeded with %d\n", conf.maxValue, conf.seed)
	fmt.Printf("  Executors:  %v\n", executors)
	fmt.Println()
}

func getExecutorsToRun(name string) []string {
	if name == "" || name == "all" {
		return allExecutors
	}
	for _, e := range allExecutors {
		if strings.EqualFold(e, name) {
			return []string{e}
		}
	}

	_, _ = red.Printf("Error: unknown executor '%s'\n", name)
	fmt.Println("Available executors:", allExecutors)
	os.Exit(1)
	return nil
}

func makeProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func main() {
	enableWindowsANSI()

	log2nFlag := flag.Int("log2n", 20, "Array length as a power of two exponent (20 = 1,048,576 elements)")
	workersFlag := flag.Int("workers", queue.DefaultWorkerCount, "Worker count for the spawn and queue executors")
	capacityFlag := flag.Int("capacity", queue.DefaultCapacity, "Task ring capacity for the queue executor")
	grainFlag := flag.Int("grain", 1, "Units per queued task for the queue executor")
	executorFlag := flag.String("executor", "all", "Executor to run: all, sequential, spawn or queue")
	iterationsFlag := flag.Int("iterations", 1, "Timed iterations per executor (median is reported)")
	warmupFlag := flag.Int("warmup", 0, "Untimed warmup iterations per executor")
	seedFlag := flag.Int64("seed", 0, "Seed for the input values")
	maxFlag := flag.Int64("max", 10, "Input values are drawn from [0, max)")
	verifyFlag := flag.Bool("verify", true, "Check every result against the sequential reference")
	flag.Parse()

	if *log2nFlag < 0 || *log2nFlag > 30 {
		_, _ = red.Printf("Error: -log2n must be in [0, 30], got %d\n", *log2nFlag)
		os.Exit(1)
	}
	if *maxFlag < 1 || *iterationsFlag < 1 {
		_, _ = red.Println("Error: -max and -iterations must be positive")
		os.Exit(1)
	}

	conf := benchConfig{
		log2n:    *log2nFlag,
		workers:  *workersFlag,
		capacity: *capacityFlag,
		grain:    *grainFlag,
		seed:     *seedFlag,
		maxValue: *maxFlag,
		verify:   *verifyFlag,
	}
	executors := getExecutorsToRun(*executorFlag)
	printConfiguration(conf, executors)

	input := generateInput(1<<conf.log2n, conf.seed, conf.maxValue)
	var expected []int64
	if conf.verify {
		expected = slices.Clone(input)
		scan.SequentialExclusive(expected)
	}

	_, _ = bold.Println("Running Benchmarks...")
	bar := makeProgressBar(len(executors) * *iterationsFlag)

	results := make([]RunResult, 0, len(executors))
	for _, name := range executors {
		for range *warmupFlag {
			_ = newRunner(name, conf, input, nil).Run(nil)
			runtime.GC()
		}

		runs := make([]RunResult, 0, *iterationsFlag)
		for range *iterationsFlag {
			bar.Describe(fmt.Sprintf("Scanning: %s", name))
			runs = append(runs, newRunner(name, conf, input, expected).Run(bar))
			runtime.GC()
		}
		results = append(results, calculateStats(name, runs))
	}
	_ = bar.Finish()

	printResults(results)

	for _, r := range results {
		if r.Err != nil {
			os.Exit(1)
		}
	}
	if conf.verify {
		_, _ = green.Println("✓ all results match the sequential reference")
	}
}
