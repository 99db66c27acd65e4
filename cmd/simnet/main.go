// Command simnet runs a scenario description and reports what happened to its messages
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"github.com/iti/simnet"
	"github.com/iti/simnet/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

func main() {
	scenarioFile := flag.String("scenario", "", "scenario description file (.yaml, .yml or .json)")
	forceYAML := flag.Bool("yaml", false, "parse the scenario as yaml whatever its extension")
	traceFile := flag.String("trace", "", "write message traces to this file (.yaml or .json)")
	engine := flag.String("engine", "sim", "event engine: sim (built-in simulator) or evtm")
	horizon := flag.Float64("horizon", -1, "stop at this simulation time, overriding the scenario (seconds)")
	showMetrics := flag.Bool("metrics", false, "print the Prometheus metrics of the run")
	flag.Parse()

	log := logging.NewFromEnv()
	if _, err := run(os.Stdout, *scenarioFile, *forceYAML, *traceFile, *engine, *horizon, *showMetrics, log); err != nil {
		log.Error("simnet failed", logging.Err(err))
		os.Exit(1)
	}
}

// run plays the scenario on the chosen engine, writes its summary (and metrics) to out
// and returns the summary
func run(out io.Writer, scenarioFile string, forceYAML bool, traceFile, engine string, horizon float64,
	showMetrics bool, log logging.Logger) (simnet.ScenarioSummary, error) {

	var summary simnet.ScenarioSummary
	if scenarioFile == "" {
		return summary, fmt.Errorf("no scenario given, use -scenario")
	}
	ext := path.Ext(scenarioFile)
	useYAML := forceYAML || ext == ".yaml" || ext == ".YAML" || ext == ".yml"
	sd, err := simnet.ReadScenarioDesc(scenarioFile, useYAML, nil)
	if err != nil {
		return summary, err
	}
	if horizon >= 0 {
		sd.Horizon = horizon
	}

	reg := prometheus.NewRegistry()
	metrics, err := simnet.NewCollector(reg)
	if err != nil {
		return summary, err
	}
	traces := simnet.CreateTraceManager(sd.Name, sd.Trace || traceFile != "")

	// the engine runs the scenario; everything else sees it through the Scheduler and TimeProvider interfaces
	var clock simnet.TimeProvider
	var base simnet.Scheduler
	var runToHorizon func()
	switch engine {
	case "sim":
		sim := simnet.NewSimulator()
		clock, base = sim, sim
		runToHorizon = func() {
			if sd.Horizon > 0 {
				sim.RunUntil(sd.Horizon)
			} else {
				sim.Run()
			}
		}
	case "evtm":
		es := simnet.NewEvtmScheduler(evtm.New())
		clock, base = es, es
		runToHorizon = func() {
			limit := sd.Horizon
			if limit <= 0 {
				// the latest time whose tick count fits an int64
				limit = float64(math.MaxInt64 / vrtime.TicksPerSecond)
			}
			es.EventManager().Run(limit)
		}
	default:
		return summary, fmt.Errorf("unknown engine %q", engine)
	}

	// a run ends at the horizon, or with its last event when there is none. The engines
	// disagree on where they leave their clocks
	var lastEvent float64
	sched := simnet.NewInterceptingScheduler(base).
		OnExecuted(func(string) { lastEvent = clock.Now() }).
		LogEvents(log, clock)
	metrics.Instrument(sched)

	scn, err := simnet.BuildScenario(sd, sched, clock, log,
		simnet.WithLogger(log), simnet.WithMetrics(metrics), simnet.WithTraces(traces))
	if err != nil {
		return summary, err
	}
	scn.Launch()
	runToHorizon()

	end := sd.Horizon
	if end == 0 {
		end = lastEvent
	}
	summary = scn.Summary(end)
	log.Info("run complete", logging.SimTime(summary.Time), logging.Int("generated", summary.Generated),
		logging.Int("delivered", summary.Delivered), logging.Int("failed", summary.Failed))

	js, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return summary, err
	}
	fmt.Fprintln(out, string(js))

	if traceFile != "" {
		if err := traces.WriteToFile(traceFile); err != nil {
			return summary, err
		}
		log.Info("traces written", logging.String("file", traceFile), logging.Int("records", traces.NumTraces()))
	}

	if showMetrics {
		return summary, printMetrics(out, reg)
	}
	return summary, nil
}

// printMetrics writes the gathered metrics in the Prometheus text format
func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}
