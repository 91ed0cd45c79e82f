package steps

import (
	"github.com/pkg/errors"

	"go.skia.org/perfbisect/bisection/go/step"
)

// DefaultAttempts is how many times the Steps that only make network calls
// are tried.
const DefaultAttempts = 2

// Request describes what to bisect.
type Request struct {
	// Configuration is the bot configuration, e.g. "android-pixel2-perf".
	Configuration string
	TestSuite     string
	// Test restricts TestSuite to one story. Optional.
	Test string
	// Metric, if given, bisects on the values of this metric instead of on
	// the exit code of the test.
	Metric string
}

// Clients are the services used by the Steps of a Pipeline.
type Clients struct {
	Finder IsolateFinder
	Runner TestRunner
	Reader ResultsReader
}

// Pipeline returns the Steps for req. The build is always found. The test
// is run if there is a TestSuite, and its results are read if there is a
// Metric.
func Pipeline(req Request, clients Clients) ([]step.Step, error) {
	if req.Metric != "" && req.TestSuite == "" {
		return nil, errors.New("bisecting on a metric but there's no test suite to run")
	}
	if clients.Finder == nil {
		return nil, errors.New("an IsolateFinder is required")
	}
	rv := []step.Step{
		step.WithRetry(&FindIsolated{Finder: clients.Finder, Configuration: req.Configuration}, DefaultAttempts),
	}
	if req.TestSuite != "" {
		if clients.Runner == nil {
			return nil, errors.New("a TestRunner is required to run a test suite")
		}
		rv = append(rv, &RunTest{
			Runner:        clients.Runner,
			Configuration: req.Configuration,
			Suite:         req.TestSuite,
			Test:          req.Test,
		})
	}
	if req.Metric != "" {
		if clients.Reader == nil {
			return nil, errors.New("a ResultsReader is required to read a metric")
		}
		rv = append(rv, step.WithRetry(&ReadTestResults{Reader: clients.Reader, Metric: req.Metric}, DefaultAttempts))
	}
	return rv, nil
}
