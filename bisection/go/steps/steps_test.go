package steps_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.skia.org/perfbisect/bisection/go/step"
	"go.skia.org/perfbisect/bisection/go/steps"
	"go.skia.org/perfbisect/bisection/go/steps/mocks"
)

const (
	configuration = "android-pixel2-perf"
	repository    = "chromium/src"
	gitHash       = "3e1c8c5f4c0c1a3bd9e1d9e5f6f0c0a1b2c3d4e5"
	isolatedHash  = "396b8d0569cd75102e910bc837305ecb6c8cace3"
	taskID        = "4a2b3c"
)

func TestFindIsolated_BuildExists_PassesIsolatedHash(t *testing.T) {
	finder := mocks.NewIsolateFinder(t)
	finder.On("FindIsolated", mock.Anything, configuration, repository, gitHash).Return(isolatedHash, nil).Once()
	s := &steps.FindIsolated{Finder: finder, Configuration: configuration}

	res, err := s.Run(context.Background(), step.Args{repository, gitHash})
	require.NoError(t, err)

	assert.Equal(t, step.Args{isolatedHash}, res.Next)
	assert.False(t, res.Fatal)
	assert.Equal(t, []float64{0}, res.Sample.Values())
	assert.Equal(t, "Find isolated (exit code)", s.MetricName())
}

func TestFindIsolated_NoBuild_FatalWithSample(t *testing.T) {
	finder := mocks.NewIsolateFinder(t)
	finder.On("FindIsolated", mock.Anything, configuration, repository, gitHash).
		Return("", errors.Wrap(steps.ErrNoBuild, "compile failed")).Once()
	s := &steps.FindIsolated{Finder: finder, Configuration: configuration}

	res, err := s.Run(context.Background(), step.Args{repository, gitHash})
	require.NoError(t, err)

	assert.True(t, res.Fatal)
	assert.Equal(t, []float64{1}, res.Sample.Values())
}

func TestFindIsolated_ServiceError_ReturnsError(t *testing.T) {
	finder := mocks.NewIsolateFinder(t)
	finder.On("FindIsolated", mock.Anything, configuration, repository, gitHash).Return("", errors.New("unavailable")).Once()
	s := &steps.FindIsolated{Finder: finder, Configuration: configuration}

	_, err := s.Run(context.Background(), step.Args{repository, gitHash})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestFindIsolated_BadArgs_ReturnsError(t *testing.T) {
	s := &steps.FindIsolated{Finder: mocks.NewIsolateFinder(t)}

	_, err := s.Run(context.Background(), step.Args{repository})
	require.Error(t, err)
}

func TestRunTest_ExtraArgs(t *testing.T) {
	s := &steps.RunTest{Suite: "tab_switching.typical_25", Test: "http://www.airbnb.com/"}
	assert.Equal(t, []string{
		"tab_switching.typical_25",
		"--story-filter=http://www.airbnb.com/",
		"--browser=reference",
		"--pageset-repeat=5",
		"--isolated-script-test-output=${ISOLATED_OUTDIR}/output.json",
	}, s.ExtraArgs())

	s.Test = ""
	assert.NotContains(t, s.ExtraArgs(), "--story-filter=")
	assert.Len(t, s.ExtraArgs(), 4)
}

func TestRunTest_Run_ExitCodeSampleAndTaskID(t *testing.T) {
	runner := mocks.NewTestRunner(t)
	s := &steps.RunTest{Runner: runner, Configuration: configuration, Suite: "speedometer2"}
	runner.On("RunTest", mock.Anything, steps.TestRequest{
		Name:          isolatedHash + "/speedometer2",
		Configuration: configuration,
		IsolatedHash:  isolatedHash,
		ExtraArgs:     s.ExtraArgs(),
	}).Return(&steps.TestResult{TaskID: taskID, ExitCode: 1, HasOutput: true}, nil).Once()

	res, err := s.Run(context.Background(), step.Args{isolatedHash})
	require.NoError(t, err)

	assert.Equal(t, step.Args{taskID}, res.Next)
	assert.False(t, res.Fatal)
	assert.Equal(t, []float64{1}, res.Sample.Values())
	assert.Equal(t, "speedometer2 (exit code)", s.MetricName())
}

func TestRunTest_NoOutput_Fatal(t *testing.T) {
	runner := mocks.NewTestRunner(t)
	runner.On("RunTest", mock.Anything, mock.Anything).Return(&steps.TestResult{TaskID: taskID, ExitCode: 2}, nil).Once()
	s := &steps.RunTest{Runner: runner, Suite: "speedometer2"}

	res, err := s.Run(context.Background(), step.Args{isolatedHash})
	require.NoError(t, err)
	assert.True(t, res.Fatal)
	assert.Equal(t, []float64{2}, res.Sample.Values())
}

func TestReadTestResults_ValuesBecomeSample(t *testing.T) {
	reader := mocks.NewResultsReader(t)
	reader.On("ReadValues", mock.Anything, taskID, "timeToFirstPaint").Return([]float64{10.5, 11, 9.75}, nil).Once()
	s := &steps.ReadTestResults{Reader: reader, Metric: "timeToFirstPaint"}

	res, err := s.Run(context.Background(), step.Args{taskID})
	require.NoError(t, err)
	assert.False(t, res.Fatal)
	assert.Equal(t, []float64{10.5, 11, 9.75}, res.Sample.Values())
	assert.Equal(t, "timeToFirstPaint", s.MetricName())
}

func TestReadTestResults_NoValues_Fatal(t *testing.T) {
	reader := mocks.NewResultsReader(t)
	reader.On("ReadValues", mock.Anything, taskID, "timeToFirstPaint").Return(nil, nil).Once()
	s := &steps.ReadTestResults{Reader: reader, Metric: "timeToFirstPaint"}

	res, err := s.Run(context.Background(), step.Args{taskID})
	require.NoError(t, err)
	assert.True(t, res.Fatal)
	assert.Equal(t, 0, res.Sample.Len())
}

func TestPipeline_FindIsolatedOnly(t *testing.T) {
	got, err := steps.Pipeline(steps.Request{Configuration: configuration}, steps.Clients{Finder: mocks.NewIsolateFinder(t)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Find isolated (exit code)", got[0].MetricName())
}

func TestPipeline_SuiteAndMetric_ThreeSteps(t *testing.T) {
	got, err := steps.Pipeline(steps.Request{
		Configuration: configuration,
		TestSuite:     "speedometer2",
		Metric:        "RunsPerMinute",
	}, steps.Clients{
		Finder: mocks.NewIsolateFinder(t),
		Runner: mocks.NewTestRunner(t),
		Reader: mocks.NewResultsReader(t),
	})
	require.NoError(t, err)

	var names []string
	for _, s := range got {
		names = append(names, s.MetricName())
	}
	assert.Equal(t, []string{"Find isolated (exit code)", "speedometer2 (exit code)", "RunsPerMinute"}, names)
}

func TestPipeline_MetricWithoutSuite_Error(t *testing.T) {
	_, err := steps.Pipeline(steps.Request{Metric: "RunsPerMinute"}, steps.Clients{Finder: mocks.NewIsolateFinder(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no test suite")
}

func TestPipeline_MissingClients_Error(t *testing.T) {
	_, err := steps.Pipeline(steps.Request{}, steps.Clients{})
	require.Error(t, err)

	_, err = steps.Pipeline(steps.Request{TestSuite: "speedometer2"}, steps.Clients{Finder: mocks.NewIsolateFinder(t)})
	require.Error(t, err)
}

func TestPipeline_FindIsolatedRetried(t *testing.T) {
	finder := mocks.NewIsolateFinder(t)
	finder.On("FindIsolated", mock.Anything, configuration, repository, gitHash).Return("", errors.New("blip")).Once()
	finder.On("FindIsolated", mock.Anything, configuration, repository, gitHash).Return(isolatedHash, nil).Once()
	got, err := steps.Pipeline(steps.Request{Configuration: configuration}, steps.Clients{Finder: finder})
	require.NoError(t, err)

	res, err := got[0].Run(context.Background(), step.Args{repository, gitHash})
	require.NoError(t, err)
	assert.Equal(t, step.Args{isolatedHash}, res.Next)
}
