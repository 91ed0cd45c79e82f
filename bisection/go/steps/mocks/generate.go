package mocks

//go:generate mockery --name IsolateFinder --srcpkg=go.skia.org/perfbisect/bisection/go/steps --output ${PWD}
//go:generate mockery --name TestRunner --srcpkg=go.skia.org/perfbisect/bisection/go/steps --output ${PWD}
//go:generate mockery --name ResultsReader --srcpkg=go.skia.org/perfbisect/bisection/go/steps --output ${PWD}
