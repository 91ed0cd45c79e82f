package mocks

//go:generate mockery --name RepositoryLookup --srcpkg=go.skia.org/perfbisect/bisection/go/commit --output ${PWD}
//go:generate mockery --name LogFetcher --srcpkg=go.skia.org/perfbisect/bisection/go/commit --output ${PWD}
//go:generate mockery --name PositionLookup --srcpkg=go.skia.org/perfbisect/bisection/go/commit --output ${PWD}
