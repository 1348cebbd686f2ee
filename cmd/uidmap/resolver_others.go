// +build !windows

package main

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/jet/uidmap/identity"
)

// Without the windows account database every resolution is unresolved.
func newResolver(cfg Config, logger identity.Logger, observer identity.Observer) *identity.Resolver {
	return &identity.Resolver{
		Logger:   logger,
		Observer: observer,
	}
}

func processElevated() (bool, error) {
	return false, errors.Errorf("token elevation is not available on %s", runtime.GOOS)
}
