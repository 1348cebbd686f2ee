// +build windows

package main

import (
	"github.com/jet/uidmap/identity"
	"github.com/jet/uidmap/win32"
)

func newResolver(cfg Config, logger identity.Logger, observer identity.Observer) *identity.Resolver {
	r := &identity.Resolver{
		Tokens:   win32.ProcessTokens{},
		Accounts: win32.Accounts{},
		Local:    win32.LocalAccounts{},
		Logger:   logger,
		Observer: observer,
	}
	if cfg.Profiles {
		r.Profiles = win32.ProfileList{}
	}
	return r
}

func processElevated() (bool, error) {
	return win32.IsElevated()
}
