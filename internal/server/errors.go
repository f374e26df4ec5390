// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	// errNoHTTPHandler is returned by NewServer when there is nothing to serve.
	errNoHTTPHandler = errors.New("http handler is not created")

	// errNoHTTPAddress is returned by NewServer when no listen address is set.
	errNoHTTPAddress = errors.New("http address is not configured")
)
