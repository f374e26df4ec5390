// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the HTTP transport of the identity server.
//
// It covers startup and graceful shutdown. Signal handling is left to the
// caller, which cancels the context passed to RunServer.
package server
