// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Package logging provides the zerolog-based logger shared by every clusterrec
// component.
//
// The global logger is configured once from main via Init and read through the
// level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int("users", n).Msg("Generation run complete")
//
// Components that run for the lifetime of the process take a zerolog.Logger
// built with WithComponent so every line carries a component field. Request
// and run scoped code uses Ctx(ctx), which adds the correlation and run ids
// stored in the context.
//
// The slog bridge (NewSlogLogger) exists for libraries that only accept
// *slog.Logger, notably sutureslog in the supervisor tree.
package logging
