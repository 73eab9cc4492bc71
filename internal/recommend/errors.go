// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import "errors"

var (
	// ErrDimensionMismatch is returned when catalog embeddings differ in length.
	ErrDimensionMismatch = errors.New("inconsistent embedding dimensionality")

	// ErrDuplicateContent is returned when a content id appears twice in the catalog.
	ErrDuplicateContent = errors.New("duplicate content id in catalog")

	// ErrRunInProgress is returned when Generate is called during another run.
	ErrRunInProgress = errors.New("generation run already in progress")

	// ErrInvalidTransition is returned for a backward or skipped state change.
	ErrInvalidTransition = errors.New("invalid run state transition")

	// ErrNotConfigured is returned when a required collaborator is missing.
	ErrNotConfigured = errors.New("engine not configured")
)
