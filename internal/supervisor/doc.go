// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

/*
Package supervisor runs the long-lived parts of clusterrec under a suture v4
supervisor tree.

# Overview

Services are grouped into three layers so a failure in one does not take
down the others:

	RootSupervisor ("clusterrec")
	├── DataSupervisor ("data-layer")
	├── GenerationSupervisor ("generation-layer")
	│   └── GenerationService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The API keeps serving the last stored run while the generation layer is
restarting or backing off.

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.TreeConfig{
	    FailureThreshold: cfg.Supervisor.FailureThreshold,
	    FailureBackoff:   cfg.Supervisor.FailureBackoff,
	    ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddGenerationService(generation)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog into the zerolog pipeline.
*/
package supervisor
