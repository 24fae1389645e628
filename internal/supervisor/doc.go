// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package supervisor provides process supervision for Shelfwise using suture v4.

The supervisor tree organizes long-running services into three layers:

	RootSupervisor ("shelfwise")
	├── DataSupervisor ("data-layer")
	│   ├── CatalogStatsService
	│   └── CacheSweepService (memory backend only)
	├── MessagingSupervisor ("messaging-layer")
	│   └── eventprocessor.Bus (shelf event router)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashed service is restarted by its layer supervisor with backoff; a layer
that keeps failing does not take the others down. Supervisor events are
logged through sutureslog on a slog logger backed by zerolog.

Usage:

	logger := slog.New(logging.NewSlogHandler())
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(bus)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
