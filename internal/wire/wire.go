// Package wire provides dependency injection for the reqtrack application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/reqtrack/internal/adapters/sqlite"
	"github.com/example/reqtrack/internal/app"
	"github.com/example/reqtrack/internal/db"
	"github.com/example/reqtrack/internal/ports/primary"
)

var (
	nodeService primary.NodeService
	once        sync.Once
)

// NodeService returns the singleton NodeService instance.
func NodeService() primary.NodeService {
	once.Do(initServices)
	return nodeService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	nodeRepo := sqlite.NewNodeRepository(database)
	nodeService = app.NewNodeService(nodeRepo)
}
