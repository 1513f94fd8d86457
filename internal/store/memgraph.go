package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/REPPL/Persona-sub003/internal/logging"
)

// MemgraphConnection is the bolt connection used for report persistence.
// Works against Memgraph and Neo4j alike.
type MemgraphConnection struct {
	Driver neo4j.DriverWithContext
	logger logging.Logger
}

func NewMemgraphConnection(uri, username, password string) (*MemgraphConnection, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	logger := logging.New("store")
	logger.Infof("connected to graph store at %s", uri)
	return &MemgraphConnection{Driver: driver, logger: logger}, nil
}

func (c *MemgraphConnection) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, c.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (c *MemgraphConnection) Close(ctx context.Context) error {
	return c.Driver.Close(ctx)
}
