// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	IglesiaHubMongoClient   *mongo.Client
	IglesiaHubMongoDatabase *mongo.Database

	// Redis is nil when redis_addr is blank.
	Redis *redis.Client
}
