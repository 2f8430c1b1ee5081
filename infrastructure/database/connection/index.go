package connection

import (
	"facegate.io/infrastructure/database/connection/datastore"
	"facegate.io/infrastructure/env"
)

// ConnectToDatabase brings up the backend FACEGATE_STORE selects: sqlite on
// device (default), mongo for hub-managed fleets, memory for ephemeral runs.
func ConnectToDatabase() {
	switch env.Get("FACEGATE_STORE", "sqlite") {
	case "mongo":
		datastore.ConnectMongo()
	case "memory":
		// nothing to connect; the stores keep state in process
	default:
		datastore.ConnectSQLite()
	}
}

func CleanUp() {
	datastore.CleanUpMongo()
	datastore.CleanUpSQLite()
}
