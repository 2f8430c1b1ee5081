package database

import "facegate.io/infrastructure/database/connection"

func SetUpDatabase() {
	connection.ConnectToDatabase()
}

func CleanUpDatabase() {
	connection.CleanUp()
}

type BaseModel interface {
	ParseModel() any
}
