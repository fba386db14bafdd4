package main

import (
	"fmt"

	"github.com/AutoVinReports/VinFox/internal/pkg/database"
	"github.com/AutoVinReports/VinFox/internal/pkg/env"
)

// Standalone schema runner for deploys that migrate before rolling the
// service. The server runs the same migrations on boot, so this is optional.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	fmt.Println("Schema is up to date.")
}
