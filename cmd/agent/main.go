// FilePath: cmd/agent/main.go
package main

import (
	"log"
	"os"

	"github.com/greenstem/planthub/internal/agent"
	"github.com/greenstem/planthub/internal/config"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting PlantHub Agent v%s", nuts.GetVersion())

	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a := agent.New(cfg)
	if err := a.Start(); err != nil {
		nuts.L.Errorf("[Main] Agent error: %v", err)
		os.Exit(1)
	}
}
