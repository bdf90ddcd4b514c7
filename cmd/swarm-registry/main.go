package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/dotswarm/dotswarm/common"
	"github.com/dotswarm/dotswarm/common/healthcheck"
	"github.com/dotswarm/dotswarm/common/utils"
	"github.com/dotswarm/dotswarm/registryserver"
)

func main() {
	godotenv.Load()

	listen := flag.String("listen", defaultEnv("SWARM_REGISTRY_LISTEN", "0.0.0.0:8000"), "Address the registry listens on")
	fleetpath := flag.String("fleet", os.Getenv("SWARM_REGISTRY_FLEET"), "Fleet layout YAML; optional")
	hcport := flag.String("hcport", "", "Health check port; empty disables")

	flag.Parse()

	svc := registryserver.NewFleetService(*listen, registryserver.LogGateway{})

	if *fleetpath != "" {
		config, err := registryserver.LoadFleetConfig(*fleetpath)
		if err != nil {
			utils.FailWith(err)
		}

		svc.Seed(config)
		log.Println("Seeded", len(config.Dotbots), "bots from", *fleetpath)
	}

	if *hcport != "" {
		hc := healthcheck.NewHealthCheckServer(*hcport)
		hc.Register("fleet", func() (error, bool) {
			return nil, svc.Fleet().Size() > 0
		})
		hc.Start()
	}

	go func() {
		<-common.SignalHandler()
		utils.Debug("sighandler", "RECEIVED SHUTDOWN SIGNAL; closing.")
		svc.Shutdown()
		os.Exit(0)
	}()

	utils.Check(svc.ListenAndServe(), "Registry server failed")
}

func defaultEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
