package main

import (
	"flag"
	"log"
	"os"

	"github.com/dotswarm/dotswarm/common/utils"
	"github.com/dotswarm/dotswarm/registryserver"
)

func main() {
	layout := flag.String("layout", "circle", "Fleet layout: circle | grid")
	n := flag.Int("n", 10, "Number of bots (circle layout)")
	rows := flag.Int("rows", 3, "Grid rows")
	cols := flag.Int("cols", 3, "Grid columns")
	centerX := flag.Float64("center-x", 0.5, "Circle center x / grid origin x")
	centerY := flag.Float64("center-y", 0.5, "Circle center y / grid origin y")
	radius := flag.Float64("radius", 0.4, "Circle radius")
	spacing := flag.Float64("spacing", 0.1, "Grid spacing")
	out := flag.String("out", "", "Output path; empty writes to stdout")

	flag.Parse()

	var config *registryserver.FleetConfig

	switch *layout {
	case "circle":
		utils.Assert(*n > 0 && *n <= 256, "Fleet size must fit the generated address space (1-256)")
		config = registryserver.GenerateCircleFleet(*n, *centerX, *centerY, *radius)
	case "grid":
		utils.Assert(*rows**cols > 0 && *rows**cols <= 256, "Grid size must fit the generated address space (1-256)")
		config = registryserver.GenerateGridFleet(*rows, *cols, *centerX, *centerY, *spacing)
	default:
		log.Fatalln("unknown layout:", *layout)
	}

	data, err := config.Marshal()
	utils.Check(err, "Failed to marshal fleet config")

	if *out == "" {
		os.Stdout.Write(data)
		return
	}

	utils.Check(os.WriteFile(*out, data, 0644), "Failed to write "+*out)
	log.Println("Wrote", len(config.Dotbots), "bots to", *out)
}
