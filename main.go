//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"

	"github.com/isomesh/isomesh/internal/config"
	"github.com/isomesh/isomesh/internal/logger"
	"github.com/isomesh/isomesh/pipeline"
)

func usage() {
	fmt.Println("Usage: isomesh <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  run <slice_dir> [config.yaml]   (load, extract, simplify, and write per config)")
	fmt.Println("  extract <slice_dir> <isovalue> <out.obj>   (extraction only, no simplification)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		if len(os.Args) < 3 || len(os.Args) > 4 {
			usage()
			os.Exit(1)
		}
		configPath := ""
		if len(os.Args) == 4 {
			configPath = os.Args[3]
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		cfg.Volume.SliceDir = os.Args[2]

		logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
		defer logger.Sync()

		res, err := pipeline.Run(cfg)
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote mesh: %d vertices, %d faces (cache hit: %v)\n", res.VertexCount, res.FaceCount, res.CacheHit)
	case "extract":
		if len(os.Args) != 5 {
			usage()
			os.Exit(1)
		}
		cfg := config.Default()
		cfg.Volume.SliceDir = os.Args[2]
		cfg.Simplify.Enabled = false
		cfg.Output.OBJPath = os.Args[4]
		cfg.Output.GLBPath = ""
		if _, err := fmt.Sscan(os.Args[3], &cfg.Extract.Isovalue); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		res, err := pipeline.Run(cfg)
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote mesh: %d vertices, %d faces\n", res.VertexCount, res.FaceCount)
	default:
		usage()
		os.Exit(1)
	}
}
