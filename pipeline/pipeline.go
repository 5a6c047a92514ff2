// Package pipeline orchestrates a full run from a voxel source to
// written mesh files: load, optional smoothing, Marching Cubes
// extraction (optionally bricked and/or parallel), optional QEM
// simplification, and OBJ/GLB export, with per-stage timing and
// structured logging and an optional compressed mesh cache in front of
// extract+simplify.
//
// Grounded on original_source/src/util.hpp's run_with_duration/
// print_duration_info timing helpers, reintroduced here as an idiomatic
// Go stage wrapper rather than a macro, and on
// avatar29A-midgard-ro/internal/logger's structured-field logging style.
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/isomesh/isomesh/gltfio"
	"github.com/isomesh/isomesh/internal/config"
	"github.com/isomesh/isomesh/internal/logger"
	"github.com/isomesh/isomesh/mc"
	"github.com/isomesh/isomesh/mesh"
	"github.com/isomesh/isomesh/meshcache"
	"github.com/isomesh/isomesh/objio"
	"github.com/isomesh/isomesh/qem"
	"github.com/isomesh/isomesh/voxel"
)

// Result reports what a Run produced.
type Result struct {
	Mesh        *mesh.Mesh
	CacheHit    bool
	VertexCount int
	FaceCount   int
}

// stage runs fn, logging its elapsed duration under name.
func stage(name string, fields []zap.Field, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	allFields := append(append([]zap.Field{}, fields...), zap.Duration("elapsed", elapsed))
	if err != nil {
		logger.Log.Error(name, append(allFields, zap.Error(err))...)
		return err
	}
	logger.Log.Info(name, allFields...)
	return nil
}

// Run executes the full volume-to-mesh pipeline for one input directory
// of slice images, per cfg.
func Run(cfg *config.Config) (*Result, error) {
	var g *voxel.Grid
	if err := stage("load", nil, func() error {
		var err error
		g, err = voxel.LoadSliceStack(cfg.Volume.SliceDir)
		return err
	}); err != nil {
		return nil, err
	}

	if cfg.Volume.Smooth {
		if err := stage("smooth", []zap.Field{zap.Int("size", cfg.Volume.SmoothSize), zap.Float64("sigma", cfg.Volume.SmoothSigma)}, func() error {
			g = g.Smooth(cfg.Volume.SmoothSize, cfg.Volume.SmoothSigma)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	var c *meshcache.Cache
	var key string
	if cfg.Cache.Enabled {
		var err error
		c, err = meshcache.New(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening mesh cache: %w", err)
		}
		key = meshcache.Key(meshcache.GridFingerprint(g), cfg.Extract.Isovalue, cfg.Simplify.Ratio)
	}

	var m *mesh.Mesh
	cacheHit := false
	if c != nil {
		cached, err := c.Get(key)
		if err != nil {
			logger.Log.Debug("cache lookup failed, recomputing", zap.Error(err))
		} else if cached != nil {
			m = cached
			cacheHit = true
			logger.Log.Info("cache hit", zap.String("key", key))
		}
	}

	if m == nil {
		if err := stage("extract", []zap.Field{
			zap.Int("nx", g.Nx), zap.Int("ny", g.Ny), zap.Int("nz", g.Nz),
			zap.Float64("isovalue", cfg.Extract.Isovalue),
		}, func() error {
			var err error
			switch {
			case cfg.Volume.UseBricking:
				m, err = mc.ExtractBricked(g, cfg.Extract.Isovalue, cfg.Volume.BrickSize)
			case cfg.Extract.Parallel:
				m, err = mc.ExtractParallel(g, cfg.Extract.Isovalue)
			default:
				m, err = mc.Extract(g, cfg.Extract.Isovalue)
			}
			return err
		}); err != nil {
			return nil, err
		}

		if cfg.Simplify.Enabled {
			if err := stage("simplify", []zap.Field{
				zap.Int("vertices_before", len(m.Vertices)),
				zap.Float64("ratio", cfg.Simplify.Ratio),
			}, func() error {
				return qem.Simplify(m, cfg.Simplify.Ratio)
			}); err != nil {
				return nil, err
			}
		}

		if c != nil {
			if err := c.Put(key, m); err != nil {
				logger.Log.Debug("failed to write mesh cache entry", zap.Error(err))
			}
		}
	}

	if err := stage("write", []zap.Field{
		zap.String("obj", cfg.Output.OBJPath), zap.String("glb", cfg.Output.GLBPath),
	}, func() error {
		if cfg.Output.OBJPath != "" {
			if err := objio.Write(cfg.Output.OBJPath, m); err != nil {
				return fmt.Errorf("writing OBJ: %w", err)
			}
		}
		if cfg.Output.GLBPath != "" {
			if err := gltfio.Write(cfg.Output.GLBPath, m); err != nil {
				return fmt.Errorf("writing GLB: %w", err)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &Result{Mesh: m, CacheHit: cacheHit, VertexCount: len(m.Vertices), FaceCount: len(m.Faces)}, nil
}
