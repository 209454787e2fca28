// Command archiveserver serves the chart archive over HTTP. A request
// path without a .png suffix gets the suffix appended before lookup, so
// the bare day locations handed to notification sinks resolve directly.
package main

import (
	"flag"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"fueltrends/internal/config"
	"fueltrends/internal/logger"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/*path", archiveHandler(cfg.Paths.ArchiveDir))

	logger.Info("Serving archive %s at %s", cfg.Paths.ArchiveDir, cfg.Archive.ListenAddr)
	if err := router.Run(cfg.Archive.ListenAddr); err != nil {
		logger.Fatal("Archive server failed: %v", err)
	}
}

// archiveHandler serves PNGs from the archive root, appending the .png
// suffix when absent and rejecting paths that escape the root.
func archiveHandler(root string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := strings.TrimPrefix(c.Param("path"), "/")
		if !strings.HasSuffix(rel, ".png") {
			rel += ".png"
		}
		rel = filepath.Clean(rel)
		if rel == "." || strings.HasPrefix(rel, "..") {
			c.Status(http.StatusNotFound)
			return
		}
		c.File(filepath.Join(root, rel))
	}
}
