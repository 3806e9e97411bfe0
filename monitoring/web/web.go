// Package web holds the dashboard page served by the monitor.
package web

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

//go:embed dist
var dist embed.FS

// DevEnv names the environment variable that makes the monitor serve the
// page from disk. A boolean value selects the dist directory next to this
// file. Any other value is taken as the directory to serve.
const DevEnv = "STREAMPF_MONITOR_DEV"

// GetAssets returns the page and its assets.
func GetAssets() http.FileSystem {
	if dir, ok := devDir(); ok {
		log.Printf("monitor: serving assets from %s", dir)
		return http.Dir(dir)
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		log.Panic(err)
	}

	return http.FS(sub)
}

func devDir() (string, bool) {
	value := strings.TrimSpace(os.Getenv(DevEnv))
	if value == "" {
		return "", false
	}

	on, err := strconv.ParseBool(value)
	if err != nil {
		return value, true
	}

	if !on {
		return "", false
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		log.Panic("cannot locate the monitor page sources")
	}

	return filepath.Join(filepath.Dir(file), "dist"), true
}
