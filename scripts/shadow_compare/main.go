// Command shadow_compare replays read-only requests against the legacy
// StreetVoice backend and this service and reports response differences.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/pkg/logger"
)

func main() {
	var (
		goBase      string
		legacyBase  string
		goToken     string
		legacyToken string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8000", "Legacy API base URL")
	flag.StringVar(&goToken, "go-token", os.Getenv("SHADOW_GO_TOKEN"), "Bearer token for authenticated targets on the Go API")
	flag.StringVar(&legacyToken, "legacy-token", os.Getenv("SHADOW_LEGACY_TOKEN"), "Bearer token for authenticated targets on the legacy API")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.yaml"), "Path to YAML targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	logr, err := logger.Build(false, "info", "console")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	targets, err := loadTargets(targetsPath)
	if err != nil {
		logr.Fatal("failed to load targets", zap.String("path", targetsPath), zap.Error(err))
	}

	c := &comparer{
		client: &http.Client{Timeout: timeout},
		goAPI:  backend{base: goBase, token: goToken},
		legacy: backend{base: legacyBase, token: legacyToken},
	}

	var results []comparison
	breaking, optional := 0, 0
	for _, t := range targets {
		res := c.compare(context.Background(), t)
		switch {
		case res.breaking():
			breaking++
		case res.Error != nil || !res.StatusMatch || !res.BodyMatch:
			optional++
		}
		results = append(results, res)
	}

	printReport(os.Stdout, results)
	logr.Info("shadow comparison finished", zap.Int("targets", len(targets)), zap.Int("breaking", breaking), zap.Int("optional", optional))
	if breaking > 0 {
		os.Exit(1)
	}
}
