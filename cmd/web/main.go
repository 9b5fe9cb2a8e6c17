// cmd/web/main.go
//
// BeautyBuilder platform – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load config (conf/.env → conf/global.yaml → BB_ env overrides).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Resolve `vault:` secret references when any are configured.
//
//  4. Open the platform DB and build the site store.
//
//  5. Wire the core: assembly service (cached public views), publication
//     state machine, S3 blob manager, editor service.
//
//  6. Assemble routes behind the host-rewrite middleware and serve with
//     hardened timeouts.  /metrics and /healthz live on the main-app
//     surface, reached via configured main domains only.
//
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/jwtauth"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beautybuilder/platform/internal/api"
	"github.com/beautybuilder/platform/internal/assembly"
	"github.com/beautybuilder/platform/internal/blob"
	blobs3 "github.com/beautybuilder/platform/internal/blob/s3"
	"github.com/beautybuilder/platform/internal/config"
	"github.com/beautybuilder/platform/internal/database"
	"github.com/beautybuilder/platform/internal/editor"
	"github.com/beautybuilder/platform/internal/logger"
	"github.com/beautybuilder/platform/internal/publish"
	"github.com/beautybuilder/platform/internal/requestinfo"
	"github.com/beautybuilder/platform/internal/resolver"
	"github.com/beautybuilder/platform/internal/router"
	"github.com/beautybuilder/platform/internal/secrets"
	"github.com/beautybuilder/platform/internal/server"
	"github.com/beautybuilder/platform/internal/site"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// hasSecretRefs reports whether any config value needs the Vault client.
func hasSecretRefs(cfg *config.Config) bool {
	for _, v := range []string{
		cfg.Database.Password,
		cfg.Blob.S3.SecretAccessKey,
		cfg.Auth.JWTSecret,
	} {
		if strings.HasPrefix(v, config.SecretPrefix) {
			return true
		}
	}
	return false
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Secrets ─────────────────────────────────────────────────────
	//
	if hasSecretRefs(cfg) {
		vc, err := secrets.New(ctx)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		resolve := func(ref string) (string, error) { return vc.Resolve(ctx, ref) }
		if err := config.ResolveSecrets(cfg, resolve); err != nil {
			logOut.Fatalf("resolve secrets: %v", err)
		}
	}

	//
	// ── 2.  Platform DB ─────────────────────────────────────────────────
	//
	dsn, err := cfg.Database.ResolveDSN()
	if err != nil {
		logOut.Fatalf("database config: %v", err)
	}
	logOut.Infow("connecting to platform DB")
	db, err := database.Open(dsn)
	if err != nil {
		logOut.Fatalf("connect platform DB: %v", err)
	}
	defer db.Close()
	logOut.Infow("platform DB online")

	// Log provisioned-site count as an early sanity check.
	var provisioned int
	_ = db.Get(&provisioned, `SELECT COUNT(*) FROM site`)
	logOut.Infow("site rows found", "count", provisioned)

	//
	// ── 3.  Core services ───────────────────────────────────────────────
	//
	store := site.NewStore(db)
	asm := assembly.New(store)
	machine := publish.New(store, asm)

	backend, err := blobs3.New(ctx, blobs3.Config{
		Region:          cfg.Blob.S3.Region,
		Bucket:          cfg.Blob.S3.Bucket,
		AccessKeyID:     cfg.Blob.S3.AccessKeyID,
		SecretAccessKey: cfg.Blob.S3.SecretAccessKey,
		Endpoint:        cfg.Blob.S3.Endpoint,
		UsePathStyle:    cfg.Blob.S3.UsePathStyle,
	})
	if err != nil {
		logOut.Fatalf("blob backend: %v", err)
	}
	blobMgr := blob.NewManager(backend, cfg.Blob.PublicBaseURL)

	ed := editor.New(store, machine, blobMgr, asm)

	if err := requestinfo.InitGeo(cfg.GeoIP.DBPath); err != nil {
		logOut.Warnw("geoip disabled", "err", err)
	}

	//
	// ── 4.  Routing ─────────────────────────────────────────────────────
	//
	res := resolver.New(cfg.Tenancy.MainDomains)
	tokenAuth := jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil)
	handlers := api.New(asm, ed, machine)

	// Main-application surface: dashboards and onboarding are served by
	// the separate UI deployment; this process only exposes operational
	// endpoints there.
	mainApp := http.NewServeMux()
	mainApp.Handle("/metrics", promhttp.Handler())
	mainApp.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	root := router.New(res, handlers, tokenAuth, mainApp)

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, root)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}
