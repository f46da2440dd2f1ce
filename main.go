package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"govindo-backend/internal/attendance"
	"govindo-backend/internal/members"
	"govindo-backend/internal/partners"
	"govindo-backend/internal/photos"
	"govindo-backend/internal/platform/auth"
	"govindo-backend/internal/platform/db"
	"govindo-backend/internal/platform/storage"
	"govindo-backend/internal/tournament"
)

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}
	if cfg.Auth.Secret == "" {
		log.Fatal("[ERROR] auth secret is not configured (config or JWT_SECRET)")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	files, err := storage.NewDisk(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal(err)
	}

	// services and the attendance/partner wiring:
	// the session validates presence through the attendance store, and the
	// attendance service runs the partner cascade through the engine.
	secret := []byte(cfg.Auth.Secret)
	authSvc := auth.NewService(conn, secret)

	ctx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.EnsureBootstrapAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Printf("[WARN] bootstrap admin: %v", err)
	}
	cancelBoot()

	attStore := attendance.NewStore(conn)
	presence := partners.PresenceFunc(func(ctx context.Context, date string) (map[string]struct{}, error) {
		return attStore.PresentSet(ctx, date, attendance.SectionCarrom)
	})
	pairStore := partners.NewStore(conn)
	session := partners.NewSession(pairStore, presence)
	engine := partners.NewEngine(session, presence)

	attSvc := attendance.NewService(conn, engine)
	memSvc := members.NewService(conn, files, attStore, engine, pairStore)
	photoSvc := photos.NewService(conn, files)
	tourSvc := tournament.NewService(conn)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS (needed only while the frontend runs on its own port)
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.Static(cfg.Storage.BaseURL, files.Dir())

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)
	attendance.RegisterReadRoutes(api, attSvc)
	partners.RegisterReadRoutes(api, session)
	members.RegisterReadRoutes(api, memSvc)
	photos.RegisterReadRoutes(api, photoSvc)
	tournament.RegisterReadRoutes(api, tourSvc)

	admin := api.Group("", auth.RequireAuth(secret), auth.RequireRole(auth.RoleAdmin))
	auth.RegisterAdminRoutes(admin, authSvc)
	attendance.RegisterAdminRoutes(admin, attSvc)
	partners.RegisterAdminRoutes(admin, session)
	members.RegisterAdminRoutes(admin, memSvc)
	photos.RegisterAdminRoutes(admin, photoSvc)
	tournament.RegisterAdminRoutes(admin, tourSvc)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
