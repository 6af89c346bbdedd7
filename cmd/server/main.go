package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "pollboard/docs"
	"pollboard/internal/authz"
	"pollboard/internal/config"
	"pollboard/internal/domain/poll"
	"pollboard/internal/domain/user"
	"pollboard/internal/domain/vote"
	api "pollboard/internal/http"
	"pollboard/internal/identity"
	"pollboard/internal/metrics"
	"pollboard/internal/platform/database"
	"pollboard/internal/platform/session"
	"pollboard/internal/repository/postgres"
	"pollboard/internal/worker"
)

// @title           Pollboard API
// @version         1.0
// @description     Polls with cookie sessions and role-gated admin surface
// @BasePath        /api/v1
func main() {
	cfg := config.Load()

	metrics.Register()

	db, err := database.NewPostgres(cfg.DB_DSN)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	pollRepo := postgres.NewPollRepo(db)
	voteRepo := postgres.NewVoteRepo(db)
	roleRepo := postgres.NewRoleRepo(db)

	az := authz.NewAuthorizer(roleRepo)
	if cfg.AdminUserID != "" {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := roleRepo.Grant(seedCtx, cfg.AdminUserID, authz.RoleAdmin); err != nil {
			log.Fatalf("admin role seed error: %v", err)
		}
		seedCancel()
	}

	userSvc := user.NewService(userRepo)
	pollSvc := poll.NewService(pollRepo, az)
	voteSvc := vote.NewService(voteRepo, pollRepo)

	tokens := session.NewManager(cfg.SessionSecret, "pollboard", cfg.SessionTTL)
	idp := identity.NewService(userSvc, tokens)

	voteCh := make(chan worker.VoteEvent, 100)
	tallyWorker := worker.NewTallyWorker(voteCh, voteRepo)

	router := api.NewRouter(api.Options{
		Identity:   idp,
		Polls:      pollSvc,
		Votes:      voteSvc,
		Authorizer: az,
		VoteEvents: voteCh,
		DB:         db,
		CORSOrigin: cfg.AllowedOrigin,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tallyWorker.Run(ctx)

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	<-stop
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}

	log.Println("server stopped")
}
