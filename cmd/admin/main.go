// Command admin is the operator CLI for tasks that have no API surface:
// minting access tokens for humans and batch jobs, and registering or
// suspending affiliate profiles ahead of the onboarding sync.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tourvia/commission-service/internal/adapters/postgres"
	"github.com/tourvia/commission-service/internal/auth"
	"github.com/tourvia/commission-service/internal/config"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
)

func main() {
	var (
		action = flag.String("action", "", "Action to perform: mint-token, create-profile, set-status, show-profile")
		userID = flag.String("user", "", "Operator user ID (mint-token)")
		role   = flag.String("role", "", "Operator role: ADMIN, FINANCE, SUPPORT, INGEST (mint-token)")
		ttl    = flag.Duration("ttl", 0, "Token lifetime override (mint-token)")
		name   = flag.String("name", "", "Affiliate display name (create-profile)")
		tier   = flag.String("tier", "", "Affiliate tier: MANAGER or AGENT (create-profile)")
		id     = flag.String("id", "", "Profile ID (set-status, show-profile)")
		status = flag.String("status", "", "Profile status: ACTIVE, SUSPENDED, TERMINATED (set-status)")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Usage: admin -action=<action> [options]")
		fmt.Println("Actions:")
		fmt.Println("  mint-token     - Mint an access token for an operator or batch job")
		fmt.Println("  create-profile - Register an affiliate profile")
		fmt.Println("  set-status     - Change a profile's lifecycle status")
		fmt.Println("  show-profile   - Print a profile")
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("load config: ", err)
	}

	cli := &adminCLI{ctx: context.Background(), cfg: cfg}
	switch *action {
	case "mint-token":
		cli.mintToken(*userID, *role, *ttl)
	case "create-profile":
		cli.withDB(func(repo *postgres.ProfileRepository) error {
			return cli.createProfile(repo, *name, *tier)
		})
	case "set-status":
		cli.withDB(func(repo *postgres.ProfileRepository) error {
			return cli.setStatus(repo, *id, *status)
		})
	case "show-profile":
		cli.withDB(func(repo *postgres.ProfileRepository) error {
			return cli.showProfile(repo, *id)
		})
	default:
		fmt.Printf("Unknown action: %s\n", *action)
		os.Exit(1)
	}
}

type adminCLI struct {
	ctx context.Context
	cfg *config.Config
}

func (c *adminCLI) mintToken(userID, role string, ttl time.Duration) {
	if userID == "" || role == "" {
		log.Fatal("mint-token requires -user and -role")
	}
	r := auth.Role(role)
	if len(auth.Capabilities(r)) == 0 {
		log.Fatalf("unknown role %q", role)
	}
	if ttl == 0 {
		ttl = c.cfg.Auth.AccessTokenTTL
	}

	manager, err := auth.NewManager(c.cfg.Auth.JWTSecret, c.cfg.Auth.JWTIssuer, c.cfg.Auth.JWTAudience, ttl)
	if err != nil {
		log.Fatal("init token manager: ", err)
	}
	token, err := manager.Issue(time.Now().UTC(), userID, r)
	if err != nil {
		log.Fatal("issue token: ", err)
	}
	fmt.Println(token)
}

func (c *adminCLI) withDB(fn func(repo *postgres.ProfileRepository) error) {
	pool, err := pgxpool.New(c.ctx, c.cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal("connect to database: ", err)
	}
	defer pool.Close()

	repo := postgres.NewProfileRepository(postgres.NewDBExecutor(pool))
	if err := fn(repo); err != nil {
		log.Fatal(err)
	}
}

func (c *adminCLI) createProfile(repo *postgres.ProfileRepository, name, tier string) error {
	if name == "" {
		return fmt.Errorf("create-profile requires -name")
	}
	role := models.ProfileRole(tier)
	if role != models.RoleManager && role != models.RoleAgent {
		return fmt.Errorf("invalid -tier %q, want MANAGER or AGENT", tier)
	}

	profile := &models.AffiliateProfile{
		ID:     uuid.New().String(),
		Name:   name,
		Role:   role,
		Status: models.ProfileActive,
	}
	if err := repo.Upsert(c.ctx, nil, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	fmt.Printf("created %s profile %s (%s)\n", role, profile.ID, name)
	return nil
}

func (c *adminCLI) setStatus(repo *postgres.ProfileRepository, id, status string) error {
	if id == "" {
		return fmt.Errorf("set-status requires -id")
	}
	s := models.ProfileStatus(status)
	switch s {
	case models.ProfileActive, models.ProfileSuspended, models.ProfileTerminated:
	default:
		return fmt.Errorf("invalid -status %q", status)
	}

	profile, err := repo.GetByID(c.ctx, nil, id)
	if err != nil {
		return err
	}
	profile.Status = s
	if err := repo.Upsert(c.ctx, nil, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	fmt.Printf("profile %s is now %s\n", id, s)
	return nil
}

func (c *adminCLI) showProfile(repo *postgres.ProfileRepository, id string) error {
	if id == "" {
		return fmt.Errorf("show-profile requires -id")
	}
	profile, err := repo.GetByID(c.ctx, nil, id)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return fmt.Errorf("no profile with ID %s", id)
		}
		return err
	}
	fmt.Printf("ID:      %s\nName:    %s\nRole:    %s\nStatus:  %s\nCreated: %s\n",
		profile.ID, profile.Name, profile.Role, profile.Status,
		profile.CreatedAt.Format(time.RFC3339))
	return nil
}
