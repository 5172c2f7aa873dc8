package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"marketadmin/internal/config"
	"marketadmin/internal/database"
	"marketadmin/internal/domain"
	"marketadmin/internal/moderation"
	"marketadmin/internal/observability"
	"marketadmin/internal/pkg/slug"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
)

const demoPassword = "demo-password-123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	// Cleanup old data (in safe order)
	logger.Info("cleaning old data")
	for _, table := range []string{"refresh_tokens", "services", "service_categories", "provider_profiles", "profiles", "accounts"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			logger.Fatal("cleanup failed", zap.String("table", table), zap.Error(err))
		}
	}

	ctx := context.Background()
	accounts := repository.NewAccountRepository(db)
	providers := repository.NewProviderRepository(db)
	services := repository.NewServiceRepository(db)
	categories := repository.NewCategoryRepository(db)
	machine := moderation.NewMachine(db, nil, logger, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("hash failed", zap.Error(err))
	}

	// ================== ACCOUNTS ==================
	logger.Info("creating accounts")
	byRole := map[domain.Role]*domain.Account{}
	for _, role := range domain.Roles {
		acc := &domain.Account{
			Username:     string(role) + "_demo",
			Email:        string(role) + "@demo.local",
			PasswordHash: string(hash),
			FirstName:    "Demo",
			LastName:     string(role),
			IsActive:     true,
			DateJoined:   time.Now(),
		}
		if err := accounts.CreateWithProfile(ctx, acc, &domain.Profile{Role: role, JobTitle: "Demo " + string(role)}); err != nil {
			logger.Fatal("create account failed", zap.String("role", string(role)), zap.Error(err))
		}
		byRole[role] = acc
	}

	owners := make([]*domain.Account, 0, 3)
	for i := 1; i <= 3; i++ {
		acc := &domain.Account{
			Username:     fmt.Sprintf("owner%d", i),
			Email:        fmt.Sprintf("owner%d@demo.local", i),
			PasswordHash: string(hash),
			IsActive:     true,
			DateJoined:   time.Now(),
		}
		if err := accounts.CreateWithProfile(ctx, acc, &domain.Profile{Role: domain.RoleUser}); err != nil {
			logger.Fatal("create owner failed", zap.Error(err))
		}
		owners = append(owners, acc)
	}

	// ================== CATEGORIES ==================
	logger.Info("creating categories")
	cats := make([]*domain.ServiceCategory, 0, 3)
	for _, name := range []string{"Cleaning", "Repairs", "Tutoring"} {
		c := &domain.ServiceCategory{Name: name, Slug: slug.Make(name), Description: name + " services"}
		if err := categories.Create(ctx, c); err != nil {
			logger.Fatal("create category failed", zap.String("name", name), zap.Error(err))
		}
		cats = append(cats, c)
	}

	// ================== PROVIDERS ==================
	logger.Info("creating providers")
	reviewer := policy.NewActor(byRole[domain.RoleAdmin])
	statuses := []domain.ProviderStatus{domain.ProviderApproved, domain.ProviderPending, domain.ProviderRejected}
	profiles := make([]*domain.ProviderProfile, 0, len(owners))
	for i, owner := range owners {
		p := &domain.ProviderProfile{
			AccountID:    owner.ID,
			DisplayName:  fmt.Sprintf("Demo Provider %d", i+1),
			ContactEmail: owner.Email,
			Status:       domain.ProviderPending,
		}
		if err := providers.Create(ctx, p); err != nil {
			logger.Fatal("create provider failed", zap.Error(err))
		}
		if statuses[i] != domain.ProviderPending {
			if _, err := machine.TransitionProvider(ctx, reviewer, p.ID, statuses[i], "seeded"); err != nil {
				logger.Fatal("provider transition failed", zap.Error(err))
			}
		}
		profiles = append(profiles, p)
	}

	// ================== SERVICES ==================
	logger.Info("creating services")
	serviceStatuses := []domain.ServiceStatus{domain.ServiceDraft, domain.ServicePending, domain.ServiceApproved, domain.ServiceDisabled}
	creator := byRole[domain.RoleAdmin].ID
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("Demo Service %d", i+1)
		categoryID := cats[i%len(cats)].ID
		providerID := profiles[i%len(profiles)].ID
		s := &domain.Service{
			Name:        name,
			Slug:        slug.Make(name),
			Summary:     "Seeded listing",
			Description: "Demo data for the admin console",
			CategoryID:  &categoryID,
			ProviderID:  &providerID,
			CreatedBy:   &creator,
			UpdatedBy:   &creator,
			Status:      domain.ServiceDraft,
		}
		if err := services.Create(ctx, s); err != nil {
			logger.Fatal("create service failed", zap.Error(err))
		}
		if st := serviceStatuses[i%len(serviceStatuses)]; st != domain.ServiceDraft {
			if _, err := machine.TransitionService(ctx, reviewer, s.ID, st, "seeded"); err != nil {
				logger.Fatal("service transition failed", zap.Error(err))
			}
		}
	}

	logger.Info("seed completed", zap.String("password", demoPassword), zap.Int("accounts", len(byRole)+len(owners)))
}
