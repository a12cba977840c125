// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"colisflow/internal/config"
	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
	"colisflow/internal/domain/auth"
	"colisflow/internal/domain/cash"
	"colisflow/internal/domain/parcel"
	"colisflow/internal/infrastructure/storage/postgres"
	"colisflow/internal/infrastructure/storage/postgres/auth_repo"
	"colisflow/internal/infrastructure/storage/postgres/cash_repo"
	"colisflow/internal/infrastructure/storage/postgres/parcel_repo"
	"colisflow/pkg/logger"
	"colisflow/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
		Service:     "colisflow-seed",
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}
	log.Info("connected to database, schema up to date")

	txManager := postgres.NewTxManager(pool)
	numbers := numerator.NewWithQuerier(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	authService := auth.NewService(auth_repo.NewUserRepo(txManager), auth.NewJWTService(auth.DefaultJWTConfig(cfg.Auth.JWTSecret)))
	if err := seedAdminUser(ctx, authService, auth_repo.NewUserRepo(txManager), log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	parcelRepo := parcel_repo.NewRepo(txManager)
	cashService := cash.NewService(cash_repo.NewRepo(txManager), txManager, numbers, parcel.NewService(parcelRepo, numbers))
	if err := seedDefaultRegister(ctx, cashService, log); err != nil {
		log.Fatalw("failed to seed default register", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		n := 200
		if v, err := strconv.Atoi(os.Getenv("DEMO_PARCELS")); err == nil && v > 0 {
			n = v
		}
		if err := seedDemoParcels(ctx, txManager, parcelRepo, n, log); err != nil {
			log.Fatalw("failed to seed demo parcels", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, svc *auth.Service, users auth.UserRepository, log *logger.Logger) error {
	username := getEnv("ADMIN_USERNAME", "admin")
	password := getEnv("ADMIN_PASSWORD", "Admin123!")

	existing, err := users.GetByUsername(ctx, auth.NormalizeUsername(username))
	if err == nil {
		log.Infow("admin user already exists", "username", existing.Username, "user_id", existing.ID)
		return nil
	}
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	user, err := svc.CreateUser(ctx, auth.CreateUserInput{
		Username: username,
		Password: password,
		FullName: "Administrateur",
		IsAdmin:  true,
	})
	if err != nil {
		return err
	}
	log.Infow("admin user created", "username", user.Username, "user_id", user.ID)
	return nil
}

func seedDefaultRegister(ctx context.Context, svc *cash.Service, log *logger.Logger) error {
	regs, err := svc.ListRegisters(ctx)
	if err != nil {
		return err
	}
	if len(regs) > 0 {
		log.Infow("registers already present", "count", len(regs))
		return nil
	}

	reg, err := svc.CreateRegister(ctx, cash.RegisterInput{
		Name:            "Caisse principale",
		OpeningBalance:  types.Zero(),
		MinBalanceAlert: types.MustMoney("50000"),
	})
	if err != nil {
		return err
	}
	log.Infow("default register created", "register_id", reg.ID, "code", reg.Code)
	return nil
}

var demoClients = []string{"Awa Ndiaye", "Moussa Diop", "Fatou Sow", "Ibrahima Fall", "Aminata Ba", "Cheikh Gueye"}

var parcelColumns = []string{"id", "reference", "client_name", "description", "weight_kg", "status", "created_at", "updated_at"}

// seedDemoParcels bulk-loads parcels DEMO-00001..n with COPY. It is skipped
// when the first reference already exists.
func seedDemoParcels(ctx context.Context, txManager *postgres.TxManager, repo *parcel_repo.Repo, n int, log *logger.Logger) error {
	if _, err := repo.GetByReference(ctx, demoReference(1)); err == nil {
		log.Info("demo parcels already present")
		return nil
	} else if !apperror.IsNotFound(err) {
		return err
	}

	rows := demoParcelRows(n, time.Now().UTC())
	inserter := postgres.NewBatchInserter(txManager)

	var copied int64
	err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		copied, err = inserter.CopyFromSlice(ctx, "parcels", parcelColumns, rows)
		return err
	})
	if err != nil {
		return err
	}
	log.Infow("demo parcels loaded", "count", copied)
	return nil
}

func demoParcelRows(n int, now time.Time) [][]any {
	statuses := []parcel.Status{parcel.StatusReceived, parcel.StatusInTransit, parcel.StatusArrived, parcel.StatusDelivered}
	rows := make([][]any, 0, n)
	for i := 1; i <= n; i++ {
		created := now.Add(-time.Duration(n-i) * time.Hour)
		rows = append(rows, []any{
			id.New(),
			demoReference(i),
			demoClients[i%len(demoClients)],
			"Colis de démonstration",
			float64(1+i%40) + 0.5,
			string(statuses[i%len(statuses)]),
			created,
			created,
		})
	}
	return rows
}

func demoReference(i int) string {
	return fmt.Sprintf("DEMO-%05d", i)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
