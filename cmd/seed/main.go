// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/security"
	"quintastock/internal/domain/auth"
	"quintastock/internal/domain/ledger"
	"quintastock/internal/domain/quinta"
	"quintastock/internal/infrastructure/storage/postgres"
	"quintastock/pkg/logger"
)

var quintaNames = []string{
	"Quinta do Bomfim",
	"Quinta dos Malvedos",
	"Quinta dos Canais",
	"Quinta do Vesuvio",
}

type seedUser struct {
	username    string
	name        string
	password    string
	role        string
	permissions []string
	quinta      string
}

var seedUsers = []seedUser{
	{
		username: "supervisor",
		name:     "Supervisor",
		password: "supervisor123",
		role:     security.RoleSupervisor,
	},
	{
		username: "operador",
		name:     "Operador de Armazém",
		password: "operador123",
		role:     security.RoleOperador,
		permissions: []string{
			security.PermissionVinhos,
			security.PermissionStock,
			security.PermissionMovimentar,
			security.PermissionHistorico,
		},
	},
	{
		username: "bomfim",
		name:     "Quinta do Bomfim",
		password: "bomfim123",
		role:     security.RoleQuinta,
		permissions: []string{
			security.PermissionStock,
			security.PermissionMovimentar,
		},
		quinta: "Quinta do Bomfim",
	},
}

type seedWine struct {
	brand    string
	wineName string
	wineType ledger.WineType
	quantity int
}

var seedWines = []seedWine{
	{"Dow's", "Vintage 2017", ledger.TypePorto, 48},
	{"Dow's", "Late Bottled Vintage 2019", ledger.TypePorto, 120},
	{"Graham's", "Six Grapes", ledger.TypePorto, 96},
	{"Quinta do Vesuvio", "Tinto Reserva 2020", ledger.TypeTinto, 60},
	{"Altano", "Branco 2023", ledger.TypeBranco, 72},
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("required environment variable DATABASE_URL not set")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	quintaRepo := postgres.NewQuintaRepo(txManager)
	ledgerRepo := postgres.NewLedgerRepo(txManager)
	userRepo := postgres.NewUserRepo(txManager)
	tokenRepo := postgres.NewTokenRepo(txManager)

	stockService := ledger.NewService(ledgerRepo, nil)
	quintaService := quinta.NewService(quintaRepo, stockService)
	authService := auth.NewService(userRepo, tokenRepo, nil, auth.DefaultServiceConfig())

	// --- Quintas ---
	for _, name := range quintaNames {
		exists, err := quintaService.Exists(ctx, name)
		if err != nil {
			log.Fatalw("check quinta", "name", name, "error", err)
		}
		if exists {
			log.Infow("quinta already present", "name", name)
			continue
		}
		if _, err := quintaService.Create(ctx, name); err != nil {
			log.Fatalw("create quinta", "name", name, "error", err)
		}
		log.Infow("quinta created", "name", name)
	}

	// --- Users ---
	for _, u := range seedUsers {
		exists, err := userRepo.ExistsByUsername(ctx, u.username)
		if err != nil {
			log.Fatalw("check user", "username", u.username, "error", err)
		}
		if exists {
			log.Infow("user already present", "username", u.username)
			continue
		}

		req := auth.CreateUserRequest{
			Username:    u.username,
			Name:        u.name,
			Password:    u.password,
			Role:        u.role,
			Permissions: u.permissions,
		}
		if u.quinta != "" {
			req.Quinta = &u.quinta
		}
		if _, err := authService.CreateUser(ctx, req); err != nil {
			log.Fatalw("create user", "username", u.username, "error", err)
		}
		log.Infow("user created", "username", u.username, "role", u.role)
	}

	// --- Initial stock in the central warehouse ---
	for _, w := range seedWines {
		entry := ledger.NewStockEntry(w.brand, w.wineName, w.wineType, quinta.StockGeral, w.quantity)
		if err := stockService.AddWine(ctx, entry); err != nil {
			if apperrIsDuplicate(err) {
				log.Infow("wine already present", "brand", w.brand, "wine", w.wineName)
				continue
			}
			log.Fatalw("create stock entry", "brand", w.brand, "wine", w.wineName, "error", err)
		}
		log.Infow("stock entry created", "brand", w.brand, "wine", w.wineName, "quantity", w.quantity)
	}

	log.Info("seed complete")
}

func apperrIsDuplicate(err error) bool {
	appErr, ok := apperror.AsAppError(err)
	return ok && appErr.Code == apperror.CodeDuplicate
}
