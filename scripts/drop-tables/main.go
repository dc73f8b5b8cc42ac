package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/mo-amir99/techboost-server-go/internal/bootstrap"
	"github.com/mo-amir99/techboost-server-go/pkg/config"
	"github.com/mo-amir99/techboost-server-go/pkg/database"
	"github.com/mo-amir99/techboost-server-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	if cfg.IsProduction() {
		fmt.Println("Refusing to drop tables in production.")
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	fmt.Println("\nWARNING: This will DROP ALL TABLES in the database!")
	fmt.Println("   This action CANNOT be undone.")
	fmt.Print("\nType 'DROP ALL TABLES' to confirm: ")

	reader := bufio.NewReader(os.Stdin)
	confirmation, _ := reader.ReadString('\n')
	if strings.TrimSpace(confirmation) != "DROP ALL TABLES" {
		fmt.Println("\nOperation cancelled. Database unchanged.")
		os.Exit(0)
	}

	// Children first.
	models := bootstrap.Models()
	tables := make([]interface{}, 0, len(models)+1)
	for i := len(models) - 1; i >= 0; i-- {
		tables = append(tables, models[i])
	}
	tables = append(tables, "schema_migrations")

	droppedCount := 0
	migrator := db.WithContext(ctx).Migrator()
	for _, table := range tables {
		if err := migrator.DropTable(table); err != nil {
			appLogger.Warn("Failed to drop table", slog.String("table", fmt.Sprint(table)), slog.String("error", err.Error()))
			continue
		}
		droppedCount++
	}

	fmt.Printf("\nSuccessfully dropped %d tables!\n", droppedCount)
	fmt.Println("   You can now run the migrate script to recreate them.")
}
