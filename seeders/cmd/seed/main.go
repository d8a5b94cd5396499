package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"pedidos-system/internal/repositories"
	"pedidos-system/pkg/config"
	"pedidos-system/pkg/database/postgresql"
	"pedidos-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runAdmin := flag.Bool("admin", false, "Создать администратора из SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD")
	runDemo := flag.Bool("demo", false, "Создать демонстрационных пользователей (comum и gestor)")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -admin -demo)")
	flag.Parse()

	if !*runAdmin && !*runDemo && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -admin")
		log.Println("  go run ./seeders/cmd/seed -all")
		return
	}

	cfg := config.New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	if err := postgresql.Migrate(dbPool, zap.NewNop()); err != nil {
		log.Fatalf("❌ Ошибка миграций: %v", err)
	}

	repo := repositories.NewUserRepository(dbPool)
	var users []seeders.SeedUser
	if *runAll || *runAdmin {
		users = append(users, seeders.AdminUser(cfg.Seed))
	}
	if *runAll || *runDemo {
		users = append(users, seeders.DemoUsers...)
	}

	created, err := seeders.SeedUsers(ctx, repo, users)
	if err != nil {
		log.Fatalf("❌ Ошибка наполнения пользователей: %v", err)
	}
	log.Printf("✅ Наполнение завершено, создано пользователей: %d", created)
}
