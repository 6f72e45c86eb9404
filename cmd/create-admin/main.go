package main

import (
	"os"

	"freshbulk-service/internal/model"
	"freshbulk-service/internal/storage"
	"freshbulk-service/pkg/config"
	"freshbulk-service/pkg/logger"
	"freshbulk-service/pkg/password"

	"go.uber.org/zap"
)

// Seeds the admin account. Intended for the postgres backend; with the
// memory backend the account only lives as long as this process.
func main() {
	appConfig, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	if err := storage.Init(appConfig); err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	username := getEnv("ADMIN_USERNAME", "admin")
	email := getEnv("ADMIN_EMAIL", "admin@freshbulk.com")
	plain := getEnv("ADMIN_PASSWORD", "admin123")

	existing, err := storage.Get().GetUserByUsername(username)
	if err != nil {
		log.Fatal("Failed to look up admin user", zap.Error(err))
	}
	if existing != nil {
		log.Info("Admin user already exists", zap.String("username", username))
		return
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		log.Fatal("Failed to hash admin password", zap.Error(err))
	}

	user, err := storage.Get().CreateUser(&model.User{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		log.Fatal("Failed to create admin user", zap.Error(err))
	}

	log.Info("Admin user created",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("email", user.Email))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
