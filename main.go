package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"api_pos/api"
	"api_pos/internal/drawer"
	"api_pos/internal/sales"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	var salesStore sales.Storage
	var drawerStore drawer.Storage
	if path := os.Getenv("DB_PATH"); path != "" {
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			logger.Fatal("failed to open database", zap.String("path", path), zap.Error(err))
		}
		salesStore, err = sales.NewGormStorage(db)
		if err != nil {
			logger.Fatal("failed to init sales storage", zap.Error(err))
		}
		drawerStore, err = drawer.NewGormStorage(db)
		if err != nil {
			logger.Fatal("failed to init drawer storage", zap.Error(err))
		}
		logger.Info("using sqlite storage", zap.String("path", path))
	} else {
		salesStore = sales.NewLocalStorage()
		drawerStore = drawer.NewLocalStorage()
		logger.Info("using in-memory storage")
	}

	r := gin.Default()

	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api.InitRoutes(r, logger, salesStore, drawerStore, sales.NewLogStock(logger))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
