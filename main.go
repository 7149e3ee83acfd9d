package main

import (
	"log"

	"fintrack/config"
	authController "fintrack/controllers/auth"
	expenseController "fintrack/controllers/expense"
	incomeController "fintrack/controllers/income"
	"fintrack/database"
	"fintrack/mailer"
	authRoutes "fintrack/routers/authRoutes"
	expenseRoutes "fintrack/routers/expenseRoutes"
	incomeRoutes "fintrack/routers/incomeRoutes"
	"fintrack/token"
	"fintrack/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db

	tokens := token.NewIssuer(config.AppConfig.JWTKey)
	mail := mailer.New(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.EmailSender,
		config.AppConfig.EmailPassword,
		config.AppConfig.EmailSender,
	)
	defer mail.Close()

	janitor := utils.StartResetSecretJanitor(db)
	defer janitor.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app, authController.New(db, tokens, mail))
	expenseRoutes.SetupExpenseRoutes(app, tokens, expenseController.New(db))
	incomeRoutes.SetupIncomeRoutes(app, tokens, incomeController.New(db))

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
