package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"coursehub/config"
	authControllers "coursehub/controllers/auth"
	courseControllers "coursehub/controllers/course"
	"coursehub/database"
	"coursehub/routers"
	"coursehub/services"
	"coursehub/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.ConnectDb(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}

	mailer, err := utils.NewMailer(cfg)
	if err != nil {
		log.Fatalf("Failed to configure mailer: %v", err)
	}

	credentials := services.NewCredentialService(cfg)
	accounts := services.NewAccountService(database.NewUserStore(db), credentials, mailer)

	scheduler, err := utils.InitializeVerificationScheduler(cfg.MailRetrySchedule, accounts)
	if err != nil {
		log.Fatalf("Invalid MAIL_RETRY_SCHEDULE %q: %v", cfg.MailRetrySchedule, err)
	}

	app := routers.NewApp(routers.Dependencies{
		Courses:   courseControllers.NewCourseController(database.NewCourseStore(db), cfg.UploadDir),
		Auth:      authControllers.NewAuthController(accounts),
		Verifier:  credentials,
		Ping:      func() error { return database.Ping(db) },
		UploadDir: cfg.UploadDir,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		<-scheduler.Stop().Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
