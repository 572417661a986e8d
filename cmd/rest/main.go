package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"docmind-be/internal/bootstrap"
	"docmind-be/internal/config"
	"docmind-be/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap application: %v", err)
	}

	// 3. Initialize Server
	srv := server.New(cfg, container)

	// 4. Graceful Shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		_ = srv.GetApp().Shutdown()
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}

	// 6. Release Resources
	container.DocumentService.Release()
	if err := container.Stores.Close(); err != nil {
		log.Printf("Vector store close error: %v", err)
	}
	container.Logger.Sync()
}
