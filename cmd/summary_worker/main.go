package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"quillbox.dev/project-quillbox/database"
	"quillbox.dev/project-quillbox/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("SummaryWorker: no .env file found, using environment variables")
	}

	db, err := database.ConnectDB()
	if err != nil {
		log.Fatal("SummaryWorker: DB connection failed:", err)
	}
	defer db.Close()

	nc, js, err := services.ConnectQueue()
	if err != nil {
		log.Fatal("SummaryWorker: NATS connection failed:", err)
	}
	defer nc.Close()

	sub, err := services.RunSummaryWorker(db, js)
	if err != nil {
		log.Fatal("SummaryWorker: subscribe failed:", err)
	}
	defer sub.Drain()

	log.Println("SummaryWorker: consuming summary jobs")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("SummaryWorker: shutting down")
}
