package main

import (
	"context"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"

	"stylistapi/dbhelper"
	"stylistapi/services"
	"stylistapi/tasks"
)

func runScheduler() {

	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{

		LogLevel: asynq.InfoLevel,
	})

	// Schedule daily tasks with different cron expressions
	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "0 8 * * *", // 8:00 AM daily
			task: tasks.NewOutfitReminderTask(),
			desc: "Outfit of the day reminders",
		},
	}

	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task)
		if err != nil {
			log.Fatalf("Failed to register task '%s': %v", t.desc, err)
		}
		log.Printf("Registered task '%s' with ID: %s, cron: %s", t.desc, entryID, t.cron)
	}

	log.Println("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"process": 7,
		}},
	)
	awsService := &services.AWSService{}
	stylistLLM := services.GoogleStylistLLM{}
	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("[Queue] Failed to initialize AWS provider: S3")
	}
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v\n", err)
		return
	}
	mux := asynq.NewServeMux()
	db := dbhelper.SetupDB()
	mux.HandleFunc(tasks.TypeWardrobeProcessing, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleWardrobeProcessingTask(ctx, t, db, stylistLLM, awsService, app)
	})
	mux.HandleFunc(tasks.TypeOutfitReminder, func(ctx context.Context, t *asynq.Task) error {
		return tasks.ScheduledOutfitReminderTask(ctx, t, db, app)
	})

	go runScheduler()
	// Run the worker
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
