package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"islamicTodo/internal/app"
	"islamicTodo/internal/config"
)

func main() {
	configPath := flag.String("config", "", "путь к config.yml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ошибка загрузки конфига: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		log.Fatalf("ошибка инициализации: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("ошибка работы сервера: %v", err)
	}
}
