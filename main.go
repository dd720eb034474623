// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StauntonTrade/staunton_chat/config"
	"github.com/StauntonTrade/staunton_chat/database"
	"github.com/StauntonTrade/staunton_chat/eventbus"
	"github.com/StauntonTrade/staunton_chat/processor"
	"github.com/StauntonTrade/staunton_chat/routes"
	"github.com/StauntonTrade/staunton_chat/stats"
	"github.com/StauntonTrade/staunton_chat/websocket"
	"github.com/gorilla/mux"
)

func main() {
	fmt.Println("Запуск сервера Staunton Trade Chat...")

	// Загружаем конфигурацию из окружения
	cfg := config.Load()

	// Инициализация базы данных
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("❌ Не удалось инициализировать базу данных: %v", err)
	}
	defer db.Close()

	// Кодек для хранения сообщений (snappy + AES-256-GCM)
	codec, err := processor.NewCodec([]byte(cfg.StorageKey))
	if err != nil {
		log.Fatalf("❌ Не удалось создать кодек хранения: %v", err)
	}

	// Хранилища
	profileStore := database.NewProfileStore(db)
	chatStore := database.NewChatStore(db, codec)
	globalStore := database.NewGlobalStore(db, codec)
	statsRepo := stats.NewRepository(db)

	// Шина событий реального времени
	var source eventbus.Source
	if cfg.SimulateMarketFeed {
		source = eventbus.NewSimulatedSource(cfg.Bus.SimulatedMinInterval, cfg.Bus.SimulatedMaxInterval)
	}
	bus := eventbus.NewBus(cfg.Bus, source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if source != nil {
		if err := bus.Connect(ctx); err != nil {
			log.Printf("⚠️ Не удалось запустить подключение шины событий: %v", err)
		}
	}

	// Создаем менеджер WebSocket с хранилищами и шиной событий
	wsManager := websocket.NewManager(chatStore, globalStore, profileStore, bus)

	// Запускаем менеджер WebSocket
	go wsManager.Run()

	// События шины пересылаются подключенным клиентам
	unbind := wsManager.BindBus()
	defer unbind()

	// Регулярный расчет суточной активности
	if cfg.Stats.Enabled {
		statsRunner := stats.NewRunner(db, cfg.Stats)
		go statsRunner.StartScheduler(ctx)
	}

	// Создаем маршрутизатор и регистрируем обработчики
	router := mux.NewRouter()
	routes.SetupRoutes(router, routes.Stores{
		Chats:          chatStore,
		Global:         globalStore,
		Profiles:       profileStore,
		Stats:          statsRepo,
		PresenceWindow: cfg.PresenceWindow,
	}, wsManager)

	// Настраиваем сервер
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		log.Printf("✅ Сервер запущен на http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Ошибка запуска сервера: %v", err)
		}
	}()

	// Канал для сигналов завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Ожидаем сигнал завершения
	<-stop
	log.Println("⚠️ Получен сигнал завершения, закрываем соединения...")

	// Останавливаем фоновые процессы и подключение шины
	cancel()
	bus.Disconnect()

	// Даем серверу время завершить активные запросы
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Ошибка остановки сервера: %v", err)
	}

	// Закрываем соединение с базой данных
	if err := db.Close(); err != nil {
		log.Printf("❌ Ошибка закрытия соединения с БД: %v", err)
	} else {
		log.Println("✅ Соединение с БД закрыто")
	}

	log.Println("👋 Сервер остановлен")
}
