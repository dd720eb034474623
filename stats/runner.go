// stats/runner.go
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/StauntonTrade/staunton_chat/config"
	"github.com/go-co-op/gocron"
)

// Runner выполняет регулярный расчет суточной активности
type Runner struct {
	config config.StatsConfig
	logger *StatsLogger
	repo   *Repository
}

// NewRunner создает новый экземпляр Runner
func NewRunner(db *sql.DB, cfg config.StatsConfig) *Runner {
	logger := NewStatsLogger(cfg.EnableDetailedLogging)
	logger.Info("Инициализация расчета активности")

	return &Runner{
		config: cfg,
		logger: logger,
		repo:   NewRepository(db),
	}
}

// RunOnce выполняет один полный проход расчета активности
func (r *Runner) RunOnce() error {
	r.logger.Info("Запуск расчета активности")
	startTime := time.Now()

	// Создаем запись в журнале запусков
	logID, err := r.repo.CreateLogEntry(startTime)
	if err != nil {
		r.logger.Error("Ошибка при создании записи в журнале: %v", err)
		return err
	}

	// Получаем метаданные последнего успешного запуска
	lastRun, err := r.repo.GetLastSuccessfulRun()
	if err != nil {
		r.logger.Error("Не удалось получить информацию о последнем успешном запуске: %v. Будет выполнен полный расчет.", err)
	}

	var lastMessageID, lastGlobalID int
	if lastRun != nil {
		lastMessageID = lastRun.LastMessageID
		lastGlobalID = lastRun.LastGlobalID
		r.logger.Info("Последний успешный запуск: %v, ID последнего сообщения: %d, общего чата: %d",
			lastRun.EndTime, lastMessageID, lastGlobalID)
	}

	// Сворачиваем личные сообщения
	maxMessageID, directBatches, err := r.repo.AggregateDirectMessages(lastMessageID)
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка при агрегации личных сообщений: %v", err)
		r.logger.Error(errMsg)
		r.repo.UpdateLogEntryFailure(logID, time.Now(), errMsg)
		return err
	}

	// Сворачиваем сообщения общего чата
	maxGlobalID, globalBatches, err := r.repo.AggregateGlobalMessages(lastGlobalID)
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка при агрегации общего чата: %v", err)
		r.logger.Error(errMsg)
		r.repo.UpdateLogEntryFailure(logID, time.Now(), errMsg)
		return err
	}

	if err := r.repo.UpdateLogEntrySuccess(logID, time.Now(), maxMessageID, maxGlobalID); err != nil {
		r.logger.Error("Ошибка при обновлении записи в журнале: %v", err)
		return err
	}

	r.logger.Info("Расчет активности завершен. Пар (пользователь, дата): %d личных, %d общих. Длительность: %v",
		directBatches, globalBatches, time.Since(startTime))
	return nil
}

// StartScheduler запускает планировщик для регулярного расчета.
// Блокируется до отмены контекста.
func (r *Runner) StartScheduler(ctx context.Context) {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Запуск планировщика расчета активности с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).Do(func() {
		r.logger.Info("Запланированный запуск расчета активности")
		if err := r.RunOnce(); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного расчета: %v", err)
		}
	})

	if err != nil {
		r.logger.Error("Ошибка при настройке планировщика: %v", err)
		return
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	r.logger.Info("Планировщик расчета активности остановлен")
}
