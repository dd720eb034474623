// eventbus/connector.go
package eventbus

import (
	"context"
	"errors"
	"log"
	"time"
)

// Source - внешний производитель событий (подписка на канал изменений,
// рыночный фид и т.п.). Run работает до отмены контекста или ошибки
// транспорта: ready вызывается один раз после установки соединения,
// emit - на каждое полученное событие.
type Source interface {
	Run(ctx context.Context, ready func(), emit func(Event)) error
}

// ErrNoSource возвращается при попытке подключить шину без источника
var ErrNoSource = errors.New("у шины событий нет источника")

// ErrAlreadyConnected возвращается при повторном вызове Connect
var ErrAlreadyConnected = errors.New("шина событий уже подключена")

// Connect запускает цикл подключения к источнику событий.
// При ошибке транспорта статус переходит в error, затем подключение
// повторяется с экспоненциально растущей задержкой (до верхней границы);
// после исчерпания попыток шина остается в статусе error.
func (b *Bus) Connect(ctx context.Context) error {
	if b.source == nil {
		return ErrNoSource
	}

	b.mu.Lock()
	if b.stopConnect != nil {
		b.mu.Unlock()
		return ErrAlreadyConnected
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.stopConnect = cancel
	b.mu.Unlock()

	go b.runConnectLoop(runCtx)
	return nil
}

// Disconnect останавливает эмиссию событий и переводит шину
// в статус disconnected
func (b *Bus) Disconnect() {
	b.mu.Lock()
	cancel := b.stopConnect
	b.stopConnect = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.setStatus(StatusDisconnected)
}

// runConnectLoop держит соединение с источником и переподключается
// по ошибке транспорта
func (b *Bus) runConnectLoop(ctx context.Context) {
	attempt := 0
	delay := b.cfg.BaseDelay

	for {
		b.setStatus(StatusConnecting)

		err := b.source.Run(ctx, func() {
			// Соединение установлено: сбрасываем счетчик попыток
			attempt = 0
			delay = b.cfg.BaseDelay
			b.setStatus(StatusConnected)
			log.Println("✅ Шина событий подключена к источнику")
		}, b.Publish)

		// Штатная остановка через Disconnect или отмену контекста
		if ctx.Err() != nil {
			b.setStatus(StatusDisconnected)
			return
		}

		b.setStatus(StatusError)
		log.Printf("❌ Ошибка источника событий: %v", err)

		attempt++
		if attempt > b.cfg.MaxRetries {
			log.Printf("❌ Исчерпаны попытки переподключения (%d), шина остается в статусе error", b.cfg.MaxRetries)
			return
		}

		log.Printf("⚠️ Переподключение через %v (попытка %d из %d)", delay, attempt, b.cfg.MaxRetries)
		select {
		case <-ctx.Done():
			b.setStatus(StatusDisconnected)
			return
		case <-time.After(delay):
		}

		// Экспоненциальный рост задержки до верхней границы
		delay = time.Duration(float64(delay) * b.cfg.Multiplier)
		if delay > b.cfg.MaxDelay {
			delay = b.cfg.MaxDelay
		}
	}
}
