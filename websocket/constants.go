// websocket/constants.go
package websocket

import (
	"time"
)

// Тайминги и лимиты WebSocket-соединений
const (
	// Предел ожидания записи кадра клиенту
	writeWait = 10 * time.Second

	// Если за это время от клиента не пришел pong, соединение считается мертвым
	pongWait = 60 * time.Second

	// Период служебных ping-кадров; меньше pongWait, чтобы успеть получить ответ
	pingPeriod = (pongWait * 9) / 10

	// Верхняя граница размера входящего кадра: хватает на любой
	// торговый документ в теле сообщения
	maxMessageSize = 512 * 1024

	// Без кадров дольше этого срока пользователь переводится в offline
	inactivityTimeout = 65 * time.Second
)
