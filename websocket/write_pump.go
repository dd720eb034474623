// websocket/write_pump.go
package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// writePump пишет клиенту кадры из канала Send и поддерживает keepalive.
// Единственная горутина, которой разрешено писать в сокет.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		// Канал Send могли закрыть при вытеснении соединения
		if r := recover(); r != nil {
			log.Printf("⚠️ Паника в writePump клиента %d: %v", c.ID, r)
		}

		ticker.Stop()
		c.Socket.Close()

		log.Printf("ℹ️ writePump клиента %d завершен", c.ID)
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Каждый кадр уходит отдельным текстовым сообщением:
			// клиент парсит их как самостоятельные JSON-объекты
			if err := c.Socket.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

			// Выгребаем накопившиеся кадры, не дожидаясь следующего select
			pending := len(c.Send)
			for i := 0; i < pending; i++ {
				if err := c.Socket.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}
		case <-ticker.C:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
