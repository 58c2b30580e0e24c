package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/sadid-rahin/luxury-comfort/internal/models"
)

// Константы для типов сообщений WebSocket
const (
	BookingConfirmedType  = "BOOKING_CONFIRMED"   // Гостю: бронь подтверждена диспетчером
	NewPendingBookingType = "NEW_PENDING_BOOKING" // Диспетчерам: появились новые брони
)

// WebSocketMessage представляет формат сообщения WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketManager управляет всеми подключениями: гости подписаны на
// идентификатор своей брони, диспетчеры - на общий канал терминала.
type WebSocketManager struct {
	guestsByRef map[string]map[*websocket.Conn]bool
	hosts       map[*websocket.Conn]bool
	register    chan *WebSocketClient
	unregister  chan *WebSocketClient
	mutex       sync.RWMutex
}

// WebSocketClient представляет клиентское соединение WebSocket
type WebSocketClient struct {
	conn       *websocket.Conn
	bookingRef string // Непустой для гостя, ждущего подтверждения
	isHost     bool
}

// Глобальный менеджер WebSocket
var wsManager = NewWebSocketManager()

// NewWebSocketManager создает новый менеджер WebSocket
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		guestsByRef: make(map[string]map[*websocket.Conn]bool),
		hosts:       make(map[*websocket.Conn]bool),
		register:    make(chan *WebSocketClient),
		unregister:  make(chan *WebSocketClient),
	}
}

// Start запускает обработку регистраций WebSocket
func (manager *WebSocketManager) Start() {
	log.Printf("Запуск WebSocket Manager")
	go func() {
		for {
			select {
			case client := <-manager.register:
				manager.mutex.Lock()
				if client.isHost {
					manager.hosts[client.conn] = true
					log.Printf("Диспетчер подключен к терминалу (%d подключений)", len(manager.hosts))
				} else if client.bookingRef != "" {
					ref := normalizeRef(client.bookingRef)
					if _, ok := manager.guestsByRef[ref]; !ok {
						manager.guestsByRef[ref] = make(map[*websocket.Conn]bool)
					}
					manager.guestsByRef[ref][client.conn] = true
					log.Printf("Гость подписан на бронь %s", ref)
				}
				manager.mutex.Unlock()

			case client := <-manager.unregister:
				manager.mutex.Lock()
				if client.isHost {
					if _, ok := manager.hosts[client.conn]; ok {
						delete(manager.hosts, client.conn)
						client.conn.Close()
						log.Printf("Диспетчер отключен от терминала")
					}
				} else if client.bookingRef != "" {
					ref := normalizeRef(client.bookingRef)
					if conns, ok := manager.guestsByRef[ref]; ok {
						if _, exists := conns[client.conn]; exists {
							delete(conns, client.conn)
							client.conn.Close()
						}
						if len(conns) == 0 {
							delete(manager.guestsByRef, ref)
						}
						log.Printf("Гость отписан от брони %s", ref)
					}
				}
				manager.mutex.Unlock()
			}
		}
	}()
	log.Printf("WebSocket Manager успешно запущен")
}

// normalizeRef приводит идентификатор брони к ключу подписки.
func normalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}

// broadcast отправляет сообщение по списку соединений.
func (manager *WebSocketManager) broadcastTo(conns map[*websocket.Conn]bool, message *WebSocketMessage, unregisterAs func(*websocket.Conn) *WebSocketClient) {
	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Printf("Ошибка при кодировании сообщения: %v", err)
		return
	}

	for conn := range conns {
		go func(c *websocket.Conn) {
			if err := c.WriteMessage(websocket.TextMessage, jsonMessage); err != nil {
				log.Printf("Ошибка при отправке сообщения: %v", err)
				manager.unregister <- unregisterAs(c)
			}
		}(conn)
	}
}

// BroadcastToBooking отправляет сообщение всем гостям, ждущим эту бронь.
func (manager *WebSocketManager) BroadcastToBooking(ref string, message *WebSocketMessage) {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	conns, exists := manager.guestsByRef[normalizeRef(ref)]
	if !exists || len(conns) == 0 {
		return
	}
	manager.broadcastTo(conns, message, func(c *websocket.Conn) *WebSocketClient {
		return &WebSocketClient{conn: c, bookingRef: ref}
	})
}

// BroadcastToHosts отправляет сообщение всем подключенным диспетчерам.
func (manager *WebSocketManager) BroadcastToHosts(message *WebSocketMessage) {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	if len(manager.hosts) == 0 {
		return
	}
	manager.broadcastTo(manager.hosts, message, func(c *websocket.Conn) *WebSocketClient {
		return &WebSocketClient{conn: c, isHost: true}
	})
}

// GuestHandler обрабатывает подключение гостя, ждущего подтверждения брони.
func GuestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Upgrade") != "websocket" {
			c.String(http.StatusBadRequest, "Требуется WebSocket соединение")
			return
		}

		ref := c.Query("ref")
		if strings.TrimSpace(ref) == "" {
			c.String(http.StatusBadRequest, "Не указан идентификатор брони")
			return
		}

		conn, err := upgrade(c)
		if err != nil {
			return
		}

		client := &WebSocketClient{conn: conn, bookingRef: ref}
		wsManager.register <- client
		go handleMessages(client)
	}
}

// HostHandler обрабатывает подключение диспетчера к терминалу. Маршрут
// закрыт JWT middleware.
func HostHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Upgrade") != "websocket" {
			c.String(http.StatusBadRequest, "Требуется WebSocket соединение")
			return
		}

		conn, err := upgrade(c)
		if err != nil {
			return
		}

		client := &WebSocketClient{conn: conn, isHost: true}
		wsManager.register <- client
		go handleMessages(client)
	}
}

// upgrade обновляет HTTP соединение до WebSocket.
func upgrade(c *gin.Context) (*websocket.Conn, error) {
	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Разрешаем подключения с любых источников
		},
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Ошибка обновления соединения до WebSocket: %v", err)
		c.String(http.StatusInternalServerError, "Не удалось установить WebSocket соединение")
		return nil, err
	}
	return conn, nil
}

// handleMessages обрабатывает сообщения от клиента
func handleMessages(client *WebSocketClient) {
	defer func() {
		// Когда функция завершается, отменяем регистрацию клиента
		wsManager.unregister <- client
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}

		// Обрабатываем ping-сообщения
		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pongMsg := map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			}
			pongJSON, _ := json.Marshal(pongMsg)
			if err := client.conn.WriteMessage(websocket.TextMessage, pongJSON); err != nil {
				log.Printf("Ошибка при отправке pong: %v", err)
			}
		}
	}
}

// SendBookingConfirmed уведомляет гостя о подтверждении брони и передает
// квитанцию.
func SendBookingConfirmed(receipt models.ReceiptResponse) {
	message := &WebSocketMessage{
		Type:    BookingConfirmedType,
		Payload: receipt,
	}
	wsManager.BroadcastToBooking(receipt.Booking.Ref, message)
}

// SendNewPendingBookings уведомляет диспетчеров о росте числа ожидающих
// броней.
func SendNewPendingBookings(pendingCount int) {
	message := &WebSocketMessage{
		Type: NewPendingBookingType,
		Payload: map[string]interface{}{
			"pending_count": pendingCount,
		},
	}
	wsManager.BroadcastToHosts(message)
}

// GetManager возвращает глобальный экземпляр менеджера WebSocket
func GetManager() *WebSocketManager {
	return wsManager
}

// StartManager запускает менеджер WebSocket
func StartManager() {
	wsManager.Start()
}
