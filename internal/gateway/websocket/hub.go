// Package websocket 维护在线用户的 WebSocket 连接，把家庭动态实时推送给接收者
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"family_hub_server/internal/infrastructure/mq"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 2048,
	// 跨域由 CORS 中间件控制
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub 按用户 ID 管理连接，一个用户可以有多个连接（多端登录）
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	closed  bool
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// ServeWS 升级 HTTP 连接并注册客户端
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &Client{hub: h, conn: conn, UserID: userID, send: make(chan []byte, sendBufferSize)}
	if !h.register(client) {
		_ = conn.Close()
		return nil
	}
	go client.writePump()
	go client.readPump()
	zap.L().Info("ws connected", zap.String("user_id", userID))
	return nil
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	conns, ok := h.clients[c.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.UserID] = conns
	}
	conns[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
	}
}

// Online 返回用户当前的连接数
func (h *Hub) Online(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Deliver 实现 mq.Sink，把动态写给所有接收者的连接
// 发送缓冲区已满的连接会被跳过
func (h *Hub) Deliver(activity *mq.Activity) {
	message, err := json.Marshal(activity)
	if err != nil {
		zap.L().Error("marshal activity", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range activity.Recipients {
		for client := range h.clients[userID] {
			select {
			case client.send <- message:
			default:
				zap.L().Warn("ws send buffer full, dropping activity", zap.String("user_id", userID), zap.String("type", activity.Type))
			}
		}
	}
}

// Close 断开所有连接，之后的连接请求会被拒绝
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for userID, conns := range h.clients {
		for client := range conns {
			close(client.send)
		}
		delete(h.clients, userID)
	}
}

var _ mq.Sink = (*Hub)(nil)
