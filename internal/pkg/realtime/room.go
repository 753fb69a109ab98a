package realtime

import "sync"

// Rooms 会话到正在查看它的连接集合, 每条连接同一时刻至多属于一个房间
type Rooms struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]*Connection
	connRoom map[string]string
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:    make(map[string]map[string]*Connection),
		connRoom: make(map[string]string),
	}
}

// Join 加入房间, 先离开该连接之前所在的房间; 已关闭的连接只离开不加入并返回 false
func (r *Rooms) Join(conn *Connection, conversationID string) bool {
	if conn == nil || conversationID == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(conn.ID())
	if conn.Closed() {
		return false
	}

	members, ok := r.rooms[conversationID]
	if !ok {
		members = make(map[string]*Connection)
		r.rooms[conversationID] = members
	}
	members[conn.ID()] = conn
	r.connRoom[conn.ID()] = conversationID
	return true
}

// Leave 幂等
func (r *Rooms) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID)
}

func (r *Rooms) leaveLocked(connID string) {
	convID, ok := r.connRoom[connID]
	if !ok {
		return
	}
	delete(r.connRoom, connID)
	if members, ok := r.rooms[convID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, convID)
		}
	}
}

// MembersOf 返回房间内连接 ID 快照
func (r *Rooms) MembersOf(conversationID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms[conversationID]))
	for id := range r.rooms[conversationID] {
		ids = append(ids, id)
	}
	return ids
}

func (r *Rooms) members(conversationID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.rooms[conversationID]))
	for _, c := range r.rooms[conversationID] {
		conns = append(conns, c)
	}
	return conns
}

// RoomOf 返回连接当前所在的会话
func (r *Rooms) RoomOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	convID, ok := r.connRoom[connID]
	return convID, ok
}

func (r *Rooms) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = make(map[string]map[string]*Connection)
	r.connRoom = make(map[string]string)
}
