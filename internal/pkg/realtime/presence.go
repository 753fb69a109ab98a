package realtime

import (
	"Ringside/internal/pkg/metrics"
	"hash/fnv"
	"sync"
)

const presenceShards = 32

type presenceShard struct {
	mu    sync.RWMutex
	users map[string]map[string]*Connection
}

// Presence 用户到其存活连接集合的映射, 按用户分片加锁
type Presence struct {
	shards [presenceShards]*presenceShard

	// owners 连接到用户的反向索引, 也是 Connect/Disconnect 的串行点
	mu     sync.Mutex
	owners map[string]string
}

func NewPresence() *Presence {
	p := &Presence{owners: make(map[string]string)}
	for i := range p.shards {
		p.shards[i] = &presenceShard{users: make(map[string]map[string]*Connection)}
	}
	return p
}

func (p *Presence) shard(userID string) *presenceShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return p.shards[h.Sum32()%presenceShards]
}

// Connect 登记用户的一条连接, 同一用户可持有多条; 已关闭的连接不登记并返回 false.
// 关闭先于清理回调发生, 在锁内检查可保证清理不会被之后的登记覆盖
func (p *Presence) Connect(userID string, conn *Connection) bool {
	if userID == "" || conn == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn.Closed() {
		return false
	}
	if prev, ok := p.owners[conn.ID()]; ok {
		if prev == userID {
			return true
		}
		p.removeLocked(prev, conn.ID())
	}
	p.owners[conn.ID()] = userID

	sh := p.shard(userID)
	sh.mu.Lock()
	set, ok := sh.users[userID]
	if !ok {
		set = make(map[string]*Connection)
		sh.users[userID] = set
		metrics.OnlineUsers.Inc()
	}
	set[conn.ID()] = conn
	sh.mu.Unlock()
	return true
}

// Disconnect 移除连接, 未知连接为 no-op
func (p *Presence) Disconnect(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.owners[connID]
	if !ok {
		return
	}
	delete(p.owners, connID)
	p.removeLocked(userID, connID)
}

func (p *Presence) removeLocked(userID, connID string) {
	sh := p.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	set, ok := sh.users[userID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(sh.users, userID)
		metrics.OnlineUsers.Dec()
	}
}

func (p *Presence) IsOnline(userID string) bool {
	sh := p.shard(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.users[userID]) > 0
}

// ConnectionsFor 返回用户当前的连接 ID 快照
func (p *Presence) ConnectionsFor(userID string) []string {
	sh := p.shard(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	ids := make([]string, 0, len(sh.users[userID]))
	for id := range sh.users[userID] {
		ids = append(ids, id)
	}
	return ids
}

func (p *Presence) connections(userID string) []*Connection {
	sh := p.shard(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	conns := make([]*Connection, 0, len(sh.users[userID]))
	for _, c := range sh.users[userID] {
		conns = append(conns, c)
	}
	return conns
}

// OnlineCount 在线用户数
func (p *Presence) OnlineCount() int {
	n := 0
	for _, sh := range p.shards {
		sh.mu.RLock()
		n += len(sh.users)
		sh.mu.RUnlock()
	}
	return n
}

// Clear 清空全部在线状态, 进程退出时调用
func (p *Presence) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, sh := range p.shards {
		sh.mu.Lock()
		metrics.OnlineUsers.Sub(float64(len(sh.users)))
		sh.users = make(map[string]map[string]*Connection)
		sh.mu.Unlock()
	}
	p.owners = make(map[string]string)
}
