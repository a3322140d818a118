package hub

import (
	"hash/fnv"
	"sync"
)

const registryShards = 16

type bucketKey struct {
	tenantID string
	group    string
}

// shard guards a slice of the (tenant, group) bucket space so unrelated
// tenants' connection churn does not contend on one lock.
type shard struct {
	mu      sync.RWMutex
	buckets map[bucketKey]map[string]*Conn
}

// Registry tracks live connections grouped by tenant and, within a tenant,
// by subscription group. It is the sole owner of connection lifecycles:
// registration starts the writer goroutine, unregistration stops it.
type Registry struct {
	shards [registryShards]*shard

	mu      sync.Mutex
	conns   map[string]*Conn // connection ID → connection
	metrics *Metrics
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(metrics *Metrics) *Registry {
	r := &Registry{
		conns:   make(map[string]*Conn),
		metrics: metrics,
	}
	for i := range r.shards {
		r.shards[i] = &shard{buckets: make(map[bucketKey]map[string]*Conn)}
	}
	return r
}

func (r *Registry) shardFor(key bucketKey) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.tenantID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key.group))
	return r.shards[h.Sum32()%registryShards]
}

// Register adds the connection under its tenant and groups and starts its
// writer goroutine. Registering an identifier that is already present
// overwrites: the previous registration is fully removed and its connection
// closed before the new one becomes visible.
func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	prev, replaced := r.conns[c.id]
	if replaced {
		r.removeLocked(prev)
	}
	r.conns[c.id] = c
	r.mu.Unlock()

	if replaced {
		prev.close()
		if r.metrics != nil {
			r.metrics.connectionsActive.Dec()
		}
	}

	for _, group := range c.groups {
		key := bucketKey{tenantID: c.tenantID, group: group}
		s := r.shardFor(key)
		s.mu.Lock()
		bucket, ok := s.buckets[key]
		if !ok {
			bucket = make(map[string]*Conn)
			s.buckets[key] = bucket
		}
		bucket[c.id] = c
		s.mu.Unlock()
	}

	go c.writeLoop(r.Drop)

	if r.metrics != nil {
		r.metrics.connectionsActive.Inc()
	}
}

// Drop unregisters the connection only while it still owns its identifier.
// A writer that fails after its connection was overwritten must not evict
// the replacement registered under the same ID.
func (r *Registry) Drop(c *Conn) {
	r.mu.Lock()
	owned := r.conns[c.id] == c
	if owned {
		r.removeLocked(c)
	}
	r.mu.Unlock()

	c.close()
	if owned && r.metrics != nil {
		r.metrics.connectionsActive.Dec()
	}
}

// Unregister removes the connection from every group it was a member of and
// closes it. Unknown identifiers are a no-op.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	c, ok := r.conns[connID]
	if ok {
		r.removeLocked(c)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	c.close()
	if r.metrics != nil {
		r.metrics.connectionsActive.Dec()
	}
}

// removeLocked deletes the connection from the index and every bucket.
// Caller holds r.mu, which serializes membership changes for a given
// connection ID; bucket locks are taken per group.
func (r *Registry) removeLocked(c *Conn) {
	delete(r.conns, c.id)
	for _, group := range c.groups {
		key := bucketKey{tenantID: c.tenantID, group: group}
		s := r.shardFor(key)
		s.mu.Lock()
		if bucket, ok := s.buckets[key]; ok {
			delete(bucket, c.id)
			if len(bucket) == 0 {
				delete(s.buckets, key)
			}
		}
		s.mu.Unlock()
	}
}

// GroupMembers returns a snapshot of the connections registered under the
// given tenant and group.
func (r *Registry) GroupMembers(tenantID, group string) []*Conn {
	key := bucketKey{tenantID: tenantID, group: group}
	s := r.shardFor(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.buckets[key]
	if len(bucket) == 0 {
		return nil
	}
	members := make([]*Conn, 0, len(bucket))
	for _, c := range bucket {
		members = append(members, c)
	}
	return members
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Close unregisters every connection. Used at shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Unregister(id)
	}
}
