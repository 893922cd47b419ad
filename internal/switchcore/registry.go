package switchcore

import "sync"

// Registry classifies connections by role and tracks two disjoint
// "connectionId -> *Connection" maps for acquirers and issuers.
// Unknown-role sockets are accepted but never registered; the
// dispatcher drops their traffic.
type Registry struct {
	mu sync.RWMutex

	acquirerAddrs map[string]struct{} // configured acquirer host set
	issuerAddrs   map[string]struct{} // configured issuer host set

	acquirers map[string]*Connection
	issuers   map[string]*Connection
}

// NewRegistry builds a registry with the configured static acquirer
// and issuer host sets used by classification rules 2 and 3.
func NewRegistry(acquirerHosts, issuerHosts []string) *Registry {
	r := &Registry{
		acquirerAddrs: toSet(acquirerHosts),
		issuerAddrs:   toSet(issuerHosts),
		acquirers:     make(map[string]*Connection),
		issuers:       make(map[string]*Connection),
	}
	return r
}

func toSet(hosts []string) map[string]struct{} {
	s := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		s[h] = struct{}{}
	}
	return s
}

// ClassifyAndRegister assigns a role to a newly accepted connection —
// loopback first, then the configured acquirer/issuer host sets, then
// a first-connected-is-acquirer fallback — and adds it to the matching
// map.
func (r *Registry) ClassifyAndRegister(c *Connection) Role {
	host, err := peerHost(c.Conn)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case err == nil && isLoopback(host):
		c.Role = RoleAcquirer
	case err == nil && r.inSet(r.acquirerAddrs, host):
		c.Role = RoleAcquirer
	case err == nil && r.inSet(r.issuerAddrs, host):
		c.Role = RoleIssuer
	case len(r.acquirers) == 0:
		c.Role = RoleAcquirer
	case len(r.issuers) == 0:
		c.Role = RoleIssuer
	default:
		c.Role = RoleUnknown
	}

	switch c.Role {
	case RoleAcquirer:
		r.acquirers[c.ID] = c
	case RoleIssuer:
		r.issuers[c.ID] = c
	}
	return c.Role
}

func (r *Registry) inSet(set map[string]struct{}, host string) bool {
	_, ok := set[host]
	return ok
}

// Unregister removes a connection from whichever role map it belongs
// to, e.g. on socket close. Unknown-role connections are a no-op.
func (r *Registry) Unregister(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch c.Role {
	case RoleAcquirer:
		delete(r.acquirers, c.ID)
	case RoleIssuer:
		delete(r.issuers, c.ID)
	}
}

// FirstIssuer returns any currently registered issuer connection, in
// iteration order, for routing a request to whichever issuer is
// available.
func (r *Registry) FirstIssuer() (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.issuers {
		return c, true
	}
	return nil, false
}

// FirstAcquirer returns any currently registered acquirer connection,
// used by the operator injection path.
func (r *Registry) FirstAcquirer() (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.acquirers {
		return c, true
	}
	return nil, false
}

// Counts returns the number of registered acquirer and issuer
// connections, for admin/metrics reporting.
func (r *Registry) Counts() (acquirers, issuers int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.acquirers), len(r.issuers)
}

// AllConnections returns every currently registered connection,
// acquirers and issuers together, for shutdown sweeps.
func (r *Registry) AllConnections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.acquirers)+len(r.issuers))
	for _, c := range r.acquirers {
		out = append(out, c)
	}
	for _, c := range r.issuers {
		out = append(out, c)
	}
	return out
}
