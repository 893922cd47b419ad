package switchcore

import "testing"

func connFrom(host string) *Connection {
	client, _ := newFakeConn(host + ":5000")
	return NewConnection(client)
}

func TestClassifyLoopbackIsAlwaysAcquirer(t *testing.T) {
	r := NewRegistry([]string{"10.0.0.9"}, []string{"127.0.0.1"})
	c := connFrom("127.0.0.1")
	if role := r.ClassifyAndRegister(c); role != RoleAcquirer {
		t.Fatalf("role = %v, want RoleAcquirer", role)
	}
}

func TestClassifyConfiguredAcquirerHost(t *testing.T) {
	r := NewRegistry([]string{"10.0.0.9"}, nil)
	c := connFrom("10.0.0.9")
	if role := r.ClassifyAndRegister(c); role != RoleAcquirer {
		t.Fatalf("role = %v, want RoleAcquirer", role)
	}
	acquirers, issuers := r.Counts()
	if acquirers != 1 || issuers != 0 {
		t.Fatalf("counts = (%d,%d), want (1,0)", acquirers, issuers)
	}
}

func TestClassifyConfiguredIssuerHost(t *testing.T) {
	r := NewRegistry(nil, []string{"10.0.0.5"})
	c := connFrom("10.0.0.5")
	if role := r.ClassifyAndRegister(c); role != RoleIssuer {
		t.Fatalf("role = %v, want RoleIssuer", role)
	}
}

func TestClassifyFallsBackToFirstConnectedIsAcquirer(t *testing.T) {
	r := NewRegistry(nil, nil)
	c := connFrom("203.0.113.4")
	if role := r.ClassifyAndRegister(c); role != RoleAcquirer {
		t.Fatalf("role = %v, want RoleAcquirer (first unclassified socket)", role)
	}
}

func TestClassifySecondUnclassifiedIsIssuer(t *testing.T) {
	r := NewRegistry(nil, nil)
	first := connFrom("203.0.113.4")
	r.ClassifyAndRegister(first)

	second := connFrom("203.0.113.5")
	if role := r.ClassifyAndRegister(second); role != RoleIssuer {
		t.Fatalf("role = %v, want RoleIssuer (second unclassified socket)", role)
	}
}

func TestClassifyThirdUnclassifiedIsUnknown(t *testing.T) {
	r := NewRegistry(nil, nil)
	r.ClassifyAndRegister(connFrom("203.0.113.4"))
	r.ClassifyAndRegister(connFrom("203.0.113.5"))

	third := connFrom("203.0.113.6")
	if role := r.ClassifyAndRegister(third); role != RoleUnknown {
		t.Fatalf("role = %v, want RoleUnknown", role)
	}
	acquirers, issuers := r.Counts()
	if acquirers != 1 || issuers != 1 {
		t.Fatalf("counts = (%d,%d), want (1,1); unknown role must not be registered", acquirers, issuers)
	}
}

func TestConfiguredIssuerSetOutranksEmptyAcquirerFallback(t *testing.T) {
	// No acquirer is registered yet, but the host is on the issuer
	// allowlist, so it must not be swept into the empty-acquirer fallback.
	r := NewRegistry(nil, []string{"10.0.0.5"})
	c := connFrom("10.0.0.5")
	if role := r.ClassifyAndRegister(c); role != RoleIssuer {
		t.Fatalf("role = %v, want RoleIssuer", role)
	}
}

func TestUnregisterRemovesFromRoleMap(t *testing.T) {
	r := NewRegistry([]string{"10.0.0.9"}, nil)
	c := connFrom("10.0.0.9")
	r.ClassifyAndRegister(c)
	r.Unregister(c)

	if _, ok := r.FirstAcquirer(); ok {
		t.Fatal("expected no acquirer after Unregister")
	}
}

func TestAllConnectionsIncludesBothRoles(t *testing.T) {
	r := NewRegistry([]string{"10.0.0.1"}, []string{"10.0.0.2"})
	r.ClassifyAndRegister(connFrom("10.0.0.1"))
	r.ClassifyAndRegister(connFrom("10.0.0.2"))

	all := r.AllConnections()
	if len(all) != 2 {
		t.Fatalf("AllConnections() len = %d, want 2", len(all))
	}
}

func TestFirstIssuerAndFirstAcquirer(t *testing.T) {
	r := NewRegistry(nil, nil)
	if _, ok := r.FirstAcquirer(); ok {
		t.Fatal("expected no acquirer on empty registry")
	}
	if _, ok := r.FirstIssuer(); ok {
		t.Fatal("expected no issuer on empty registry")
	}

	a := connFrom("203.0.113.4")
	r.ClassifyAndRegister(a)
	got, ok := r.FirstAcquirer()
	if !ok || got != a {
		t.Fatalf("FirstAcquirer() = %v, %v", got, ok)
	}
}
