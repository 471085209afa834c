package discordmcp

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestResolveServer_ByID(t *testing.T) {
	r := NewResolver(twoServerSession())

	srv, err := r.ResolveServer("100000000000000002")
	if err != nil {
		t.Fatalf("ResolveServer failed: %v", err)
	}
	if srv.Name != "Beta" {
		t.Errorf("server = %q, want Beta", srv.Name)
	}

	_, err = r.ResolveServer("100000000000000099")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestResolveServer_ByName(t *testing.T) {
	r := NewResolver(twoServerSession())

	srv, err := r.ResolveServer("alpha") // case-insensitive
	if err != nil {
		t.Fatalf("ResolveServer failed: %v", err)
	}
	if srv.ID != "100000000000000001" {
		t.Errorf("server ID = %q, want Alpha's", srv.ID)
	}

	// Name lookups populate the cache.
	if _, ok := r.cache.Get(KindServer, ScopeGlobal, "alpha"); !ok {
		t.Error("server resolution did not populate the cache")
	}
}

func TestResolveServer_NotFoundListsServers(t *testing.T) {
	r := NewResolver(twoServerSession())

	_, err := r.ResolveServer("Gamma")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "Alpha") || !strings.Contains(msg, "Beta") {
		t.Errorf("not-found report should list every visible server, got: %s", msg)
	}
}

func TestResolveChannel_UniqueNameCached(t *testing.T) {
	session := twoServerSession()
	r := NewResolver(session)
	ctx := context.Background()

	ch, err := r.ResolveChannel(ctx, "random", nil)
	if err != nil {
		t.Fatalf("ResolveChannel failed: %v", err)
	}
	if ch.ID != "200000000000000002" {
		t.Errorf("channel ID = %q, want random's", ch.ID)
	}
	if session.allChannelsCalls != 1 {
		t.Fatalf("allChannelsCalls = %d, want 1", session.allChannelsCalls)
	}

	// A second unscoped resolution is served from the cache (validated
	// live via FetchChannel) without re-scanning the full channel list.
	if _, err := r.ResolveChannel(ctx, "Random", nil); err != nil {
		t.Fatalf("cached ResolveChannel failed: %v", err)
	}
	if session.allChannelsCalls != 1 {
		t.Errorf("allChannelsCalls = %d after cache hit, want 1", session.allChannelsCalls)
	}
}

func TestResolveChannel_AmbiguousAcrossServers(t *testing.T) {
	r := NewResolver(twoServerSession())
	ctx := context.Background()

	_, err := r.ResolveChannel(ctx, "general", nil)
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("error = %v, want ErrAmbiguous", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "Alpha") || !strings.Contains(msg, "Beta") {
		t.Errorf("ambiguity report should name both owning servers, got: %s", msg)
	}
	if !strings.Contains(msg, "MUST") {
		t.Errorf("ambiguity report should instruct the caller to resupply, got: %s", msg)
	}

	// Resupplying with a scope resolves to that server's channel.
	srv, err := r.ResolveServer("Alpha")
	if err != nil {
		t.Fatalf("ResolveServer failed: %v", err)
	}
	ch, err := r.ResolveChannel(ctx, "general", &srv)
	if err != nil {
		t.Fatalf("scoped ResolveChannel failed: %v", err)
	}
	if ch.ID != "200000000000000001" {
		t.Errorf("channel ID = %q, want Alpha's #general", ch.ID)
	}
}

func TestResolveChannel_IDPath(t *testing.T) {
	r := NewResolver(twoServerSession())
	ctx := context.Background()

	ch, err := r.ResolveChannel(ctx, "200000000000000004", nil)
	if err != nil {
		t.Fatalf("ResolveChannel by ID failed: %v", err)
	}
	if ch.ServerName != "Beta" {
		t.Errorf("server = %q, want Beta", ch.ServerName)
	}

	// A valid ID that refers to a voice channel gets a distinct reason.
	_, err = r.ResolveChannel(ctx, "200000000000000003", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "not a text channel") {
		t.Errorf("voice-channel ID should report the kind mismatch, got: %s", err)
	}

	_, err = r.ResolveChannel(ctx, "200000000000000099", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "No channel with this ID") {
		t.Errorf("missing ID should report nonexistence, got: %s", err)
	}
}

func TestResolveChannel_StaleCacheFallsBack(t *testing.T) {
	session := twoServerSession()
	r := NewResolver(session)
	ctx := context.Background()

	// Seed a cache entry pointing at an ID the session no longer knows.
	r.cache.Put(KindChannel, ScopeGlobal, "random", "200000000000000099")

	ch, err := r.ResolveChannel(ctx, "random", nil)
	if err != nil {
		t.Fatalf("ResolveChannel failed: %v", err)
	}
	if ch.ID != "200000000000000002" {
		t.Errorf("channel ID = %q, want the live random channel", ch.ID)
	}
	// The stale entry was replaced by the fresh resolution.
	if id, ok := r.cache.Get(KindChannel, ScopeGlobal, "random"); !ok || id != "200000000000000002" {
		t.Errorf("cache entry = (%q, %v), want refreshed ID", id, ok)
	}
}

func TestResolveChannel_NotFoundHint(t *testing.T) {
	r := NewResolver(twoServerSession())
	ctx := context.Background()

	_, err := r.ResolveChannel(ctx, "genral", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "ServerName/genral") {
		t.Errorf("unscoped not-found should suggest scoped syntax, got: %s", msg)
	}
	if !strings.Contains(msg, "#general") {
		t.Errorf("not-found should suggest near-miss names, got: %s", msg)
	}
}

func TestResolveUser(t *testing.T) {
	session := twoServerSession()
	r := NewResolver(session)
	ctx := context.Background()

	// Sigil is stripped; handle match is case-insensitive.
	u, err := r.ResolveUser(ctx, "@Alice")
	if err != nil {
		t.Fatalf("ResolveUser failed: %v", err)
	}
	if u.ID != "111111111111111111" {
		t.Errorf("user ID = %q, want alice's", u.ID)
	}

	// Display names match too.
	u, err = r.ResolveUser(ctx, "Carol C")
	if err != nil {
		t.Fatalf("ResolveUser by display name failed: %v", err)
	}
	if u.Handle != "carol" {
		t.Errorf("handle = %q, want carol", u.Handle)
	}

	// ID path fetches from the platform.
	u, err = r.ResolveUser(ctx, "111111111111111112")
	if err != nil {
		t.Fatalf("ResolveUser by ID failed: %v", err)
	}
	if u.Handle != "bob" {
		t.Errorf("handle = %q, want bob", u.Handle)
	}
}

func TestResolveUser_CacheRevalidated(t *testing.T) {
	session := twoServerSession()
	r := NewResolver(session)
	ctx := context.Background()

	if _, err := r.ResolveUser(ctx, "bob"); err != nil {
		t.Fatalf("ResolveUser failed: %v", err)
	}
	before := session.membersCalls

	// The cached entry is validated with a direct fetch, not a rescan of
	// every member list.
	if _, err := r.ResolveUser(ctx, "bob"); err != nil {
		t.Fatalf("cached ResolveUser failed: %v", err)
	}
	if session.membersCalls != before {
		t.Errorf("membersCalls grew from %d to %d on a cache hit", before, session.membersCalls)
	}

	// A stale entry is dropped and resolution falls back to the scan.
	r.cache.Put(KindUser, ScopeGlobal, "carol", "111111111111111199")
	u, err := r.ResolveUser(ctx, "carol")
	if err != nil {
		t.Fatalf("ResolveUser after stale cache failed: %v", err)
	}
	if u.ID != "111111111111111113" {
		t.Errorf("user ID = %q, want carol's live ID", u.ID)
	}
}

func TestResolveUser_NotFoundEchoesInput(t *testing.T) {
	r := NewResolver(twoServerSession())

	_, err := r.ResolveUser(context.Background(), "@nosuchuser")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	// The original, unstripped input is echoed back.
	if !strings.Contains(err.Error(), "@nosuchuser") {
		t.Errorf("not-found should echo the original input, got: %s", err)
	}
}
