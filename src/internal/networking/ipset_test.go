package networking

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
)

func TestIPSet_CreateIfNotExists(t *testing.T) {
	tests := []struct {
		family config.IPFamily
		want   string
	}{
		{config.Ipv4, "ipset create bots hash:net family inet -exist"},
		{config.Ipv6, "ipset create bots hash:net family inet6 -exist"},
	}

	for _, tt := range tests {
		exec := &fakeExecutor{}
		if err := BuildIPSet("bots", tt.family, exec).CreateIfNotExists(); err != nil {
			t.Fatalf("CreateIfNotExists() error: %v", err)
		}
		if len(exec.commands) != 1 || exec.commands[0].String() != tt.want {
			t.Errorf("commands = %v, want [%s]", exec.commands, tt.want)
		}
	}
}

func TestIPSet_Import(t *testing.T) {
	networks := []netip.Prefix{
		netip.MustParsePrefix("66.249.64.0/19"),
		netip.MustParsePrefix("2001:4860:4801::/48"),
		{},
		netip.MustParsePrefix("157.55.39.0/24"),
	}

	t.Run("IPv4 with flush", func(t *testing.T) {
		exec := &fakeExecutor{}
		added, err := BuildIPSet("bots4", config.Ipv4, exec).Import(networks, true)
		if err != nil {
			t.Fatalf("Import() error: %v", err)
		}
		if added != 2 {
			t.Errorf("added = %d, want 2", added)
		}
		if len(exec.commands) != 1 {
			t.Fatalf("expected one restore command, got %v", exec.commands)
		}
		want := "flush bots4\nadd bots4 66.249.64.0/19\nadd bots4 157.55.39.0/24\n"
		if exec.commands[0].stdin != want {
			t.Errorf("restore script = %q, want %q", exec.commands[0].stdin, want)
		}
		if exec.commands[0].String() != "ipset restore -exist" {
			t.Errorf("command = %s", exec.commands[0])
		}
	})

	t.Run("IPv6 without flush", func(t *testing.T) {
		exec := &fakeExecutor{}
		added, err := BuildIPSet("bots6", config.Ipv6, exec).Import(networks, false)
		if err != nil {
			t.Fatalf("Import() error: %v", err)
		}
		if added != 1 {
			t.Errorf("added = %d, want 1", added)
		}
		if exec.commands[0].stdin != "add bots6 2001:4860:4801::/48\n" {
			t.Errorf("restore script = %q", exec.commands[0].stdin)
		}
	})

	t.Run("Nothing to do", func(t *testing.T) {
		exec := &fakeExecutor{}
		added, err := BuildIPSet("bots6", config.Ipv6, exec).Import(nil, false)
		if err != nil || added != 0 {
			t.Fatalf("Import() = %d, %v", added, err)
		}
		if len(exec.commands) != 0 {
			t.Errorf("expected no command, got %v", exec.commands)
		}
	})
}

func TestIPSet_FailureIsFirewallError(t *testing.T) {
	exec := &fakeExecutor{failOn: "restore", output: "ipset v7.1: Syntax error\n"}
	_, err := BuildIPSet("bots", config.Ipv4, exec).Import([]netip.Prefix{netip.MustParsePrefix("192.0.2.0/24")}, false)
	if !errors.IsCode(err, errors.ErrCodeFirewall) {
		t.Fatalf("expected firewall error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Syntax error") {
		t.Errorf("error should include command output: %v", err)
	}
}

func TestIPSetManager_Commands(t *testing.T) {
	exec := &fakeExecutor{}
	mgr := NewIPSetManagerWithExecutor(exec)

	if err := mgr.Create("bots", config.Ipv6); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Flush("bots"); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Destroy("bots"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"ipset create bots hash:net family inet6 -exist",
		"ipset flush bots",
		"ipset destroy bots",
	}
	if len(exec.commands) != len(want) {
		t.Fatalf("commands = %v", exec.commands)
	}
	for i, cmd := range exec.commands {
		if cmd.String() != want[i] {
			t.Errorf("command %d = %s, want %s", i, cmd, want[i])
		}
	}
}
