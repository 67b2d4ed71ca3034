package remote

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/newtron-network/cfgnet/pkg/pool"
	"github.com/newtron-network/cfgnet/pkg/task"
)

type execReply struct {
	stdout string
	stderr string
	status uint32
}

// startTestServer runs an in-process SSH server that accepts user "ops"
// with password "secret" or the given public key, and answers exec
// requests through handler.
func startTestServer(t *testing.T, authorized ssh.PublicKey, handler func(cmd string) execReply) pool.Entry {
	t.Helper()

	_, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	hostSigner, err := ssh.NewSignerFromKey(hostPriv)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == "ops" && string(pass) == "secret" {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %s", c.User())
		},
		PublicKeyCallback: func(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if authorized != nil && string(key.Marshal()) == string(authorized.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown key for %s", c.User())
		},
	}
	cfg.AddHostKey(hostSigner)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go serveTestConn(nc, cfg, handler)
		}
	}()

	tcp := ln.Addr().(*net.TCPAddr)
	return pool.Entry{Host: net.ParseIP("127.0.0.1").To4(), Port: tcp.Port, User: "ops"}
}

func serveTestConn(nc net.Conn, cfg *ssh.ServerConfig, handler func(cmd string) execReply) {
	sconn, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		nc.Close()
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for nch := range chans {
		if nch.ChannelType() != "session" {
			nch.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, chReqs, err := nch.Accept()
		if err != nil {
			continue
		}
		go func() {
			defer ch.Close()
			for req := range chReqs {
				if req.Type != "exec" {
					req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
					req.Reply(false, nil)
					return
				}
				req.Reply(true, nil)

				reply := handler(payload.Command)
				io.WriteString(ch, reply.stdout)
				io.WriteString(ch.Stderr(), reply.stderr)
				ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{reply.status}))
				return
			}
		}()
	}
}

func nmcliHandler(cmd string) execReply {
	switch {
	case cmd == "uptime":
		return execReply{stdout: " 10:00:00 up 1 day, load average: 0.00\n"}
	case strings.HasPrefix(cmd, "nmcli connection modify"):
		return execReply{stderr: "Error: invalid property 'ipv4.gateway'\n", status: 2}
	default:
		return execReply{}
	}
}

func TestSSHDialer_PasswordRun(t *testing.T) {
	target := startTestServer(t, nil, nmcliHandler)

	d, err := NewSSHDialer(SSHConfig{Timeout: 5 * time.Second, KeyFiles: []string{filepath.Join(t.TempDir(), "none")}})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	conn, err := d.Dial(context.Background(), &task.Task{Target: target, Password: "secret"})
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	defer conn.Close()

	out, err := conn.Run(context.Background(), "uptime")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.Status != 0 || !strings.Contains(out.Stdout, "load average") {
		t.Errorf("uptime output = %+v", out)
	}

	out, err = conn.Run(context.Background(), `nmcli connection modify "x" ipv4.method manual`)
	if err != nil {
		t.Fatalf("non-zero exit should not be a transport error: %v", err)
	}
	if out.Status != 2 || !strings.Contains(out.Stderr, "invalid property") {
		t.Errorf("modify output = %+v", out)
	}
}

func TestSSHDialer_WrongPassword(t *testing.T) {
	target := startTestServer(t, nil, nmcliHandler)

	d, _ := NewSSHDialer(SSHConfig{Timeout: 5 * time.Second, KeyFiles: []string{filepath.Join(t.TempDir(), "none")}})
	defer d.Close()

	if _, err := d.Dial(context.Background(), &task.Task{Target: target, Password: "wrong"}); err == nil {
		t.Fatal("expected authentication failure")
	}
}

func TestSSHDialer_KeyAuth(t *testing.T) {
	keyFile, pub := writeTestKey(t)
	target := startTestServer(t, pub, nmcliHandler)

	d, err := NewSSHDialer(SSHConfig{Timeout: 5 * time.Second, KeyFiles: []string{keyFile}})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	conn, err := d.Dial(context.Background(), &task.Task{Target: target})
	if err != nil {
		t.Fatalf("Dial with key error: %v", err)
	}
	conn.Close()
}

func TestSSHDialer_HandshakeTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	// Accept and never speak.
	held := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			held <- c
		}
	}()
	defer func() {
		select {
		case c := <-held:
			c.Close()
		default:
		}
	}()

	d, _ := NewSSHDialer(SSHConfig{Timeout: 200 * time.Millisecond, KeyFiles: []string{filepath.Join(t.TempDir(), "none")}})
	target := pool.Entry{Host: net.ParseIP("127.0.0.1").To4(), Port: ln.Addr().(*net.TCPAddr).Port, User: "ops"}

	start := time.Now()
	_, err = d.Dial(context.Background(), &task.Task{Target: target, Password: "secret"})
	if err == nil {
		t.Fatal("expected timeout")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error should mention timeout: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("dial took %s, timeout not enforced", time.Since(start))
	}
}

func TestSSHConn_RunCancelled(t *testing.T) {
	release := make(chan struct{})
	target := startTestServer(t, nil, func(cmd string) execReply {
		<-release
		return execReply{}
	})
	defer close(release)

	d, _ := NewSSHDialer(SSHConfig{Timeout: 5 * time.Second, KeyFiles: []string{filepath.Join(t.TempDir(), "none")}})
	conn, err := d.Dial(context.Background(), &task.Task{Target: target, Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := conn.Run(ctx, "sleep 60"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestAuthMethods(t *testing.T) {
	keyFile, _ := writeTestKey(t)

	d, err := NewSSHDialer(SSHConfig{KeyFiles: []string{keyFile, filepath.Join(t.TempDir(), "missing")}})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.signers) != 1 {
		t.Fatalf("signers = %d, want 1 (missing key skipped)", len(d.signers))
	}
	if d.timeout != DefaultConnectTimeout {
		t.Errorf("timeout = %s, want default", d.timeout)
	}

	if got := len(d.authMethods("pw")); got != 1 {
		t.Errorf("password auth methods = %d, want 1", got)
	}
	if got := len(d.authMethods("")); got != 1 {
		t.Errorf("key auth methods = %d, want 1", got)
	}

	empty := &SSHDialer{}
	if got := len(empty.authMethods("")); got != 0 {
		t.Errorf("no keys, no agent: auth methods = %d, want 0", got)
	}
}

func TestLoadSigner_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(path, []byte("not a key"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSigner(path); err == nil {
		t.Error("expected parse error")
	}
}

func writeTestKey(t *testing.T) (string, ssh.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatal(err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	return path, sshPub
}
