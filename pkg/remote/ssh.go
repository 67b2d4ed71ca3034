// Package remote applies a configuration task to one host over SSH by
// driving the host's NetworkManager command-line tool.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/newtron-network/cfgnet/pkg/task"
	"github.com/newtron-network/cfgnet/pkg/util"
)

// DefaultConnectTimeout bounds TCP connect, SSH handshake and
// authentication for one host.
const DefaultConnectTimeout = 15 * time.Second

// Output is what a remote command produced.
type Output struct {
	Stdout string
	Stderr string
	Status int
}

// Conn is an authenticated session to one host. Run returns an error only
// for transport failures; a non-zero exit is reported through Output.Status.
type Conn interface {
	Run(ctx context.Context, cmd string) (Output, error)
	Close() error
}

// Dialer opens a Conn for a task's target.
type Dialer interface {
	Dial(ctx context.Context, t *task.Task) (Conn, error)
}

// SSHConfig configures an SSHDialer.
type SSHConfig struct {
	// Timeout is the ceiling for connect plus authentication.
	Timeout time.Duration
	// KeyFiles are private keys tried when no password is given. Empty
	// means the default identities under ~/.ssh.
	KeyFiles []string
	// UseAgent enables the agent at $SSH_AUTH_SOCK.
	UseAgent bool
}

// SSHDialer dials hosts with golang.org/x/crypto/ssh. Host keys are not
// verified; targets are freshly provisioned machines with unknown keys.
type SSHDialer struct {
	timeout   time.Duration
	signers   []ssh.Signer
	agentConn net.Conn
	agent     agent.ExtendedAgent
}

// NewSSHDialer loads key material once for all connections.
func NewSSHDialer(cfg SSHConfig) (*SSHDialer, error) {
	d := &SSHDialer{timeout: cfg.Timeout}
	if d.timeout <= 0 {
		d.timeout = DefaultConnectTimeout
	}

	files := cfg.KeyFiles
	if len(files) == 0 {
		files = defaultKeyFiles()
	}
	for _, f := range files {
		signer, err := loadSigner(f)
		if err != nil {
			util.WithField("key", f).Debugf("skipping key: %v", err)
			continue
		}
		d.signers = append(d.signers, signer)
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); cfg.UseAgent && sock != "" {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			util.WithField("socket", sock).Debugf("ssh agent unavailable: %v", err)
		} else {
			d.agentConn = conn
			d.agent = agent.NewClient(conn)
		}
	}
	return d, nil
}

// Close releases the agent connection, if any.
func (d *SSHDialer) Close() error {
	if d.agentConn != nil {
		return d.agentConn.Close()
	}
	return nil
}

// authMethods returns password auth alone when a password is set,
// otherwise key and agent auth.
func (d *SSHDialer) authMethods(password string) []ssh.AuthMethod {
	if password != "" {
		return []ssh.AuthMethod{ssh.Password(password)}
	}
	var methods []ssh.AuthMethod
	if len(d.signers) > 0 {
		methods = append(methods, ssh.PublicKeys(d.signers...))
	}
	if d.agent != nil {
		methods = append(methods, ssh.PublicKeysCallback(d.agent.Signers))
	}
	return methods
}

// Dial connects and authenticates to t.Target within the dialer timeout.
func (d *SSHDialer) Dial(ctx context.Context, t *task.Task) (Conn, error) {
	config := &ssh.ClientConfig{
		User:            t.Target.User,
		Auth:            d.authMethods(t.Password),
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         d.timeout,
	}
	addr := t.Target.Addr()

	dctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var nd net.Dialer
	nc, err := nd.DialContext(dctx, "tcp", addr)
	if err != nil {
		if errors.Is(dctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("connect %s: timeout after %s", addr, d.timeout)
		}
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	deadline, _ := dctx.Deadline()
	nc.SetDeadline(deadline)
	c, chans, reqs, err := ssh.NewClientConn(nc, addr, config)
	if err != nil {
		nc.Close()
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("ssh handshake %s: timeout after %s", addr, d.timeout)
		}
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}
	nc.SetDeadline(time.Time{})

	return &sshConn{host: t.Host(), client: ssh.NewClient(c, chans, reqs)}, nil
}

type sshConn struct {
	host   string
	client *ssh.Client
}

// Run executes cmd in a new session. Cancelling ctx closes the session and
// abandons the command.
func (c *sshConn) Run(ctx context.Context, cmd string) (Output, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return Output{}, fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		// The buffers still belong to the running session; leave them.
		session.Close()
		return Output{}, ctx.Err()
	case err = <-done:
	}

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			out.Status = exitErr.ExitStatus()
			return out, nil
		}
		return out, fmt.Errorf("SSH exec '%s': %w", cmd, err)
	}
	return out, nil
}

func (c *sshConn) Close() error {
	return c.client.Close()
}

func defaultKeyFiles() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	var files []string
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		files = append(files, filepath.Join(home, ".ssh", name))
	}
	return files
}

func loadSigner(path string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return signer, nil
}
