package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultSSHPort = 22

// Identity is the fixed login every remote command runs under.
type Identity struct {
	User    string
	KeyFile string
	// KnownHostsFile enables host key verification. When empty any host
	// key is accepted.
	KnownHostsFile string
	Port           int
	// DialTimeout of zero leaves the transport default in place.
	DialTimeout time.Duration
}

// SSHExecutor runs commands over SSH, keeping one client per host for the
// lifetime of the executor.
type SSHExecutor struct {
	port   int
	config *ssh.ClientConfig
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*ssh.Client
}

func NewSSHExecutor(id Identity, logger *zap.Logger) (*SSHExecutor, error) {
	config, err := clientConfig(id)
	if err != nil {
		return nil, err
	}
	port := id.Port
	if port == 0 {
		port = defaultSSHPort
	}
	return &SSHExecutor{
		port:    port,
		config:  config,
		logger:  logger,
		clients: map[string]*ssh.Client{},
	}, nil
}

func clientConfig(id Identity) (*ssh.ClientConfig, error) {
	if strings.TrimSpace(id.User) == "" {
		return nil, errors.New("ssh user is required")
	}
	if strings.TrimSpace(id.KeyFile) == "" {
		return nil, errors.New("ssh key file is required")
	}
	key, err := os.ReadFile(id.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key %s: %w", id.KeyFile, err)
	}

	hostKeys := ssh.InsecureIgnoreHostKey()
	if id.KnownHostsFile != "" {
		hostKeys, err = knownhosts.New(id.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            id.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         id.DialTimeout,
	}, nil
}

func (e *SSHExecutor) client(host string) (*ssh.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.clients[host]; ok {
		return c, nil
	}
	addr := net.JoinHostPort(host, strconv.Itoa(e.port))
	e.logger.Debug("dialing ssh", zap.String("addr", addr), zap.String("user", e.config.User))
	c, err := ssh.Dial("tcp", addr, e.config)
	if err != nil {
		return nil, err
	}
	e.clients[host] = c
	return c, nil
}

func (e *SSHExecutor) Run(ctx context.Context, host string, cmd Command) (*Result, error) {
	line := cmd.String()
	fail := func(err error) error {
		return &Error{Host: host, Command: line, ExitCode: -1, Err: err}
	}

	client, err := e.client(host)
	if err != nil {
		return nil, fail(err)
	}
	session, err := client.NewSession()
	if err != nil {
		return nil, fail(err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if cmd.Stdin != "" {
		session.Stdin = strings.NewReader(cmd.Stdin)
	}

	e.logger.Debug("running remote command", zap.String("host", host), zap.String("command", line))
	done := make(chan error, 1)
	go func() { done <- session.Run(line) }()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return nil, fail(ctx.Err())
	case err = <-done:
	}

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitStatus()
		return res, &Error{Host: host, Command: line, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	res.ExitCode = -1
	return res, &Error{Host: host, Command: line, ExitCode: -1, Stderr: res.Stderr, Err: err}
}

// Close releases every pooled connection.
func (e *SSHExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var errs []error
	for host, c := range e.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", host, err))
		}
		delete(e.clients, host)
	}
	return errors.Join(errs...)
}
