// Package ssh shuts down the wake target over SSH.
package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

const dialTimeout = 30 * time.Second

// Service defines the interface for SSH operations against the target.
type Service interface {
	Shutdown(ctx context.Context) (*models.SSHResult, error)
	TestConnection(ctx context.Context) (*models.SSHResult, error)
}

// SSHClient wraps ssh.Client for mocking.
type SSHClient interface {
	NewSession() (SSHSession, error)
	Close() error
}

// SSHSession wraps ssh.Session for mocking.
type SSHSession interface {
	CombinedOutput(cmd string) ([]byte, error)
	Close() error
}

// ClientFactory creates SSH clients.
type ClientFactory interface {
	NewClient(network, addr string, config *ssh.ClientConfig) (SSHClient, error)
}

// DefaultClientFactory is the default SSH client factory.
type DefaultClientFactory struct{}

// NewClient creates a new SSH client.
func (f *DefaultClientFactory) NewClient(network, addr string, config *ssh.ClientConfig) (SSHClient, error) {
	client, err := ssh.Dial(network, addr, config)
	if err != nil {
		return nil, err
	}
	return &defaultSSHClient{client: client}, nil
}

type defaultSSHClient struct {
	client *ssh.Client
}

func (c *defaultSSHClient) NewSession() (SSHSession, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *defaultSSHClient) Close() error {
	return c.client.Close()
}

// Impl implements the SSH Service interface for one configured host.
type Impl struct {
	cfg           models.SSHShutdownConfig
	clientFactory ClientFactory
	logger        zerolog.Logger
}

// New creates a new SSH service for cfg.
func New(logger zerolog.Logger, cfg models.SSHShutdownConfig) *Impl {
	return NewWithClientFactory(logger, cfg, &DefaultClientFactory{})
}

// NewWithClientFactory creates a new SSH service with a custom client factory (for testing).
func NewWithClientFactory(logger zerolog.Logger, cfg models.SSHShutdownConfig, factory ClientFactory) *Impl {
	return &Impl{
		cfg:           cfg,
		clientFactory: factory,
		logger:        logger,
	}
}

// Host returns the configured target host.
func (s *Impl) Host() string {
	return s.cfg.Host
}

func (s *Impl) buildConfig() (*ssh.ClientConfig, error) {
	key := s.cfg.PrivateKey
	if len(key) == 0 {
		if s.cfg.KeyPath == "" {
			return nil, fmt.Errorf("no private key provided")
		}
		var err error
		key, err = os.ReadFile(s.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key from %s: %w", s.cfg.KeyPath, err)
		}
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &ssh.ClientConfig{
		User: s.cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // homelab environment
		Timeout:         dialTimeout,
	}, nil
}

// connect dials the host, giving up when ctx is done.
func (s *Impl) connect(ctx context.Context) (SSHClient, error) {
	sshConfig, err := s.buildConfig()
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	type dialResult struct {
		client SSHClient
		err    error
	}
	ch := make(chan dialResult, 1)

	go func() {
		client, err := s.clientFactory.NewClient("tcp", addr, sshConfig)
		ch <- dialResult{client, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("failed to connect: %w", res.err)
		}
		return res.client, nil
	}
}

// ShutdownCommand returns the shutdown command for the configured OS.
func ShutdownCommand(cfg models.SSHShutdownConfig) string {
	if cfg.OS == "windows" {
		delaySeconds := cfg.ShutdownDelay * 60
		if delaySeconds == 0 {
			delaySeconds = 60
		}
		return fmt.Sprintf("shutdown /s /t %d", delaySeconds)
	}

	if cfg.ShutdownDelay == 0 {
		return "sudo shutdown -h now"
	}
	return fmt.Sprintf("sudo shutdown -h +%d", cfg.ShutdownDelay)
}

// Shutdown initiates a system shutdown via SSH.
func (s *Impl) Shutdown(ctx context.Context) (*models.SSHResult, error) {
	result := &models.SSHResult{}

	s.logger.Info().
		Str("host", s.cfg.Host).
		Int("port", s.cfg.Port).
		Str("user", s.cfg.Username).
		Int("delay", s.cfg.ShutdownDelay).
		Msg("initiating remote shutdown")

	client, err := s.connect(ctx)
	if err != nil {
		result.Error = err
		return result, nil
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		return result, nil
	}
	defer func() { _ = session.Close() }()

	cmd := ShutdownCommand(s.cfg)
	s.logger.Debug().Str("command", cmd).Msg("executing shutdown command")

	output, err := session.CombinedOutput(cmd)
	result.Output = string(output)
	result.CommandRun = true

	if err != nil {
		// The connection often drops while the host goes down.
		if ctx.Err() != nil {
			result.Error = ctx.Err()
		} else {
			s.logger.Warn().Err(err).Str("output", result.Output).Msg("shutdown command returned error (may be expected)")
		}
	}

	s.logger.Info().
		Bool("command_run", result.CommandRun).
		Str("output", result.Output).
		Msg("shutdown command completed")

	return result, nil
}

// TestConnection verifies SSH connectivity without executing shutdown.
func (s *Impl) TestConnection(ctx context.Context) (*models.SSHResult, error) {
	result := &models.SSHResult{}

	s.logger.Debug().
		Str("host", s.cfg.Host).
		Int("port", s.cfg.Port).
		Msg("testing SSH connection")

	client, err := s.connect(ctx)
	if err != nil {
		result.Error = err
		return result, nil
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		return result, nil
	}
	defer func() { _ = session.Close() }()

	output, err := session.CombinedOutput("echo OK")
	result.Output = string(output)
	result.CommandRun = true

	if err != nil {
		result.Error = fmt.Errorf("test command failed: %w", err)
	}

	return result, nil
}
