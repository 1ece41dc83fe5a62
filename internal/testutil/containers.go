// Helpers for running tests (and the dev runner) against a real database
// container. Expects environment variables to be loaded from .env files.

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MySQLContainer wraps a started database container with its resolved DSN.
type MySQLContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
	DSN       string
}

// DockerAvailable reports whether a docker daemon answers on the local
// environment. Tests that need containers call this to skip cleanly.
func DockerAvailable() bool {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = cli.Ping(ctx)
	return err == nil
}

// StartMySQLContainer starts a MySQL container configured from the
// DB_* environment variables and waits until it accepts SQL connections.
// t may be nil when called outside of a test.
func StartMySQLContainer(t *testing.T) (*MySQLContainer, error) {
	ctx := context.Background()

	image := os.Getenv("DB_IMAGE")
	if image == "" {
		image = "mysql:8.4"
	}
	database := envOrDefault("DB_DATABASE", "fabrica")
	user := envOrDefault("DB_USER", "fabrica")
	password := envOrDefault("DB_PASSWORD", "fabrica")

	tcpPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		return nil, err
	}

	dsnFor := func(host string, port nat.Port) string {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, password, host, port.Port(), database)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": password,
				"MYSQL_DATABASE":      database,
				"MYSQL_USER":          user,
				"MYSQL_PASSWORD":      password,
			},
			WaitingFor: wait.ForSQL(tcpPort, "mysql", func(host string, port nat.Port) string {
				return dsnFor(host, port)
			}).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		logMessage(t, "Failed to start database container: %v", err)
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	mappedPort, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &MySQLContainer{
		Container: container,
		Host:      host,
		Port:      mappedPort.Port(),
		DSN:       dsnFor(host, mappedPort),
	}, nil
}

// Terminate stops the container. t may be nil.
func (m *MySQLContainer) Terminate(t *testing.T) {
	if m == nil || m.Container == nil {
		return
	}
	if err := m.Container.Terminate(context.Background()); err != nil {
		logMessage(t, "Failed to terminate database container: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logMessage(t *testing.T, format string, args ...interface{}) {
	if t != nil {
		t.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}
