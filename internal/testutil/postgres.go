//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage 自带 vector 扩展
const PostgresImage = "pgvector/pgvector:pg16"

// DatabaseURLEnv 设置后直接连这个库，不再起容器
const DatabaseURLEnv = "MOVIEBOT_TEST_DATABASE_URL"

// DockerAvailable docker 守护进程可用
func DockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// PostgresAvailable 有外部库或者能起容器
func PostgresAvailable() bool {
	return os.Getenv(DatabaseURLEnv) != "" || DockerAvailable()
}

// StartPostgres 返回可用的 DSN 和清理函数
func StartPostgres(ctx context.Context) (string, func(), error) {
	if dsn := os.Getenv(DatabaseURLEnv); dsn != "" {
		return dsn, func() {}, nil
	}

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "moviebot",
			"POSTGRES_PASSWORD": "moviebot",
			"POSTGRES_DB":       "moviebot",
		},
		// 初始化阶段会重启一次，第二次 ready 才算真正可用
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("start postgres container: %w", err)
	}
	stop := func() {
		container.Terminate(context.Background()) //nolint:errcheck
	}

	host, err := container.Host(ctx)
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://moviebot:moviebot@%s:%s/moviebot?sslmode=disable", host, port.Port())
	return dsn, stop, nil
}
