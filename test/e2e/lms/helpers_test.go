//go:build e2e

package lms_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

/*
 * Container setup and client helpers for the lms-mock end-to-end tests.
 */

const (
	testImageName = "lms-mock-test:latest"

	adminEmail    = "admin@lms.local"
	adminPassword = "Admin123!"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building lms-mock Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up lms-mock Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/lms-mock/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupMockContainer starts lms-mock with env layered over test defaults and
// returns its base URL.
func setupMockContainer(t *testing.T, env map[string]string) string {
	t.Helper()
	ctx := context.Background()

	containerEnv := map[string]string{
		"MOCK_ADMIN_EMAIL":      adminEmail,
		"MOCK_ADMIN_PASSWORD":   adminPassword,
		"MOCK_LOGIN_RATE_LIMIT": "1000",
		"ENV":                   "test",
		"LOG_LEVEL":             "info",
		"LOG_FORMAT":            "json",
	}
	for k, v := range env {
		containerEnv[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          containerEnv,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// countingTransport counts calls to the refresh endpoint.
type countingTransport struct {
	refreshes atomic.Int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if strings.HasSuffix(r.URL.Path, lmsclient.DefaultRefreshPath) {
		c.refreshes.Add(1)
	}
	return http.DefaultTransport.RoundTrip(r)
}

type redirectCounter struct {
	calls atomic.Int32
}

func (r *redirectCounter) RedirectToLogin(context.Context, error) { r.calls.Add(1) }

// newAdminClient logs in as the seeded admin.
func newAdminClient(t *testing.T, baseURL string) (*lmsclient.Client, *countingTransport, *redirectCounter) {
	t.Helper()

	transport := &countingTransport{}
	redirects := &redirectCounter{}
	client := lmsclient.NewClient(baseURL,
		lmsclient.WithHTTPClient(&http.Client{Transport: transport, Timeout: 10 * time.Second}),
		lmsclient.WithRedirector(redirects),
	)

	_, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)

	return client, transport, redirects
}
