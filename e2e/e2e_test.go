package e2e

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/dronedispatch/app"
	"github.com/kilianp07/dronedispatch/config"
	"github.com/kilianp07/dronedispatch/core/factory"
)

const (
	e2eOrg    = "e2e_org"
	e2eBucket = "e2e_bucket"
	e2eToken  = "e2e-token"
)

// junitReport is a minimal representation of a JUnit XML report. The E2E
// suite writes such a report so CI systems can display the results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

// writeJUnit writes the provided report to the given path.
func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container initialised with the e2e
// org, bucket and token, and returns it along with the base URL.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         e2eOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      e2eBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": e2eToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	url := fmt.Sprintf("http://%s:%s", host, port.Port())
	return cont, url
}

// Test_E2E_SimulationToInflux runs the demo script through a service whose
// metrics sink is a live InfluxDB and checks the delivery points arrive.
func Test_E2E_SimulationToInflux(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	began := time.Now()

	influxCont, influxURL := startInflux(ctx, t)
	if influxCont != nil {
		defer influxCont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("InfluxDB started at %s", influxURL)

	cli := NewInfluxClient(influxURL, e2eOrg, e2eBucket, e2eToken)
	defer cli.Close()
	if err := cli.SetupBucket(ctx); err != nil {
		t.Fatalf("setup bucket: %v", err)
	}

	cfg := &config.Config{}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": influxURL, "token": e2eToken, "org": e2eOrg, "bucket": e2eBucket},
	}}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer svc.Close() //nolint:errcheck

	rep, err := svc.Simulate(ctx, app.DefaultSimulation(time.Now().UTC().Add(-10*time.Minute)))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	want := rep.Stats.Completed
	if want == 0 {
		t.Fatalf("simulation completed no request")
	}

	deadline := time.Now().Add(20 * time.Second)
	var got int
	for time.Now().Before(deadline) {
		got, err = cli.CountRecords(ctx, "delivery", "saved_kwh")
		if err == nil && got >= want {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if got < want {
		t.Fatalf("influx has %d delivery points, want %d (last error: %v)", got, want, err)
	}
	t.Logf("Influx holds %d delivery points", got)

	dir := t.TempDir()
	rep2 := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{Name: t.Name(), Time: time.Since(began).Seconds()}}}
	if err := writeJUnit(filepath.Join(dir, "e2e.xml"), rep2); err != nil {
		t.Logf("write junit: %v", err)
	}
}
