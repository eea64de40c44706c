package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retailops/fleetalloc/core/alloc"
	"github.com/retailops/fleetalloc/core/fleet"
	coremetrics "github.com/retailops/fleetalloc/core/metrics"
	"github.com/retailops/fleetalloc/core/model"
	"github.com/retailops/fleetalloc/core/requests"
	"github.com/retailops/fleetalloc/infra/metrics"
	"github.com/retailops/fleetalloc/infra/mqtt"
	"github.com/retailops/fleetalloc/internal/eventbus"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
log_type notice
log_type information
connection_messages true
log_timestamp true
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	addr := net.JoinHostPort(host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Logf("mosquitto not ready at %s: %v", addr, err)
		t.Skip("Mosquitto not ready after retries")
	}
	return cont, broker
}

func connectStoreClient(broker string, t *testing.T) paho.Client {
	t.Helper()
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("store-sim")
	cli := paho.NewClient(opts)
	var connErr error
	time.Sleep(250 * time.Millisecond)
	for i := 0; i < 5; i++ {
		token := cli.Connect()
		token.Wait()
		connErr = token.Error()
		if connErr == nil {
			break
		}
		t.Logf("store connect attempt %d to %s: %v", i+1, broker, connErr)
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	if connErr != nil {
		t.Logf("store connect failed to %s: %v", broker, connErr)
		t.Skip("Mosquitto not ready after retries")
	}
	return cli
}

func TestAllocationWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	storeCli := connectStoreClient(broker, t)
	defer storeCli.Disconnect(100)

	assignmentCh := make(chan []byte, 1)
	if token := storeCli.Subscribe("fleet/assignments/store1", 0, func(_ paho.Client, m paho.Message) {
		select {
		case assignmentCh <- m.Payload():
		default:
		}
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	reg := prometheus.NewRegistry()
	sinkIf, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	fleetReg, err := fleet.NewRegistry(model.Vehicle{
		ID: "V1", Type: "van",
		WeightCapacity: 1000, VolumeCapacity: 8,
		AvailableWeight: 1000, AvailableVolume: 8,
		Status: model.VehicleAvailable,
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	source := requests.NewMemorySource()

	client, err := mqtt.NewPahoClient(mqtt.Config{
		Broker:       broker,
		ClientID:     "allocator",
		RequestTopic: "stores/requests",
	}, func(req model.RestockRequest) {
		if err := source.Add(req); err != nil {
			t.Logf("rejected request: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("mqtt client: %v", err)
	}
	defer client.Disconnect()

	bus := eventbus.New()
	mgr, err := alloc.NewManager(alloc.NewEngine(nil, nil, nil), fleetReg, source, client, sinkIf, bus, nil)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	defer func() { _ = mgr.Close() }()

	payload, _ := json.Marshal(model.RestockRequest{
		RequestID: "r1", StoreID: "store1", ProductID: "p1",
		RequestedQuantity: 4, Priority: model.PriorityHigh,
		UnitWeight: 1, UnitVolume: 1, CreatedAt: time.Now().UTC(),
	})
	if token := storeCli.Publish("stores/requests", 0, false, payload); token.Wait() && token.Error() != nil {
		t.Fatalf("publish request: %v", token.Error())
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(source.Pending()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("request never arrived over MQTT")
		}
		time.Sleep(50 * time.Millisecond)
	}

	res, err := mgr.ProcessPendingRequests()
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if len(res.Assignments) != 1 || res.Assignments[0].Status != model.StatusFulfilled {
		t.Fatalf("unexpected pass result: %+v", res.Assignments)
	}

	select {
	case body := <-assignmentCh:
		var ev struct {
			Assignment model.Assignment `json:"assignment"`
		}
		if err := json.Unmarshal(body, &ev); err != nil {
			t.Fatalf("decode assignment event: %v", err)
		}
		if ev.Assignment.RequestID != "r1" || len(ev.Assignment.Vehicles) != 1 {
			t.Fatalf("unexpected assignment event: %+v", ev.Assignment)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("assignment event never published")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsTS := httptest.NewServer(mux)
	defer metricsTS.Close()

	metricsResp, err := http.Get(metricsTS.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(metricsResp.Body)
	if err := metricsResp.Body.Close(); err != nil {
		t.Fatalf("close body: %v", err)
	}
	out := string(body)
	expected := `allocation_requests_total{status="fulfilled"} 1`
	if !strings.Contains(out, expected) {
		t.Errorf("metric missing: %s", expected)
	}
}
