// Command example runs a small HTTP service wired end to end through the
// logging facade: traced inbound requests, traced outbound calls, and
// transaction records for the simulated backends.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	logging "github.com/unnbounddev/unnbound-logger"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	configPath := flag.String("config", "", "Optional config file (json, yaml or toml)")
	engineName := flag.String("engine", "zerolog", "Backend engine: zerolog or zap")
	flag.Parse()

	cfg := logging.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = logging.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
	}
	cfg.ServiceName = "example-api"
	cfg.IgnorePatterns = []string{"/health"}

	opts := []logging.ServiceOption{logging.WithConfig(cfg)}
	if *engineName == "zap" {
		eng, err := logging.NewZapEngine(cfg)
		if err != nil {
			log.Fatalf("Zap engine init failed: %v", err)
		}
		opts = append(opts, logging.WithEngine(eng))
	}

	svc := logging.New(opts...)
	if err := svc.Initialize(); err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer svc.Close()

	// Outbound calls carry the inbound trace id forward.
	client := svc.NewTransport().Client()

	r := mux.NewRouter()
	r.Use(svc.TraceMiddleware())
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/orders/{id}", func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		id := mux.Vars(req)["id"]

		svc.Info(ctx, logging.Textf("looking up order %s", id))

		rows, err := queryOrder(ctx, id)
		svc.DBQueryTransaction(ctx, logging.DBQueryTransaction{
			Instance:     "orders-db",
			Vendor:       logging.VendorPostgres,
			Query:        "SELECT * FROM orders WHERE id = $1",
			Status:       txStatus(err),
			RowsReturned: rows,
		})
		if err != nil {
			svc.Error(ctx, logging.Capture(err), logging.WithField("orderId", id))
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%q,"rows":%d}`, id, rows)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/proxy", func(w http.ResponseWriter, req *http.Request) {
		// The nested exchange shares the caller's trace id end to end.
		url := fmt.Sprintf("http://localhost:%d/api/orders/42", *port)
		upstream, err := http.NewRequestWithContext(req.Context(), http.MethodGet, url, nil)
		if err != nil {
			http.Error(w, "bad upstream request", http.StatusInternalServerError)
			return
		}
		resp, err := client.Do(upstream)
		if err != nil {
			http.Error(w, "upstream unreachable", http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		w.WriteHeader(resp.StatusCode)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/export", func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		start := time.Now()
		n, err := uploadReport(ctx)
		svc.SFTPTransaction(ctx, logging.SFTPTransaction{
			Host:             "sftp.example.com",
			Username:         "reporter",
			Operation:        logging.SFTPUpload,
			Path:             "/outbox/report.csv",
			Status:           txStatus(err),
			BytesTransferred: n,
		}, logging.WithStartTime(start))
		if err != nil {
			http.Error(w, "export failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Background job with its own trace scope.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			_ = logging.Run(context.Background(), "", func(ctx context.Context) error {
				svc.Info(ctx, logging.Text("heartbeat"), logging.WithField("component", "scheduler"))
				return nil
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal: %v. Shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// queryOrder stands in for a real database lookup.
func queryOrder(_ context.Context, id string) (int, error) {
	if id == "0" {
		return 0, errors.New("order not found")
	}
	return 1, nil
}

// uploadReport stands in for a real SFTP upload.
func uploadReport(_ context.Context) (int64, error) {
	return 2048, nil
}

func txStatus(err error) logging.TransactionStatus {
	if err != nil {
		return logging.StatusFailure
	}
	return logging.StatusSuccess
}
