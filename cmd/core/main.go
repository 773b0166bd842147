package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	memory_adapter "github.com/sutakip/sutakip-core/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/sutakip/sutakip-core/internal/app/core/adapter/out/mysql"
	"github.com/sutakip/sutakip-core/internal/app/core/adapter/out/seed"
	"github.com/sutakip/sutakip-core/internal/app/core/domain"
	"github.com/sutakip/sutakip-core/internal/app/core/usecase"
	"github.com/sutakip/sutakip-core/pkg/logger"
	"github.com/sutakip/sutakip-core/pkg/mysql"
	"github.com/sutakip/sutakip-core/pkg/wal"
)

// Config 應用配置
type Config struct {
	// Backend 選擇儲存後端: "memory" | "mysql"
	Backend string `yaml:"backend"`
	// WALPath memory 後端的 commit 日誌路徑
	WALPath string `yaml:"wal_path"`
	// MetricsAddr 非空時啟動 /metrics (如 ":9100")
	MetricsAddr string       `yaml:"metrics_addr"`
	LogLevel    string       `yaml:"log_level"`
	MySQL       mysql.Config `yaml:"mysql"`
}

// requestFile process 指令讀取的交易請求檔
type requestFile struct {
	Mode       string `yaml:"mode"`
	CustomerID string `yaml:"customer_id"`
	Notes      string `yaml:"notes"`
	Items      []struct {
		ProductID string `yaml:"product_id"`
		Quantity  int64  `yaml:"quantity"`
		Movement  string `yaml:"movement"`
	} `yaml:"items"`
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置檔路徑")
	reqPath := flag.String("file", "", "process 指令的交易請求檔 (yaml)")
	flag.Parse()

	// 1. 載入設定
	cfg := loadConfig(*configPath)

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2. 初始化儲存後端
	store, mysqlStore, cleanup := buildStore(cfg, log)
	defer cleanup()

	// 3. Metrics (選配)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	// 4. 初始化 Processor
	processor := usecase.NewProcessor(store, log)

	ctx := context.Background()
	switch flag.Arg(0) {
	case "seed":
		runSeed(ctx, mysqlStore, log)
	case "list-products":
		listProducts(ctx, store)
	case "list-customers":
		listCustomers(ctx, store)
	case "list-transactions":
		listTransactions(ctx, store)
	case "process":
		runProcess(ctx, processor, *reqPath, log)
	default:
		fmt.Fprintln(os.Stderr, "usage: core [-config path] [-file req.yaml] <seed|list-products|list-customers|list-transactions|process>")
		os.Exit(2)
	}
}

// loadConfig 讀取 yaml 配置並補全預設值；檔案不存在時使用全預設 (memory 後端)
func loadConfig(path string) Config {
	var cfg Config
	cfgData, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse config: %v\n", err)
			os.Exit(1)
		}
	} else if !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to read config file: %v\n", err)
		os.Exit(1)
	}

	if cfg.Backend == "" {
		cfg.Backend = "memory"
	}
	if cfg.WALPath == "" {
		cfg.WALPath = "wal.log"
	}
	if cfg.MySQL.MaxOpenConns == 0 {
		cfg.MySQL.MaxOpenConns = 100
	}
	if cfg.MySQL.MaxIdleConns == 0 {
		cfg.MySQL.MaxIdleConns = 10
	}
	if cfg.MySQL.ConnMaxLifetime == 0 {
		cfg.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
	return cfg
}

// buildStore 依配置建立儲存後端
// memory 後端以示範資料為初始快照，再由 commit 日誌重放出最新狀態；
// mysql 後端回傳 concrete store 供 seed 指令使用
func buildStore(cfg Config, log *zap.Logger) (usecase.EntityStore, *mysql_adapter.Store, func()) {
	switch cfg.Backend {
	case "memory":
		journal, err := wal.NewWAL(cfg.WALPath)
		if err != nil {
			log.Fatal("failed to open wal", zap.String("path", cfg.WALPath), zap.Error(err))
		}
		store, err := memory_adapter.NewStore(seed.Products(), seed.Customers(), journal)
		if err != nil {
			log.Fatal("failed to init memory store", zap.Error(err))
		}
		return store, nil, func() { journal.Close() }

	case "mysql":
		client, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			log.Fatal("failed to connect to mysql", zap.Error(err))
		}
		store, err := mysql_adapter.NewStore(client)
		if err != nil {
			log.Fatal("failed to init mysql store", zap.Error(err))
		}
		return store, store, func() { client.Close() }

	default:
		log.Fatal("invalid backend", zap.String("backend", cfg.Backend))
		return nil, nil, nil
	}
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", zap.Error(err))
	}
}

// runSeed 寫入示範資料 (mysql 後端限定；memory 後端在啟動時自帶)
func runSeed(ctx context.Context, store *mysql_adapter.Store, log *zap.Logger) {
	if store == nil {
		log.Info("memory backend seeds itself on startup, nothing to do")
		return
	}
	if err := store.Seed(ctx, seed.Products(), seed.Customers()); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed completed")
}

func listProducts(ctx context.Context, store usecase.EntityStore) {
	products, err := store.ListProducts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list products failed: %v\n", err)
		os.Exit(1)
	}
	for _, p := range products {
		fmt.Printf("%-4s %-28s %-12s price=%-8s stock=%d\n",
			p.ID, p.Name, p.Category, p.UnitPrice.String(), p.StockQuantity)
	}
}

func listCustomers(ctx context.Context, store usecase.EntityStore) {
	customers, err := store.ListCustomers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list customers failed: %v\n", err)
		os.Exit(1)
	}
	for _, c := range customers {
		fmt.Printf("%-4s %-20s %-8s cash=%-10s deposits=%v\n",
			c.ID, c.Name, c.Kind, c.CashBalance.String(), c.DepositBalances)
	}
}

func listTransactions(ctx context.Context, store usecase.EntityStore) {
	transactions, err := store.ListTransactions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list transactions failed: %v\n", err)
		os.Exit(1)
	}
	for _, t := range transactions {
		fmt.Printf("%s %s %-10s customer=%-4s total=%-8s items=%d\n",
			t.Timestamp.Format(time.RFC3339), t.ID, t.Mode, t.CustomerID,
			t.RealizedTotal.String(), len(t.Items))
	}
}

// runProcess 讀取請求檔並入帳
func runProcess(ctx context.Context, processor *usecase.Processor, path string, log *zap.Logger) {
	if path == "" {
		fmt.Fprintln(os.Stderr, "process requires -file req.yaml")
		os.Exit(2)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("failed to read request file", zap.Error(err))
	}
	var file requestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Fatal("failed to parse request file", zap.Error(err))
	}

	req := usecase.Request{
		Mode:       domain.Mode(file.Mode),
		CustomerID: file.CustomerID,
		Notes:      file.Notes,
	}
	for _, item := range file.Items {
		req.Items = append(req.Items, usecase.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Movement:  domain.Movement(item.Movement),
		})
	}

	tran, err := processor.Process(ctx, req)
	if err != nil {
		log.Fatal("process failed", zap.Error(err))
	}
	fmt.Printf("transaction %s total=%s items=%d\n",
		tran.ID, tran.RealizedTotal.String(), len(tran.Items))
}
