package conf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/archive"
	"github.com/zeptools/gw-livedocx/db/kvdb"
	"github.com/zeptools/gw-livedocx/db/kvdb/impls/redis"
	"github.com/zeptools/gw-livedocx/db/sqldb"
	"github.com/zeptools/gw-livedocx/db/sqldb/impls/mysql"
	"github.com/zeptools/gw-livedocx/db/sqldb/impls/pgsql"
	"github.com/zeptools/gw-livedocx/throttle"
)

const DefaultLedgerDB = "ledger"

// Core - common config
type Core struct {
	AppName         string             `json:"app_name"`
	Listen          string             `json:"listen"`           // HTTP Server Listen IP:PORT Address of the render gateway
	LogLevel        string             `json:"log_level"`        // debug, info, warn, error. info if empty
	Debug           bool               `json:"debug"`            // development logger
	ShutdownTimeout string             `json:"shutdown_timeout"` // e.g. "10s"
	LedgerDB        string             `json:"ledger_db"`        // name in .sql-databases.json. DefaultLedgerDB if empty
	Gateway         GatewayConf        `json:"gateway"`
	AppRoot         string             `json:"-"` // Filled from compiled paths or --app-root
	RootCtx         context.Context    `json:"-"` // Global Context with RootCancel
	RootCancel      context.CancelFunc `json:"-"` // CancelFunc for RootCtx
	Logger          *zap.SugaredLogger `json:"-"` // built in BaseInit

	LiveDocxConf        livedocx.Conf            `json:"-"` // PrepareLiveDocx
	KVDBConf            kvdb.Conf                `json:"-"` // loadKVDBConf
	BackendKVDBClient   kvdb.Client              `json:"-"` // prepareKVDBClient
	SQLDBConfs          map[string]*sqldb.Conf   `json:"-"` // loadSQLDBConfs
	BackendSQLDBClients map[string]sqldb.Client  `json:"-"` // prepareSQLDBClients
	DocumentArchive     *archive.DocumentArchive `json:"-"` // PrepareKVDatabase
	TemplateLedger      *archive.TemplateLedger  `json:"-"` // PrepareSQLDatabases
}

// GatewayConf - render gateway auth. Auth is disabled when JWTSecret is empty
type GatewayConf struct {
	JWTSecret   string               `json:"jwt_secret"`
	Issuer      string               `json:"issuer"`
	MaxBodyMB   int64                `json:"max_body_mb"`  // request body limit of POST /v1/documents. 32 if zero
	ArchiveDocs bool                 `json:"archive_docs"` // archive every rendered document
	RenderRate  *throttle.BucketConf `json:"render_rate"`  // per caller limit of POST /v1/documents. unlimited if nil
}

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json file if present
// 3. build the logger
// 4. Start ShutdownSignalListener
func (c *Core) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	c.AppRoot = appRoot
	envFilePath := filepath.Join(appRoot, "config", ".core.json")
	envBytes, err := os.ReadFile(envFilePath) // ([]byte, error)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults. the CLI runs without a core config
	case err != nil:
		return err
	default:
		if err = json.Unmarshal(envBytes, c); err != nil {
			return fmt.Errorf("%s: %w", envFilePath, err)
		}
	}
	if c.AppName == "" {
		c.AppName = "livedocx"
	}
	if c.Logger, err = NewLogger(c.LogLevel, c.Debug); err != nil {
		return err
	}
	zap.ReplaceGlobals(c.Logger.Desugar())
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.startShutdownSignalListener()
	return nil
}

// NewLogger builds a production logger, or a development one writing to stdout in debug mode
func NewLogger(level string, debug bool) (*zap.SugaredLogger, error) {
	var z zap.Config
	if debug {
		z = zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
	} else {
		z = zap.NewProductionConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log_level: %w", err)
		}
		z.Level = lvl
	}
	logger, err := z.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}

// ShutdownTimeoutDuration - 10s unless configured
func (c *Core) ShutdownTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.ShutdownTimeout); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

var once sync.Once

func (c *Core) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			c.Logger.Infow("got signal. shutting down", "signal", sig.String(), "app", c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
	})
	c.Logger.Debug("shutdown signal listener started")
}

// PrepareKVDatabase builds the document archive on the KV database
func (c *Core) PrepareKVDatabase() error {
	// Load KV Database Config File
	err := c.loadKVDBConf()
	if err != nil {
		return err
	}
	if err = c.prepareKVDBClient(); err != nil {
		return err
	}
	var ttl time.Duration
	if c.KVDBConf.TTL != "" {
		if ttl, err = time.ParseDuration(c.KVDBConf.TTL); err != nil {
			return fmt.Errorf("kv-databases ttl: %w", err)
		}
	}
	prefix := c.KVDBConf.Prefix
	if prefix == "" {
		prefix = c.AppName + "_"
	}
	c.DocumentArchive = &archive.DocumentArchive{
		KV:     c.BackendKVDBClient,
		Prefix: prefix,
		TTL:    ttl,
		Logger: c.Logger.Named("archive"),
	}
	return nil
}

func (c *Core) loadKVDBConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".kv-databases.json")
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.KVDBConf); err != nil {
		return fmt.Errorf("%s: %w", confFilePath, err)
	}
	return nil
}

func (c *Core) prepareKVDBClient() error {
	switch c.KVDBConf.Type {
	case "redis":
		c.BackendKVDBClient = &redis.Client{Conf: &c.KVDBConf, Logger: c.Logger.Named("redis")}
		if err := c.BackendKVDBClient.Init(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported key-value database type: %q", c.KVDBConf.Type)
	}
	return nil
}

func (c *Core) loadSQLDBConfs() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".sql-databases.json")
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	c.SQLDBConfs = make(map[string]*sqldb.Conf)
	if err = json.Unmarshal(confBytes, &c.SQLDBConfs); err != nil {
		return fmt.Errorf("%s: %w", confFilePath, err)
	}
	return nil
}

// prepareSQLDBClients - Build & Init SQL DB Clients
// Use after loadSQLDBConfs
func (c *Core) prepareSQLDBClients() error {
	c.BackendSQLDBClients = make(map[string]sqldb.Client)

	// Registering Supported Implementations
	pgsql.Register()
	mysql.Register()

	for dbName, sqlDBConf := range c.SQLDBConfs {
		dbClient, err := sqldb.New(sqlDBConf.Type, sqlDBConf)
		if err != nil {
			return err
		}
		switch impl := dbClient.(type) {
		case *pgsql.Client:
			impl.Logger = c.Logger.Named("pgsql")
		case *mysql.Client:
			impl.Logger = c.Logger.Named("mysql")
		}
		if err = dbClient.Init(); err != nil {
			return fmt.Errorf("sql database %q: %w", dbName, err)
		}
		c.BackendSQLDBClients[dbName] = dbClient
	}
	return nil
}

// PrepareSQLDatabases builds SQL DB Clients and the template ledger on LedgerDB
func (c *Core) PrepareSQLDatabases() error {
	err := c.loadSQLDBConfs()
	if err != nil {
		return err
	}
	if len(c.SQLDBConfs) == 0 {
		return nil
	}
	if err = c.prepareSQLDBClients(); err != nil {
		return err
	}
	name := c.LedgerDB
	if name == "" {
		name = DefaultLedgerDB
	}
	db, ok := c.BackendSQLDBClients[name]
	if !ok {
		c.Logger.Warnw("no ledger database configured. template events are not recorded", "ledger_db", name)
		return nil
	}
	ledger := &archive.TemplateLedger{DB: db, Logger: c.Logger.Named("ledger")}
	ctx, cancel := context.WithTimeout(c.RootCtx, 10*time.Second)
	defer cancel()
	if err = ledger.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ledger schema: %w", err)
	}
	c.TemplateLedger = ledger
	return nil
}

// PrepareOptionalDatabases runs PrepareKVDatabase and PrepareSQLDatabases,
// skipping each one whose config file does not exist
func (c *Core) PrepareOptionalDatabases() error {
	if err := c.PrepareKVDatabase(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := c.PrepareSQLDatabases(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Core) ResourceCleanUp() {
	c.Logger.Info("app resource cleaning up...")
	if c.BackendKVDBClient != nil {
		if err := c.BackendKVDBClient.Close(); err != nil {
			c.Logger.Errorw("failed to close KV database client", "error", err)
		}
	}
	for name, sqlDBClient := range c.BackendSQLDBClients {
		dbType := sqlDBClient.GetConf().Type
		if err := sqlDBClient.Close(); err != nil {
			c.Logger.Errorw("failed to close SQL DB client", "db", name, "type", dbType, "error", err)
		} else {
			c.Logger.Debugw("SQL DB client closed", "db", name, "type", dbType)
		}
	}
	c.Logger.Info("app resource cleanup complete")
	_ = c.Logger.Sync()
}
