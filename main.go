package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/ridgeline-labs/site-backend/api"
	"github.com/ridgeline-labs/site-backend/cache"
	"github.com/ridgeline-labs/site-backend/config"
	"github.com/ridgeline-labs/site-backend/content"
	"github.com/ridgeline-labs/site-backend/database"
	"github.com/ridgeline-labs/site-backend/leads"
	"github.com/ridgeline-labs/site-backend/models"
	"github.com/ridgeline-labs/site-backend/projectstore"
	"github.com/ridgeline-labs/site-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	ctx := context.Background()

	if prefix := config.GetString(c, "SSM_PARAMETER_PREFIX", ""); prefix != "" {
		loaded, err := config.LoadSSM(ctx, c, prefix)
		if err != nil {
			fmt.Printf("Error loading parameters from SSM: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d parameters from SSM under %s\n", loaded, prefix)
	}

	db, err := openDatabase(c)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	var (
		projectRepo  projectstore.Repository
		leadRepo     leads.Repository
		waitlistRepo leads.WaitlistRepository
	)
	if db != nil {
		currentDB := database.New(db)

		if config.GetBool(c, "AUTO_MIGRATE", false) {
			fmt.Println("Migrating schema...")
			if err := currentDB.AutoMigrate(); err != nil {
				fmt.Printf("Error migrating schema: %v\n", err)
				os.Exit(1)
			}
		}

		// Generation reads the migrated schema, then exits
		if config.GetBool(c, "GENERATE_MODELS", false) {
			fmt.Println("Generating models and query helpers...")
			if err := models.GenerateModels(db, config.GetString(c, "GEN_OUT_PATH", "./query")); err != nil {
				fmt.Printf("Error generating models: %v\n", err)
				os.Exit(1)
			}
			return
		}

		projectRepo = currentDB.ProjectRepo()
		leadRepo = currentDB.LeadRepo()
		waitlistRepo = currentDB.WaitlistRepo()
	} else {
		fmt.Println("Warning: no database configured; projects and leads will not be stored")
	}

	projectCache, closeCache := openCache(ctx, c)
	defer closeCache()

	defaults := projectstore.DefaultDefaults()
	defaults.Status = config.GetString(c, "PROJECT_DEFAULT_STATUS", defaults.Status)
	ttl := time.Duration(config.GetInt(c, "PROJECTS_CACHE_TTL_SECONDS", 300)) * time.Second

	// Unconfigured senders stay untyped nils so the services see them as absent.
	var emailSender leads.EmailSender
	if mailer := services.NewMailer(c); mailer != nil {
		emailSender = mailer
	} else {
		fmt.Println("Warning: RESEND_API_KEY not set; lead submissions will be refused")
	}
	var smsSender leads.SMSSender
	if sms := services.NewSMSNotifier(c); sms != nil {
		smsSender = sms
	}

	var uploader api.MediaUploader
	mediaStorage, err := services.NewMediaStorage(ctx, c)
	if err != nil {
		fmt.Printf("Error configuring media storage: %v\n", err)
		os.Exit(1)
	}
	if mediaStorage != nil {
		uploader = mediaStorage
	}

	library, err := content.Default()
	if err != nil {
		fmt.Printf("Error loading site content: %v\n", err)
		os.Exit(1)
	}

	notifier := leads.NewNotifier(emailSender, smsSender, leads.NotifyConfig{
		Recipients: config.GetList(c, "LEADS_NOTIFY_EMAIL"),
		AlertPhone: config.GetString(c, "LEADS_NOTIFY_PHONE", ""),
		SiteURL:    services.GetBaseURL(c),
	})

	deps := api.Dependencies{
		Leads:        leads.NewService(leadRepo, waitlistRepo, notifier),
		Media:        uploader,
		Content:      library,
		StorageReady: db != nil,
		EmailReady:   notifier.EmailConfigured(),
	}
	if projectRepo != nil {
		deps.Projects = projectstore.New(projectRepo,
			projectstore.WithCache(projectCache, ttl),
			projectstore.WithDefaults(defaults),
		)
	}

	server, err := api.NewServer(c, deps)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	// Listen for interrupt signals to gracefully shutdown the server
	fatalErr := firstExit(server.Start, listenToInterrupt)
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// openDatabase connects according to DB_TYPE. It returns a nil *gorm.DB when
// no database is configured at all.
func openDatabase(c map[string]string) (*gorm.DB, error) {
	dbType := config.GetString(c, "DB_TYPE", "")
	fmt.Printf("DB_TYPE: %s\n", dbType)

	// Build connection string based on DB_TYPE
	var connStr string
	switch dbType {
	case "supa":
		connStr = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
		fmt.Println("Connecting to Supabase database...")
	case "postgres", "":
		connStr = config.GetString(c, "DATABASE_URL", "")
		if connStr == "" {
			return nil, nil
		}
		fmt.Println("Connecting to Postgres database...")
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, err
	}

	// Every query outside a transaction reads from the replica when one is
	// configured. Writes and transactions stay on the primary, so repos that
	// need read-after-write do the read inside the write.
	if replica := config.GetString(c, "DB_REPLICA_DSN", ""); replica != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{DSN: replica, PreferSimpleProtocol: true})},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		fmt.Println("Read replica registered")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test connection: %w", err)
	}

	return db, nil
}

// openCache returns the Redis cache when REDIS_URL is reachable, otherwise a
// cache that never hits.
func openCache(ctx context.Context, c map[string]string) (cache.Cache, func()) {
	redisURL := config.GetString(c, "REDIS_URL", "")
	if redisURL == "" {
		return cache.NewNoop(), func() {}
	}

	rc, err := cache.NewRedisFromURL(redisURL, "site:")
	if err != nil {
		fmt.Printf("Warning: invalid REDIS_URL, caching disabled: %v\n", err)
		return cache.NewNoop(), func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		fmt.Printf("Warning: redis unreachable, caching disabled: %v\n", err)
		rc.Close()
		return cache.NewNoop(), func() {}
	}

	fmt.Println("Connected to redis")
	return rc, func() { rc.Close() }
}

// firstExit runs every source and returns the first error sent. The channel
// has room for all of them, so the sources that lose never block.
func firstExit(sources ...func(chan<- error)) error {
	errChannel := make(chan error, len(sources))
	for _, source := range sources {
		go source(errChannel)
	}
	return <-errChannel
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
