package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sessiontodo/todo/config"
	"github.com/sessiontodo/todo/database"
	"github.com/sessiontodo/todo/logger"
	"github.com/sessiontodo/todo/web"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func initLogger() {
	level, err := logger.LevelFromConfig(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func loadConfig() (*config.Config, *gorm.DB) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	return cfg, db
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	initLogger()
	defer logger.CloseLogger()

	cfg, db := loadConfig()
	defer func() {
		if err := database.CloseDB(db); err != nil {
			logger.Warning("close db err:", err)
		}
	}()

	server := web.NewServer(cfg, db)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting web server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(cfg, db)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Info("Shutting down web server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	cfg, db := loadConfig()
	defer database.CloseDB(db)
	fmt.Printf("schema of %s database is up to date\n", cfg.Database.Type)
}

func showSetting(w io.Writer) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(w, "load config failed:", err)
		return
	}
	secret := "(not set)"
	if cfg.SessionSecret != "" {
		secret = "********"
	}
	fmt.Fprintln(w, "current settings as follows:")
	fmt.Fprintln(w, "listen:", cfg.Listen)
	fmt.Fprintln(w, "port:", cfg.Port)
	fmt.Fprintln(w, "tls:", cfg.CertFile != "" && cfg.KeyFile != "")
	fmt.Fprintln(w, "session secret:", secret)
	fmt.Fprintln(w, "bcrypt cost:", cfg.BcryptCost)
	fmt.Fprintln(w, "page limit:", cfg.PageLimit)
	fmt.Fprintln(w, "throttle store:", cfg.ThrottleStore)
	if cfg.ThrottleStore == config.ThrottleStoreRedis {
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "(embedded)"
		}
		fmt.Fprintln(w, "redis:", addr)
	}
	fmt.Fprintln(w, "database:", cfg.Database.Type)
	if cfg.Database.IsSQLite() {
		fmt.Fprintln(w, "database file:", cfg.Database.DSN)
	}
}

func main() {
	var envFile string

	var rootCmd = &cobra.Command{
		Use: config.GetName(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "load environment variables from this file")

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetName(), config.GetVersion())
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect settings",
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting(cmd.OutOrStdout())
		},
	}

	settingCmd.AddCommand(showCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, versionCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
