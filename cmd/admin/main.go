// Command admin provisions accounts directly in the library database,
// e.g. the first ADMIN before anyone can sign in:
//
//	admin --login librarian --password s3cret --role ADMIN
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"online-library/internal/core/auth"
	"online-library/internal/core/config"
	"online-library/internal/core/database"
	"online-library/internal/core/logger"
	"online-library/internal/domain"
	"online-library/internal/repo"
	"online-library/internal/service"
)

func main() {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("admin", pflag.ExitOnError)
	flags.String("config", "", "config file (defaults to CONFIG_PATH or ./configs/config.local.yaml)")
	flags.String("login", "", "account login")
	flags.String("password", "", "account password (or ADMIN_PASSWORD)")
	flags.String("role", string(domain.RoleAdmin), "ADMIN or USER")
	flags.Bool("migrate", true, "create missing tables first")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("ADMIN")
	v.AutomaticEnv()

	cfg := config.Load(v.GetString("config"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	role, err := domain.ParseRole(v.GetString("role"))
	if err != nil {
		fail(err)
	}
	login, password := v.GetString("login"), v.GetString("password")
	if login == "" || password == "" {
		fail(fmt.Errorf("--login and --password are required"))
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       2,
		MaxIdleConns:       1,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if v.GetBool("migrate") {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
	}

	// tokens are never issued here; the issuer only satisfies the service
	users := service.NewUserService(repo.NewUserRepo(db), &auth.JWTer{Secret: []byte(cfg.JWT.Secret)}, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	created, err := users.Seed(ctx, login, password, role)
	if err != nil {
		log.Fatal("create account", zap.String("login", login), zap.Error(err))
	}
	if !created {
		fmt.Printf("account %q already exists, nothing to do\n", login)
		return
	}
	fmt.Printf("created %s account %q\n", role, login)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "admin:", err)
	os.Exit(2)
}
