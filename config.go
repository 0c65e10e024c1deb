package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dnldd/pricealerts/chart"
	"github.com/joho/godotenv"
)

const (
	// defaultAddress is the default http listening address.
	defaultAddress = ":8080"
	// defaultDays is the default number of days of price history fetched.
	defaultDays = 1
	// defaultRefreshInterval is the default interval between price refreshes.
	defaultRefreshInterval = time.Minute * 5
)

// Config is the configuration struct for the service.
type Config struct {
	// Assets represents the tracked assets as id:ticker[:name] entries.
	Assets []string
	// CoinGeckoAPIKey is the optional CoinGecko demo API key.
	CoinGeckoAPIKey string
	// Days is the number of days of price history fetched per refresh.
	Days int
	// RefreshInterval is the interval between price refreshes of an asset.
	RefreshInterval time.Duration
	// DBEndpoint is the rqlite endpoint.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// Address is the http listening address.
	Address string
	// FlatPolicy is the placement policy for flat price series.
	FlatPolicy string
	// Replay is the historic data replay flag.
	Replay bool
	// ReplayDataFilepath is the filepath to the replayed price history.
	ReplayDataFilepath string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if _, ok := chart.ParseFlatPolicy(cfg.FlatPolicy); !ok {
		errs = errors.Join(errs, fmt.Errorf("unknown flat policy %q", cfg.FlatPolicy))
	}
	if cfg.DBUser != "" && cfg.DBEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("database user provided without a database endpoint"))
	}

	switch cfg.Replay {
	case true:
		if cfg.ReplayDataFilepath == "" {
			errs = errors.Join(errs, fmt.Errorf("replay data filepath cannot be an empty string"))
		}
	case false:
		if len(cfg.Assets) == 0 {
			errs = errors.Join(errs, fmt.Errorf("no assets provided for price alerts service"))
		}
		if cfg.Days < 0 {
			errs = errors.Join(errs, fmt.Errorf("days cannot be negative"))
		}
		if cfg.RefreshInterval < 0 {
			errs = errors.Join(errs, fmt.Errorf("refresh interval cannot be negative"))
		}
	}

	return errs
}

// applyDefaults sets defaults for unset optional fields.
func (cfg *Config) applyDefaults() {
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if cfg.Days == 0 {
		cfg.Days = defaultDays
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Int64:
		// Only handle time.Duration
		d, ok := value.(*time.Duration)
		if !ok {
			return fmt.Errorf("%s: unsupported int64 type", name)
		}
		var def time.Duration
		if defValue != "" {
			var err error
			def, err = time.ParseDuration(defValue)
			if err != nil {
				return fmt.Errorf("%s: parsing duration: %w", name, err)
			}
		}
		flag.DurationVar(d, name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	flags := []struct {
		name  string
		value any
		usage string
	}{
		{"assets", &cfg.Assets, "the tracked assets as id:ticker[:name] entries"},
		{"coingeckoapikey", &cfg.CoinGeckoAPIKey, "the CoinGecko demo api key"},
		{"days", &cfg.Days, "the days of price history fetched per refresh"},
		{"refreshinterval", &cfg.RefreshInterval, "the interval between price refreshes"},
		{"dbendpoint", &cfg.DBEndpoint, "the rqlite endpoint, prices are kept in memory when unset"},
		{"dbuser", &cfg.DBUser, "the database user"},
		{"dbpass", &cfg.DBPass, "the database user pass"},
		{"address", &cfg.Address, "the http listening address"},
		{"flatpolicy", &cfg.FlatPolicy, "the flat price series policy, fail or midline"},
		{"replay", &cfg.Replay, "the historic data replay flag"},
		{"replaydatafilepath", &cfg.ReplayDataFilepath, "the replayed price history filepath"},
	}

	// Register command line arguments using loaded environment variables as defaults.
	for _, f := range flags {
		err = cfg.registerFlag(f.name, f.value, f.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	err = cfg.Validate()
	if err != nil {
		return err
	}

	cfg.applyDefaults()

	return nil
}
