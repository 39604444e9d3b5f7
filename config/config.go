package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver       string
	DBUser         string
	DBPassword     string
	DBHost         string
	DBPort         string
	DBName         string
	DBMaxOpenConns int

	HTTPAddr  string
	JWTSecret string
	// JWTTTL of zero issues tokens without an expiry claim.
	JWTTTL time.Duration

	RabbitMQURL     string
	OrderExchange   string
	OrderQueue      string
	DeadLetterQueue string

	CartIdleTTL           time.Duration
	CartSweepInterval     time.Duration
	DedupCustomersByPhone bool

	BootstrapAdminUsername string
	BootstrapAdminPassword string

	LogLevel string
}

var defaults = map[string]interface{}{
	"DB_DRIVER":                       "mysql",
	"DB_USER":                         "root",
	"DB_PASSWORD":                     "",
	"DB_HOST":                         "localhost",
	"DB_PORT":                         "3306",
	"DB_NAME":                         "canteen",
	"DB_MAX_OPEN_CONNS":               10,
	"HTTP_ADDR":                       ":8080",
	"JWT_SECRET":                      "change-me",
	"JWT_TTL":                         "0s",
	"RABBITMQ_URL":                    "",
	"ORDER_EXCHANGE":                  "canteen.orders",
	"ORDER_QUEUE":                     "canteen.kitchen",
	"DEAD_LETTER_QUEUE":               "canteen.dead_letter",
	"CART_IDLE_TTL":                   "30m",
	"CART_SWEEP_INTERVAL":             "1m",
	"ORDERS_DEDUP_CUSTOMERS_BY_PHONE": false,
	"BOOTSTRAP_ADMIN_USERNAME":        "admin",
	"BOOTSTRAP_ADMIN_PASSWORD":        "admin123",
	"LOG_LEVEL":                       "info",
}

var drivers = []string{"mysql", "postgres", "memory"}

// LoadConfig reads defaults, then the optional file named by CONFIG_FILE,
// then the environment. Environment variables win.
func LoadConfig() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	cfg := &Config{
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     getFromFile(v, "DB_PASSWORD_FILE", "DB_PASSWORD"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBName:         v.GetString("DB_NAME"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),

		HTTPAddr:  v.GetString("HTTP_ADDR"),
		JWTSecret: getFromFile(v, "JWT_SECRET_FILE", "JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		OrderExchange:   v.GetString("ORDER_EXCHANGE"),
		OrderQueue:      v.GetString("ORDER_QUEUE"),
		DeadLetterQueue: v.GetString("DEAD_LETTER_QUEUE"),

		CartIdleTTL:           v.GetDuration("CART_IDLE_TTL"),
		CartSweepInterval:     v.GetDuration("CART_SWEEP_INTERVAL"),
		DedupCustomersByPhone: v.GetBool("ORDERS_DEDUP_CUSTOMERS_BY_PHONE"),

		BootstrapAdminUsername: v.GetString("BOOTSTRAP_ADMIN_USERNAME"),
		BootstrapAdminPassword: getFromFile(v, "BOOTSTRAP_ADMIN_PASSWORD_FILE", "BOOTSTRAP_ADMIN_PASSWORD"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	known := false
	for _, d := range drivers {
		if c.DBDriver == d {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unsupported DB_DRIVER %q (want one of %s)", c.DBDriver, strings.Join(drivers, ", "))
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("missing required config field: JWT_SECRET")
	}
	if c.CartIdleTTL < 0 || c.CartSweepInterval < 0 {
		return fmt.Errorf("cart durations must not be negative")
	}
	return nil
}

// EventsEnabled reports whether order events should go to RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

// getFromFile prefers the contents of the file named by fileKey (Docker secrets).
func getFromFile(v *viper.Viper, fileKey, key string) string {
	if filePath := v.GetString(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return v.GetString(key)
}
