package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Cashfree CashfreeConfig `yaml:"cashfree"`
	Doctor   DoctorConfig   `yaml:"doctor"`
	Email    EmailConfig    `yaml:"email"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL is the migrate-compatible form of the DSN.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	PaymentsTopic      string   `yaml:"payments_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	LockTTLMinutes    int    `yaml:"lock_ttl_minutes"`
	StaleOrderMinutes int    `yaml:"stale_order_minutes"`
	Timezone          string `yaml:"timezone"`
	MeetingBaseURL    string `yaml:"meeting_base_url"`
	ReturnURL         string `yaml:"return_url"`
	NotifyURL         string `yaml:"notify_url"`
}

type CashfreeConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIVersion     string `yaml:"api_version"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	AppID          string `yaml:"-"`
	SecretKey      string `yaml:"-"`
}

type DoctorConfig struct {
	Email         string `yaml:"email"`
	Password      string `yaml:"-"`
	JWTSecret     string `yaml:"-"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type EmailConfig struct {
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	AdminEmail     string `yaml:"admin_email"`
	SendGridAPIKey string `yaml:"-"`
}

type WorkerConfig struct {
	SweepMinutes int `yaml:"sweep_minutes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.LockTTLMinutes == 0 {
		c.Booking.LockTTLMinutes = 5
	}
	if c.Booking.StaleOrderMinutes == 0 {
		c.Booking.StaleOrderMinutes = 30
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "Asia/Kolkata"
	}
	if c.Cashfree.BaseURL == "" {
		c.Cashfree.BaseURL = "https://api.cashfree.com/pg"
	}
	if c.Cashfree.APIVersion == "" {
		c.Cashfree.APIVersion = "2023-08-01"
	}
	if c.Cashfree.TimeoutSeconds == 0 {
		c.Cashfree.TimeoutSeconds = 15
	}
	if c.Doctor.TokenTTLHours == 0 {
		c.Doctor.TokenTTLHours = 12
	}
	if c.Worker.SweepMinutes == 0 {
		c.Worker.SweepMinutes = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Secrets never live in the YAML file; they come from the environment
// (optionally via a .env file loaded by the entrypoints).
func (c *Config) applyEnv() {
	if v := os.Getenv("CASHFREE_APP_ID"); v != "" {
		c.Cashfree.AppID = v
	}
	if v := os.Getenv("CASHFREE_SECRET_KEY"); v != "" {
		c.Cashfree.SecretKey = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		c.Email.SendGridAPIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Doctor.JWTSecret = v
	}
	if v := os.Getenv("DOCTOR_EMAIL"); v != "" {
		c.Doctor.Email = v
	}
	if v := os.Getenv("DOCTOR_PASSWORD"); v != "" {
		c.Doctor.Password = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}
