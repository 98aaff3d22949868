package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application's configuration.
type Config struct {
	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool

	Host            string
	Port            string
	DefaultDeviceID string
	LogLevel        string
	LogFormat       string
	AllowedOrigins  []string
	LiveBuffer      int

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTQoS      int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "5000")
	v.SetDefault("DEFAULT_DEVICE_ID", "smart_tent_001")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LIVE_BUFFER", 64)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CHANNEL", "smart_tent_telemetry")
	v.SetDefault("MQTT_TOPIC", "smart_tent/+/telemetry")
	v.SetDefault("MQTT_CLIENT_ID", "smart-tent-api")
	v.SetDefault("MQTT_QOS", 0)
}

// LoadConfig loads the configuration from a .env file, if any, and the environment.
func LoadConfig() (Config, error) {
	//load env variables
	envFileLoaded := godotenv.Load() == nil

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		EnvFileLoaded:   envFileLoaded,
		Host:            v.GetString("HOST"),
		Port:            v.GetString("PORT"),
		DefaultDeviceID: v.GetString("DEFAULT_DEVICE_ID"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		AllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LiveBuffer:      v.GetInt("LIVE_BUFFER"),

		InfluxDBURL:    v.GetString("INFLUXDB_URL"),
		InfluxDBToken:  v.GetString("INFLUXDB_TOKEN"),
		InfluxDBOrg:    v.GetString("INFLUXDB_ORG"),
		InfluxDBBucket: v.GetString("INFLUXDB_BUCKET"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RedisChannel:  v.GetString("REDIS_CHANNEL"),

		MQTTBroker:   v.GetString("MQTT_BROKER"),
		MQTTTopic:    v.GetString("MQTT_TOPIC"),
		MQTTClientID: v.GetString("MQTT_CLIENT_ID"),
		MQTTQoS:      v.GetInt("MQTT_QOS"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q: must be a number between 1 and 65535", c.Port)
	}
	if c.DefaultDeviceID == "" {
		return fmt.Errorf("DEFAULT_DEVICE_ID cannot be empty")
	}
	if c.LiveBuffer < 1 {
		return fmt.Errorf("invalid LIVE_BUFFER %d: must be positive", c.LiveBuffer)
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		return fmt.Errorf("invalid MQTT_QOS %d: must be 0, 1 or 2", c.MQTTQoS)
	}
	if c.influxPartial() {
		return fmt.Errorf("InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, INFLUXDB_ORG and INFLUXDB_BUCKET")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// InfluxEnabled reports whether readings should be forwarded to InfluxDB.
func (c Config) InfluxEnabled() bool {
	return c.InfluxDBURL != "" && c.InfluxDBToken != "" && c.InfluxDBOrg != "" && c.InfluxDBBucket != ""
}

func (c Config) influxPartial() bool {
	set := 0
	for _, s := range []string{c.InfluxDBURL, c.InfluxDBToken, c.InfluxDBOrg, c.InfluxDBBucket} {
		if s != "" {
			set++
		}
	}
	return set > 0 && set < 4
}

// RedisEnabled reports whether readings should be published on Redis.
func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// MQTTEnabled reports whether the MQTT subscriber should run.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
