package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type OTAConfig struct {
	Env          string `yaml:"env"`
	HTTPServer   `yaml:"http_server"`
	OTADB        `yaml:"ota_db"`
	LogConfig    `yaml:"log_config"`
	MQTTBroker   `yaml:"mqtt_broker"`
	KafkaService `yaml:"kafka_service"`
	OTAService   `yaml:"ota_service"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type OTADB struct {
	Dsn string `yaml:"dsn"`
	// MigrationsPath points at the versioned SQL migrations. Empty means
	// AutoMigrate only.
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type MQTTBroker struct {
	URL            string `yaml:"url"`
	ClientIDPrefix string `yaml:"client_id_prefix" env-default:"iothub-ota-service"`
	DownstreamQoS  byte   `yaml:"downstream_qos" env-default:"1"`
	InboundQueue   int    `yaml:"inbound_queue" env-default:"256"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"ota-events"`
}

type OTAService struct {
	DownloadBaseURL  string `yaml:"download_base_url"`
	LivenessInterval int    `yaml:"liveness_interval_seconds" env-default:"5"`
}

func MustLoad() *OTAConfig {

	// Processing env config variable and file
	configPath := os.Getenv("OTA_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("OTA_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg OTAConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
