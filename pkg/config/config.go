package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Mongo   MongoConfig
	Query   QueryConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type MongoConfig struct {
	URI               string
	Host              string
	Port              int
	Database          string
	Username          string
	Password          string
	ConnectTimeoutSec int
}

// QueryConfig carries the aggregation caps applied by the query engine.
// There is no pagination; results beyond these caps are cut off.
type QueryConfig struct {
	GroupLimit         int
	BucketLimit        int
	RelationLimit      int
	RelationWindowDays int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/qmodel")

	viper.SetEnvPrefix("QMA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("mongo.host", "localhost")
	viper.SetDefault("mongo.port", 27017)
	viper.SetDefault("mongo.database", "qmodel")
	viper.SetDefault("mongo.connectTimeoutSec", 10)

	viper.SetDefault("query.groupLimit", 10000)
	viper.SetDefault("query.bucketLimit", 10000)
	viper.SetDefault("query.relationLimit", 1000)
	viper.SetDefault("query.relationWindowDays", 15)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
